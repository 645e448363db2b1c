package protocol

import "github.com/cascremers/scyther-sub001/pkg/term"

// Builder constructs a Model programmatically, standing in for an external
// parser: the core itself never touches protocol-description bytes, and
// requires only that whatever populates a Model honours the invariants this
// package documents. cmd/scyther-core and the test suite both drive
// protocols through this type.
type Builder struct {
	model *Model
	proto *Protocol
	role  *Role
}

// NewBuilder starts a fresh, empty model.
func NewBuilder() *Builder {
	return &Builder{model: &Model{
		Protocols: map[string]*Protocol{},
		Inverse:   term.NewInverseMap(),
		Untrusted: map[string]bool{},
	}}
}

// Protocol starts (or resumes) a named protocol.
func (b *Builder) Protocol(name string) *Builder {
	p, ok := b.model.Protocols[name]
	if !ok {
		p = &Protocol{Name: name, Roles: map[string]*Role{}}
		b.model.Protocols[name] = p
		b.model.ProtocolNames = append(b.model.ProtocolNames, name)
	}
	b.proto = p
	return b
}

// Role starts (or resumes) a named role within the current protocol.
func (b *Builder) Role(name string) *Builder {
	r, ok := b.proto.Roles[name]
	if !ok {
		r = &Role{Name: name}
		b.proto.Roles[name] = r
		b.proto.RoleNames = append(b.proto.RoleNames, name)
	}
	b.role = r
	return b
}

// RoleVar declares v as one of the current role's parameters (typically an
// agent name variable).
func (b *Builder) RoleVar(v *term.Term) *Builder {
	b.role.RoleVars = append(b.role.RoleVars, v)
	return b
}

// Local declares a local-name leaf belonging to the current role (a nonce
// or session key generated fresh per instantiation).
func (b *Builder) Local(l *term.Term) *Builder {
	b.role.Locals = append(b.role.Locals, l)
	return b
}

// Send appends a send event.
func (b *Builder) Send(label Label, from, to, msg *term.Term) *Builder {
	b.role.Events = append(b.role.Events, &Event{Kind: Send, Label: label, From: from, To: to, Message: msg})
	return b
}

// Recv appends a receive event.
func (b *Builder) Recv(label Label, from, to, msg *term.Term) *Builder {
	b.role.Events = append(b.role.Events, &Event{Kind: Recv, Label: label, From: from, To: to, Message: msg})
	return b
}

// SecretClaim appends a secrecy claim over secret.
func (b *Builder) SecretClaim(label Label, owner *term.Term, secret *term.Term) *Builder {
	b.role.Events = append(b.role.Events, &Event{Kind: Claim, Label: label, From: owner, ClaimKind: ClaimSecret, ClaimTerm: secret})
	return b
}

// SynchClaim appends a claim of kind over the given preceding-label set.
func (b *Builder) SynchClaim(label Label, owner *term.Term, kind ClaimKind, preceding []Label) *Builder {
	b.role.Events = append(b.role.Events, &Event{Kind: Claim, Label: label, From: owner, ClaimKind: kind, PrecedingLabels: preceding})
	return b
}

// AddConstant registers c as a protocol-level constant.
func (b *Builder) AddConstant(c *term.Term) *Builder {
	b.proto.Constants = append(b.proto.Constants, c)
	return b
}

// InverseKeyPair registers a and b as inverse keys in the model-wide table.
func (b *Builder) InverseKeyPair(a, b2 *term.Term) *Builder {
	b.model.Inverse.AddPair(a, b2)
	return b
}

// PublicFunction marks symbol as a one-way public function (hash-like).
func (b *Builder) PublicFunction(symbol string) *Builder {
	b.model.Inverse.MarkPublic(symbol)
	return b
}

// InitialKnowledge registers t as part of the intruder's initial
// knowledge.
func (b *Builder) InitialKnowledge(t *term.Term) *Builder {
	b.model.InitialKnowledge = append(b.model.InitialKnowledge, t)
	return b
}

// Untrusted marks agent as compromised.
func (b *Builder) Untrusted(agent *term.Term) *Builder {
	b.model.Untrusted[agent.Symbol()] = true
	return b
}

// Build returns the assembled, read-only Model.
func (b *Builder) Build() *Model {
	return b.model
}
