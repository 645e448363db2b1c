// Package protocol implements the read-only role/protocol model: a parsed
// protocol as protocols → roles → ordered events, with claim metadata,
// inverse-key pairs, and initial intruder knowledge.
//
// The core never parses bytes: protocols are built programmatically through
// Builder, the same contract a real lexer/parser (an external collaborator)
// would have to satisfy.
package protocol

import "github.com/cascremers/scyther-sub001/pkg/term"

// Label identifies a send/receive event for the purposes of matching pairs
// during claim evaluation. Scyther's own protocol language represents
// labels as terms, so this package keeps that representation rather than
// introducing a parallel string-keyed identity.
type Label = *term.Term

// EventKind discriminates the four event kinds a role can contain.
type EventKind int

const (
	Send EventKind = iota
	Recv
	Claim
	InternalChoose
)

func (k EventKind) String() string {
	switch k {
	case Send:
		return "send"
	case Recv:
		return "recv"
	case Claim:
		return "claim"
	case InternalChoose:
		return "choose"
	default:
		return "unknown"
	}
}

// ClaimKind enumerates the claim kinds the protocol language can declare;
// every kind gets an explicit variant rather than silently folding into
// another.
type ClaimKind int

const (
	ClaimSecret ClaimKind = iota
	ClaimAlive
	ClaimWeakAgree
	ClaimNiSynch
	ClaimNiAgree
	ClaimRunning
	ClaimCommit
)

func (k ClaimKind) String() string {
	switch k {
	case ClaimSecret:
		return "secret"
	case ClaimAlive:
		return "alive"
	case ClaimWeakAgree:
		return "weakagree"
	case ClaimNiSynch:
		return "ni-synch"
	case ClaimNiAgree:
		return "ni-agree"
	case ClaimRunning:
		return "running"
	case ClaimCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Event is one send/receive/claim/internal-choose inside a role.
type Event struct {
	Kind    EventKind
	Label   Label
	From    *term.Term
	To      *term.Term
	Message *term.Term

	// Claim-only fields.
	ClaimKind       ClaimKind
	ClaimTerm       *term.Term // the secret term, for ClaimSecret
	PrecedingLabels []Label    // used by synch/agree checks

	// Internal marks a synthetic internal-choose event. pkg/runs.Instantiate
	// copies the flag from the role template but never inserts such events
	// itself; the engines treat InternalChoose like a receive.
	Internal bool

	// ForbiddenKnowledge is a per-(run,step) bookkeeping slot for a
	// receive's partial-order reduction. No engine in this module reads or
	// writes it, and pkg/runs.Instantiate does not copy it, so every
	// instantiated event starts at zero.
	ForbiddenKnowledge int
}

// Role is a named ordered sequence of events plus the local names and
// variables declared within it.
type Role struct {
	Name     string
	Events   []*Event
	Locals   []*term.Term // local-name leaves (GlobalRun-independent declarations, instantiated fresh per run)
	RoleVars []*term.Term // role variables, e.g. the agent parameters
}

// Protocol is a named set of roles plus its own local constants.
type Protocol struct {
	Name      string
	RoleNames []string
	Roles     map[string]*Role
	Constants []*term.Term
}

// Model is the fully parsed, read-only input the verifier consumes: every
// protocol, the inverse-key table, and the intruder's initial knowledge
// terms.
type Model struct {
	Protocols        map[string]*Protocol
	ProtocolNames    []string
	Inverse          *term.InverseMap
	InitialKnowledge []*term.Term
	Untrusted        map[string]bool // agent symbols considered compromised, e.g. "Eve"
}

// Roles returns every role across every protocol, in protocol-then-role
// declaration order.
func (m *Model) Roles() []*Role {
	var out []*Role
	for _, pname := range m.ProtocolNames {
		p := m.Protocols[pname]
		for _, rname := range p.RoleNames {
			out = append(out, p.Roles[rname])
		}
	}
	return out
}

// EventsOfKind returns every event of the given kind across every role, in
// declaration order.
func (m *Model) EventsOfKind(kind EventKind) []*Event {
	var out []*Event
	for _, r := range m.Roles() {
		for _, e := range r.Events {
			if e.Kind == kind {
				out = append(out, e)
			}
		}
	}
	return out
}

// IsUntrusted reports whether agent (a const leaf symbol) is compromised.
func (m *Model) IsUntrusted(agent *term.Term) bool {
	agent = term.Deref(agent)
	if !term.IsLeaf(agent) {
		return false
	}
	return m.Untrusted[agent.Symbol()]
}
