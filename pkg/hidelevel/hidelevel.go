// Package hidelevel implements a static pruning oracle: a cheap, sound
// unreachability lower bound computed once from the parsed protocol,
// consulted by the backward engine before it ever recurses into a
// goal-binding alternative.
//
// For every global constant c, level(c) is the minimum syntactic depth of
// c under any encryption, taken across the initial knowledge terms and
// every send message of every role. A term t is impossible to construct
// below a given encryption budget if some constant inside it sits deeper
// than that budget allows, since producing t would require inverting a
// key the intruder was never shown.
package hidelevel

import (
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/term"
)

// Oracle answers interesting/impossible queries against a precomputed
// level table.
type Oracle struct {
	level map[string]int // leaf symbol -> minimum encryption depth observed
}

// Build scans model's initial knowledge and every role's send messages,
// computing level(c) for each constant leaf c encountered.
func Build(model *protocol.Model) *Oracle {
	o := &Oracle{level: map[string]int{}}
	for _, t := range model.InitialKnowledge {
		o.observe(t, 0)
	}
	for _, r := range model.Roles() {
		for _, e := range r.Events {
			if e.Kind == protocol.Send && e.Message != nil {
				o.observe(e.Message, 0)
			}
		}
	}
	return o
}

// observe walks t recording, for every constant leaf, the minimum depth at
// which it has been seen so far (depth increments only when descending
// into an encryption's operand).
func (o *Oracle) observe(t *term.Term, depth int) {
	t = term.Deref(t)
	switch t.Kind() {
	case term.KindConst:
		sym := t.Symbol()
		if cur, ok := o.level[sym]; !ok || depth < cur {
			o.level[sym] = depth
		}
	case term.KindEncrypt:
		o.observe(t.Operand(), depth+1)
		o.observe(t.Key(), depth)
	case term.KindTuple:
		o.observe(t.Left(), depth)
		o.observe(t.Right(), depth)
	}
}

// levelOf returns the precomputed level for a constant symbol, or 0 if it
// was never observed under any encryption (the constant is effectively
// public, e.g. a role name or a function symbol).
func (o *Oracle) levelOf(t *term.Term) int {
	t = term.Deref(t)
	if t.Kind() != term.KindConst {
		return 0
	}
	lvl, ok := o.level[t.Symbol()]
	if !ok {
		return 0
	}
	return lvl
}

// Interesting reports whether t contains at least one constant hidden
// under at least one layer of encryption somewhere in the protocol: such
// terms are worth the oracle's attention; terms built entirely from
// level-0 constants are never pruned by it.
func Interesting(o *Oracle, t *term.Term) bool {
	found := false
	walkConstants(t, func(c *term.Term) {
		if o.levelOf(c) > 0 {
			found = true
		}
	})
	return found
}

// Impossible reports whether every way to produce t would require breaking
// an encryption whose depth exceeds budget — i.e. some constant inside t
// has a recorded level strictly greater than budget. If Impossible(t)
// holds, t is not a member of the intruder's knowledge in any reachable
// state. budget is the depth at which the search is currently trying to
// derive t (0 for a top-level goal).
func Impossible(o *Oracle, t *term.Term, budget int) bool {
	impossible := false
	walkConstants(t, func(c *term.Term) {
		if o.levelOf(c) > budget {
			impossible = true
		}
	})
	return impossible
}

// walkConstants calls visit once per distinct constant-leaf occurrence
// reachable in t (encryption keys included, since a key constant is
// itself subject to the same reachability question).
func walkConstants(t *term.Term, visit func(*term.Term)) {
	t = term.Deref(t)
	switch t.Kind() {
	case term.KindConst:
		visit(t)
	case term.KindEncrypt:
		walkConstants(t.Operand(), visit)
		walkConstants(t.Key(), visit)
	case term.KindTuple:
		walkConstants(t.Left(), visit)
		walkConstants(t.Right(), visit)
	}
}
