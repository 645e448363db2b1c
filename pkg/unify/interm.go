package unify

import (
	"github.com/cascremers/scyther-sub001/internal/trail"
	"github.com/cascremers/scyther-sub001/pkg/term"
)

// Subterms enumerates every subterm of t, including t itself, in a
// top-down, left-before-right order. This is the "intermediate" term set
// that interm-unify below enumerates as unification candidates.
func Subterms(t *term.Term) []*term.Term {
	var out []*term.Term
	var walk func(*term.Term)
	walk = func(t *term.Term) {
		t = term.Deref(t)
		out = append(out, t)
		switch t.Kind() {
		case term.KindEncrypt:
			walk(t.Operand())
			walk(t.Key())
		case term.KindTuple:
			walk(t.Left())
			walk(t.Right())
		}
	}
	walk(t)
	return out
}

// IntermUnify enumerates every subterm of haystack as a unification
// candidate for goal, invoking visit once per successful unification with
// the bindings from that attempt still in place. visit returns whether
// enumeration should continue to the next candidate; IntermUnify always
// undoes each attempt's bindings before moving on (whether visit continued
// the search deeper under them or not — by the time visit returns, any
// bindings *it* made on top have already been undone by the callee), so
// this call leaves the trail exactly as it found it regardless of how many
// candidates were tried or why enumeration stopped.
func IntermUnify(goal, haystack *term.Term, mode Mode, typeOf TypeOf, tr *trail.Trail, visit func(Result, *term.Term) bool) {
	for _, candidate := range Subterms(haystack) {
		mark := tr.Mark()
		res := MGU(goal, candidate, mode, typeOf, tr)
		cont := true
		if res.Ok {
			cont = visit(res, candidate)
		}
		tr.Undo(mark)
		if !cont {
			return
		}
	}
}
