// Package constraint implements an alternative matcher: an ordered list of
// (term, knowledge) obligations solved by branching and unification instead
// of the forward engine's per-receive candidate enumeration.
//
// Neither search engine calls this package, and pkg/verifier.Options.Engine
// offers only the forward and backward engines, so it cannot be selected
// through the verifier.
package constraint

import (
	"github.com/cascremers/scyther-sub001/internal/trail"
	"github.com/cascremers/scyther-sub001/pkg/knowledge"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/unify"
)

// Constraint is one open obligation: term must be derivable from knowledge.
type Constraint struct {
	Term      *term.Term
	Knowledge *knowledge.Set
}

// List is the ordered set of open obligations the solver works through.
type List struct {
	items []Constraint
}

// NewList builds a constraint list from the given obligations, in order.
func NewList(items ...Constraint) *List {
	return &List{items: append([]Constraint{}, items...)}
}

// Len reports how many obligations remain open.
func (l *List) Len() int { return len(l.items) }

// Solve implements a four-step decomposition algorithm:
//  1. Locate the first non-variable-headed constraint; if none remain,
//     succeed.
//  2. If its term is a tuple, split into two constraints on the components
//     and recurse.
//  3. If its term is an encryption, either unify against some term in the
//     knowledge, or split into a constraint on the payload and the inverse
//     key.
//  4. Otherwise, for every term in the knowledge attempt MGU; on success,
//     propagate the substitution through all constraints, mark the active
//     constraint solved, recurse.
//
// Solve reports whether the whole list is derivable; on success every
// variable binding made along the way remains on tr (the caller undoes via
// tr.Undo(mark) on backtrack, per the package-wide trail contract).
func Solve(l *List, mode unify.Mode, typeOf unify.TypeOf, tr *trail.Trail) bool {
	idx := firstNonVariableHeaded(l.items)
	if idx < 0 {
		return true // every remaining constraint is variable-headed: solved vacuously
	}
	c := l.items[idx]
	t := term.Deref(c.Term)

	switch t.Kind() {
	case term.KindTuple:
		return solveTuple(l, idx, t, c.Knowledge, mode, typeOf, tr)
	case term.KindEncrypt:
		return solveEncrypt(l, idx, t, c.Knowledge, mode, typeOf, tr)
	default:
		return solveLeaf(l, idx, t, c.Knowledge, mode, typeOf, tr)
	}
}

func firstNonVariableHeaded(items []Constraint) int {
	for i, c := range items {
		if term.Deref(c.Term).Kind() != term.KindVar {
			return i
		}
	}
	return -1
}

func withoutAt(items []Constraint, idx int) []Constraint {
	out := make([]Constraint, 0, len(items)-1)
	out = append(out, items[:idx]...)
	out = append(out, items[idx+1:]...)
	return out
}

func solveTuple(l *List, idx int, t *term.Term, k *knowledge.Set, mode unify.Mode, typeOf unify.TypeOf, tr *trail.Trail) bool {
	rest := withoutAt(l.items, idx)
	next := &List{items: append(rest, Constraint{Term: t.Left(), Knowledge: k}, Constraint{Term: t.Right(), Knowledge: k})}
	return Solve(next, mode, typeOf, tr)
}

func solveEncrypt(l *List, idx int, t *term.Term, k *knowledge.Set, mode unify.Mode, typeOf unify.TypeOf, tr *trail.Trail) bool {
	rest := withoutAt(l.items, idx)

	if k.Contains(t) {
		return Solve(&List{items: rest}, mode, typeOf, tr)
	}

	next := &List{items: append(append([]Constraint{}, rest...),
		Constraint{Term: t.Operand(), Knowledge: k},
		Constraint{Term: t.Key(), Knowledge: k})}
	return Solve(next, mode, typeOf, tr)
}

func solveLeaf(l *List, idx int, t *term.Term, k *knowledge.Set, mode unify.Mode, typeOf unify.TypeOf, tr *trail.Trail) bool {
	rest := withoutAt(l.items, idx)
	candidates := make([]*term.Term, 0, k.Basic().Len()+k.Encrypted().Len())
	candidates = append(candidates, k.Basic().Items()...)
	candidates = append(candidates, k.Encrypted().Items()...)
	for _, candidate := range candidates {
		mark := tr.Mark()
		res := unify.MGU(t, candidate, mode, typeOf, tr)
		if res.Ok {
			if Solve(&List{items: rest}, mode, typeOf, tr) {
				return true
			}
		}
		tr.Undo(mark)
	}
	return false
}
