// Package unify implements most-general-unifier syntactic unification over
// terms with variables, parameterised by one of three match modes, plus the
// interm-unify variant the backward engine uses to match a receive against
// any subterm of a candidate send.
package unify

import (
	"github.com/cascremers/scyther-sub001/internal/trail"
	"github.com/cascremers/scyther-sub001/pkg/term"
)

// Mode selects how permissive variable binding is.
type Mode int

const (
	// Typed requires a variable's declared type list to accept the
	// candidate leaf's symbol-derived type before binding.
	Typed Mode = iota
	// Basic allows a variable to bind to any leaf, ignoring declared types.
	Basic
	// Untyped allows a variable to bind to any term, leaf or compound.
	Untyped
)

// validSubstitution implements the per-mode check. typeOf is the
// caller-supplied classifier used only by Typed mode; Basic and Untyped
// ignore it.
func validSubstitution(mode Mode, v, candidate *term.Term, typeOf func(*term.Term) string) bool {
	switch mode {
	case Untyped:
		return true
	case Basic:
		return term.IsLeaf(candidate)
	default: // Typed
		if !term.IsLeaf(candidate) {
			return false
		}
		want := typeOf(candidate)
		for _, t := range v.Types() {
			if t == want {
				return true
			}
		}
		return len(v.Types()) == 0 // an untyped variable accepts any leaf
	}
}

// Result is the outcome of a unification attempt. Ok is false when the two
// terms are not unifiable; Bound lists every variable this call bound, in
// binding order, so the caller can Undo them on backtrack. Failure is
// signalled by Ok, never by an empty-vs-nil Bound slice.
type Result struct {
	Ok    bool
	Bound []*term.Term
}

// TypeOf is the caller-supplied classifier a Typed-mode unification needs
// to decide whether a candidate leaf matches a variable's declared types.
// pkg/protocol supplies the concrete implementation (agent/nonce/key/...).
type TypeOf func(*term.Term) string

// MGU attempts to unify a and b under mode, binding variables on tr as it
// goes. On failure, the caller is responsible for calling
// tr.Undo(markBeforeCall) — MGU does not undo its own partial bindings, so
// that a chain of several MGU calls in one frame can be undone together
// with a single Undo.
func MGU(a, b *term.Term, mode Mode, typeOf TypeOf, tr *trail.Trail) Result {
	var bound []*term.Term
	ok := mgu(a, b, mode, typeOf, tr, &bound)
	return Result{Ok: ok, Bound: bound}
}

func mgu(a, b *term.Term, mode Mode, typeOf TypeOf, tr *trail.Trail, bound *[]*term.Term) bool {
	a, b = term.Deref(a), term.Deref(b)
	if term.Equal(a, b) {
		return true
	}
	if a.Kind() == term.KindVar {
		return bindVar(a, b, mode, typeOf, tr, bound)
	}
	if b.Kind() == term.KindVar {
		return bindVar(b, a, mode, typeOf, tr, bound)
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case term.KindEncrypt:
		return mgu(a.Operand(), b.Operand(), mode, typeOf, tr, bound) &&
			mgu(a.Key(), b.Key(), mode, typeOf, tr, bound)
	case term.KindTuple:
		return mgu(a.Left(), b.Left(), mode, typeOf, tr, bound) &&
			mgu(a.Right(), b.Right(), mode, typeOf, tr, bound)
	default:
		return false // unequal leaves of the same kind never unify
	}
}

func bindVar(v, candidate *term.Term, mode Mode, typeOf TypeOf, tr *trail.Trail, bound *[]*term.Term) bool {
	if term.Occurs(v, candidate) {
		return candidate.Kind() == term.KindVar && term.Equal(v, candidate)
	}
	if !validSubstitution(mode, v, candidate, typeOf) {
		return false
	}
	v.Bind(candidate, tr)
	*bound = append(*bound, v)
	return true
}
