// Package knowledge implements the intruder's minimal-representative
// knowledge set: a set of terms closed under pairing and
// decryption-by-known-key, split into a basic-leaf list and an
// encrypted-but-undecryptable list, plus the set of variables referenced
// anywhere inside so substitution-driven invalidation can be detected.
package knowledge

import (
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/termlist"
)

// Set is the intruder's knowledge. Use New to construct one; the zero
// value has no inverse-key table and must not be used.
type Set struct {
	basic     *termlist.List
	encrypted *termlist.List
	vars      *termlist.List
	inv       *term.InverseMap
}

// New returns an empty knowledge set that resolves inverse keys through inv.
func New(inv *term.InverseMap) *Set {
	return &Set{basic: termlist.New(), encrypted: termlist.New(), vars: termlist.New(), inv: inv}
}

// Basic returns the basic (leaf) terms known outright. Callers must not
// mutate the returned list.
func (s *Set) Basic() *termlist.List { return s.basic }

// Encrypted returns the encryption terms known but not decryptable.
// Callers must not mutate the returned list.
func (s *Set) Encrypted() *termlist.List { return s.encrypted }

// Duplicate returns an independent copy of s (new lists, shared term
// pointers — the leaves themselves are never mutated by this package).
func (s *Set) Duplicate() *Set {
	return &Set{basic: s.basic.Clone(), encrypted: s.encrypted.Clone(), vars: s.vars.Clone(), inv: s.inv}
}

// closure computes the fixpoint of the derivability inference rule:
// starting from basic, repeatedly try to decrypt every still-opaque
// encrypted term
// using keys derivable so far, until nothing new unlocks. The returned list
// holds every atomic leaf/opaque-encryption the intruder can produce
// without further construction; Contains additionally allows constructing
// tuples/encryptions on demand from the returned atoms.
func (s *Set) closure() *termlist.List {
	known := termlist.New()
	for i := 0; i < s.basic.Len(); i++ {
		addAtomic(known, s.basic.At(i))
	}
	remaining := s.encrypted.Clone()
	for {
		changed := false
		for i := 0; i < remaining.Len(); i++ {
			enc := remaining.At(i)
			inv := s.inv.InverseKey(enc.Key())
			if containsFrom(known, inv) {
				addAtomic(known, enc.Operand())
				remaining.Remove(enc)
				changed = true
				i--
			}
		}
		if !changed {
			break
		}
	}
	for i := 0; i < remaining.Len(); i++ {
		known.AddUnique(remaining.At(i))
	}
	return known
}

// addAtomic decomposes t into leaves, adding each to known; an encryption
// term that resists decomposition (because it's still opaque at the point
// this is called) is added as one atomic, opaque unit.
func addAtomic(known *termlist.List, t *term.Term) {
	t = term.Deref(t)
	switch t.Kind() {
	case term.KindTuple:
		addAtomic(known, t.Left())
		addAtomic(known, t.Right())
	default:
		known.AddUnique(t)
	}
}

// containsFrom answers the derivability inference rule against a fixed
// atomic-known set: t is derivable if it's already known, or is a tuple
// both of whose components are derivable, or is an encryption the intruder
// can construct from a derivable payload and a derivable key.
func containsFrom(known *termlist.List, t *term.Term) bool {
	t = term.Deref(t)
	if known.Contains(t) {
		return true
	}
	switch t.Kind() {
	case term.KindTuple:
		return containsFrom(known, t.Left()) && containsFrom(known, t.Right())
	case term.KindEncrypt:
		return containsFrom(known, t.Operand()) && containsFrom(known, t.Key())
	default:
		return false
	}
}

// Contains reports whether t is derivable from s under the inference rule.
// Recursion dereferences at every step so a bound variable is resolved to
// its substitute before the rule is applied.
func (s *Set) Contains(t *term.Term) bool {
	return containsFrom(s.closure(), t)
}

// Add folds t into the knowledge set, maintaining the minimality invariant.
// It returns true iff the set actually changed.
func (s *Set) Add(t *term.Term) bool {
	t = term.Deref(t)
	if t.Kind() == term.KindTuple {
		l := s.Add(t.Left())
		r := s.Add(t.Right())
		return l || r
	}
	if s.Contains(t) {
		return false
	}
	for _, v := range termlist.Variables(t).Items() {
		s.vars.AddUnique(v)
	}
	s.simplify(t)
	switch t.Kind() {
	case term.KindEncrypt:
		if s.Contains(s.inv.InverseKey(t.Key())) {
			s.Add(t.Operand())
			if !s.Contains(t.Key()) {
				s.encrypted.AddUnique(t)
			}
		} else {
			s.encrypted.AddUnique(t)
		}
	default:
		s.basic.AddUnique(t)
	}
	return true
}

// simplify scans encrypted for any {m}k' with k' == inverse(t) — adding t
// just made those decryptable — and removes them from encrypted,
// recursively adding their payload.
func (s *Set) simplify(t *term.Term) {
	var newlyDecryptable []*term.Term
	for i := 0; i < s.encrypted.Len(); i++ {
		enc := s.encrypted.At(i)
		if term.Equal(s.inv.InverseKey(enc.Key()), t) {
			newlyDecryptable = append(newlyDecryptable, enc)
		}
	}
	for _, enc := range newlyDecryptable {
		s.encrypted.Remove(enc)
		s.Add(enc.Operand())
	}
}

// SubstitutionNeeded reports whether any variable referenced inside s now
// has a non-empty binding cell, i.e. whether Reconstruct is required to
// restore the minimality invariant after an external substitution.
func (s *Set) SubstitutionNeeded() bool {
	for _, v := range s.vars.Items() {
		if term.Deref(v) != v {
			return true
		}
	}
	return false
}

// Reconstruct rebuilds a fresh, minimal Set by re-adding every element of
// basic ∪ encrypted from scratch, restoring minimality after the
// surrounding bindings changed underneath this set.
func (s *Set) Reconstruct() *Set {
	out := New(s.inv)
	for i := 0; i < s.basic.Len(); i++ {
		out.Add(s.basic.At(i))
	}
	for i := 0; i < s.encrypted.Len(); i++ {
		out.Add(s.encrypted.At(i))
	}
	return out
}
