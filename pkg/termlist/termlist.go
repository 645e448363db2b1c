// Package termlist implements the ordered term sequence and partial
// term→int map: an ordered/set-like sequence of terms, and a partial map
// used by the claim evaluator's label-matching scan.
//
// List is slice-backed rather than a linked list: append, iterate, and
// membership-by-equality are the only access patterns this package needs,
// and a slice gives the same amortised complexity with none of the manual
// pointer bookkeeping a linked-list representation would require. Append,
// AddUnique, Remove and Concat modify the receiver in place; Reverse and
// Clone return new lists.
package termlist

import "github.com/cascremers/scyther-sub001/pkg/term"

// List is an ordered sequence of terms, usable as a plain list, as a set
// (membership by dereferenced equality), or as a substitution list of
// visited variables.
type List struct {
	items []*term.Term
}

// New returns an empty list.
func New() *List { return &List{} }

// FromSlice wraps an existing slice of terms without copying.
func FromSlice(items []*term.Term) *List { return &List{items: items} }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the i'th element.
func (l *List) At(i int) *term.Term { return l.items[i] }

// Items returns the underlying slice; callers must not mutate it.
func (l *List) Items() []*term.Term { return l.items }

// Append adds t to the end of the list (always, even if already present —
// use AddUnique for set semantics).
func (l *List) Append(t *term.Term) {
	l.items = append(l.items, t)
}

// Contains reports membership by dereferenced equality (a linear scan).
func (l *List) Contains(t *term.Term) bool {
	for _, x := range l.items {
		if term.Equal(x, t) {
			return true
		}
	}
	return false
}

// AddUnique appends t only if an equal element is not already present,
// reporting whether it was added.
func (l *List) AddUnique(t *term.Term) bool {
	if l.Contains(t) {
		return false
	}
	l.Append(t)
	return true
}

// Remove deletes the first element equal to t, reporting whether anything
// was removed. Destructive but leak-free: no manual pointer bookkeeping is
// needed since the backing slice is Go-GC'd.
func (l *List) Remove(t *term.Term) bool {
	for i, x := range l.items {
		if term.Equal(x, t) {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Concat appends every element of other to l, destructively (l grows;
// other is left unchanged).
func (l *List) Concat(other *List) {
	l.items = append(l.items, other.items...)
}

// Reverse returns a new list with elements in reverse order (a shallow
// copy).
func (l *List) Reverse() *List {
	out := make([]*term.Term, len(l.items))
	for i, x := range l.items {
		out[len(l.items)-1-i] = x
	}
	return &List{items: out}
}

// Clone returns a shallow copy (new backing slice, same term pointers).
func (l *List) Clone() *List {
	out := make([]*term.Term, len(l.items))
	copy(out, l.items)
	return &List{items: out}
}
