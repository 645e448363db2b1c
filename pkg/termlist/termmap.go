package termlist

import "github.com/cascremers/scyther-sub001/pkg/term"

// MapStatus is one of the three sentinels the claim evaluator's
// label-matching scan relies on: whether a label is not being tracked at
// all, still needs a matching event, or has already been satisfied.
type MapStatus int

const (
	// NotInDomain means the key was never registered in this map.
	NotInDomain MapStatus = iota
	// ToDo means the key is registered but not yet satisfied.
	ToDo
	// Good means the key's obligation has been discharged.
	Good
)

// Map is a partial map term -> MapStatus: the synch checker's only use of
// the mapped value is as one of the three sentinels above, so Map carries
// MapStatus directly rather than a bare int.
type Map struct {
	keys   []*term.Term
	values []MapStatus
}

// NewMap returns an empty map.
func NewMap() *Map { return &Map{} }

// Set registers key with status, overwriting any prior status for an
// equal key.
func (m *Map) Set(key *term.Term, status MapStatus) {
	for i, k := range m.keys {
		if term.Equal(k, key) {
			m.values[i] = status
			return
		}
	}
	m.keys = append(m.keys, key)
	m.values = append(m.values, status)
}

// Get returns the status of key, or NotInDomain if it was never Set.
func (m *Map) Get(key *term.Term) MapStatus {
	for i, k := range m.keys {
		if term.Equal(k, key) {
			return m.values[i]
		}
	}
	return NotInDomain
}

// AllGood reports whether every registered key has status Good — the
// non-injective synchronisation claim's final check.
func (m *Map) AllGood() bool {
	for _, v := range m.values {
		if v != Good {
			return false
		}
	}
	return true
}

// Keys returns the registered keys in insertion order; callers must not
// mutate the returned slice.
func (m *Map) Keys() []*term.Term { return m.keys }
