package protocol

import "github.com/cascremers/scyther-sub001/pkg/term"

// FirstOccurrenceOf returns the step index in events where t first appears
// (as a subterm, by structural equality) inside a message of an event of
// the given kind, or -1 if it never does. The function is generic over any
// event sequence so it serves both a Role's static template and a Run's
// instantiated, renamed copy of that template (pkg/runs duplicates the
// event list, and the helper's contract is identical either way).
func FirstOccurrenceOf(events []*Event, t *term.Term, kind EventKind) int {
	for i, e := range events {
		if e.Kind != kind {
			continue
		}
		if e.Message != nil && term.Occurs(t, e.Message) {
			return i
		}
	}
	return -1
}
