package runs

import "github.com/cascremers/scyther-sub001/pkg/knowledge"
import "github.com/cascremers/scyther-sub001/pkg/protocol"

// TraceEntry is one executed step: the event that fired, the run that
// owned it, and a snapshot of the intruder's knowledge immediately after
// the event's effect was applied.
type TraceEntry struct {
	Event     *protocol.Event
	Run       int
	Knowledge *knowledge.Set
}

// Trace is the linear array indexed by step count. Knowledge snapshots are
// owned by the trace slot: Push always stores a fresh *knowledge.Set
// rather than mutating a previous slot's snapshot in place.
type Trace struct {
	entries []TraceEntry
}

// NewTrace returns an empty trace.
func NewTrace() *Trace { return &Trace{} }

// Len returns the number of recorded steps.
func (tr *Trace) Len() int { return len(tr.entries) }

// At returns the entry at step i.
func (tr *Trace) At(i int) TraceEntry { return tr.entries[i] }

// Entries returns every recorded step; callers must not mutate the slice.
func (tr *Trace) Entries() []TraceEntry { return tr.entries }

// Push records a new step at the end of the trace.
func (tr *Trace) Push(event *protocol.Event, run int, k *knowledge.Set) {
	tr.entries = append(tr.entries, TraceEntry{Event: event, Run: run, Knowledge: k})
}

// Pop removes the most recently recorded step (the trace's half of
// backtrack, alongside Table.DestroyLast and the unification trail).
func (tr *Trace) Pop() {
	if len(tr.entries) == 0 {
		return
	}
	tr.entries = tr.entries[:len(tr.entries)-1]
}

// KnowledgeAt returns the knowledge snapshot at step i, or the supplied
// initial knowledge if i < 0 (i.e. "before any step ran").
func (tr *Trace) KnowledgeAt(i int, initial *knowledge.Set) *knowledge.Set {
	if i < 0 {
		return initial
	}
	return tr.entries[i].Knowledge
}
