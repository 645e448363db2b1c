// Package runs implements the dynamic state: the run table (an array of
// instantiated runs, each a cursor into its role's event list) and the
// linear execution trace.
package runs

import (
	"github.com/pkg/errors"

	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/termlist"
)

// Run is one instantiated execution of a role.
type Run struct {
	ID       int
	Protocol *protocol.Protocol
	Role     *protocol.Role
	Events   []*protocol.Event // duplicated, renamed copy of Role.Events
	Step     int               // cursor: index of the next event to execute

	// Artefacts are fresh leaf terms created solely for this run (fresh
	// role-variable substitutes, fresh locals) so they can be dropped when
	// the run is destroyed. Go's GC reclaims them automatically once
	// unreferenced; Artefacts exists so tests and the minimiser can observe
	// exactly what a run introduced.
	Artefacts []*term.Term

	// SymmetryPredecessor is the id of the smallest earlier run executing
	// the same role with compatible agents, or -1 if none.
	SymmetryPredecessor int

	// Agents maps each role-variable symbol to the term currently bound to
	// that position (may itself be an unbound variable if not yet fixed).
	Agents map[string]*term.Term
}

// Done reports whether the run has executed every event.
func (r *Run) Done() bool { return r.Step >= len(r.Events) }

// Current returns the event at the run's cursor, or nil if Done.
func (r *Run) Current() *protocol.Event {
	if r.Done() {
		return nil
	}
	return r.Events[r.Step]
}

// Table is the array of instantiated runs. Runs must be destroyed in LIFO
// order; DestroyLast enforces that by construction.
type Table struct {
	runs []*Run
}

// NewTable returns an empty run table.
func NewTable() *Table { return &Table{} }

// Len returns the number of live runs.
func (t *Table) Len() int { return len(t.runs) }

// At returns the run with the given id. Panics on an out-of-range id: an
// engine asking for a run it never instantiated is an internal invariant
// violation.
func (t *Table) At(id int) *Run {
	if id < 0 || id >= len(t.runs) {
		panic(errors.Errorf("runs: run id %d out of range (table has %d runs)", id, len(t.runs)))
	}
	return t.runs[id]
}

// All returns every live run, in instantiation order. Callers must not
// mutate the returned slice.
func (t *Table) All() []*Run { return t.runs }

// Instantiate duplicates role's event list into a fresh run appended to t,
// renaming its locals and role variables:
//
//  1. allocate a new run id at the end of the table;
//  2. duplicate the role's event list;
//  3. for each role variable, reuse presub[name] if given, else allocate a
//     fresh local artefact variable with the same type constraints;
//  4. build the from/to substitution lists and rewrite every duplicated
//     event's From/To/Message through them.
//
// Intruder knowledge is not tracked per-run: both search engines track one
// knowledge set for the whole search, since the intruder can combine
// material learned from any run regardless of which run introduced it.
// Instantiate returns the new run, already appended to t and with
// SymmetryPredecessor filled in.
func (t *Table) Instantiate(proto *protocol.Protocol, role *protocol.Role, presub map[string]*term.Term) *Run {
	id := len(t.runs)
	run := &Run{ID: id, Protocol: proto, Role: role, Agents: map[string]*term.Term{}}

	from := termlist.New()
	to := termlist.New()

	for _, rv := range role.RoleVars {
		sym := rv.Symbol()
		var repl *term.Term
		if pre, ok := presub[sym]; ok {
			repl = pre
		} else {
			repl = term.NewVar(sym, id, rv.Types())
			run.Artefacts = append(run.Artefacts, repl)
		}
		from.Append(rv)
		to.Append(repl)
		run.Agents[sym] = repl
	}
	for _, l := range role.Locals {
		fresh := term.NewLocal(l.Symbol(), id)
		run.Artefacts = append(run.Artefacts, fresh)
		from.Append(l)
		to.Append(fresh)
	}

	run.Events = make([]*protocol.Event, len(role.Events))
	for i, e := range role.Events {
		run.Events[i] = renameEvent(e, from, to)
	}

	run.SymmetryPredecessor = SymmetryPredecessorOf(t, role, run.Agents)
	t.runs = append(t.runs, run)
	return run
}

func renameEvent(e *protocol.Event, from, to *termlist.List) *protocol.Event {
	out := &protocol.Event{
		Kind:      e.Kind,
		Label:     e.Label,
		ClaimKind: e.ClaimKind,
		Internal:  e.Internal,
	}
	if e.From != nil {
		out.From = termlist.Rename(e.From, from, to)
	}
	if e.To != nil {
		out.To = termlist.Rename(e.To, from, to)
	}
	if e.Message != nil {
		out.Message = termlist.Rename(e.Message, from, to)
	}
	if e.ClaimTerm != nil {
		out.ClaimTerm = termlist.Rename(e.ClaimTerm, from, to)
	}
	for _, l := range e.PrecedingLabels {
		out.PrecedingLabels = append(out.PrecedingLabels, l)
	}
	return out
}

// DestroyLast removes the most recently added run, enforcing LIFO
// destruction during backtrack. Calling it on an empty table is an
// internal invariant violation and panics.
func (t *Table) DestroyLast() *Run {
	if len(t.runs) == 0 {
		panic(errors.New("runs: DestroyLast called on an empty run table"))
	}
	last := t.runs[len(t.runs)-1]
	t.runs = t.runs[:len(t.runs)-1]
	return last
}

// SymmetryPredecessorOf finds the smallest earlier run in t executing the
// same role as candidate with agent assignments that are at least
// potentially equal: two agent terms are "compatible" here if they are
// syntactically equal or either side is still an open variable.
func SymmetryPredecessorOf(t *Table, candidateRole *protocol.Role, agents map[string]*term.Term) int {
	for _, r := range t.runs {
		if r.Role != candidateRole {
			continue
		}
		if agentsCompatible(r.Agents, agents) {
			return r.ID
		}
	}
	return -1
}

func agentsCompatible(a, b map[string]*term.Term) bool {
	for sym, av := range a {
		bv, ok := b[sym]
		if !ok {
			continue
		}
		if term.IsLeaf(term.Deref(av)) && term.IsLeaf(term.Deref(bv)) {
			da, db := term.Deref(av), term.Deref(bv)
			if da.Kind() != term.KindVar && db.Kind() != term.KindVar && !term.Equal(da, db) {
				return false
			}
		}
	}
	return true
}
