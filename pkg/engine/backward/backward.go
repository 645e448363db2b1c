// Package backward implements a goal-binding search: an already-admitted
// partial trace plus a queue of "goals" (unbound receive events), each
// resolved by binding to an existing send, a freshly instantiated run, or a
// synthetic intruder-construction node.
package backward

import (
	"go.uber.org/zap"

	"github.com/cascremers/scyther-sub001/internal/trail"
	"github.com/cascremers/scyther-sub001/pkg/claim"
	"github.com/cascremers/scyther-sub001/pkg/hidelevel"
	"github.com/cascremers/scyther-sub001/pkg/knowledge"
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/runs"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/termlist"
	"github.com/cascremers/scyther-sub001/pkg/unify"
)

// Options mirrors the subset of the CLI-facing switches the backward engine
// consults.
type Options struct {
	Mode    unify.Mode
	MaxRuns int
}

// Attack mirrors forward.Attack; kept as a separate type since the two
// engines are distinct implementations of a common verifier abstraction and
// may evolve independently.
type Attack struct {
	ClaimStep int
	Trace     []runs.TraceEntry
	Witness   claim.Outcome
}

// Stats mirrors forward.Stats.
type Stats struct {
	States int
	Runs   int
}

// goal is one still-unbound receive event awaiting resolution.
type goal struct {
	run  *runs.Run
	step int
}

// Engine drives the backward search.
type Engine struct {
	model   *protocol.Model
	opts    Options
	typeOf  unify.TypeOf
	table   *runs.Table
	trace   *runs.Trace
	tr      *trail.Trail
	oracle  *hidelevel.Oracle
	log     *zap.Logger
	attacks []Attack
	stats   Stats
}

// New constructs a backward engine over model. Run starts the search from
// one run of every role of the target protocol; every receive inside those
// runs becomes the initial goal queue.
func New(model *protocol.Model, opts Options, typeOf unify.TypeOf, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		model:  model,
		opts:   opts,
		typeOf: typeOf,
		table:  runs.NewTable(),
		trace:  runs.NewTrace(),
		tr:     trail.New(),
		oracle: hidelevel.Build(model),
		log:    log,
	}
}

// Run instantiates one run per role of targetProtocol and searches for a
// trace admitting every send deterministically while resolving every
// receive as a goal, stopping at the first full violation found.
func (e *Engine) Run(targetProtocol string) ([]Attack, Stats) {
	proto, ok := e.model.Protocols[targetProtocol]
	if !ok {
		return nil, e.stats
	}
	e.log.Debug("backward search starting", zap.String("protocol", targetProtocol))

	var goals []goal
	for _, roleName := range proto.RoleNames {
		role := proto.Roles[roleName]
		run := e.table.Instantiate(proto, role, nil)
		e.stats.Runs++
		goals = append(goals, e.admitDeterministic(run)...)
	}

	e.solve(goals)
	e.log.Info("backward search finished", zap.Int("states", e.stats.States), zap.Int("attacks", len(e.attacks)))
	return e.attacks, e.stats
}

// admitDeterministic advances run through all of its events, appending
// a goal for each receive it encounters: sends require no resolution, and
// claims are evaluated once the whole trace is otherwise complete.
func (e *Engine) admitDeterministic(run *runs.Run) []goal {
	var goals []goal
	for !run.Done() {
		ev := run.Current()
		switch ev.Kind {
		case protocol.Send:
			e.trace.Push(ev, run.ID, nil)
			run.Step++
		case protocol.Recv, protocol.InternalChoose:
			goals = append(goals, goal{run: run, step: run.Step})
			e.trace.Push(ev, run.ID, nil)
			run.Step++
		case protocol.Claim:
			e.trace.Push(ev, run.ID, nil)
			run.Step++
		}
	}
	return goals
}

// solve drives the main loop: no goals remaining means the candidate trace
// is complete — check every claim event and record a violation if any
// fails.
func (e *Engine) solve(goals []goal) bool {
	e.stats.States++
	if len(goals) == 0 {
		return e.checkClaims()
	}

	g := goals[0]
	rest := goals[1:]
	msg := g.run.Events[g.step].Message

	if hidelevel.Impossible(e.oracle, msg, 0) {
		return false
	}

	if e.bindToExistingSend(g, rest) {
		return true
	}
	if e.table.Len() < e.opts.MaxRuns && e.bindToFreshRun(g, rest) {
		return true
	}
	if e.bindToIntruderConstruction(g, rest) {
		return true
	}
	return false
}

// bindToExistingSend attempts interm-unification of the goal message
// against every send event already in the table.
func (e *Engine) bindToExistingSend(g goal, rest []goal) bool {
	for _, r := range e.table.All() {
		for _, ev := range r.Events {
			if ev.Kind != protocol.Send {
				continue
			}
			stop := false
			unify.IntermUnify(g.run.Events[g.step].Message, ev.Message, e.opts.Mode, e.typeOf, e.tr, func(res unify.Result, candidate *term.Term) bool {
				if stop = e.solve(rest) {
					return false
				}
				return true
			})
			if stop {
				return true
			}
		}
	}
	return false
}

// bindToFreshRun instantiates a new run of every declared role, extending
// the goal queue with its own leading receives, then recurses; undo (LIFO)
// before trying the next role.
func (e *Engine) bindToFreshRun(g goal, rest []goal) bool {
	for _, proto := range e.protocolsInOrder() {
		for _, roleName := range proto.RoleNames {
			role := proto.Roles[roleName]
			mark := e.tr.Mark()
			run := e.table.Instantiate(proto, role, nil)
			e.stats.Runs++
			extra := e.admitDeterministic(run)
			combined := append(append([]goal{}, extra...), g)
			combined = append(combined, rest...)
			stop := e.solve(combined)
			e.table.DestroyLast()
			e.tr.Undo(mark)
			if stop {
				return true
			}
		}
	}
	return false
}

// bindToIntruderConstruction lets the intruder synthesise the goal message
// directly out of its known constants and the terms carried by prior
// sends, without needing a new protocol run. This models a synthetic
// "intruder role" as a direct construction check rather than a materialised
// run, since a single-send generic role would need a polymorphic message
// type the term algebra has no leaf kind for.
func (e *Engine) bindToIntruderConstruction(g goal, rest []goal) bool {
	k := e.replayedKnowledge()
	msg := term.Deref(g.run.Events[g.step].Message)
	if termlist.Variables(msg).Len() > 0 {
		return false // construction requires a ground goal; open variables need (a)/(b) first
	}
	if !k.Contains(msg) {
		return false
	}
	return e.solve(rest)
}

// replayedKnowledge rebuilds the intruder's knowledge from every send
// recorded so far in the trace. Like the forward engine, the backward
// engine tracks knowledge globally rather than per-run.
func (e *Engine) replayedKnowledge() *knowledge.Set {
	k := knowledge.New(e.model.Inverse)
	for _, t := range e.model.InitialKnowledge {
		k.Add(t)
	}
	for _, entry := range e.trace.Entries() {
		if entry.Event.Kind == protocol.Send {
			k.Add(entry.Event.Message)
		}
	}
	return k
}

func (e *Engine) checkClaims() bool {
	violated := false
	for i := 0; i < e.trace.Len(); i++ {
		if e.trace.At(i).Event.Kind != protocol.Claim {
			continue
		}
		outcome := claim.Evaluate(e.model, e.annotatedTrace(), e.table, i)
		if outcome.Verdict == claim.Violated {
			snapshot := make([]runs.TraceEntry, e.trace.Len())
			copy(snapshot, e.trace.Entries())
			e.attacks = append(e.attacks, Attack{ClaimStep: i, Trace: snapshot, Witness: outcome})
			violated = true
		}
	}
	return violated
}

// annotatedTrace fills in a knowledge snapshot per slot (claim.Evaluate
// needs Knowledge for ClaimSecret), rebuilt by replaying the trace on every
// call since the backward engine otherwise tracks knowledge only globally.
func (e *Engine) annotatedTrace() *runs.Trace {
	out := runs.NewTrace()
	k := knowledge.New(e.model.Inverse)
	for _, t := range e.model.InitialKnowledge {
		k.Add(t)
	}
	for _, entry := range e.trace.Entries() {
		if entry.Event.Kind == protocol.Send {
			k.Add(entry.Event.Message)
		}
		out.Push(entry.Event, entry.Run, k.Duplicate())
	}
	return out
}

func (e *Engine) protocolsInOrder() []*protocol.Protocol {
	out := make([]*protocol.Protocol, 0, len(e.model.ProtocolNames))
	for _, name := range e.model.ProtocolNames {
		out = append(out, e.model.Protocols[name])
	}
	return out
}
