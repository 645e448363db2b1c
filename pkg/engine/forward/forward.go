// Package forward implements a depth-first interleaving search: state =
// (trace, run cursors, knowledge); a transition picks a run whose cursor
// sits at an enabled event and advances it.
package forward

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

// Options mirrors the driver-facing switches that bear on the forward
// engine.
type Options struct {
	Mode              unify.Mode
	MaxTraceLength    int
	MaxRuns           int
	PruneLevel        int // 0 none, 1 stop-on-first-violated-claim, 2 shrink bound to attack length
	AgentSymmetry     bool
	StopAtFirstAttack bool
}

// Attack is one recorded violation: the claim step and a snapshot of the
// trace and run table at the moment it was detected.
type Attack struct {
	ClaimStep int
	Trace     []runs.TraceEntry
	Witness   claim.Outcome
}

// Stats are the progress counters of one engine run.
type Stats struct {
	States int
	Runs   int
}

// Engine drives one search. Construct with New, then call Run.
type Engine struct {
	model   *protocol.Model
	opts    Options
	typeOf  unify.TypeOf
	table   *runs.Table
	trace   *runs.Trace
	tr      *trail.Trail
	k       *knowledge.Set
	oracle  *hidelevel.Oracle
	log     *zap.Logger
	attacks []Attack
	stats   Stats
}

// New constructs an engine for model under opts. typeOf supplies the
// Typed-mode leaf classifier; protocol.DefaultTypeOf is a reasonable
// default when the protocol declares no finer distinction.
func New(model *protocol.Model, opts Options, typeOf unify.TypeOf, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	k := knowledge.New(model.Inverse)
	for _, t := range model.InitialKnowledge {
		k.Add(t)
	}
	return &Engine{
		model:  model,
		opts:   opts,
		typeOf: typeOf,
		table:  runs.NewTable(),
		trace:  runs.NewTrace(),
		tr:     trail.New(),
		k:      k,
		oracle: hidelevel.Build(model),
		log:    log,
	}
}

// Run explores the state space and returns every attack found. Prune level
// 1 stops at the first violated claim; prune level 2 shrinks the
// trace-length bound on the first hit and keeps searching for shorter
// witnesses; at level 0 the search exhausts the bound. StopAtFirstAttack
// stops the search after the first attack at any level.
func (e *Engine) Run() ([]Attack, Stats) {
	e.log.Debug("forward search starting", zap.Int("max-runs", e.opts.MaxRuns), zap.Int("max-trace-length", e.opts.MaxTraceLength))
	e.search()
	e.log.Info("forward search finished", zap.Int("states", e.stats.States), zap.Int("attacks", len(e.attacks)))
	return e.attacks, e.stats
}

func (e *Engine) search() bool {
	e.stats.States++
	if e.opts.MaxTraceLength > 0 && e.trace.Len() >= e.opts.MaxTraceLength {
		return false
	}

	progressed := false
	for _, r := range e.table.All() {
		if r.Done() {
			continue
		}
		fired, stop := e.advance(r)
		if stop || (e.opts.StopAtFirstAttack && e.attackFound()) {
			return true // a nested frame asked the whole search to stop
		}
		if fired {
			progressed = true
		}
	}
	if progressed {
		return false
	}

	if e.table.Len() < e.opts.MaxRuns {
		return e.branchNewRun()
	}
	return false
}

func (e *Engine) attackFound() bool {
	return len(e.attacks) > 0
}

// advance tries every enabled continuation of run r's current event and
// recurses once per continuation, undoing all trail/trace/table effects
// between attempts. fired reports whether the event was enabled at all
// (distinguishing "nothing to do here" from "nothing enabled yet" so the
// caller knows whether instantiating a fresh run is still worth trying);
// stop reports whether the whole search should halt (PruneLevel 1).
func (e *Engine) advance(r *runs.Run) (fired, stop bool) {
	ev := r.Current()
	switch ev.Kind {
	case protocol.Send:
		return true, e.fireSend(r, ev)
	case protocol.Recv, protocol.InternalChoose:
		return e.fireRecv(r, ev)
	case protocol.Claim:
		return true, e.fireClaim(r, ev)
	default:
		return false, false
	}
}

func (e *Engine) fireSend(r *runs.Run, ev *protocol.Event) bool {
	r.Step++
	e.k.Add(ev.Message)
	e.trace.Push(ev, r.ID, e.k.Duplicate())
	stop := e.search()
	e.trace.Pop()
	r.Step--
	return stop
}

func (e *Engine) fireClaim(r *runs.Run, ev *protocol.Event) bool {
	r.Step++
	e.trace.Push(ev, r.ID, e.k.Duplicate())
	outcome := claim.Evaluate(e.model, e.trace, e.table, e.trace.Len()-1)
	if outcome.Verdict == claim.Violated {
		e.recordAttack(e.trace.Len()-1, outcome)
		if e.opts.PruneLevel == 1 {
			// stop-on-first-violated-claim: halt the moment one
			// counterexample is in hand.
			e.trace.Pop()
			r.Step--
			return true
		}
		// PruneLevel 2 instead shrinks the bound (recordAttack) and keeps
		// searching for a strictly shorter witness.
	}
	stop := e.search()
	e.trace.Pop()
	r.Step--
	return stop
}

func (e *Engine) recordAttack(step int, outcome claim.Outcome) {
	snapshot := make([]runs.TraceEntry, e.trace.Len())
	copy(snapshot, e.trace.Entries())
	e.attacks = append(e.attacks, Attack{ClaimStep: step, Trace: snapshot, Witness: outcome})
	if e.opts.PruneLevel >= 2 {
		// Shrink the bound to |attack|-1: further search only looks for
		// strictly shorter witnesses.
		e.opts.MaxTraceLength = step
	}
}

// fireRecv implements the receive-enabling rule: ground messages must
// already be contained in knowledge; messages carrying open variables are
// matched structurally against every subterm the knowledge currently
// offers, each match explored as a separate branch.
func (e *Engine) fireRecv(r *runs.Run, ev *protocol.Event) (fired, stop bool) {
	msg := ev.Message
	if termlist.Variables(msg).Len() == 0 {
		if !e.k.Contains(msg) {
			return false, false // not enabled; dead end for this branch
		}
		return true, e.commitRecv(r, ev)
	}

	if hidelevel.Impossible(e.oracle, msg, 0) {
		return false, false // no candidate substitution could ever satisfy this receive
	}

	haystack := e.candidateHaystack()
	unify.IntermUnify(msg, haystack, e.opts.Mode, e.typeOf, e.tr, func(res unify.Result, candidate *term.Term) bool {
		fired = true
		if stop = e.commitRecv(r, ev); stop {
			return false
		}
		return true
	})
	return fired, stop
}

func (e *Engine) commitRecv(r *runs.Run, ev *protocol.Event) bool {
	r.Step++
	e.trace.Push(ev, r.ID, e.k.Duplicate())
	stop := e.search()
	e.trace.Pop()
	r.Step--
	return stop
}

// candidateHaystack folds every basic and encrypted knowledge term into one
// right-associated tuple so unify.IntermUnify can enumerate them (and their
// subterms) as match candidates in a single pass.
func (e *Engine) candidateHaystack() *term.Term {
	var out *term.Term
	add := func(t *term.Term) {
		if out == nil {
			out = t
			return
		}
		out = term.NewTuple(out, t)
	}
	for _, t := range e.k.Basic().Items() {
		add(t)
	}
	for _, t := range e.k.Encrypted().Items() {
		add(t)
	}
	if out == nil {
		out = term.NewConst("#empty-knowledge")
	}
	return out
}

// branchNewRun tries instantiating one fresh run per declared role, each
// as an independent DFS branch, undoing the instantiation (LIFO) before
// trying the next role.
func (e *Engine) branchNewRun() bool {
	for _, proto := range e.protocolsInOrder() {
		for _, roleName := range proto.RoleNames {
			role := proto.Roles[roleName]
			mark := e.tr.Mark()
			run := e.table.Instantiate(proto, role, nil)
			e.stats.Runs++
			stop := e.search()
			e.table.DestroyLast()
			e.tr.Undo(mark)
			_ = run
			if stop {
				return true
			}
		}
	}
	return false
}

func (e *Engine) protocolsInOrder() []*protocol.Protocol {
	out := make([]*protocol.Protocol, 0, len(e.model.ProtocolNames))
	for _, name := range e.model.ProtocolNames {
		out = append(out, e.model.Protocols[name])
	}
	return out
}
