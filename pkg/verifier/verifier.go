// Package verifier implements the top-level verifier abstraction: a
// single init(protocols, options) -> run() -> verdict surface over
// whichever engine Options selects, in place of compile-time engine
// switches.
package verifier

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cascremers/scyther-sub001/pkg/engine/backward"
	"github.com/cascremers/scyther-sub001/pkg/engine/forward"
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/runs"
	"github.com/cascremers/scyther-sub001/pkg/unify"
)

// EngineKind selects which search engine drives a Verify call: the two
// engines are distinct implementations of a common verifier abstraction.
type EngineKind int

const (
	// EngineForward is the DFS interleaving search and is the default
	// (the zero value of Options.Engine).
	EngineForward EngineKind = iota
	// EngineBackward is the goal-binding search.
	EngineBackward
)

// Verdict is the three-way search outcome, decoupled from the process exit
// code itself (cmd/scyther-core maps it).
type Verdict int

const (
	// NoAttack: the search completed and every claim held.
	NoAttack Verdict = iota
	// NoClaims: the protocol declared no claims to check (exit code 2).
	NoClaims
	// AttackFound: at least one claim was violated (exit code 3).
	AttackFound
)

func (v Verdict) String() string {
	switch v {
	case NoAttack:
		return "no-attack"
	case NoClaims:
		return "no-claims"
	case AttackFound:
		return "attack-found"
	default:
		return "unknown"
	}
}

// Options is the configuration record of the CLI switches, owned by the
// core (Verify does not validate it; zero bounds fall back to defaults);
// cmd/scyther-core is the only place that
// parses flags into one of these — no flag-parsing library is imported
// inside the core packages.
type Options struct {
	Engine            EngineKind
	Mode              unify.Mode
	PruneLevel        int
	MaxTraceLength    int
	MaxRuns           int
	IncrementalRuns   bool
	IncrementalTraces bool
	TargetProtocol    string // required when Engine == EngineBackward
	Logger            *zap.Logger
}

// Attack is the engine-agnostic witness of one violated claim.
type Attack struct {
	ClaimStep int
	Trace     []runs.TraceEntry
}

// Result is the outcome of one Verify call. SearchID identifies this
// particular end-to-end search in logs independent of the small integer
// run-ids leaves carry internally (those stay scoped to one run's
// lifetime and are reused across searches).
type Result struct {
	SearchID string
	Verdict  Verdict
	Attacks  []Attack
	States   int
	Runs     int
}

// Verify runs the selected engine against model under opts and classifies
// the outcome into a Verdict.
func Verify(model *protocol.Model, opts Options) Result {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	searchID := uuid.New().String()
	log = log.With(zap.String("search_id", searchID))

	if !hasAnyClaim(model) {
		log.Info("no claims declared; nothing to verify")
		return Result{SearchID: searchID, Verdict: NoClaims}
	}

	var result Result
	if opts.IncrementalRuns {
		result = verifyIncrementalRuns(model, opts, log)
	} else {
		result = verifyOnce(model, opts, log)
	}
	result.SearchID = searchID
	return result
}

func verifyOnce(model *protocol.Model, opts Options, log *zap.Logger) Result {
	switch opts.Engine {
	case EngineBackward:
		eng := backward.New(model, backward.Options{Mode: opts.Mode, MaxRuns: maxRunsOrDefault(opts.MaxRuns)}, protocol.DefaultTypeOf, log)
		attacks, stats := eng.Run(opts.TargetProtocol)
		return classify(toAttacksBackward(attacks), stats.States, stats.Runs)
	default:
		fopts := forward.Options{
			Mode:              opts.Mode,
			MaxTraceLength:    maxTraceLengthOrDefault(opts.MaxTraceLength),
			MaxRuns:           maxRunsOrDefault(opts.MaxRuns),
			PruneLevel:        opts.PruneLevel,
			StopAtFirstAttack: opts.PruneLevel >= 1,
		}
		eng := forward.New(model, fopts, protocol.DefaultTypeOf, log)
		attacks, stats := eng.Run()
		return classify(toAttacksForward(attacks), stats.States, stats.Runs)
	}
}

// verifyIncrementalRuns implements the "incremental runs" switch:
// iterate the run bound from 1 upward, stopping at the first bound that
// yields an attack (or at opts.MaxRuns, whichever comes first). Every
// iteration shares the caller's search_id-scoped logger: they are all part
// of the same logical search from an observer's perspective.
func verifyIncrementalRuns(model *protocol.Model, opts Options, log *zap.Logger) Result {
	ceiling := maxRunsOrDefault(opts.MaxRuns)
	var last Result
	for bound := 1; bound <= ceiling; bound++ {
		step := opts
		step.IncrementalRuns = false
		step.MaxRuns = bound
		last = verifyOnce(model, step, log)
		if last.Verdict == AttackFound {
			return last
		}
	}
	return last
}

func maxRunsOrDefault(n int) int {
	if n <= 0 {
		return 3
	}
	return n
}

func maxTraceLengthOrDefault(n int) int {
	if n <= 0 {
		return 30
	}
	return n
}

func hasAnyClaim(model *protocol.Model) bool {
	return len(model.EventsOfKind(protocol.Claim)) > 0
}

func classify(attacks []Attack, states, runsCount int) Result {
	if len(attacks) > 0 {
		return Result{Verdict: AttackFound, Attacks: attacks, States: states, Runs: runsCount}
	}
	return Result{Verdict: NoAttack, States: states, Runs: runsCount}
}

func toAttacksForward(in []forward.Attack) []Attack {
	out := make([]Attack, len(in))
	for i, a := range in {
		out[i] = Attack{ClaimStep: a.ClaimStep, Trace: a.Trace}
	}
	return out
}

func toAttacksBackward(in []backward.Attack) []Attack {
	out := make([]Attack, len(in))
	for i, a := range in {
		out[i] = Attack{ClaimStep: a.ClaimStep, Trace: a.Trace}
	}
	return out
}
