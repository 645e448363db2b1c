// Package claim implements the claim evaluator: secrecy (reachability in
// current knowledge), the label-matching backward scan shared by
// non-injective synchronisation, non-injective agreement and commit, and a
// simpler any-partner check for aliveness, weak agreement and running.
package claim

import (
	"github.com/cascremers/scyther-sub001/pkg/knowledge"
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/runs"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/termlist"
)

// Verdict is the three-way result of evaluating a claim: a claim at a given
// step is either ok, violated (with a witness), or skipped.
type Verdict int

const (
	Ok Verdict = iota
	Violated
	Skipped
)

func (v Verdict) String() string {
	switch v {
	case Ok:
		return "ok"
	case Violated:
		return "violated"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the result of evaluating one claim occurrence.
type Outcome struct {
	Verdict Verdict
	Witness []*term.Term // leaves of the claimed secret found in knowledge, for ClaimSecret
}

// CheckSecrecy implements the secrecy rule: t being derivable from k
// (under current bindings) violates the claim; the witness is the list of
// t's leaves that are individually present in k.
func CheckSecrecy(k *knowledge.Set, t *term.Term) Outcome {
	if !k.Contains(t) {
		return Outcome{Verdict: Ok}
	}
	var witness []*term.Term
	for _, l := range termlist.Basics(t).Items() {
		if k.Contains(l) {
			witness = append(witness, l)
		}
	}
	return Outcome{Verdict: Violated, Witness: witness}
}

// Evaluate dispatches a claim event at trace step claimStep (owned by the
// run recorded in that trace entry) to the right check, honouring the "skipped" rule: a claim is
// vacuously discharged when its owning agent is compromised.
func Evaluate(model *protocol.Model, tr *runs.Trace, table *runs.Table, claimStep int) Outcome {
	entry := tr.At(claimStep)
	ev := entry.Event
	run := table.At(entry.Run)
	if owner := ev.From; owner != nil && model.IsUntrusted(owner) {
		return Outcome{Verdict: Skipped}
	}

	switch ev.ClaimKind {
	case protocol.ClaimSecret:
		return CheckSecrecy(entry.Knowledge, ev.ClaimTerm)
	case protocol.ClaimNiSynch:
		return checkLabelMatching(model, tr, claimStep, run.Role, ev.PrecedingLabels, true)
	case protocol.ClaimNiAgree:
		return checkLabelMatching(model, tr, claimStep, run.Role, ev.PrecedingLabels, false)
	case protocol.ClaimCommit:
		return checkLabelMatching(model, tr, claimStep, run.Role, ev.PrecedingLabels, false)
	case protocol.ClaimRunning, protocol.ClaimAlive, protocol.ClaimWeakAgree:
		return checkAnyPartner(model, tr, claimStep, ev.PrecedingLabels)
	default:
		return Outcome{Verdict: Ok}
	}
}
