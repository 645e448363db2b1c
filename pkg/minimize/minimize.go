// Package minimize implements an attack minimiser: given a violating trace
// and the index of the violated claim, it marks every trace slot
// UNK / OKE / RED / TOD and returns the OKE sub-sequence as the shortest
// witness.
package minimize

import (
	"github.com/cascremers/scyther-sub001/pkg/knowledge"
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/runs"
	"github.com/cascremers/scyther-sub001/pkg/term"
)

// Status is one trace slot's classification during minimisation.
type Status int

const (
	UNK Status = iota // not yet classified
	OKE               // kept: causally required
	RED               // provisionally redundant, confirmed droppable
	TOD               // to-do: must be justified by an earlier enabling event
)

func (s Status) String() string {
	switch s {
	case UNK:
		return "unk"
	case OKE:
		return "oke"
	case RED:
		return "red"
	case TOD:
		return "tod"
	default:
		return "?"
	}
}

// Result is the outcome of minimising one violating trace.
type Result struct {
	Statuses []Status
	Witness  []int // trace indices kept (status OKE), in trace order
}

// Minimize runs a mark-and-rebuild algorithm against tr, given the index of
// the violated claim event and the list of terms the claim requires to
// remain derivable (for ClaimSecret, the claimed secret's leaves; for
// label-matching claims, the terms carried by the matched send/recv pairs).
func Minimize(model *protocol.Model, tr *runs.Trace, table *runs.Table, initial *knowledge.Set, violatedClaim int, required []*term.Term) Result {
	n := tr.Len()
	status := make([]Status, n)

	status[violatedClaim] = OKE
	markPrecedingTOD(tr, status, violatedClaim)

	for hasTOD(status) || hasUNK(status) {
		if progressed := resolveOneTOD(tr, status); progressed {
			continue
		}
		if !resolveOneUNK(tr, status, initial, required) {
			break // no further progress possible; remaining UNKs default to RED below
		}
	}

	for i, s := range status {
		if s == UNK {
			status[i] = RED
		}
	}

	var witness []int
	for i, s := range status {
		if s == OKE {
			witness = append(witness, i)
		}
	}
	return Result{Statuses: status, Witness: witness}
}

// markPrecedingTOD implements rule 1: walking backwards from index in its
// owning run, mark every earlier event of the same run TOD if it was UNK,
// OKE if it is itself a send or claim (sends/claims are always causally
// load-bearing; only receives need justification).
func markPrecedingTOD(tr *runs.Trace, status []Status, index int) {
	run := tr.At(index).Run
	for i := index - 1; i >= 0; i-- {
		entry := tr.At(i)
		if entry.Run != run {
			continue
		}
		if status[i] != UNK {
			continue
		}
		switch entry.Event.Kind {
		case protocol.Send, protocol.Claim:
			status[i] = OKE
		default:
			status[i] = TOD
		}
	}
}

func hasTOD(status []Status) bool {
	for _, s := range status {
		if s == TOD {
			return true
		}
	}
	return false
}

func hasUNK(status []Status) bool {
	for _, s := range status {
		if s == UNK {
			return true
		}
	}
	return false
}

// resolveOneTOD implements step 2a: for one TOD receive, find the latest
// earlier step at which its message was already in the knowledge snapshot,
// mark that step OKE, and mark everything before it in its run TOD/OKE per
// rule 1. Returns false if no TOD receive could be resolved this round.
func resolveOneTOD(tr *runs.Trace, status []Status) bool {
	for i := len(status) - 1; i >= 0; i-- {
		if status[i] != TOD {
			continue
		}
		entry := tr.At(i)
		if entry.Event.Kind != protocol.Recv {
			// A TOD non-receive (shouldn't normally occur) is trivially
			// satisfied by its own presence.
			status[i] = OKE
			markPrecedingTOD(tr, status, i)
			return true
		}
		enabler := latestEnablingStep(tr, i, entry.Event.Message)
		if enabler < 0 {
			// No recorded snapshot before this receive contains its
			// message; nothing earlier is marked, but this receive is
			// still required.
			status[i] = OKE
			continue
		}
		status[enabler] = OKE
		markPrecedingTOD(tr, status, enabler)
		return true
	}
	return false
}

// latestEnablingStep returns the latest index j < before such that msg was
// already present in the knowledge snapshot recorded at j, or -1 if no
// snapshot before that index contains msg (or none was recorded).
func latestEnablingStep(tr *runs.Trace, before int, msg *term.Term) int {
	for j := before - 1; j >= 0; j-- {
		if tr.At(j).Knowledge != nil && tr.At(j).Knowledge.Contains(msg) {
			return j
		}
	}
	return -1
}

// resolveOneUNK implements step 2b: take the latest UNK, mark it RED
// provisionally, rebuild knowledge without it, and check every required
// term is still derivable. If the rebuild succeeds the event stays RED;
// otherwise it is promoted back to TOD (it was necessary after all).
func resolveOneUNK(tr *runs.Trace, status []Status, initial *knowledge.Set, required []*term.Term) bool {
	for i := len(status) - 1; i >= 0; i-- {
		if status[i] != UNK {
			continue
		}
		status[i] = RED
		if Rebuild(tr, status, initial, required) < 0 {
			continue // rebuild succeeded without this event; stays RED
		}
		status[i] = TOD
		markPrecedingTOD(tr, status, i)
		return true
	}
	return false
}

// Rebuild is a single linear pass that
// replays every non-RED send into a fresh knowledge set (seeded from
// initial) and verifies every term in required is derivable at the end.
// It returns -1 on success, or the trace length on failure (some required
// term is still missing after the replay).
func Rebuild(tr *runs.Trace, status []Status, initial *knowledge.Set, required []*term.Term) int {
	k := initial.Duplicate()
	for i := 0; i < tr.Len(); i++ {
		if status[i] == RED {
			continue
		}
		ev := tr.At(i).Event
		if ev.Kind == protocol.Send && ev.Message != nil {
			k.Add(ev.Message)
		}
	}
	for _, t := range required {
		if !k.Contains(t) {
			return tr.Len()
		}
	}
	return -1
}
