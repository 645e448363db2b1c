package claim

import (
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/runs"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/termlist"
)

// labelOwner records which role sends each label. A label is shared by a
// send and its matching receive in another role; only the sending role is
// recorded, so the lookup names the role whose run a send must belong to.
type labelOwner struct {
	label protocol.Label
	role  *protocol.Role
}

// labelRoles computes the label->role table once per evaluation. It is
// keyed by the label term's value (via term.Equal), not by *protocol.Event
// pointer identity: runs.Instantiate's renameEvent allocates a fresh *Event
// per instantiation, so a trace entry's Event pointer is never the same
// pointer as the Role.Events template it was copied from. The Label term
// itself, however, is carried through renameEvent unchanged, so matching on
// it (rather than on the event pointer) correctly identifies the owning
// role for both template and instantiated events.
func labelRoles(model *protocol.Model) []labelOwner {
	var owner []labelOwner
	for _, r := range model.Roles() {
		for _, e := range r.Events {
			if e.Kind != protocol.Send {
				continue
			}
			owner = append(owner, labelOwner{label: e.Label, role: r})
		}
	}
	return owner
}

// roleForLabel looks up the role owning label in owner, or nil if none
// declares it.
func roleForLabel(owner []labelOwner, label protocol.Label) *protocol.Role {
	for _, o := range owner {
		if term.Equal(o.label, label) {
			return o.role
		}
	}
	return nil
}

// checkLabelMatching implements a non-injective synchronisation / agreement
// scan:
//
//	role→run := {R ↦ r}; label→step := {ℓ ↦ TO-DO | ℓ ∈ preceding}
//	scan the trace from claimStep-1 down to 0:
//	  on a send event with label ℓ ∈ dom(label→step): commit its role to
//	  this run (or verify it matches a prior commitment), then look for a
//	  later receive with the same label forming a matching pair; set GOOD
//	  on success.
//	at index -1: the claim holds iff every entry is GOOD.
//
// requireOrder selects ni-synch's "send earlier than recv" requirement;
// when false (ni-agree and commit are reduced to this same machinery),
// only payload/participant agreement is required.
func checkLabelMatching(model *protocol.Model, tr *runs.Trace, claimStep int, claimRole *protocol.Role, preceding []protocol.Label, requireOrder bool) Outcome {
	labelStatus := termlist.NewMap()
	for _, l := range preceding {
		labelStatus.Set(l, termlist.ToDo)
	}
	roleOwner := labelRoles(model)
	roleRun := map[*protocol.Role]int{claimRole: tr.At(claimStep).Run}

	for idx := claimStep - 1; idx >= 0; idx-- {
		entry := tr.At(idx)
		if entry.Event.Kind != protocol.Send {
			continue
		}
		label := entry.Event.Label
		if labelStatus.Get(label) != termlist.ToDo {
			continue
		}
		role := roleForLabel(roleOwner, label)
		if committed, ok := roleRun[role]; ok {
			if committed != entry.Run {
				continue // this send belongs to the wrong run instance
			}
		} else {
			roleRun[role] = entry.Run
		}
		if findMatchingReceive(tr, idx, claimStep, entry, requireOrder) {
			labelStatus.Set(label, termlist.Good)
		}
	}

	if labelStatus.AllGood() {
		return Outcome{Verdict: Ok}
	}
	return Outcome{Verdict: Violated}
}

// findMatchingReceive looks (within (sendIdx, upperBound)) for a receive
// event with the same label, from, to and message as the send at sendIdx.
func findMatchingReceive(tr *runs.Trace, sendIdx, upperBound int, send runs.TraceEntry, requireOrder bool) bool {
	lo, hi := 0, tr.Len()
	if requireOrder {
		lo = sendIdx + 1
	}
	if upperBound < hi {
		hi = upperBound
	}
	for j := lo; j < hi; j++ {
		if j == sendIdx {
			continue
		}
		recv := tr.At(j)
		if recv.Event.Kind != protocol.Recv {
			continue
		}
		if !term.Equal(recv.Event.Label, send.Event.Label) {
			continue
		}
		if matchingPair(send.Event, recv.Event) {
			return true
		}
	}
	return false
}

func matchingPair(send, recv *protocol.Event) bool {
	return termEqualOrNil(send.Message, recv.Message) &&
		termEqualOrNil(send.From, recv.From) &&
		termEqualOrNil(send.To, recv.To)
}

func termEqualOrNil(a, b *term.Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return term.Equal(a, b)
}

// checkAnyPartner implements the degenerate aliveness/weak-agreement case:
// any matching partner run suffices, with no payload or ordering
// requirement beyond a same-labelled event having executed somewhere
// earlier in the trace.
func checkAnyPartner(model *protocol.Model, tr *runs.Trace, claimStep int, preceding []protocol.Label) Outcome {
	for _, label := range preceding {
		found := false
		for idx := 0; idx < claimStep; idx++ {
			ev := tr.At(idx).Event
			if term.Equal(ev.Label, label) {
				found = true
				break
			}
		}
		if !found {
			return Outcome{Verdict: Violated}
		}
	}
	return Outcome{Verdict: Ok}
}
