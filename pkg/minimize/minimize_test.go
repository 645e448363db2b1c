package minimize_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascremers/scyther-sub001/pkg/knowledge"
	"github.com/cascremers/scyther-sub001/pkg/minimize"
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/runs"
	"github.com/cascremers/scyther-sub001/pkg/term"
)

// buildTwoRunModel builds a claiming run that sends a secret and claims its
// secrecy, plus a second, unrelated run whose send carries a term the claim
// never needs: the minimiser's step 2b should mark that unrelated run's
// send RED, since dropping it leaves the claim's required term derivable.
func buildTwoRunModel() (*protocol.Model, *protocol.Role, *protocol.Role) {
	b := protocol.NewBuilder()
	i := term.NewVar("I", 0, []string{"agent"})
	r := term.NewVar("R", 0, []string{"agent"})
	secret := term.NewConst("n")
	b.Protocol("p").Role("I").RoleVar(i).RoleVar(r).
		Send(term.NewConst("l1"), i, r, secret).
		SecretClaim(term.NewConst("l2"), i, secret)

	i2 := term.NewVar("I", 0, []string{"agent"})
	r2 := term.NewVar("R", 0, []string{"agent"})
	noise := term.NewConst("noise")
	b.Protocol("p").Role("Bystander").RoleVar(i2).RoleVar(r2).
		Send(term.NewConst("l3"), i2, r2, noise)

	m := b.Build()
	return m, m.Protocols["p"].Roles["I"], m.Protocols["p"].Roles["Bystander"]
}

func TestMinimizeDropsUnrelatedRun(t *testing.T) {
	model, claimRole, bystanderRole := buildTwoRunModel()
	inv := term.NewInverseMap()
	table := runs.NewTable()
	presub := map[string]*term.Term{"I": term.NewConst("Alice"), "R": term.NewConst("Bob")}

	bystander := table.Instantiate(model.Protocols["p"], bystanderRole, presub)
	run := table.Instantiate(model.Protocols["p"], claimRole, presub)

	initial := knowledge.New(inv)
	tr := runs.NewTrace()
	k := initial.Duplicate()

	k.Add(bystander.Events[0].Message)
	tr.Push(bystander.Events[0], bystander.ID, k.Duplicate())

	k.Add(run.Events[0].Message)
	tr.Push(run.Events[0], run.ID, k.Duplicate())
	tr.Push(run.Events[1], run.ID, k.Duplicate())

	secret := run.Events[0].Message
	claimStep := 2

	result := minimize.Minimize(model, tr, table, initial, claimStep, []*term.Term{secret})

	require.Equal(t, minimize.OKE, result.Statuses[claimStep])
	require.Equal(t, minimize.OKE, result.Statuses[1], "the claiming run's own send must be kept")
	require.Equal(t, minimize.RED, result.Statuses[0], "the unrelated bystander run's send must be minimised away")
}
