package backward_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascremers/scyther-sub001/pkg/engine/backward"
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/unify"
)

// buildPingPong builds a two-role ping-pong: I sends a public ping to R, R
// receives it and sends a public pong back. Every message is already in
// the intruder's initial knowledge, so the only run needed is the target
// protocol's own roles with no forged sends.
func buildPingPong() *protocol.Model {
	b := protocol.NewBuilder()
	i := term.NewVar("I", term.GlobalRun, []string{"agent"})
	r := term.NewVar("R", term.GlobalRun, []string{"agent"})
	ping := term.NewConst("ping")
	pong := term.NewConst("pong")

	b.Protocol("pp").Role("I").RoleVar(i).RoleVar(r).
		Send(term.NewConst("l1"), i, r, ping).
		Recv(term.NewConst("l2"), r, i, pong)

	b.Protocol("pp").Role("R").RoleVar(i).RoleVar(r).
		Recv(term.NewConst("l1"), i, r, ping).
		Send(term.NewConst("l2"), r, i, pong)

	b.InitialKnowledge(ping)
	b.InitialKnowledge(pong)
	return b.Build()
}

func TestBackwardEngineResolvesGoalsAgainstExistingSends(t *testing.T) {
	model := buildPingPong()
	eng := backward.New(model, backward.Options{Mode: unify.Untyped, MaxRuns: 4}, protocol.DefaultTypeOf, nil)

	attacks, stats := eng.Run("pp")
	require.Empty(t, attacks, "a protocol with no claims has nothing to violate")
	require.Greater(t, stats.States, 0)
}

// buildSecretUnderCompromise builds a single role claiming secrecy of a
// nonce that is sent unencrypted to the intruder directly. The role has no
// receive, so no goal is ever bound: the violation is found by the claim
// check on the target run's own trace.
func buildSecretUnderCompromise() *protocol.Model {
	b := protocol.NewBuilder()
	i := term.NewVar("I", term.GlobalRun, []string{"agent"})
	r := term.NewVar("R", term.GlobalRun, []string{"agent"})
	n := term.NewLocal("n", term.GlobalRun)

	b.Protocol("leak").Role("I").RoleVar(i).RoleVar(r).Local(n).
		Send(term.NewConst("l1"), i, r, n).
		SecretClaim(term.NewConst("l2"), i, n)
	return b.Build()
}

func TestBackwardEngineFindsDirectLeak(t *testing.T) {
	model := buildSecretUnderCompromise()
	eng := backward.New(model, backward.Options{Mode: unify.Untyped, MaxRuns: 2}, protocol.DefaultTypeOf, nil)

	attacks, _ := eng.Run("leak")
	require.NotEmpty(t, attacks, "a nonce sent in the clear must be found secret-violating")
}
