package forward_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascremers/scyther-sub001/pkg/engine/forward"
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/unify"
)

// buildS1 builds a single role I that sends {n}pk (pk a constant key) then
// claims secrecy of n, with (pk, sk) registered as inverse keys. I and R
// stay role variables; trustedR only chooses which agent names seed the
// initial knowledge (and, when false, marks Eve untrusted).
func buildS1(trustedR bool) *protocol.Model {
	b := protocol.NewBuilder()
	i := term.NewVar("I", term.GlobalRun, []string{"agent"})
	r := term.NewVar("R", term.GlobalRun, []string{"agent"})
	n := term.NewLocal("n", term.GlobalRun)
	pk := term.NewConst("pk")
	sk := term.NewConst("sk")
	b.InverseKeyPair(pk, sk)
	b.PublicFunction("pk")

	b.Protocol("s1").Role("I").RoleVar(i).RoleVar(r).Local(n).
		Send(term.NewConst("l1"), i, r, term.NewEncrypt(n, pk)).
		SecretClaim(term.NewConst("l2"), i, n)

	if trustedR {
		b.InitialKnowledge(term.NewConst("Alice"))
		b.InitialKnowledge(term.NewConst("Bob"))
	} else {
		b.Untrusted(term.NewConst("Eve"))
		b.InitialKnowledge(term.NewConst("Alice"))
		b.InitialKnowledge(term.NewConst("Eve"))
	}
	return b.Build()
}

func TestS1TrivialSecretNoAttack(t *testing.T) {
	model := buildS1(true)
	eng := forward.New(model, forward.Options{
		Mode:           unify.Untyped,
		MaxTraceLength: 10,
		MaxRuns:        1,
		PruneLevel:     2,
	}, protocol.DefaultTypeOf, nil)

	attacks, stats := eng.Run()
	require.Empty(t, attacks, "a freshly-generated local encrypted under an uncompromised key must stay secret")
	require.Greater(t, stats.States, 0)
}

func TestForwardEngineRespectsMaxRunsBound(t *testing.T) {
	model := buildS1(true)
	eng := forward.New(model, forward.Options{
		Mode:           unify.Untyped,
		MaxTraceLength: 5,
		MaxRuns:        0,
		PruneLevel:     2,
	}, protocol.DefaultTypeOf, nil)

	attacks, _ := eng.Run()
	require.Empty(t, attacks, "with zero runs permitted nothing can ever execute, let alone violate a claim")
}
