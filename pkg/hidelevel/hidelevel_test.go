package hidelevel_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascremers/scyther-sub001/pkg/hidelevel"
	"github.com/cascremers/scyther-sub001/pkg/protocol"
	"github.com/cascremers/scyther-sub001/pkg/term"
)

// buildChainModel constructs S6's long encryption chain
// {{...{c}k1}k2...}kn with no inverse ever registered, exercised as a send
// message so the oracle sees it.
func buildChainModel(n int) (*protocol.Model, *term.Term) {
	b := protocol.NewBuilder()
	c := term.NewConst("c")
	inner := c
	for i := 0; i < n; i++ {
		inner = term.NewEncrypt(inner, term.NewConst(fmt.Sprintf("k%d", i)))
	}
	i := term.NewVar("I", 0, []string{"agent"})
	r := term.NewVar("R", 0, []string{"agent"})
	b.Protocol("chain").Role("I").RoleVar(i).RoleVar(r).
		Send(term.NewConst("l1"), i, r, inner)
	m := b.Build()
	return m, c
}

func TestImpossibleShortCircuitsDeeplyHiddenConstant(t *testing.T) {
	m, c := buildChainModel(5)
	o := hidelevel.Build(m)
	require.True(t, hidelevel.Impossible(o, c, 0), "a constant under 5 encryption layers must be impossible at budget 0")
}

func TestReachableConstantIsNotImpossible(t *testing.T) {
	b := protocol.NewBuilder()
	pub := term.NewConst("pub")
	i := term.NewVar("I", 0, []string{"agent"})
	r := term.NewVar("R", 0, []string{"agent"})
	b.Protocol("p").Role("I").RoleVar(i).RoleVar(r).
		Send(term.NewConst("l1"), i, r, pub)
	m := b.Build()

	o := hidelevel.Build(m)
	require.False(t, hidelevel.Impossible(o, pub, 0))
	require.False(t, hidelevel.Interesting(o, pub))
}

func TestInterestingDetectsHiddenConstant(t *testing.T) {
	m, c := buildChainModel(2)
	o := hidelevel.Build(m)
	require.True(t, hidelevel.Interesting(o, c))
}
