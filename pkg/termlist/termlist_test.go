package termlist_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/termlist"
)

func TestAddUniqueDeduplicatesByEquality(t *testing.T) {
	l := termlist.New()
	a := term.NewConst("a")
	require.True(t, l.AddUnique(a))
	require.False(t, l.AddUnique(term.NewConst("a")))
	require.Equal(t, 1, l.Len())
}

func TestVariablesCollectsAllDistinctVars(t *testing.T) {
	x := term.NewVar("X", 0, nil)
	y := term.NewVar("Y", 0, nil)
	msg := term.NewTuple(x, term.NewEncrypt(y, x))
	vars := termlist.Variables(msg)
	require.Equal(t, 2, vars.Len())
}

func TestMapSentinels(t *testing.T) {
	m := termlist.NewMap()
	l1 := term.NewConst("l1")
	require.Equal(t, termlist.NotInDomain, m.Get(l1))
	m.Set(l1, termlist.ToDo)
	require.Equal(t, termlist.ToDo, m.Get(l1))
	require.False(t, m.AllGood())
	m.Set(l1, termlist.Good)
	require.True(t, m.AllGood())
}

func TestRenameSubstitutesLeaves(t *testing.T) {
	roleVar := term.NewConst("RoleLocal")
	runLocal := term.NewLocal("n1", 3)
	from := termlist.FromSlice([]*term.Term{roleVar})
	to := termlist.FromSlice([]*term.Term{runLocal})
	msg := term.NewEncrypt(roleVar, term.NewConst("pk"))
	renamed := termlist.Rename(msg, from, to)
	require.True(t, term.Equal(renamed.Operand(), runLocal))
}
