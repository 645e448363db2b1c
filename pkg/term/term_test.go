package term_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cascremers/scyther-sub001/internal/trail"
	"github.com/cascremers/scyther-sub001/pkg/term"
)

func TestTupleNormalizesRightAssociated(t *testing.T) {
	a, b, c := term.NewConst("a"), term.NewConst("b"), term.NewConst("c")
	left := term.NewTuple(term.NewTuple(a, b), c)
	right := term.NewTuple(a, term.NewTuple(b, c))
	require.True(t, term.Equal(left, right))
	require.Equal(t, term.KindConst, left.Left().Kind())
}

func TestDerefFollowsBindings(t *testing.T) {
	tr := trail.New()
	v := term.NewVar("X", 0, nil)
	c := term.NewConst("Alice")
	mark := tr.Mark()
	v.Bind(c, tr)
	require.True(t, term.Equal(term.Deref(v), c))
	tr.Undo(mark)
	require.False(t, v.IsBound())
}

func TestSameLeafIdentity(t *testing.T) {
	a1 := term.NewConst("a")
	a2 := term.NewConst("a")
	require.True(t, term.SameLeaf(a1, a2))
	b := term.NewLocal("a", 0)
	require.False(t, term.SameLeaf(a1, b), "different kind must not be the same leaf")
}

func TestInverseKeyPublicFunctionIsOneWay(t *testing.T) {
	inv := term.NewInverseMap()
	h := term.NewConst("hash")
	inv.MarkPublic("hash")
	require.True(t, term.Equal(inv.InverseKey(h), h))
}

func TestInverseKeyUndefinedIsHidden(t *testing.T) {
	inv := term.NewInverseMap()
	k := term.NewConst("k")
	require.True(t, term.IsHidden(inv.InverseKey(k)))
}

// TestInverseInvolution checks that inverse(inverse(k)) == k
// for keys with a defined inverse, across randomly generated key-pair tables.
func TestInverseInvolution(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		inv := term.NewInverseMap()
		name := rapid.StringMatching(`[a-z][a-z0-9]{0,5}`).Draw(rt, "name")
		pk := term.NewConst("pk_" + name)
		sk := term.NewConst("sk_" + name)
		inv.AddPair(pk, sk)
		require.True(rt, term.Equal(inv.InverseKey(inv.InverseKey(pk)), pk))
		require.True(rt, term.Equal(inv.InverseKey(inv.InverseKey(sk)), sk))
	})
}

// TestNormalizeIdempotent checks that Normalize is idempotent over randomly
// shaped terms built from a small alphabet of constants.
func TestNormalizeIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tm := genTerm(rt, 4)
		n1 := term.Normalize(tm)
		n2 := term.Normalize(n1)
		require.True(rt, term.Equal(n1, n2))
		require.True(rt, term.Equal(tm, n1) == term.Equal(term.Normalize(tm), term.Normalize(n1)))
	})
}

func genTerm(rt *rapid.T, depth int) *term.Term {
	if depth <= 0 {
		return term.NewConst(rapid.StringMatching(`[a-z][a-z0-9]{0,3}`).Draw(rt, "leaf"))
	}
	switch rapid.IntRange(0, 2).Draw(rt, "shape") {
	case 0:
		return term.NewConst(rapid.StringMatching(`[a-z][a-z0-9]{0,3}`).Draw(rt, "leaf"))
	case 1:
		return term.NewEncrypt(genTerm(rt, depth-1), genTerm(rt, depth-1))
	default:
		return term.NewTuple(genTerm(rt, depth-1), genTerm(rt, depth-1))
	}
}
