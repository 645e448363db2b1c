package unify_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cascremers/scyther-sub001/internal/trail"
	"github.com/cascremers/scyther-sub001/pkg/term"
	"github.com/cascremers/scyther-sub001/pkg/unify"
)

func noTypes(*term.Term) string { return "" }

func TestUnifyVarWithConstant(t *testing.T) {
	tr := trail.New()
	v := term.NewVar("X", 0, nil)
	c := term.NewConst("Alice")
	res := unify.MGU(v, c, unify.Untyped, noTypes, tr)
	require.True(t, res.Ok)
	require.True(t, term.Equal(v, c))
	tr.Undo(tr.Mark())
}

func TestUnifyOccursCheckFails(t *testing.T) {
	tr := trail.New()
	v := term.NewVar("X", 0, nil)
	cyc := term.NewTuple(v, term.NewConst("a"))
	res := unify.MGU(v, cyc, unify.Untyped, noTypes, tr)
	require.False(t, res.Ok)
}

func TestBasicModeRejectsCompoundBinding(t *testing.T) {
	tr := trail.New()
	v := term.NewVar("X", 0, nil)
	compound := term.NewTuple(term.NewConst("a"), term.NewConst("b"))
	res := unify.MGU(v, compound, unify.Basic, noTypes, tr)
	require.False(t, res.Ok)
}

func TestTypedModeChecksDeclaredTypes(t *testing.T) {
	tr := trail.New()
	v := term.NewVar("X", 0, []string{"agent"})
	typeOf := func(t *term.Term) string {
		if t.Symbol() == "Alice" {
			return "agent"
		}
		return "nonce"
	}
	agent := term.NewConst("Alice")
	nonce := term.NewConst("N1")

	res := unify.MGU(v, agent, unify.Typed, typeOf, tr)
	require.True(t, res.Ok)
	tr.Undo(tr.Mark() - len(res.Bound))

	res2 := unify.MGU(v, nonce, unify.Typed, typeOf, tr)
	require.False(t, res2.Ok)
}

func TestBacktrackCleanlinessAfterFailedUnification(t *testing.T) {
	tr := trail.New()
	before := tr.Len()
	v1 := term.NewVar("X", 0, nil)
	v2 := term.NewVar("Y", 0, nil)
	mark := tr.Mark()
	unify.MGU(term.NewTuple(v1, v1), term.NewTuple(term.NewConst("a"), term.NewConst("b")), unify.Untyped, noTypes, tr)
	tr.Undo(mark)
	_ = v2
	require.Equal(t, before, tr.Len())
}

func TestIntermUnifyFindsEachSubterm(t *testing.T) {
	tr := trail.New()
	n := term.NewConst("n")
	msg := term.NewTuple(n, term.NewEncrypt(n, term.NewConst("k")))
	v := term.NewVar("X", 0, nil)

	found := 0
	unify.IntermUnify(v, msg, unify.Untyped, noTypes, tr, func(res unify.Result, candidate *term.Term) bool {
		found++
		return true
	})
	require.Equal(t, len(unify.Subterms(msg)), found)
	require.Equal(t, 0, tr.Len(), "IntermUnify must leave the trail clean")
}

// TestMGUCorrectness checks that apply(sigma, s) == apply(sigma, t) whenever
// MGU(s, t) succeeds, for randomly generated term pairs built by unifying a
// variable-shaped pattern against a ground term.
func TestMGUCorrectness(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tr := trail.New()
		ground := genGround(rt, 3)
		pattern, vars := genPattern(rt, ground)
		mark := tr.Mark()
		res := unify.MGU(pattern, ground, unify.Untyped, noTypes, tr)
		if res.Ok {
			require.True(rt, term.Equal(pattern, ground))
		}
		tr.Undo(mark)
		_ = vars
	})
}

func genGround(rt *rapid.T, depth int) *term.Term {
	if depth <= 0 || rapid.Bool().Draw(rt, "leaf") {
		return term.NewConst(rapid.StringMatching(`[a-z][a-z0-9]{0,3}`).Draw(rt, "sym"))
	}
	return term.NewTuple(genGround(rt, depth-1), genGround(rt, depth-1))
}

// genPattern rebuilds ground but replaces some leaves with fresh variables,
// returning the pattern and the variables it introduced.
func genPattern(rt *rapid.T, ground *term.Term) (*term.Term, []*term.Term) {
	var vars []*term.Term
	var walk func(*term.Term) *term.Term
	walk = func(t *term.Term) *term.Term {
		switch t.Kind() {
		case term.KindTuple:
			return term.NewTuple(walk(t.Left()), walk(t.Right()))
		default:
			if rapid.Bool().Draw(rt, "varHere") {
				v := term.NewVar("V", 0, nil)
				vars = append(vars, v)
				return v
			}
			return t
		}
	}
	return walk(ground), vars
}
