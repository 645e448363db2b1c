package knowledge_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cascremers/scyther-sub001/pkg/knowledge"
	"github.com/cascremers/scyther-sub001/pkg/term"
)

func newInv() *term.InverseMap {
	inv := term.NewInverseMap()
	inv.AddPair(term.NewConst("pk"), term.NewConst("sk"))
	inv.MarkPublic("hash")
	return inv
}

func TestAddTupleRecursesIntoComponents(t *testing.T) {
	k := knowledge.New(newInv())
	a, b := term.NewConst("a"), term.NewConst("b")
	require.True(t, k.Add(term.NewTuple(a, b)))
	require.True(t, k.Contains(a))
	require.True(t, k.Contains(b))
}

func TestEncryptedStaysOpaqueWithoutKey(t *testing.T) {
	k := knowledge.New(newInv())
	secret := term.NewConst("m")
	k.Add(term.NewEncrypt(secret, term.NewConst("pk")))
	require.False(t, k.Contains(secret))
}

func TestDecryptionUnlocksOnKeyArrival(t *testing.T) {
	k := knowledge.New(newInv())
	secret := term.NewConst("m")
	k.Add(term.NewEncrypt(secret, term.NewConst("pk")))
	require.False(t, k.Contains(secret))
	k.Add(term.NewConst("sk"))
	require.True(t, k.Contains(secret))
}

func TestChainedDecryptionUnlocksTransitively(t *testing.T) {
	secret := term.NewConst("m")
	innerKey := term.NewConst("k2")
	// k2 is a symmetric key: registered as its own inverse.
	inv := newInv()
	inv.AddPair(innerKey, innerKey)
	k := knowledge.New(inv)
	k.Add(term.NewEncrypt(secret, innerKey))
	k.Add(term.NewEncrypt(innerKey, term.NewConst("pk")))
	require.False(t, k.Contains(secret))
	k.Add(term.NewConst("sk"))
	require.True(t, k.Contains(innerKey))
	require.True(t, k.Contains(secret))
}

func TestConstructedEncryptionDerivableFromParts(t *testing.T) {
	k := knowledge.New(newInv())
	m, key := term.NewConst("m"), term.NewConst("k")
	k.Add(m)
	k.Add(key)
	require.True(t, k.Contains(term.NewEncrypt(m, key)))
}

// TestEmptyKnowledgeHoldsFreshSecret checks a boundary case: with empty
// initial knowledge, any secrecy claim over a fresh nonce holds.
func TestEmptyKnowledgeHoldsFreshSecret(t *testing.T) {
	k := knowledge.New(newInv())
	nonce := term.NewLocal("n1", 0)
	require.False(t, k.Contains(nonce))
}

// TestMinimality checks that after any finite sequence of Add calls, no
// term in basic ∪ encrypted is inferable from the rest.
func TestMinimality(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := knowledge.New(newInv())
		n := rapid.IntRange(0, 8).Draw(rt, "n")
		for i := 0; i < n; i++ {
			shape := rapid.IntRange(0, 2).Draw(rt, "shape")
			sym := rapid.StringMatching(`[a-z][a-z0-9]{0,3}`).Draw(rt, "sym")
			switch shape {
			case 0:
				k.Add(term.NewConst(sym))
			case 1:
				k.Add(term.NewEncrypt(term.NewConst(sym), term.NewConst("pk")))
			default:
				k.Add(term.NewTuple(term.NewConst(sym), term.NewConst(sym+"b")))
			}
		}
		assertMinimal(rt, k)
	})
}

func assertMinimal(rt *rapid.T, k *knowledge.Set) {
	all := append(append([]*term.Term{}, k.Basic().Items()...), k.Encrypted().Items()...)
	for i, t := range all {
		rest := knowledge.New(term.NewInverseMap())
		for j, o := range all {
			if j != i {
				rest.Add(o)
			}
		}
		if rest.Contains(t) {
			rt.Fatalf("term %s is inferable from the rest of the knowledge: minimality violated", t)
		}
	}
}

// TestMonotonicity checks that along any add sequence, K_i ⊆ K_{i+1} in
// the inference sense — nothing already known is ever forgotten by a
// later Add.
func TestMonotonicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		inv := newInv()
		k := knowledge.New(inv)
		prevContained := []*term.Term{}
		n := rapid.IntRange(0, 8).Draw(rt, "n")
		for i := 0; i < n; i++ {
			for _, t := range prevContained {
				if !k.Contains(t) {
					rt.Fatalf("previously known term %s lost after further Add calls", t)
				}
			}
			sym := rapid.StringMatching(`[a-z][a-z0-9]{0,3}`).Draw(rt, "sym")
			nt := term.NewConst(sym)
			k.Add(nt)
			if k.Contains(nt) {
				prevContained = append(prevContained, nt)
			}
		}
	})
}
