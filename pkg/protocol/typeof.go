package protocol

import "github.com/cascremers/scyther-sub001/pkg/term"

// DefaultTypeOf is the typed-mode leaf classifier required by
// pkg/unify.MGU. It has no access to a declared-type table from a real
// parser, so it falls back to a coarse structural convention: local names
// are nonces, other leaves are agent names, and non-leaf terms are
// "compound". Protocols needing finer
// classification supply their own unify.TypeOf instead of this default.
func DefaultTypeOf(t *term.Term) string {
	t = term.Deref(t)
	if !term.IsLeaf(t) {
		return "compound"
	}
	if t.Kind() == term.KindLocal {
		return "nonce"
	}
	return "agent"
}
