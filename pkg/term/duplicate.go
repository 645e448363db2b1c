package term

// Duplicate returns a shallow structural copy of t's shape: internal nodes
// are rebuilt, but leaves are shared. (pkg/runs does not use it: it
// rebuilds a role's event list through termlist.Rename.)
func Duplicate(t *Term) *Term {
	switch t.kind {
	case KindEncrypt:
		return &Term{kind: KindEncrypt, operand: Duplicate(t.operand), key: Duplicate(t.key)}
	case KindTuple:
		return &Term{kind: KindTuple, left: Duplicate(t.left), right: Duplicate(t.right)}
	default:
		return t
	}
}

// DeepDuplicate rebuilds the entire structure including fresh leaf copies
// (new *Term values with the same symbol/run-id/kind, and — for variables —
// a fresh, independent, unbound cell), for callers that must not share a
// leaf's identity with the original.
func DeepDuplicate(t *Term) *Term {
	switch t.kind {
	case KindConst:
		return NewConst(t.symbol)
	case KindLocal:
		return NewLocal(t.symbol, t.runID)
	case KindVar:
		// The copy starts unbound; callers that want the binding preserved
		// should use DuplicateWithoutVariables instead.
		return NewVar(t.symbol, t.runID, append([]string(nil), t.types...))
	case KindEncrypt:
		return NewEncrypt(DeepDuplicate(t.operand), DeepDuplicate(t.key))
	case KindTuple:
		return NewTuple(DeepDuplicate(t.left), DeepDuplicate(t.right))
	default:
		return t
	}
}

// DuplicateWithoutVariables inlines every binding so the result holds no
// bound variable: each KindVar leaf is replaced by Deref of itself, with
// unbound variables copied through unchanged. The copy is independent of
// later backtracking of the bindings it inlined.
func DuplicateWithoutVariables(t *Term) *Term {
	t = Deref(t)
	switch t.kind {
	case KindEncrypt:
		return NewEncrypt(DuplicateWithoutVariables(t.operand), DuplicateWithoutVariables(t.key))
	case KindTuple:
		return NewTuple(DuplicateWithoutVariables(t.left), DuplicateWithoutVariables(t.right))
	default:
		return t
	}
}
