package termlist

import "github.com/cascremers/scyther-sub001/pkg/term"

// Variables collects every distinct variable leaf appearing anywhere inside
// t, in first-occurrence order.
func Variables(t *term.Term) *List {
	out := New()
	var walk func(*term.Term)
	walk = func(t *term.Term) {
		t = term.Deref(t)
		switch t.Kind() {
		case term.KindVar:
			out.AddUnique(t)
		case term.KindEncrypt:
			walk(t.Operand())
			walk(t.Key())
		case term.KindTuple:
			walk(t.Left())
			walk(t.Right())
		}
	}
	walk(t)
	return out
}

// Basics collects every leaf (constant, variable, or local name) appearing
// anywhere inside t, in first-occurrence order.
func Basics(t *term.Term) *List {
	out := New()
	var walk func(*term.Term)
	walk = func(t *term.Term) {
		t = term.Deref(t)
		if term.IsLeaf(t) {
			out.AddUnique(t)
			return
		}
		switch t.Kind() {
		case term.KindEncrypt:
			walk(t.Operand())
			walk(t.Key())
		case term.KindTuple:
			walk(t.Left())
			walk(t.Right())
		}
	}
	walk(t)
	return out
}

// Rename rebuilds t substituting every leaf found in from at index i with
// to[i] (by dereferenced equality on from's entries), used once when
// pkg/runs instantiates a role's event list under a simultaneous
// from->to substitution.
func Rename(t *term.Term, from, to *List) *term.Term {
	t = term.Deref(t)
	switch t.Kind() {
	case term.KindEncrypt:
		return term.NewEncrypt(Rename(t.Operand(), from, to), Rename(t.Key(), from, to))
	case term.KindTuple:
		return term.NewTuple(Rename(t.Left(), from, to), Rename(t.Right(), from, to))
	default:
		for i, f := range from.items {
			if term.Equal(t, f) {
				return to.At(i)
			}
		}
		return t
	}
}
