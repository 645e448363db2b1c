// Package term implements the protocol term algebra: immutable-shape
// term nodes with rebindable variable cells, equality, normalisation,
// subterm and distance queries, term ordering, and inverse-key lookup.
//
// A Term is one of three node shapes: Leaf (a symbol plus an owning run id),
// Encrypt (operand + key), or Tuple (left + right). A Leaf of KindVar also
// carries a binding Cell; following a chain of bindings to an unbound
// variable or a non-variable is "dereferencing" (Deref). Every function in
// this package operates on dereferenced input unless documented otherwise.
package term

import (
	"fmt"

	"github.com/cascremers/scyther-sub001/internal/trail"
)

// Kind discriminates the three term shapes plus the three Leaf subkinds.
type Kind int

const (
	// KindConst is a global constant leaf, e.g. an agent name or a protocol
	// constant. RunID is -1 for these: a run-id of -1 marks a global.
	KindConst Kind = iota
	// KindVar is a variable leaf; it carries a Cell.
	KindVar
	// KindLocal is a local-name leaf: a name generated fresh per run
	// (nonces, session keys), owned by a specific RunID.
	KindLocal
	// KindEncrypt is an encryption node: {Operand}Key.
	KindEncrypt
	// KindTuple is a pair node: (Left, Right).
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	case KindLocal:
		return "local"
	case KindEncrypt:
		return "encrypt"
	case KindTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// isLeaf reports whether the kind is one of the three leaf subkinds.
func (k Kind) isLeaf() bool {
	return k == KindConst || k == KindVar || k == KindLocal
}

// GlobalRun is the sentinel run id for leaves that do not belong to any run.
const GlobalRun = -1

// cell is the concrete, package-private binding slot for a variable leaf.
// It implements trail.Cell.
type cell struct {
	bound *Term
}

func (c *cell) Clear() { c.bound = nil }

// Term is a node in the term algebra. The zero Term is not valid; use the
// constructors below. Term values are small and are conventionally passed
// and stored as *Term; two *Term values may alias the same node (Tuple and
// Encrypt children are shared, not copied, per the Duplicate contract).
type Term struct {
	kind Kind

	// Leaf fields.
	symbol string
	runID  int
	cell   *cell // non-nil only for KindVar
	types  []string // declared type list for a variable, used by the typed match mode

	// Encrypt fields.
	operand *Term
	key     *Term

	// Tuple fields.
	left  *Term
	right *Term
}

// NewConst builds a global constant leaf.
func NewConst(symbol string) *Term {
	return &Term{kind: KindConst, symbol: symbol, runID: GlobalRun}
}

// NewLocal builds a local-name leaf owned by runID (a nonce or session key
// freshly generated for one run).
func NewLocal(symbol string, runID int) *Term {
	return &Term{kind: KindLocal, symbol: symbol, runID: runID}
}

// NewVar builds an unbound variable leaf owned by runID, with an optional
// declared type list used by the typed unification mode.
func NewVar(symbol string, runID int, types []string) *Term {
	return &Term{kind: KindVar, symbol: symbol, runID: runID, cell: &cell{}, types: types}
}

// NewEncrypt builds an encryption node {operand}key.
func NewEncrypt(operand, key *Term) *Term {
	return &Term{kind: KindEncrypt, operand: operand, key: key}
}

// NewTuple builds a pair node and immediately normalises it so tuples stay
// right-associated.
func NewTuple(left, right *Term) *Term {
	return normalizeTuple(&Term{kind: KindTuple, left: left, right: right})
}

// Kind returns the node's kind without dereferencing.
func (t *Term) Kind() Kind { return t.kind }

// Symbol returns the leaf symbol. Panics if t is not a leaf kind.
func (t *Term) Symbol() string {
	if !t.kind.isLeaf() {
		panic("term: Symbol called on non-leaf term")
	}
	return t.symbol
}

// RunID returns the owning run id of a leaf (GlobalRun for constants).
// Panics if t is not a leaf kind.
func (t *Term) RunID() int {
	if !t.kind.isLeaf() {
		panic("term: RunID called on non-leaf term")
	}
	return t.runID
}

// Types returns the declared type list of a variable leaf (nil for
// constants/locals, which have no type restriction of their own).
func (t *Term) Types() []string {
	if t.kind != KindVar {
		return nil
	}
	return t.types
}

// Operand and Key return the children of an encryption node. Panic if t is
// not KindEncrypt.
func (t *Term) Operand() *Term {
	t.mustKind(KindEncrypt)
	return t.operand
}

func (t *Term) Key() *Term {
	t.mustKind(KindEncrypt)
	return t.key
}

// Left and Right return the children of a tuple node. Panic if t is not
// KindTuple.
func (t *Term) Left() *Term {
	t.mustKind(KindTuple)
	return t.left
}

func (t *Term) Right() *Term {
	t.mustKind(KindTuple)
	return t.right
}

func (t *Term) mustKind(k Kind) {
	if t.kind != k {
		panic(fmt.Sprintf("term: expected kind %s, got %s", k, t.kind))
	}
}

// IsBound reports whether a variable leaf currently has a substitute. Panics
// on non-variables; callers should check Kind() first if unsure.
func (t *Term) IsBound() bool {
	t.mustKind(KindVar)
	return t.cell.bound != nil
}

// Bind records t (a variable) as standing for sub, and pushes the cell onto
// tr so a later Undo can clear it. Binding an already-bound variable is a
// programming error (callers must Deref first).
func (t *Term) Bind(sub *Term, tr *trail.Trail) {
	t.mustKind(KindVar)
	if t.cell.bound != nil {
		panic("term: Bind called on an already-bound variable")
	}
	t.cell.bound = sub
	tr.Push(t.cell)
}

// Deref follows the chain of bindings starting at t until it reaches an
// unbound variable or a non-variable term. A term never cycles through
// binding cells, so this always terminates.
func Deref(t *Term) *Term {
	for t.kind == KindVar && t.cell.bound != nil {
		t = t.cell.bound
	}
	return t
}

// SameLeaf reports whether two leaves are the same identity: equal symbol
// and equal run id — the pair (symbol, run-id) uniquely identifies a leaf.
// Both arguments must already be leaves.
func SameLeaf(a, b *Term) bool {
	return a.kind == b.kind && a.symbol == b.symbol && a.runID == b.runID
}
