package term

// Hidden is the sentinel term returned by InverseKey when no inverse is
// defined for a key, making that key effectively one-way. It is a
// distinct, never-constructible-by-protocols constant so it can
// never accidentally compare Equal to a real key.
var Hidden = &Term{kind: KindConst, symbol: "#hidden", runID: GlobalRun}

// InverseMap holds the two inverse-key tables: a symmetric
// table of key pairs (e.g. public/secret keypairs, or a symmetric key with
// itself) plus a set of "public function" symbols (hash/function
// application) whose inverse is defined to be themselves — one-way by
// construction, distinct from a key with no registered inverse at all.
type InverseMap struct {
	pairs  map[string]*Term // symbol -> its inverse leaf
	public map[string]bool  // symbols treated as public one-way functions
}

// NewInverseMap returns an empty table.
func NewInverseMap() *InverseMap {
	return &InverseMap{pairs: map[string]*Term{}, public: map[string]bool{}}
}

// AddPair registers a and b as each other's inverse (e.g. pk(A)/sk(A), or a
// single symmetric key registered as its own inverse: AddPair(k, k)).
func (m *InverseMap) AddPair(a, b *Term) {
	m.pairs[leafKey(a)] = b
	m.pairs[leafKey(b)] = a
}

// MarkPublic declares symbol (typically a hash or one-way function symbol)
// as a public function: InverseKey on such a leaf returns the leaf itself.
// A hash is one-way and function application is public, but its inverse is
// a distinct hidden sentinel — public function symbols are the exception
// that returns themselves, not Hidden.
func (m *InverseMap) MarkPublic(symbol string) {
	m.public[symbol] = true
}

func leafKey(t *Term) string {
	t = Deref(t)
	return t.symbol
}

// InverseKey returns the inverse of key k: k itself if k's symbol was
// marked public, the registered pair partner if one exists, or Hidden
// otherwise.
func (m *InverseMap) InverseKey(k *Term) *Term {
	k = Deref(k)
	if !IsLeaf(k) {
		return Hidden
	}
	if m.public[k.symbol] {
		return k
	}
	if inv, ok := m.pairs[k.symbol]; ok {
		return inv
	}
	return Hidden
}

// IsHidden reports whether t is the Hidden sentinel.
func IsHidden(t *Term) bool {
	return Deref(t) == Hidden
}
