package ir

// Token pairs an identifier with an optional local predicate. The local
// predicate uses unqualified ("current token") attribute references; it is
// raised onto the identifier when the query is compiled.
type Token struct {
	ID    Identifier
	Attrs Predicate // nil when the token carries no local constraints.
}

// NewToken allocates a fresh identifier for a token without constraints.
func NewToken(alloc *Allocator) Token {
	return Token{ID: alloc.Fresh()}
}

// NewTokenWith allocates a fresh identifier for a token constrained by the
// given local predicate.
func NewTokenWith(alloc *Allocator, attrs Predicate) Token {
	return Token{ID: alloc.Fresh(), Attrs: attrs}
}

// Dependency is a directed syntactic edge: Dst is a dependent of Src.
type Dependency struct {
	Src Identifier
	Dst Identifier
}

// Refs returns both endpoints.
func (d Dependency) Refs() IdentifierSet {
	return NewIdentifierSet(d.Src, d.Dst)
}

// Constraint restricts the linearization of tokens.
//
// This is a sealed interface - only Order, Distance and Anchor implement
// it.
type Constraint interface {
	constraintNode()

	// Refs returns the identifiers the constraint mentions.
	Refs() IdentifierSet
}

// Order requires A to precede B in every arrangement.
type Order struct {
	A Identifier
	B Identifier
}

func (Order) constraintNode() {}

func (o Order) Refs() IdentifierSet { return NewIdentifierSet(o.A, o.B) }

// DistanceCmp is the comparison applied to the linear distance between two
// tokens. Distance counts the token positions strictly between the two,
// so distance 0 means adjacent.
type DistanceCmp uint8

const (
	// CmpEqual requires the distance to be exactly K.
	CmpEqual DistanceCmp = iota
	// CmpLess requires the distance to be strictly below K.
	CmpLess
	// CmpGreater requires the distance to be strictly above K.
	CmpGreater
	// CmpNotEqual requires the distance to differ from K.
	CmpNotEqual
)

// String returns the source-level spelling of the comparison.
func (c DistanceCmp) String() string {
	switch c {
	case CmpEqual:
		return "="
	case CmpLess:
		return "<"
	case CmpGreater:
		return ">"
	case CmpNotEqual:
		return "#"
	default:
		return "?"
	}
}

// Distance compares the number of token positions between A and B against
// K. The constraint is symmetric in A and B; combine it with Order to fix
// direction.
type Distance struct {
	A   Identifier
	B   Identifier
	Cmp DistanceCmp
	K   int
}

func (Distance) constraintNode() {}

func (d Distance) Refs() IdentifierSet { return NewIdentifierSet(d.A, d.B) }

// DistanceAtMost is the non-strict form of CmpLess: distance <= k is
// distance < k+1.
func DistanceAtMost(a, b Identifier, k int) Distance {
	return Distance{A: a, B: b, Cmp: CmpLess, K: k + 1}
}

// DistanceAtLeast is the non-strict form of CmpGreater: distance >= k is
// distance > k-1.
func DistanceAtLeast(a, b Identifier, k int) Distance {
	return Distance{A: a, B: b, Cmp: CmpGreater, K: k - 1}
}

// AnchorPosition names an end of the matched span.
type AnchorPosition uint8

const (
	// AnchorFirst pins a token to the start of the span.
	AnchorFirst AnchorPosition = iota
	// AnchorLast pins a token to the end of the span.
	AnchorLast
)

// Anchor pins a token to the first or last position of the matched span.
// A query allows at most one anchor per position, and no token may be
// anchored to both ends.
type Anchor struct {
	ID  Identifier
	Pos AnchorPosition
}

func (Anchor) constraintNode() {}

func (a Anchor) Refs() IdentifierSet { return NewIdentifierSet(a.ID) }
