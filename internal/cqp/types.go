package cqp

import "github.com/corpling/cqptree/internal/ir"

// Query is one node of a lowered linear query.
//
// This is a sealed interface - only Token, Sequence, Operator and Region
// implement it. The nodes are plain data; formatting lives in format.go so
// the type switches stay exhaustive in one place.
type Query interface {
	queryNode()
}

// Token matches a single corpus position. Predicates and Dependencies are
// the ones committed to this position during lowering; predicates are in
// lowered (unqualified self-reference) form.
type Token struct {
	ID           ir.Identifier
	Predicates   []ir.Predicate
	Dependencies []ir.Dependency
}

func (*Token) queryNode() {}

// Sequence joins two queries left to right with a spacing between them.
// Chains lean right: (((a b) c) d).
type Sequence struct {
	LHS     Query
	RHS     Query
	Spacing Spacing
}

func (*Sequence) queryNode() {}

// Operator joins several queries with one textual operator, typically the
// disjunction over arrangements.
type Operator struct {
	Symbol  string
	Queries []Query
}

func (*Operator) queryNode() {}

// Region wraps a sequence whose ends are anchored to the enclosing span,
// rendered with <s> and </s> boundary tags.
type Region struct {
	Inner      Query
	OpenStart  bool
	CloseEnd   bool
}

func (*Region) queryNode() {}

// Spacing is the number of free token positions allowed between two
// adjacent queries in a sequence. Max == Unbounded means no upper limit.
type Spacing struct {
	Min int
	Max int
}

// Unbounded marks a spacing without upper limit.
const Unbounded = -1

// Arbitrary allows any non-negative gap; it is the default between tokens
// with no distance constraint.
var Arbitrary = Spacing{Min: 0, Max: Unbounded}

// Exactly requires precisely n free positions; Exactly(0) means adjacent.
func Exactly(n int) Spacing {
	return Spacing{Min: n, Max: n}
}

// intersect narrows s by other. The second return is false when the two
// are contradictory.
func (s Spacing) intersect(other Spacing) (Spacing, bool) {
	out := Spacing{Min: max(s.Min, other.Min), Max: s.Max}
	switch {
	case s.Max == Unbounded:
		out.Max = other.Max
	case other.Max != Unbounded && other.Max < s.Max:
		out.Max = other.Max
	}
	if out.Max != Unbounded && out.Min > out.Max {
		return Spacing{}, false
	}
	return out, true
}
