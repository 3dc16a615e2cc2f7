package ir

// Predicate is a boolean expression over token attributes.
//
// This is a sealed interface - only Comparison, Exists, Negation,
// Conjunction and Disjunction implement it.
//
// Predicates are compared and deduplicated by structural equality after
// normalization, so Normalize must be deterministic and idempotent.
type Predicate interface {
	predicateNode()

	// Refs returns the exact set of identifiers appearing anywhere in the
	// predicate, recursively.
	Refs() IdentifierSet

	// RaiseFrom qualifies unqualified attribute references with the given
	// identifier (local form -> global form).
	RaiseFrom(on Identifier) Predicate

	// LowerOnto clears attribute references equal to the given identifier
	// (global form -> local form).
	LowerOnto(on Identifier) Predicate

	// Normalize returns a simplified copy: nested same-kind junctions are
	// flattened, singleton junctions collapse to their sole member, and
	// double negation cancels.
	Normalize() Predicate
}

// Comparison relates two operands with an engine operator such as "=",
// "!=" or "contains".
type Comparison struct {
	LHS Operand
	Op  string
	RHS Operand
}

func (Comparison) predicateNode() {}

func (c Comparison) Refs() IdentifierSet {
	refs := c.LHS.Refs()
	refs.AddAll(c.RHS.Refs())
	return refs
}

func (c Comparison) RaiseFrom(on Identifier) Predicate {
	return Comparison{LHS: c.LHS.RaiseFrom(on), Op: c.Op, RHS: c.RHS.RaiseFrom(on)}
}

func (c Comparison) LowerOnto(on Identifier) Predicate {
	return Comparison{LHS: c.LHS.LowerOnto(on), Op: c.Op, RHS: c.RHS.LowerOnto(on)}
}

func (c Comparison) Normalize() Predicate { return c }

// Exists requires an attribute to be present on a token.
type Exists struct {
	Attr Attribute
}

func (Exists) predicateNode() {}

func (e Exists) Refs() IdentifierSet { return e.Attr.Refs() }

func (e Exists) RaiseFrom(on Identifier) Predicate {
	return Exists{Attr: e.Attr.raiseAttr(on)}
}

func (e Exists) LowerOnto(on Identifier) Predicate {
	return Exists{Attr: e.Attr.lowerAttr(on)}
}

func (e Exists) Normalize() Predicate { return e }

// Negation inverts a predicate.
type Negation struct {
	Inner Predicate
}

func (Negation) predicateNode() {}

func (n Negation) Refs() IdentifierSet { return n.Inner.Refs() }

func (n Negation) RaiseFrom(on Identifier) Predicate {
	return Negation{Inner: n.Inner.RaiseFrom(on)}
}

func (n Negation) LowerOnto(on Identifier) Predicate {
	return Negation{Inner: n.Inner.LowerOnto(on)}
}

func (n Negation) Normalize() Predicate {
	inner := n.Inner.Normalize()
	if double, ok := inner.(Negation); ok {
		return double.Inner // !!p == p, inner is already normal.
	}
	return Negation{Inner: inner}
}

// Conjunction holds one or more predicates that must all hold. Build one
// through NewConjunction or ConjunctionOf; an empty member list is an IR
// invariant violation.
type Conjunction struct {
	Preds []Predicate
}

// Disjunction holds one or more predicates of which at least one must
// hold. Same construction rules as Conjunction.
type Disjunction struct {
	Preds []Predicate
}

// NewConjunction builds a conjunction, failing on an empty member list.
func NewConjunction(preds []Predicate) (Conjunction, error) {
	if len(preds) == 0 {
		return Conjunction{}, Invalid("cannot create empty conjunction")
	}
	return Conjunction{Preds: preds}, nil
}

// NewDisjunction builds a disjunction, failing on an empty member list.
func NewDisjunction(preds []Predicate) (Disjunction, error) {
	if len(preds) == 0 {
		return Disjunction{}, Invalid("cannot create empty disjunction")
	}
	return Disjunction{Preds: preds}, nil
}

// ConjunctionOf collapses a singleton list to its sole member instead of
// wrapping it, and fails on an empty list.
func ConjunctionOf(preds []Predicate) (Predicate, error) {
	if len(preds) == 1 {
		return preds[0], nil
	}
	return NewConjunction(preds)
}

// DisjunctionOf is the disjunctive counterpart of ConjunctionOf.
func DisjunctionOf(preds []Predicate) (Predicate, error) {
	if len(preds) == 1 {
		return preds[0], nil
	}
	return NewDisjunction(preds)
}

func (Conjunction) predicateNode() {}
func (Disjunction) predicateNode() {}

func (c Conjunction) Refs() IdentifierSet { return junctionRefs(c.Preds) }
func (d Disjunction) Refs() IdentifierSet { return junctionRefs(d.Preds) }

func junctionRefs(preds []Predicate) IdentifierSet {
	refs := IdentifierSet{}
	for _, p := range preds {
		refs.AddAll(p.Refs())
	}
	return refs
}

func (c Conjunction) RaiseFrom(on Identifier) Predicate {
	return Conjunction{Preds: raiseAll(c.Preds, on)}
}

func (d Disjunction) RaiseFrom(on Identifier) Predicate {
	return Disjunction{Preds: raiseAll(d.Preds, on)}
}

func (c Conjunction) LowerOnto(on Identifier) Predicate {
	return Conjunction{Preds: lowerAll(c.Preds, on)}
}

func (d Disjunction) LowerOnto(on Identifier) Predicate {
	return Disjunction{Preds: lowerAll(d.Preds, on)}
}

func raiseAll(preds []Predicate, on Identifier) []Predicate {
	out := make([]Predicate, len(preds))
	for i, p := range preds {
		out[i] = p.RaiseFrom(on)
	}
	return out
}

func lowerAll(preds []Predicate, on Identifier) []Predicate {
	out := make([]Predicate, len(preds))
	for i, p := range preds {
		out[i] = p.LowerOnto(on)
	}
	return out
}

func (c Conjunction) Normalize() Predicate {
	flat := flattenJunction(c.Preds, func(p Predicate) ([]Predicate, bool) {
		nested, ok := p.(Conjunction)
		return nested.Preds, ok
	})
	if len(flat) == 1 {
		return flat[0]
	}
	return Conjunction{Preds: flat}
}

func (d Disjunction) Normalize() Predicate {
	flat := flattenJunction(d.Preds, func(p Predicate) ([]Predicate, bool) {
		nested, ok := p.(Disjunction)
		return nested.Preds, ok
	})
	if len(flat) == 1 {
		return flat[0]
	}
	return Disjunction{Preds: flat}
}

// flattenJunction normalizes every member and splices members of the same
// junction kind into the parent, preserving order.
func flattenJunction(preds []Predicate, sameKind func(Predicate) ([]Predicate, bool)) []Predicate {
	out := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		normalized := p.Normalize()
		if members, ok := sameKind(normalized); ok {
			out = append(out, members...)
		} else {
			out = append(out, normalized)
		}
	}
	return out
}

// PredicateEqual reports structural equality of two predicates. Callers
// normalize first when they want semantic deduplication.
func PredicateEqual(a, b Predicate) bool {
	switch pa := a.(type) {
	case Comparison:
		pb, ok := b.(Comparison)
		return ok && pa.Op == pb.Op && operandEqual(pa.LHS, pb.LHS) && operandEqual(pa.RHS, pb.RHS)
	case Exists:
		pb, ok := b.(Exists)
		return ok && pa.Attr == pb.Attr
	case Negation:
		pb, ok := b.(Negation)
		return ok && PredicateEqual(pa.Inner, pb.Inner)
	case Conjunction:
		pb, ok := b.(Conjunction)
		return ok && predicatesEqual(pa.Preds, pb.Preds)
	case Disjunction:
		pb, ok := b.(Disjunction)
		return ok && predicatesEqual(pa.Preds, pb.Preds)
	default:
		return false
	}
}

func predicatesEqual(a, b []Predicate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !PredicateEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func operandEqual(a, b Operand) bool {
	switch oa := a.(type) {
	case Literal:
		ob, ok := b.(Literal)
		return ok && oa == ob
	case Attribute:
		ob, ok := b.(Attribute)
		return ok && oa == ob
	default:
		return false
	}
}

// validatePredicate walks a predicate checking invariants that Go's type
// system cannot enforce on directly-constructed values: junctions must be
// non-empty and operands non-nil.
func validatePredicate(p Predicate) error {
	switch pred := p.(type) {
	case Comparison:
		if pred.LHS == nil || pred.RHS == nil {
			return Invalid("comparison with nil operand")
		}
		return nil
	case Exists:
		return nil
	case Negation:
		if pred.Inner == nil {
			return Invalid("negation of nil predicate")
		}
		return validatePredicate(pred.Inner)
	case Conjunction:
		return validateJunction("conjunction", pred.Preds)
	case Disjunction:
		return validateJunction("disjunction", pred.Preds)
	default:
		return Invalid("unknown predicate type %T", p)
	}
}

func validateJunction(kind string, preds []Predicate) error {
	if len(preds) == 0 {
		return Invalid("empty %s", kind)
	}
	for _, p := range preds {
		if p == nil {
			return Invalid("%s with nil member", kind)
		}
		if err := validatePredicate(p); err != nil {
			return err
		}
	}
	return nil
}
