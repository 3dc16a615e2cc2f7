package ir

// PartKind says how a query part combines with its parent's matches.
type PartKind uint8

const (
	// PartAdditional intersects the parent's matches with the part's.
	PartAdditional PartKind = iota
	// PartNegative subtracts the part's matches from the parent's.
	PartNegative
)

// String returns the set operator the kind compiles to.
func (k PartKind) String() string {
	if k == PartNegative {
		return "-"
	}
	return "&"
}

// Part is an additional or negative sub-query attached to a Query. A part
// may reference identifiers bound by the parent (the inherited environment)
// as well as its own fresh tokens.
type Part struct {
	Kind         PartKind
	Tokens       []Token
	Dependencies []Dependency
	Constraints  []Constraint
	Predicates   []Predicate
}

// Query is one validated dependency-query graph: a set of tokens, the
// dependency edges between them, the linearization constraints, and the
// global predicates (which use qualified attribute references).
//
// Construction validates that every identifier referenced anywhere is
// defined by exactly one token, and that anchors do not conflict.
// Violations fail with InvalidError; nothing is silently dropped.
type Query struct {
	ID           Identifier
	Tokens       []Token
	Dependencies []Dependency
	Constraints  []Constraint
	Predicates   []Predicate
	Parts        []Part
}

// NewQuery validates and builds a query, allocating its own identifier.
func NewQuery(alloc *Allocator, tokens []Token, deps []Dependency, cons []Constraint, preds []Predicate) (*Query, error) {
	if err := validateBody(tokens, deps, cons, preds, nil); err != nil {
		return nil, err
	}
	return &Query{
		ID:           alloc.Fresh(),
		Tokens:       tokens,
		Dependencies: deps,
		Constraints:  cons,
		Predicates:   preds,
	}, nil
}

// AddPart attaches an additional or negative part. The part's identifiers
// are validated against the union of its own tokens and the parent's
// (the inherited environment).
func (q *Query) AddPart(kind PartKind, tokens []Token, deps []Dependency, cons []Constraint, preds []Predicate) error {
	inherited := IdentifierSet{}
	for _, t := range q.Tokens {
		inherited.Add(t.ID)
	}
	if err := validateBody(tokens, deps, cons, preds, inherited); err != nil {
		return err
	}
	q.Parts = append(q.Parts, Part{
		Kind:         kind,
		Tokens:       tokens,
		Dependencies: deps,
		Constraints:  cons,
		Predicates:   preds,
	})
	return nil
}

// validateBody enforces the query invariants for a main query (inherited ==
// nil) or a query part (inherited holds the parent's identifiers).
func validateBody(tokens []Token, deps []Dependency, cons []Constraint, preds []Predicate, inherited IdentifierSet) error {
	defined := IdentifierSet{}
	for _, t := range tokens {
		if t.ID == NoIdentifier {
			return Invalid("token without identifier")
		}
		if defined.Has(t.ID) || inherited.Has(t.ID) {
			// Identifiers are synthetic. Reporting their values would
			// mean nothing to users, so the message names the invariant.
			return Invalid("multiple tokens share the same identifier")
		}
		defined.Add(t.ID)
	}
	defined.AddAll(inherited)

	referenced := IdentifierSet{}
	for _, d := range deps {
		referenced.AddAll(d.Refs())
	}
	for _, c := range cons {
		referenced.AddAll(c.Refs())
	}
	for _, p := range preds {
		if p == nil {
			return Invalid("nil global predicate")
		}
		if err := validatePredicate(p); err != nil {
			return err
		}
		referenced.AddAll(p.Refs())
	}
	for _, t := range tokens {
		if t.Attrs == nil {
			continue
		}
		if err := validatePredicate(t.Attrs); err != nil {
			return err
		}
		referenced.AddAll(t.Attrs.Refs())
	}
	if !referenced.SubsetOf(defined) {
		return Invalid("query references identifiers not defined by any token")
	}

	return validateAnchors(cons)
}

func validateAnchors(cons []Constraint) error {
	first := NoIdentifier
	last := NoIdentifier
	for _, c := range cons {
		anchor, ok := c.(Anchor)
		if !ok {
			continue
		}
		switch anchor.Pos {
		case AnchorFirst:
			if first != NoIdentifier {
				return Invalid("more than one token anchored to the start of the span")
			}
			first = anchor.ID
		case AnchorLast:
			if last != NoIdentifier {
				return Invalid("more than one token anchored to the end of the span")
			}
			last = anchor.ID
		}
	}
	if first != NoIdentifier && first == last {
		return Invalid("token anchored to both ends of the span")
	}
	return nil
}
