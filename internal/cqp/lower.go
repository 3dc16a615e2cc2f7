package cqp

import "github.com/corpling/cqptree/internal/ir"

// fromArrangement lowers one arrangement into a chain of token-match nodes.
//
// The walk maintains the set of identifiers visited so far, the current
// token included. A dependency or predicate whose references are all
// visited commits to the current position and is never revisited; a
// committed predicate is lowered onto the current token so its explicit
// self-references return to the unqualified form the formatter expects.
func fromArrangement(arr []ir.Identifier, deps []ir.Dependency, preds []ir.Predicate, cons []ir.Constraint) (Query, error) {
	visited := ir.IdentifierSet{}
	remainingDeps := deps
	remainingPreds := preds

	tokens := make([]*Token, len(arr))
	for i, id := range arr {
		tokens[i] = &Token{ID: id}
		visited.Add(id)

		var committableDeps []ir.Dependency
		committableDeps, remainingDeps = partitionDeps(remainingDeps, visited)
		tokens[i].Dependencies = committableDeps

		var committablePreds []ir.Predicate
		committablePreds, remainingPreds = partitionPreds(remainingPreds, visited)
		for _, p := range committablePreds {
			tokens[i].Predicates = append(tokens[i].Predicates, p.LowerOnto(id))
		}
	}

	var chain Query = tokens[0]
	for i := 0; i+1 < len(arr); i++ {
		spacing, err := spacingBetween(cons, arr[i], arr[i+1])
		if err != nil {
			return nil, err
		}
		chain = &Sequence{LHS: chain, RHS: tokens[i+1], Spacing: spacing}
	}

	return anchorRegion(chain, cons), nil
}

// partitionDeps splits deps into those whose references are contained in
// visited and the rest, preserving order.
func partitionDeps(deps []ir.Dependency, visited ir.IdentifierSet) (committable, remaining []ir.Dependency) {
	for _, d := range deps {
		if d.Refs().SubsetOf(visited) {
			committable = append(committable, d)
		} else {
			remaining = append(remaining, d)
		}
	}
	return committable, remaining
}

func partitionPreds(preds []ir.Predicate, visited ir.IdentifierSet) (committable, remaining []ir.Predicate) {
	for _, p := range preds {
		if p.Refs().SubsetOf(visited) {
			committable = append(committable, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	return committable, remaining
}

// spacingBetween intersects every distance constraint on the pair (a, b),
// matching either endpoint order. Unconstrained pairs default to an
// arbitrary gap.
func spacingBetween(cons []ir.Constraint, a, b ir.Identifier) (Spacing, error) {
	spacing := Arbitrary
	for _, c := range cons {
		dist, ok := c.(ir.Distance)
		if !ok {
			continue
		}
		if !(dist.A == a && dist.B == b) && !(dist.A == b && dist.B == a) {
			continue
		}

		var bound Spacing
		switch dist.Cmp {
		case ir.CmpEqual:
			// A negative width admits nothing, and building it would land
			// Max on the Unbounded sentinel.
			if dist.K < 0 {
				return Spacing{}, ir.NotSupported("unsatisfiable distance constraint between two tokens")
			}
			bound = Exactly(dist.K)
		case ir.CmpLess:
			if dist.K <= 0 {
				return Spacing{}, ir.NotSupported("unsatisfiable distance constraint between two tokens")
			}
			bound = Spacing{Min: 0, Max: dist.K - 1}
		case ir.CmpGreater:
			bound = Spacing{Min: dist.K + 1, Max: Unbounded}
		case ir.CmpNotEqual:
			// A single gap operator cannot exclude one width. Refusing is
			// better than emitting a query that quietly matches too much.
			return Spacing{}, ir.NotSupported("distance inequality between adjacent tokens has no linear form")
		}

		narrowed, satisfiable := spacing.intersect(bound)
		if !satisfiable {
			return Spacing{}, ir.NotSupported("contradictory distance constraints between two tokens")
		}
		spacing = narrowed
	}
	if spacing.Min < 0 {
		return Spacing{}, ir.NotSupported("negative distance between two tokens")
	}
	return spacing, nil
}

// anchorRegion wraps the chain in span boundary tags when anchors are
// present. The enumerator already guarantees the anchored tokens sit at
// the matching ends of the arrangement.
func anchorRegion(chain Query, cons []ir.Constraint) Query {
	region := &Region{Inner: chain}
	for _, c := range cons {
		if anchor, ok := c.(ir.Anchor); ok {
			if anchor.Pos == ir.AnchorFirst {
				region.OpenStart = true
			} else {
				region.CloseEnd = true
			}
		}
	}
	if !region.OpenStart && !region.CloseEnd {
		return chain
	}
	return region
}
