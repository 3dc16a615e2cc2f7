package cqp

import (
	"iter"
	"slices"

	"github.com/corpling/cqptree/internal/ir"
)

// Arrangements enumerates every total ordering of ids that respects the
// Order and Anchor constraints. Candidates are tried in the declaration
// order of ids, so the sequence is deterministic for fixed inputs; callers
// must still treat the order of arrangements as arbitrary, not as a
// priority.
//
// The sequence is lazy and restartable: it is a pure function of its
// inputs. Complexity is factorial in the unconstrained subset, which is
// accepted for the single-digit token counts this compiler is built for;
// boundary collaborators cap the token count before calling in.
func Arrangements(ids []ir.Identifier, cons []ir.Constraint) iter.Seq[[]ir.Identifier] {
	// For every Order(a, b), b cannot be placed while a is unplaced.
	predecessors := make(map[ir.Identifier][]ir.Identifier)
	first, last := ir.NoIdentifier, ir.NoIdentifier
	for _, c := range cons {
		switch con := c.(type) {
		case ir.Order:
			predecessors[con.B] = append(predecessors[con.B], con.A)
		case ir.Anchor:
			if con.Pos == ir.AnchorFirst {
				first = con.ID
			} else {
				last = con.ID
			}
		}
	}

	return func(yield func([]ir.Identifier) bool) {
		buf := make([]ir.Identifier, len(ids))
		placed := ir.IdentifierSet{}

		var arrange func(index int) bool
		arrange = func(index int) bool {
			if index == len(ids) {
				return yield(slices.Clone(buf))
			}
			for _, id := range ids {
				if placed.Has(id) || !allPlaced(predecessors[id], placed) {
					continue
				}
				if first != ir.NoIdentifier && (index == 0) != (id == first) {
					continue
				}
				if last != ir.NoIdentifier && (index == len(ids)-1) != (id == last) {
					continue
				}
				buf[index] = id
				placed.Add(id)
				more := arrange(index + 1)
				delete(placed, id)
				if !more {
					return false
				}
			}
			return true
		}
		arrange(0)
	}
}

func allPlaced(ids []ir.Identifier, placed ir.IdentifierSet) bool {
	for _, id := range ids {
		if !placed.Has(id) {
			return false
		}
	}
	return true
}
