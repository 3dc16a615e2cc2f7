package cqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpling/cqptree/internal/ir"
)

func collect(ids []ir.Identifier, cons []ir.Constraint) [][]ir.Identifier {
	var out [][]ir.Identifier
	for arr := range Arrangements(ids, cons) {
		out = append(out, arr)
	}
	return out
}

func TestArrangements_Unconstrained(t *testing.T) {
	ids := []ir.Identifier{1, 2, 3}

	arrs := collect(ids, nil)
	assert.Len(t, arrs, 6, "3 unconstrained tokens have 3! arrangements")

	// Candidates are tried in declaration order, so the declaration
	// order itself comes out first.
	assert.Equal(t, []ir.Identifier{1, 2, 3}, arrs[0])
}

func TestArrangements_LinearExtensions(t *testing.T) {
	// 1 < 2, 1 < 3 < 4: token 2 floats across three slots.
	ids := []ir.Identifier{1, 2, 3, 4}
	cons := []ir.Constraint{
		ir.Order{A: 1, B: 2},
		ir.Order{A: 1, B: 3},
		ir.Order{A: 3, B: 4},
	}

	arrs := collect(ids, cons)
	require.Len(t, arrs, 3)
	for _, arr := range arrs {
		assert.Equal(t, ir.Identifier(1), arr[0])
	}
}

func TestArrangements_TotalOrder(t *testing.T) {
	ids := []ir.Identifier{1, 2, 3}
	cons := []ir.Constraint{
		ir.Order{A: 1, B: 2},
		ir.Order{A: 2, B: 3},
	}

	arrs := collect(ids, cons)
	require.Len(t, arrs, 1)
	assert.Equal(t, []ir.Identifier{1, 2, 3}, arrs[0])
}

func TestArrangements_CycleYieldsNothing(t *testing.T) {
	ids := []ir.Identifier{1, 2}
	cons := []ir.Constraint{
		ir.Order{A: 1, B: 2},
		ir.Order{A: 2, B: 1},
	}

	assert.Empty(t, collect(ids, cons))
}

func TestArrangements_AnchorsPinEnds(t *testing.T) {
	ids := []ir.Identifier{1, 2, 3}
	cons := []ir.Constraint{
		ir.Anchor{ID: 2, Pos: ir.AnchorFirst},
		ir.Anchor{ID: 1, Pos: ir.AnchorLast},
	}

	arrs := collect(ids, cons)
	require.Len(t, arrs, 1)
	assert.Equal(t, []ir.Identifier{2, 3, 1}, arrs[0])
}

func TestArrangements_Restartable(t *testing.T) {
	ids := []ir.Identifier{1, 2}
	seq := Arrangements(ids, nil)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, first, second, "the sequence is a pure function of its inputs")
}
