package deptreepy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpling/cqptree/internal/cqp"
	"github.com/corpling/cqptree/internal/ir"
)

func singleToken(t *testing.T, input string) ir.Token {
	t.Helper()
	plan, err := Translate(input)
	require.NoError(t, err)
	require.Len(t, plan.Queries, 1)
	require.Len(t, plan.Queries[0].Tokens, 1)
	return plan.Queries[0].Tokens[0]
}

func comparison(field, op, value string) ir.Comparison {
	return ir.Comparison{
		LHS: ir.Attribute{Name: field},
		Op:  op,
		RHS: ir.NewRegexLiteral(value),
	}
}

func TestTranslate_FieldComparison(t *testing.T) {
	token := singleToken(t, "field a")
	assert.Equal(t, ir.Predicate(comparison("field", "=", "a")), token.Attrs)
}

func TestTranslate_FieldInComparison(t *testing.T) {
	token := singleToken(t, "field IN a b")
	want := ir.Disjunction{Preds: []ir.Predicate{
		comparison("field", "=", "a"),
		comparison("field", "=", "b"),
	}}
	assert.Equal(t, ir.Predicate(want), token.Attrs)
}

func TestTranslate_FieldContainsComparison(t *testing.T) {
	token := singleToken(t, "field_ a")
	assert.Equal(t, ir.Predicate(comparison("field", "contains", "a")), token.Attrs)
}

func TestTranslate_FieldInContainsComparison(t *testing.T) {
	token := singleToken(t, "field_ IN a b")
	want := ir.Disjunction{Preds: []ir.Predicate{
		comparison("field", "contains", "a"),
		comparison("field", "contains", "b"),
	}}
	assert.Equal(t, ir.Predicate(want), token.Attrs)
}

func TestTranslate_AndPredicate(t *testing.T) {
	token := singleToken(t, "(AND (a 1) (b 2))")
	want := ir.Conjunction{Preds: []ir.Predicate{
		comparison("a", "=", "1"),
		comparison("b", "=", "2"),
	}}
	assert.Equal(t, ir.Predicate(want), token.Attrs)
}

func TestTranslate_OrPredicate(t *testing.T) {
	token := singleToken(t, "(OR (a 1) (b 2))")
	want := ir.Disjunction{Preds: []ir.Predicate{
		comparison("a", "=", "1"),
		comparison("b", "=", "2"),
	}}
	assert.Equal(t, ir.Predicate(want), token.Attrs)
}

func TestTranslate_NotPredicate(t *testing.T) {
	token := singleToken(t, "(NOT (a 1))")
	want := ir.Negation{Inner: comparison("a", "=", "1")}
	assert.Equal(t, ir.Predicate(want), token.Attrs)
}

func TestTranslate_Tree(t *testing.T) {
	plan, err := Translate("TREE_ ((AND (POS NOUN) (DEPREL det))) (OR (LEMMA IN a b c))")
	require.NoError(t, err)
	require.Len(t, plan.Queries, 1)

	q := plan.Queries[0]
	require.Len(t, q.Tokens, 2)
	require.Len(t, q.Dependencies, 1)
	assert.Equal(t, q.Tokens[0].ID, q.Dependencies[0].Src)
	assert.Equal(t, q.Tokens[1].ID, q.Dependencies[0].Dst)
}

func TestTranslate_TreeCompiles(t *testing.T) {
	plan, err := Translate("TREE_ (pos NN) (deprel det)")
	require.NoError(t, err)
	program, err := cqp.CompilePlan(plan)
	require.NoError(t, err)

	want := `a:[(pos = "NN")] []* b:[(deprel = "det") & dephead = a.ref]` +
		` | b:[(deprel = "det")] []* a:[(pos = "NN") & b.dephead = ref]`
	assert.Equal(t, want, program.String())
}

func TestTranslate_NestedTree(t *testing.T) {
	plan, err := Translate("TREE_ (a 1) (TREE_ (b 2) (c 3))")
	require.NoError(t, err)
	require.Len(t, plan.Queries, 1)

	q := plan.Queries[0]
	require.Len(t, q.Tokens, 3)
	require.Len(t, q.Dependencies, 2)
	assert.Equal(t, q.Tokens[0].ID, q.Dependencies[0].Src)
	assert.Equal(t, q.Tokens[1].ID, q.Dependencies[0].Dst)
	assert.Equal(t, q.Tokens[1].ID, q.Dependencies[1].Src)
	assert.Equal(t, q.Tokens[2].ID, q.Dependencies[1].Dst)
}

func TestTranslate_AndOverTrees(t *testing.T) {
	plan, err := Translate("(AND (TREE_ (r 1) (d 1)) (TREE_ (r 2) (d 2)))")
	require.NoError(t, err)

	assert.Len(t, plan.Queries, 2)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, ir.OpConjunction, plan.Operations[0].Op)
	assert.Equal(t, plan.Operations[0].ID, plan.Goal)
}

func TestTranslate_OrOverTrees(t *testing.T) {
	plan, err := Translate("(OR (TREE_ (r 1) (d 1)) (TREE_ (r 2) (d 2)))")
	require.NoError(t, err)

	assert.Len(t, plan.Queries, 2)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, ir.OpDisjunction, plan.Operations[0].Op)
	assert.Equal(t, plan.Operations[0].ID, plan.Goal)
}

func TestTranslate_MixedAndPromotesConstraints(t *testing.T) {
	plan, err := Translate("(AND (pos NN) (TREE_ (r 1) (d 1)))")
	require.NoError(t, err)

	// The plain constraint becomes its own single-token query.
	assert.Len(t, plan.Queries, 2)
	require.Len(t, plan.Operations, 1)
	assert.Equal(t, ir.OpConjunction, plan.Operations[0].Op)
}

func TestTranslate_NotSupported(t *testing.T) {
	cases := map[string]string{
		"TREE matches all dependents": "TREE a b c",
		"NOT over a subtree":          "(NOT (TREE_ (r 1) (d 1)))",
		"NOT with two arguments":      "(NOT (a 1) (b 2))",
		"set operation inside TREE_":  "TREE_ (r 1) (OR (TREE_ (a 1) (b 1)) (TREE_ (a 2) (b 2)))",
		"bare atom":                   "hus",
		"field that is a list":        "((a 1) (b 2))",
		"IN with no values":           "(LEMMA IN)",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Translate(input)
			require.Error(t, err)
			assert.True(t, ir.IsNotSupported(err), "expected not-supported, got %v", err)
		})
	}
}

func TestTranslate_ParseFailures(t *testing.T) {
	cases := []string{"(a b", "((a)", "(AND (a 1"}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			_, err := Translate(input)
			require.Error(t, err)
			assert.True(t, ir.IsParseFailed(err), "expected parse failure, got %v", err)
		})
	}
}
