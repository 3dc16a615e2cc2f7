package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exists(name string) Predicate {
	return Exists{Attr: Attribute{Name: name}}
}

func TestRefs_CollectsAllIdentifiers(t *testing.T) {
	alloc := NewAllocator()
	a, b, c := alloc.Fresh(), alloc.Fresh(), alloc.Fresh()

	tree := Conjunction{Preds: []Predicate{
		Comparison{LHS: Attribute{Ref: a, Name: "lemma"}, Op: "=", RHS: NewLiteral("42")},
		Disjunction{Preds: []Predicate{
			Exists{Attr: Attribute{Ref: b, Name: "msd"}},
			Negation{Inner: Exists{Attr: Attribute{Ref: c, Name: "pos"}}},
		}},
	}}

	refs := tree.Refs()
	assert.Len(t, refs, 3)
	assert.True(t, refs.Has(a))
	assert.True(t, refs.Has(b))
	assert.True(t, refs.Has(c))
}

func TestRaiseLower_RoundTrip(t *testing.T) {
	alloc := NewAllocator()
	id := alloc.Fresh()

	local := Conjunction{Preds: []Predicate{
		Comparison{LHS: Attribute{Name: "word"}, Op: "=", RHS: NewLiteral("cat")},
		Negation{Inner: exists("feats")},
	}}

	raised := local.RaiseFrom(id)
	assert.True(t, raised.Refs().Has(id))

	lowered := raised.LowerOnto(id)
	assert.True(t, PredicateEqual(local, lowered))
	assert.Empty(t, lowered.Refs())
}

func TestRaiseFrom_LeavesQualifiedReferencesAlone(t *testing.T) {
	alloc := NewAllocator()
	other, id := alloc.Fresh(), alloc.Fresh()

	pred := Comparison{LHS: Attribute{Ref: other, Name: "lemma"}, Op: "=", RHS: Attribute{Name: "lemma"}}
	raised := pred.RaiseFrom(id).(Comparison)

	assert.Equal(t, other, raised.LHS.(Attribute).Ref)
	assert.Equal(t, id, raised.RHS.(Attribute).Ref)
}

func TestNormalize_FlattensNestedJunctions(t *testing.T) {
	nested := Conjunction{Preds: []Predicate{
		exists("a"),
		Conjunction{Preds: []Predicate{
			exists("b"),
			Conjunction{Preds: []Predicate{exists("c")}},
		}},
	}}

	normalized := nested.Normalize()
	conj, ok := normalized.(Conjunction)
	require.True(t, ok)
	assert.Len(t, conj.Preds, 3)
}

func TestNormalize_KeepsDifferentJunctionKindsNested(t *testing.T) {
	mixed := Conjunction{Preds: []Predicate{
		exists("a"),
		Disjunction{Preds: []Predicate{exists("b"), exists("c")}},
	}}

	conj, ok := mixed.Normalize().(Conjunction)
	require.True(t, ok)
	assert.Len(t, conj.Preds, 2)
}

func TestNormalize_SingletonJunctionCollapses(t *testing.T) {
	singleton := Disjunction{Preds: []Predicate{exists("a")}}
	assert.True(t, PredicateEqual(exists("a"), singleton.Normalize()))
}

func TestNormalize_DoubleNegationCancels(t *testing.T) {
	double := Negation{Inner: Negation{Inner: Conjunction{Preds: []Predicate{exists("a")}}}}
	// The inner predicate's own normal form survives: the singleton
	// conjunction collapses too.
	assert.True(t, PredicateEqual(exists("a"), double.Normalize()))
}

func TestNormalize_Idempotent(t *testing.T) {
	preds := []Predicate{
		Negation{Inner: Negation{Inner: exists("x")}},
		Conjunction{Preds: []Predicate{
			Conjunction{Preds: []Predicate{exists("a"), exists("b")}},
			Disjunction{Preds: []Predicate{exists("c")}},
		}},
		Comparison{LHS: Attribute{Name: "word"}, Op: "!=", RHS: NewLiteral("x")},
	}
	for _, p := range preds {
		once := p.Normalize()
		twice := once.Normalize()
		assert.True(t, PredicateEqual(once, twice))
	}
}

func TestJunctionOf_EmptyFails(t *testing.T) {
	_, err := ConjunctionOf(nil)
	assert.True(t, IsInvalid(err))

	_, err = DisjunctionOf([]Predicate{})
	assert.True(t, IsInvalid(err))
}

func TestJunctionOf_SingletonReturnsMember(t *testing.T) {
	p := exists("a")

	got, err := ConjunctionOf([]Predicate{p})
	require.NoError(t, err)
	assert.True(t, PredicateEqual(p, got))

	got, err = DisjunctionOf([]Predicate{p})
	require.NoError(t, err)
	_, isJunction := got.(Disjunction)
	assert.False(t, isJunction)
}

func TestNewLiteral_EscapesRegexMetacharacters(t *testing.T) {
	assert.Equal(t, `"a\.b\*"`, NewLiteral("a.b*").Value)
	assert.Equal(t, `"a.b*"`, NewRegexLiteral("a.b*").Value)
}
