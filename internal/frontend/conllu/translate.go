package conllu

import (
	"strconv"

	"github.com/corpling/cqptree/internal/ir"
)

// Mapping names the corpus attributes the CoNLL-U columns translate to.
// An empty attribute name disables the column. Feats holds the attribute
// whose value contains the Key=Value feature entries; misc entries always
// expand to one attribute per key.
type Mapping struct {
	Form   string `json:"form"`
	Lemma  string `json:"lemma"`
	UPOS   string `json:"upos"`
	XPOS   string `json:"xpos"`
	Deprel string `json:"deprel"`
	Feats  string `json:"feats"`
}

// Spraakbanken is the attribute mapping of the Språkbanken Korp corpora.
var Spraakbanken = Mapping{
	Form:   "word",
	Lemma:  "lemma",
	UPOS:   "pos",
	XPOS:   "msd",
	Deprel: "deprel",
	Feats:  "ufeats",
}

// Reserved misc annotations. They steer translation instead of becoming
// attribute predicates, and only count when spelled Key=Yes.
const (
	annOrdered    = "ordered"
	annSubsequent = "subsequent"
	annAnchored   = "anchored"
	annHighlight  = "highlight"
)

func reservedAnnotation(key string) bool {
	switch key {
	case annOrdered, annSubsequent, annAnchored, annHighlight:
		return true
	}
	return false
}

func hasAnnotation(r row, key string) bool {
	for _, p := range r.misc {
		if p.key == key {
			return p.value == "Yes"
		}
	}
	return false
}

// Translate translates the first sentence of a CoNLL-U document using the
// Språkbanken attribute mapping.
func Translate(input string) (*ir.Plan, error) {
	return TranslateWith(Spraakbanken, input)
}

// TranslateWith translates the first sentence of a CoNLL-U document using
// the given attribute mapping.
func TranslateWith(mapping Mapping, input string) (*ir.Plan, error) {
	rows, err := parseSentence(input)
	if err != nil {
		return nil, err
	}

	alloc := ir.NewAllocator()
	tokens := make([]ir.Token, len(rows))
	byID := make(map[int]ir.Identifier, len(rows))
	for i, r := range rows {
		tokens[i] = ir.NewToken(alloc)
		byID[r.id] = tokens[i].ID
	}

	t := &translation{
		mapping: mapping,
		rows:    rows,
		tokens:  tokens,
		byID:    byID,
	}

	// Each stage runs over the whole sentence before the next starts, so
	// the predicate list groups by stage rather than by token.
	stages := []func() error{
		t.mapColumns,
		t.mapFeats,
		t.expandMisc,
		t.mapDependencies,
		t.extractAnchors,
		t.extractOrder,
		t.extractSubsequent,
	}
	for _, stage := range stages {
		if err := stage(); err != nil {
			return nil, err
		}
	}

	query, err := ir.NewQuery(alloc, t.tokens, t.dependencies, t.constraints, t.predicates)
	if err != nil {
		return nil, err
	}
	return ir.PlanOf(query), nil
}

type translation struct {
	mapping Mapping
	rows    []row
	tokens  []ir.Token
	byID    map[int]ir.Identifier

	predicates   []ir.Predicate
	dependencies []ir.Dependency
	constraints  []ir.Constraint
}

func (t *translation) attributeIs(id ir.Identifier, attribute, operator, value string) {
	t.predicates = append(t.predicates, ir.Comparison{
		LHS: ir.Attribute{Ref: id, Name: attribute},
		Op:  operator,
		RHS: ir.NewLiteral(value),
	})
}

func (t *translation) mapColumns() error {
	for i, r := range t.rows {
		id := t.tokens[i].ID
		columns := []struct {
			attribute string
			value     string
		}{
			{t.mapping.Form, r.form},
			{t.mapping.Lemma, r.lemma},
			{t.mapping.UPOS, r.upos},
			{t.mapping.XPOS, r.xpos},
			{t.mapping.Deprel, r.deprel},
		}
		for _, c := range columns {
			if c.attribute == "" || c.value == "" || c.value == unspecified {
				continue
			}
			t.attributeIs(id, c.attribute, "=", c.value)
		}
	}
	return nil
}

func (t *translation) mapFeats() error {
	if t.mapping.Feats == "" {
		return nil
	}
	for i, r := range t.rows {
		for _, p := range r.feats {
			if p.value == "" {
				continue
			}
			t.attributeIs(t.tokens[i].ID, t.mapping.Feats, "contains", p.key+"="+p.value)
		}
	}
	return nil
}

func (t *translation) expandMisc() error {
	for i, r := range t.rows {
		for _, p := range r.misc {
			if reservedAnnotation(p.key) || p.value == "" {
				continue
			}
			t.attributeIs(t.tokens[i].ID, p.key, "=", p.value)
		}
	}
	return nil
}

func (t *translation) mapDependencies() error {
	for i, r := range t.rows {
		switch r.head {
		case noValue, "", "0":
			continue // root or headless row
		case unspecified:
			return ir.NotSupported("underspecified dependency heads are not supported")
		}

		head, err := strconv.Atoi(r.head)
		if err != nil {
			return ir.ParseFailed(ir.ParseError{
				Position: "line " + strconv.Itoa(r.line),
				Message:  "head " + strconv.Quote(r.head) + " is not a token id",
			})
		}
		src, ok := t.byID[head]
		if !ok {
			return ir.NotSupported("dependency head %d is not part of the sentence", head)
		}
		t.dependencies = append(t.dependencies, ir.Dependency{Src: src, Dst: t.tokens[i].ID})
	}
	return nil
}

// extractAnchors pins the sentence-initial and sentence-final rows when
// they carry anchored=Yes. A single anchored row in a one-token sentence
// claims both ends, which query validation rejects.
func (t *translation) extractAnchors() error {
	if hasAnnotation(t.rows[0], annAnchored) {
		t.constraints = append(t.constraints, ir.Anchor{ID: t.tokens[0].ID, Pos: ir.AnchorFirst})
	}
	last := len(t.rows) - 1
	if hasAnnotation(t.rows[last], annAnchored) {
		t.constraints = append(t.constraints, ir.Anchor{ID: t.tokens[last].ID, Pos: ir.AnchorLast})
	}
	return nil
}

func (t *translation) extractOrder() error {
	var ordered []ir.Identifier
	for i, r := range t.rows {
		if hasAnnotation(r, annOrdered) {
			ordered = append(ordered, t.tokens[i].ID)
		}
	}
	for i := 0; i+1 < len(ordered); i++ {
		t.constraints = append(t.constraints, ir.Order{A: ordered[i], B: ordered[i+1]})
	}
	return nil
}

// extractSubsequent makes a subsequent=Yes row immediately follow its
// predecessor: ordered, with no free positions between them.
func (t *translation) extractSubsequent() error {
	for i := 1; i < len(t.rows); i++ {
		if !hasAnnotation(t.rows[i], annSubsequent) {
			continue
		}
		pre, sub := t.tokens[i-1].ID, t.tokens[i].ID
		t.constraints = append(t.constraints,
			ir.Order{A: pre, B: sub},
			ir.Distance{A: pre, B: sub, Cmp: ir.CmpEqual, K: 0},
		)
	}
	return nil
}
