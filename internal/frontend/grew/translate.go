package grew

import "github.com/corpling/cqptree/internal/ir"

// Translate translates one Grew request into a plan. The pattern block
// becomes the main query; each with/without block becomes an additional or
// negative part over the names bound so far.
func Translate(input string) (*ir.Plan, error) {
	req, err := parseRequest(input)
	if err != nil {
		return nil, err
	}

	alloc := ir.NewAllocator()
	env := &environment{alloc: alloc, ids: map[string]ir.Identifier{}}

	body, err := translateBody(env, req.pattern)
	if err != nil {
		return nil, err
	}
	tokens := env.takeNew()
	if len(tokens) == 0 {
		// An empty pattern matches an arbitrary token.
		tokens = []ir.Token{ir.NewToken(alloc)}
	}

	query, err := ir.NewQuery(alloc, tokens, body.deps, body.cons, body.preds)
	if err != nil {
		return nil, err
	}

	for _, item := range req.parts {
		body, err := translateBody(env, item.clauses)
		if err != nil {
			return nil, err
		}
		kind := ir.PartAdditional
		if item.negative {
			kind = ir.PartNegative
		}
		if err := query.AddPart(kind, env.takeNew(), body.deps, body.cons, body.preds); err != nil {
			return nil, err
		}
	}

	return ir.PlanOf(query), nil
}

// environment maps Grew node names to token identifiers. Names persist
// across blocks, so a with/without block may constrain nodes the pattern
// bound; takeNew fences off which tokens each block introduced.
type environment struct {
	alloc *ir.Allocator
	ids   map[string]ir.Identifier
	order []ir.Identifier
	mark  int
}

func (e *environment) lookup(name string) ir.Identifier {
	if id, ok := e.ids[name]; ok {
		return id
	}
	id := e.alloc.Fresh()
	e.ids[name] = id
	e.order = append(e.order, id)
	return id
}

// takeNew returns tokens for the identifiers introduced since the last
// call, in first-mention order.
func (e *environment) takeNew() []ir.Token {
	var tokens []ir.Token
	for _, id := range e.order[e.mark:] {
		tokens = append(tokens, ir.Token{ID: id})
	}
	e.mark = len(e.order)
	return tokens
}

type body struct {
	deps  []ir.Dependency
	cons  []ir.Constraint
	preds []ir.Predicate
}

func translateBody(env *environment, clauses []clause) (*body, error) {
	b := &body{}
	for _, c := range clauses {
		var err error
		switch cl := c.(type) {
		case nodeClause:
			err = b.addNode(env, cl)
		case edgeClause:
			err = b.addEdge(env, cl)
		case orderClause:
			b.addOrder(env, cl)
		case constraintClause:
			err = b.addConstraint(env, cl)
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// addNode constrains a named token. Multiple feature structures on one
// node are alternatives; features within a structure must all hold.
func (b *body) addNode(env *environment, cl nodeClause) error {
	id := env.lookup(cl.label)

	var alternatives []ir.Predicate
	for _, structure := range cl.structures {
		var preds []ir.Predicate
		for _, f := range structure {
			p, err := featurePredicate(env, f)
			if err != nil {
				return err
			}
			preds = append(preds, p)
		}
		if len(preds) == 0 {
			continue // [] constrains nothing
		}
		alternative, err := ir.ConjunctionOf(preds)
		if err != nil {
			return err
		}
		alternatives = append(alternatives, alternative)
	}
	if len(alternatives) == 0 {
		return nil
	}

	pred, err := ir.DisjunctionOf(alternatives)
	if err != nil {
		return err
	}
	b.preds = append(b.preds, pred.RaiseFrom(id))
	return nil
}

func (b *body) addEdge(env *environment, cl edgeClause) error {
	src := env.lookup(cl.src)
	dst := env.lookup(cl.dst)
	b.deps = append(b.deps, ir.Dependency{Src: src, Dst: dst})

	if len(cl.types) == 0 {
		return nil
	}

	// The relation type lives on the dependent token.
	deprel := ir.Attribute{Ref: dst, Name: "deprel"}
	var comparisons []ir.Predicate
	for _, t := range cl.types {
		operand, err := toOperand(env, t)
		if err != nil {
			return err
		}
		op := "="
		if cl.negated {
			op = "!="
		}
		comparisons = append(comparisons, ir.Comparison{LHS: deprel, Op: op, RHS: operand})
	}

	var pred ir.Predicate
	var err error
	if cl.negated {
		pred, err = ir.ConjunctionOf(comparisons)
	} else {
		pred, err = ir.DisjunctionOf(comparisons)
	}
	if err != nil {
		return err
	}
	b.preds = append(b.preds, pred)
	return nil
}

func (b *body) addOrder(env *environment, cl orderClause) {
	lhs := env.lookup(cl.lhs)
	rhs := env.lookup(cl.rhs)
	b.cons = append(b.cons, ir.Order{A: lhs, B: rhs})
	if cl.immediate {
		b.cons = append(b.cons, ir.Distance{A: lhs, B: rhs, Cmp: ir.CmpEqual, K: 0})
	}
}

func (b *body) addConstraint(env *environment, cl constraintClause) error {
	lhs, err := toOperand(env, cl.lhs)
	if err != nil {
		return err
	}
	rhs, err := toOperand(env, cl.rhs)
	if err != nil {
		return err
	}
	op := "="
	if cl.notEqual {
		op = "!="
	}
	b.preds = append(b.preds, ir.Comparison{LHS: lhs, Op: op, RHS: rhs})
	return nil
}

func featurePredicate(env *environment, f feature) (ir.Predicate, error) {
	attr := ir.Attribute{Name: f.name}
	switch f.kind {
	case featPresence:
		return ir.Exists{Attr: attr}, nil
	case featAbsence:
		return ir.Negation{Inner: ir.Exists{Attr: attr}}, nil
	}

	op := "="
	if f.notEqual {
		op = "!="
	}
	var comparisons []ir.Predicate
	for _, v := range f.values {
		operand, err := toOperand(env, v)
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, ir.Comparison{LHS: attr, Op: op, RHS: operand})
	}
	if f.notEqual {
		// X <> A|B means X is neither A nor B.
		return ir.ConjunctionOf(comparisons)
	}
	return ir.DisjunctionOf(comparisons)
}

func toOperand(env *environment, v value) (ir.Operand, error) {
	switch v.kind {
	case valSimple:
		return ir.NewLiteral(v.text), nil
	case valString, valRegex:
		// Grew strings pass through as written; they may hold regular
		// expression syntax the corpus engine interprets.
		return ir.NewRegexLiteral(v.text), nil
	case valAttr:
		return ir.Attribute{Ref: env.lookup(v.ref), Name: v.name}, nil
	default:
		return nil, ir.NotSupported("PCRE expressions are not supported")
	}
}
