package grew

type request struct {
	pattern []clause
	parts   []part
}

type part struct {
	negative bool
	clauses  []clause
}

// clause is one line of a pattern body.
//
// Sealed: nodeClause, edgeClause, orderClause and constraintClause.
type clause interface {
	clauseNode()
}

// nodeClause binds a name to a token and constrains its features. Several
// feature structures on one node are alternatives.
type nodeClause struct {
	label      string
	structures [][]feature
}

// edgeClause demands a dependency from src to dst, optionally restricted
// to (or excluded from) a set of relation types.
type edgeClause struct {
	src     string
	dst     string
	negated bool
	types   []value
}

// orderClause demands src before dst; immediate means adjacent.
type orderClause struct {
	lhs       string
	rhs       string
	immediate bool
}

// constraintClause compares two values, typically attributes of two
// different tokens.
type constraintClause struct {
	lhs      value
	rhs      value
	notEqual bool
}

func (nodeClause) clauseNode()       {}
func (edgeClause) clauseNode()       {}
func (orderClause) clauseNode()      {}
func (constraintClause) clauseNode() {}

type featureKind uint8

const (
	featPresence featureKind = iota // Tense
	featAbsence                     // !Tense
	featRequires                    // Tense = A|B, Tense <> A|B
)

type feature struct {
	kind     featureKind
	name     string
	notEqual bool
	values   []value
}

type valueKind uint8

const (
	valSimple valueKind = iota // bare identifier used as a string
	valString                  // "…"
	valRegex                   // re"…"
	valPCRE                    // /…/flags
	valAttr                    // X.name
)

type value struct {
	kind valueKind
	text string // simple/string/regex text
	ref  string // attribute owner
	name string // attribute name
}

type parser struct {
	tokens []token
	pos    int
}

func parseRequest(input string) (*request, error) {
	tokens, err := scan(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}

	req := &request{}
	req.pattern, err = p.parseBlock("pattern")
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind == tEOF {
			return req, nil
		}
		if tok.kind != tIdent || (tok.text != "with" && tok.text != "without") {
			return nil, errorAt(tok.line, tok.col, "expected 'with' or 'without'")
		}
		clauses, err := p.parseBlock(tok.text)
		if err != nil {
			return nil, err
		}
		req.parts = append(req.parts, part{negative: tok.text == "without", clauses: clauses})
	}
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.advance()
	if tok.kind != kind {
		return token{}, errorAt(tok.line, tok.col, "expected "+what)
	}
	return tok, nil
}

func (p *parser) parseBlock(keyword string) ([]clause, error) {
	tok := p.advance()
	if tok.kind != tIdent || tok.text != keyword {
		return nil, errorAt(tok.line, tok.col, "expected '"+keyword+"'")
	}
	if _, err := p.expect(tLBrace, "'{'"); err != nil {
		return nil, err
	}

	var clauses []clause
	for {
		switch p.peek().kind {
		case tSemicolon:
			p.advance()
		case tRBrace:
			p.advance()
			return clauses, nil
		case tEOF:
			return nil, errorAt(p.peek().line, p.peek().col, "unterminated block")
		default:
			c, err := p.parseClause()
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, c)
		}
	}
}

func (p *parser) parseClause() (clause, error) {
	label, err := p.expect(tIdent, "a node name")
	if err != nil {
		return nil, err
	}

	switch p.peek().kind {
	case tLBracket:
		return p.parseNodeClause(label.text)
	case tArrow, tEdgeOpen:
		return p.parseEdgeClause(label.text)
	case tBefore, tNextTo:
		order := orderClause{lhs: label.text, immediate: p.advance().kind == tNextTo}
		rhs, err := p.expect(tIdent, "a node name")
		if err != nil {
			return nil, err
		}
		order.rhs = rhs.text
		return order, nil
	case tDot, tEquals, tNotEquals:
		return p.parseConstraintClause(label.text)
	default:
		tok := p.peek()
		return nil, errorAt(tok.line, tok.col, "expected a clause")
	}
}

func (p *parser) parseNodeClause(label string) (clause, error) {
	node := nodeClause{label: label}
	for p.peek().kind == tLBracket {
		structure, err := p.parseFeatureStructure()
		if err != nil {
			return nil, err
		}
		node.structures = append(node.structures, structure)
	}
	return node, nil
}

func (p *parser) parseFeatureStructure() ([]feature, error) {
	p.advance() // '['
	if p.peek().kind == tRBracket {
		p.advance()
		return nil, nil
	}

	var features []feature
	for {
		f, err := p.parseFeature()
		if err != nil {
			return nil, err
		}
		features = append(features, f)

		switch tok := p.advance(); tok.kind {
		case tComma:
		case tRBracket:
			return features, nil
		default:
			return nil, errorAt(tok.line, tok.col, "expected ',' or ']'")
		}
	}
}

func (p *parser) parseFeature() (feature, error) {
	if p.peek().kind == tBang {
		p.advance()
		name, err := p.expect(tIdent, "a feature name")
		if err != nil {
			return feature{}, err
		}
		return feature{kind: featAbsence, name: name.text}, nil
	}

	name, err := p.expect(tIdent, "a feature name")
	if err != nil {
		return feature{}, err
	}

	switch p.peek().kind {
	case tEquals, tNotEquals:
		f := feature{
			kind:     featRequires,
			name:     name.text,
			notEqual: p.advance().kind == tNotEquals,
		}
		for {
			v, err := p.parseValue()
			if err != nil {
				return feature{}, err
			}
			f.values = append(f.values, v)
			if p.peek().kind != tPipe {
				return f, nil
			}
			p.advance()
		}
	default:
		return feature{kind: featPresence, name: name.text}, nil
	}
}

func (p *parser) parseEdgeClause(src string) (clause, error) {
	edge := edgeClause{src: src}

	if p.advance().kind == tEdgeOpen {
		if p.peek().kind == tCaret {
			p.advance()
			edge.negated = true
		}
		for {
			v, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			if v.kind == valAttr {
				tok := p.peek()
				return nil, errorAt(tok.line, tok.col, "expected a relation type")
			}
			edge.types = append(edge.types, v)

			tok := p.advance()
			if tok.kind == tEdgeClose {
				break
			}
			if tok.kind != tPipe {
				return nil, errorAt(tok.line, tok.col, "expected '|' or ']->'")
			}
		}
	}

	dst, err := p.expect(tIdent, "a node name")
	if err != nil {
		return nil, err
	}
	edge.dst = dst.text
	return edge, nil
}

func (p *parser) parseConstraintClause(lhsName string) (clause, error) {
	lhs, err := p.finishValue(lhsName)
	if err != nil {
		return nil, err
	}

	constraint := constraintClause{lhs: lhs}
	switch tok := p.advance(); tok.kind {
	case tEquals:
	case tNotEquals:
		constraint.notEqual = true
	default:
		return nil, errorAt(tok.line, tok.col, "expected '=' or '<>'")
	}

	constraint.rhs, err = p.parseValue()
	if err != nil {
		return nil, err
	}
	return constraint, nil
}

// parseValue parses a literal or attribute reference.
func (p *parser) parseValue() (value, error) {
	switch tok := p.advance(); tok.kind {
	case tString:
		return value{kind: valString, text: tok.text}, nil
	case tRegex:
		return value{kind: valRegex, text: tok.text}, nil
	case tPCRE:
		return value{kind: valPCRE}, nil
	case tIdent:
		return p.finishValue(tok.text)
	default:
		return value{}, errorAt(tok.line, tok.col, "expected a value")
	}
}

// finishValue completes a value that started with an identifier: either a
// bare string or, with a dot, an attribute of another token.
func (p *parser) finishValue(name string) (value, error) {
	if p.peek().kind != tDot {
		return value{kind: valSimple, text: name}, nil
	}
	p.advance()
	attr, err := p.expect(tIdent, "an attribute name")
	if err != nil {
		return value{}, err
	}
	return value{kind: valAttr, ref: name, name: attr.text}, nil
}
