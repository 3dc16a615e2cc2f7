package ir

// Operand is a value inside a Predicate.
//
// This is a sealed interface - only Literal and Attribute implement it. The
// marker method keeps the union closed so the compiler and formatter can
// type switch exhaustively.
type Operand interface {
	operandNode()

	// Refs returns the identifiers appearing in this operand.
	Refs() IdentifierSet

	// RaiseFrom qualifies every unqualified self-reference with the given
	// identifier, moving the operand from a local to a global context.
	// Already-qualified references pass through unchanged.
	RaiseFrom(on Identifier) Operand

	// LowerOnto is the inverse of RaiseFrom: references equal to the given
	// identifier become unqualified again. Other references pass through.
	LowerOnto(on Identifier) Operand
}

// Literal is a fixed string value, stored exactly as it will be emitted
// (including quoting). Use the constructors rather than building one
// directly so escaping stays consistent.
type Literal struct {
	Value string
}

// NewLiteral quotes value and escapes regex metacharacters, so the engine
// matches the text literally.
func NewLiteral(value string) Literal {
	return Literal{Value: `"` + EscapeRegex(value) + `"`}
}

// NewRegexLiteral quotes value without escaping. The caller asserts that
// value already is a regular expression meant for the engine.
func NewRegexLiteral(value string) Literal {
	return Literal{Value: `"` + value + `"`}
}

// RawLiteral wraps already-formatted literal text, quoting included. Front
// ends use this when their source syntax carries the quotes itself.
func RawLiteral(text string) Literal {
	return Literal{Value: text}
}

func (Literal) operandNode() {}

func (l Literal) Refs() IdentifierSet { return IdentifierSet{} }

func (l Literal) RaiseFrom(on Identifier) Operand { return l }

func (l Literal) LowerOnto(on Identifier) Operand { return l }

// Attribute names a token field. Ref == NoIdentifier means "field of the
// token this predicate is attached to"; such an attribute is only valid
// while the predicate is local to a single token and must be raised before
// joining a query's global predicate set.
type Attribute struct {
	Ref  Identifier
	Name string
}

func (Attribute) operandNode() {}

func (a Attribute) Refs() IdentifierSet {
	return NewIdentifierSet(a.Ref)
}

func (a Attribute) RaiseFrom(on Identifier) Operand {
	if a.Ref == NoIdentifier {
		return Attribute{Ref: on, Name: a.Name}
	}
	return a
}

func (a Attribute) LowerOnto(on Identifier) Operand {
	if a.Ref == on {
		return Attribute{Ref: NoIdentifier, Name: a.Name}
	}
	return a
}

// raiseAttr and lowerAttr keep the concrete Attribute type where the
// surrounding node stores one (Exists).

func (a Attribute) raiseAttr(on Identifier) Attribute {
	return a.RaiseFrom(on).(Attribute)
}

func (a Attribute) lowerAttr(on Identifier) Attribute {
	return a.LowerOnto(on).(Attribute)
}
