package ir

import (
	"errors"
	"fmt"
)

// NotSupportedError reports input that is valid in its source language but
// has no defined translation into the IR or the linear target language.
//
// The reason may be empty, meaning no further detail is available. The
// error is a value-level failure: callers recover by trying another front
// end or reporting to the user.
type NotSupportedError struct {
	Reason string
}

func (e *NotSupportedError) Error() string {
	if e.Reason == "" {
		return "query cannot be translated"
	}
	return "query cannot be translated: " + e.Reason
}

// NotSupported creates a NotSupportedError with a formatted reason.
func NotSupported(format string, args ...any) error {
	return &NotSupportedError{Reason: fmt.Sprintf(format, args...)}
}

// IsNotSupported reports whether err is a NotSupportedError.
// Uses errors.As to handle wrapped errors.
func IsNotSupported(err error) bool {
	var nse *NotSupportedError
	return errors.As(err, &nse)
}

// InvalidError reports a violated IR construction invariant: duplicate
// token identifiers, references to undefined identifiers, empty junctions,
// conflicting anchors. These indicate a bug in a front end, not bad user
// input, and are kept distinct from NotSupportedError.
type InvalidError struct {
	Message string
}

func (e *InvalidError) Error() string {
	return "invalid query IR: " + e.Message
}

// Invalid creates an InvalidError with a formatted message.
func Invalid(format string, args ...any) error {
	return &InvalidError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalid reports whether err is an InvalidError.
func IsInvalid(err error) bool {
	var ie *InvalidError
	return errors.As(err, &ie)
}

// ParseError is one diagnostic from a front-end parser.
type ParseError struct {
	// Position locates the error in the input, typically "line, column".
	// May be empty when the front end cannot attribute a position.
	Position string
	// Message is the parser's description of what went wrong.
	Message string
}

func (e ParseError) String() string {
	if e.Position == "" {
		return e.Message
	}
	return e.Position + ": " + e.Message
}

// ParseFailedError reports that front-end input did not conform to its
// grammar. It always carries at least one ParseError.
type ParseFailedError struct {
	Errors []ParseError
}

func (e *ParseFailedError) Error() string {
	return fmt.Sprintf("parsing failed: detected %d error(s)", len(e.Errors))
}

// ParseFailed creates a ParseFailedError from one or more diagnostics.
func ParseFailed(errs ...ParseError) error {
	if len(errs) == 0 {
		errs = []ParseError{{Message: "unknown parse error"}}
	}
	return &ParseFailedError{Errors: errs}
}

// IsParseFailed reports whether err is a ParseFailedError.
func IsParseFailed(err error) bool {
	var pfe *ParseFailedError
	return errors.As(err, &pfe)
}
