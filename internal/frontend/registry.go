// Package frontend hosts the translator registry and the shared plumbing
// for the query-language front ends. Each front end lives in its own
// subpackage and turns raw input text into an ir.Plan.
package frontend

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/corpling/cqptree/internal/ir"
)

// TranslateFunc parses one input text into a plan. Implementations fail
// with ir.ParseFailedError when the input does not parse and with
// ir.NotSupportedError when it parses but cannot be translated.
type TranslateFunc func(input string) (*ir.Plan, error)

// Registry maps translator names to their translation functions.
// Registration order is preserved and drives the guessing order, so a
// fixed registry yields deterministic results.
type Registry struct {
	names []string
	funcs map[string]TranslateFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: map[string]TranslateFunc{}}
}

// Register adds a translator under a unique name.
func (r *Registry) Register(name string, fn TranslateFunc) error {
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("translator %q is already registered", name)
	}
	r.names = append(r.names, name)
	r.funcs[name] = fn
	return nil
}

// Names lists the registered translators in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Translate runs the named translator over the input, or guesses the
// translator when name is empty. Guessing requires exactly one registered
// translator to accept the input; zero or several acceptances fail with an
// AmbiguousError naming the accepting translators.
//
// Input is normalized to NFC first so that visually identical queries
// translate identically regardless of how the source encoded them.
func (r *Registry) Translate(input, name string) (*ir.Plan, string, error) {
	input = norm.NFC.String(input)

	if name != "" {
		fn, ok := r.funcs[name]
		if !ok {
			return nil, "", &UnknownTranslatorError{Name: name, Known: r.Names()}
		}
		plan, err := fn(input)
		if err != nil {
			return nil, "", err
		}
		return plan, name, nil
	}

	var matched []string
	var plan *ir.Plan
	for _, candidate := range r.names {
		p, err := r.funcs[candidate](input)
		if err != nil {
			// Rejection by one front end is expected while guessing;
			// anything else is a real failure and surfaces directly.
			if ir.IsParseFailed(err) || ir.IsNotSupported(err) {
				continue
			}
			return nil, "", err
		}
		matched = append(matched, candidate)
		plan = p
	}

	if len(matched) != 1 {
		return nil, "", &AmbiguousError{Matching: matched}
	}
	return plan, matched[0], nil
}

// UnknownTranslatorError reports a translator name that is not registered.
type UnknownTranslatorError struct {
	Name  string
	Known []string
}

func (e *UnknownTranslatorError) Error() string {
	return fmt.Sprintf("unknown translator: %s (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// AmbiguousError reports that guessing the translator found no acceptable
// front end, or more than one.
type AmbiguousError struct {
	Matching []string
}

// NoMatch reports whether no translator accepted the input.
func (e *AmbiguousError) NoMatch() bool { return len(e.Matching) == 0 }

func (e *AmbiguousError) Error() string {
	if e.NoMatch() {
		return "cannot guess translator for query: no translator matches"
	}
	return fmt.Sprintf("cannot guess translator for query: %s all match", strings.Join(e.Matching, ", "))
}

// IsAmbiguous reports whether err is an AmbiguousError.
func IsAmbiguous(err error) bool {
	var ambiguous *AmbiguousError
	return errors.As(err, &ambiguous)
}
