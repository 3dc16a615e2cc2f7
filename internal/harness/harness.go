package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corpling/cqptree/internal/cqp"
	"github.com/corpling/cqptree/internal/frontend"
	"github.com/corpling/cqptree/internal/ir"
)

// Result holds the outcome of running one scenario.
type Result struct {
	// Translator is the front end that answered, empty on failure.
	Translator string

	// Program is the rendered query program, empty on failure.
	Program string

	// Err is the translation error, nil on success.
	Err error
}

// Run executes a scenario against the built-in front-end registry and
// checks the outcome against the scenario's expectations. The returned
// Result describes what actually happened; a non-nil error means the
// outcome contradicted the expectations.
func Run(scenario *Scenario) (*Result, error) {
	result := translate(scenario)

	if err := checkExpectations(scenario, result); err != nil {
		return result, err
	}
	return result, nil
}

func translate(scenario *Scenario) *Result {
	plan, name, err := frontend.Default().Translate(scenario.Input, scenario.Translator)
	if err != nil {
		return &Result{Err: err}
	}
	program, err := cqp.CompilePlan(plan)
	if err != nil {
		return &Result{Translator: name, Err: err}
	}
	return &Result{Translator: name, Program: program.String()}
}

func checkExpectations(scenario *Scenario, result *Result) error {
	wantError := ""
	wantTranslator := ""
	if scenario.Expect != nil {
		wantError = scenario.Expect.Error
		wantTranslator = scenario.Expect.Translator
	}

	if wantError == "" {
		if result.Err != nil {
			return fmt.Errorf("expected a translation, got error: %v", result.Err)
		}
		if wantTranslator != "" && result.Translator != wantTranslator {
			return fmt.Errorf("expected translator %s, got %s", wantTranslator, result.Translator)
		}
		return nil
	}

	if result.Err == nil {
		return fmt.Errorf("expected a %s failure, but translation succeeded", wantError)
	}
	if got := classify(result.Err); got != wantError {
		return fmt.Errorf("expected a %s failure, got %s: %v", wantError, got, result.Err)
	}
	return nil
}

// classify maps a translation error onto the scenario error kinds.
func classify(err error) string {
	switch {
	case ir.IsParseFailed(err):
		return ExpectParseFailure
	case ir.IsNotSupported(err):
		return ExpectNotSupported
	case ir.IsInvalid(err):
		return ExpectInvalid
	case frontend.IsAmbiguous(err):
		return ExpectAmbiguous
	default:
		return "unknown"
	}
}

// Snapshot renders a result as the golden file payload. Failures record
// the error kind and the expanded diagnostics so regressions in error
// reporting show up in the diff too.
func (r *Result) Snapshot(scenarioName string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", scenarioName)
	if r.Err != nil {
		fmt.Fprintf(&b, "error: %s\n", classify(r.Err))
		fmt.Fprintf(&b, "message: %s\n", errorMessage(r.Err))
		return []byte(b.String())
	}
	fmt.Fprintf(&b, "translator: %s\n", r.Translator)
	b.WriteString("\n")
	b.WriteString(r.Program)
	b.WriteString("\n")
	return []byte(b.String())
}

// errorMessage expands parse failures to their diagnostics so the golden
// file pins the exact positions reported to users.
func errorMessage(err error) string {
	var parseErr *ir.ParseFailedError
	if errors.As(err, &parseErr) {
		lines := make([]string, len(parseErr.Errors))
		for i, diag := range parseErr.Errors {
			lines[i] = diag.String()
		}
		return strings.Join(lines, "; ")
	}
	return err.Error()
}
