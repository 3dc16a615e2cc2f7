package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario. A scenario feeds one
// input text through the translation pipeline and checks the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Translator names the front end to use. Empty means the language
	// is guessed, exactly as the CLI and the web service would.
	Translator string `yaml:"translator,omitempty"`

	// Input is the query text to translate.
	Input string `yaml:"input"`

	// Expect specifies the expected outcome.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected translation outcome.
type ExpectClause struct {
	// Translator is the front end that must produce the translation.
	// Only meaningful when the scenario guesses.
	Translator string `yaml:"translator,omitempty"`

	// Error names the expected failure kind. Empty means the scenario
	// must translate successfully.
	Error string `yaml:"error,omitempty"`
}

// Expected failure kinds.
const (
	ExpectParseFailure = "parse"
	ExpectNotSupported = "not-supported"
	ExpectInvalid      = "invalid"
	ExpectAmbiguous    = "ambiguous"
)

var knownErrorKinds = []string{
	ExpectParseFailure, ExpectNotSupported, ExpectInvalid, ExpectAmbiguous,
}

// LoadScenario reads and parses a scenario YAML file. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos),
// or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario under dir, sorted by file
// name so test order is stable.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := map[string]string{}
	for _, path := range paths {
		scenario, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, dup := seen[scenario.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", path, scenario.Name, prev)
		}
		seen[scenario.Name] = path
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if strings.TrimSpace(s.Input) == "" {
		return fmt.Errorf("input is required")
	}

	if s.Expect != nil && s.Expect.Error != "" {
		known := false
		for _, kind := range knownErrorKinds {
			if s.Expect.Error == kind {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("expect.error: unknown kind %q (valid: %s)",
				s.Expect.Error, strings.Join(knownErrorKinds, ", "))
		}
	}

	return nil
}
