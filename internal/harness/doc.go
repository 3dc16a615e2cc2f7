// Package harness provides conformance testing for the translation
// pipeline.
//
// The harness loads scenario files, runs each input through the front-end
// registry and the CQP compiler, and validates the outcome against the
// scenario's expectations and a golden snapshot of the rendered program.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	translator: grew          # optional; empty means guess
//	input: |
//	  pattern { X [lemma="dog"] }
//	expect:
//	  translator: grew        # optional; the front end that must answer
//	  error: parse            # optional; parse, not-supported, invalid
//	                          # or ambiguous for expected failures
//
// A scenario without an expected error must translate successfully; its
// rendered query program is compared against a golden file.
//
// # Deterministic Testing
//
// Translation is a pure function of the input text, so snapshots are
// reproducible across runs. Golden files live in testdata/golden and are
// regenerated with:
//
//	go test ./internal/harness -update
package harness
