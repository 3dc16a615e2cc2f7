package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corpling/cqptree/internal/config"
	"github.com/corpling/cqptree/internal/cqp"
	"github.com/corpling/cqptree/internal/frontend"
	"github.com/corpling/cqptree/internal/ir"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	Translator string
	Queries    []string
	Files      []string
	Output     string
}

// translationResult is the per-input payload for JSON output. Exactly one
// of Query and Error is set.
type translationResult struct {
	Translator      string    `json:"translator,omitempty"`
	Query           string    `json:"query,omitempty"`
	AdditionalSteps []string  `json:"additional_steps,omitempty"`
	Error           *CLIError `json:"error,omitempty"`

	// program is the full rendered text for text output.
	program string
}

// NewTranslateCommand creates the translate subcommand.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate dependency queries into CQP",
		Long: `Translate one or more dependency-tree queries into CQP query programs.

Queries are given inline with --query, read from files with --file, or
read from standard input when neither flag is set. Each input holds one
query. Without --translator the front-end language is guessed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Translator, "translator", "t", "", "front end to use (default: guess)")
	cmd.Flags().StringArrayVarP(&opts.Queries, "query", "q", nil, "query text (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Files, "file", "f", nil, "file holding one query (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write output to a file instead of stdout")

	return cmd
}

func runTranslate(cmd *cobra.Command, opts *TranslateOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Output != "" {
		out, err := os.Create(opts.Output)
		if err != nil {
			formatter.Error(ErrCodeInput, fmt.Sprintf("cannot create output file: %v", err), nil)
			return NewExitError(ExitCommandError, "cannot create output file")
		}
		defer out.Close()
		formatter.Writer = out
	}

	inputs, err := collectInputs(cmd.InOrStdin(), formatter, opts)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return NewExitError(ExitCommandError, "cannot load configuration")
	}
	registry := frontend.DefaultWith(cfg.Mapping)

	// Naming an unregistered translator is a usage mistake, caught before
	// any translation runs rather than repeated once per input.
	if opts.Translator != "" {
		known := false
		for _, name := range registry.Names() {
			if name == opts.Translator {
				known = true
				break
			}
		}
		if !known {
			err := &frontend.UnknownTranslatorError{Name: opts.Translator, Known: registry.Names()}
			formatter.Error(ErrCodeInput, err.Error(), nil)
			return NewExitError(ExitCommandError, "unknown translator")
		}
	}

	// Failed inputs are reported and skipped; the exit status reflects
	// whether at least one input translated.
	results := make([]translationResult, 0, len(inputs))
	translated := 0
	for _, input := range inputs {
		result, err := translateInput(registry, input, opts.Translator)
		if err != nil {
			result = translationResult{Error: &CLIError{Code: errCode(err), Message: errMessage(err)}}
			if opts.Format == "text" {
				fmt.Fprintf(formatter.GetErrWriter(), "Error [%s]: %s\n", result.Error.Code, result.Error.Message)
			}
			results = append(results, result)
			continue
		}
		formatter.VerboseLog("translator: %s", result.Translator)
		results = append(results, result)
		translated++
		if opts.Format == "text" {
			if translated > 1 {
				fmt.Fprintln(formatter.Writer)
			}
			fmt.Fprintln(formatter.Writer, result.program)
		}
	}

	if opts.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	}
	if translated == 0 {
		return NewExitError(ExitFailure, "no input translated")
	}
	return nil
}

// translateInput runs one input through the registry and the compiler.
func translateInput(registry *frontend.Registry, input, translator string) (translationResult, error) {
	plan, name, err := registry.Translate(input, translator)
	if err != nil {
		return translationResult{}, err
	}
	program, err := cqp.CompilePlan(plan)
	if err != nil {
		return translationResult{}, err
	}
	return translationResult{
		Translator:      name,
		Query:           program.Primary(),
		AdditionalSteps: program.AdditionalSteps(),
		program:         program.String(),
	}, nil
}

// collectInputs gathers query texts from flags, files, or stdin.
func collectInputs(stdin io.Reader, formatter *OutputFormatter, opts *TranslateOptions) ([]string, error) {
	inputs := append([]string{}, opts.Queries...)
	for _, path := range opts.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			formatter.Error(ErrCodeInput, fmt.Sprintf("cannot read query file: %v", err), nil)
			return nil, NewExitError(ExitCommandError, "cannot read query file")
		}
		inputs = append(inputs, string(data))
	}
	if len(inputs) == 0 {
		formatter.VerboseLog("reading query from stdin")
		data, err := io.ReadAll(stdin)
		if err != nil {
			formatter.Error(ErrCodeInput, fmt.Sprintf("cannot read stdin: %v", err), nil)
			return nil, NewExitError(ExitCommandError, "cannot read stdin")
		}
		if strings.TrimSpace(string(data)) == "" {
			formatter.Error(ErrCodeInput, "no query given (use --query, --file, or stdin)", nil)
			return nil, NewExitError(ExitCommandError, "no query given")
		}
		inputs = append(inputs, string(data))
	}
	return inputs, nil
}

// errCode classifies a translation error for CLI responses.
func errCode(err error) string {
	var unknown *frontend.UnknownTranslatorError
	switch {
	case ir.IsParseFailed(err):
		return ErrCodeParse
	case ir.IsNotSupported(err):
		return ErrCodeNotSupported
	case ir.IsInvalid(err):
		return ErrCodeInvalid
	case frontend.IsAmbiguous(err):
		return ErrCodeAmbiguous
	case errors.As(err, &unknown):
		return ErrCodeInput
	default:
		return ErrCodeGeneric
	}
}

// errMessage renders an error for CLI output. Parse failures expand to
// their diagnostics instead of the bare error count.
func errMessage(err error) string {
	var parseErr *ir.ParseFailedError
	if errors.As(err, &parseErr) {
		lines := make([]string, len(parseErr.Errors))
		for i, diag := range parseErr.Errors {
			lines[i] = diag.String()
		}
		return "parsing failed: " + strings.Join(lines, "; ")
	}
	return err.Error()
}
