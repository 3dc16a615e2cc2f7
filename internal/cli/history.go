package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/corpling/cqptree/internal/config"
	"github.com/corpling/cqptree/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history subcommand.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "Show recorded translations",
		Long: `Show recent translations from the translation log, newest first.

With an id argument, show that single translation in full. The database
path comes from --database or from the configuration file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "database", "", "path to the translation log (overrides the configuration)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of translations to show")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions, args []string) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	path := opts.Database
	if path == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			formatter.Error(ErrCodeConfig, err.Error(), nil)
			return NewExitError(ExitCommandError, "cannot load configuration")
		}
		path = cfg.Server.Database
	}
	if path == "" {
		formatter.Error(ErrCodeStore, "no translation log configured (use --database)", nil)
		return NewExitError(ExitCommandError, "no translation log configured")
	}

	translationLog, err := store.Open(path)
	if err != nil {
		formatter.Error(ErrCodeStore, fmt.Sprintf("cannot open translation log: %v", err), nil)
		return NewExitError(ExitCommandError, "cannot open translation log")
	}
	defer translationLog.Close()

	if len(args) == 1 {
		return showTranslation(formatter, translationLog, args[0])
	}
	return listTranslations(formatter, translationLog, opts.Limit)
}

func showTranslation(formatter *OutputFormatter, translationLog *store.Store, id string) error {
	rec, err := translationLog.Translation(context.Background(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			formatter.Error(ErrCodeStore, fmt.Sprintf("no translation with id %s", id), nil)
			return NewExitError(ExitCommandError, "translation not found")
		}
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitFailure, "cannot read translation log")
	}

	if formatter.Format == "json" {
		return formatter.Success(rec)
	}
	fmt.Fprintf(formatter.Writer, "id:          %s\n", rec.ID)
	fmt.Fprintf(formatter.Writer, "received:    %s\n", rec.ReceivedAt.Format(time.RFC3339))
	if rec.Translator != "" {
		fmt.Fprintf(formatter.Writer, "translator:  %s\n", rec.Translator)
	}
	fmt.Fprintf(formatter.Writer, "input:       %s\n", rec.Input)
	if rec.Error != "" {
		fmt.Fprintf(formatter.Writer, "error:       %s\n", rec.Error)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "query:       %s\n", rec.Query)
	for _, step := range rec.AdditionalSteps {
		fmt.Fprintf(formatter.Writer, "             %s\n", step)
	}
	return nil
}

func listTranslations(formatter *OutputFormatter, translationLog *store.Store, limit int) error {
	recs, err := translationLog.Recent(context.Background(), limit)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return NewExitError(ExitFailure, "cannot read translation log")
	}

	if formatter.Format == "json" {
		return formatter.Success(recs)
	}
	for _, rec := range recs {
		status := "ok"
		detail := rec.Query
		if rec.Error != "" {
			status = "error"
			detail = rec.Error
		}
		translator := rec.Translator
		if translator == "" {
			translator = "-"
		}
		fmt.Fprintf(formatter.Writer, "%s  %s  %-9s  %-5s  %s\n",
			rec.ID, rec.ReceivedAt.Format(time.RFC3339), translator, status, detail)
	}
	return nil
}
