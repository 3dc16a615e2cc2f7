package cli

import (
	"fmt"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/corpling/cqptree/internal/config"
	"github.com/corpling/cqptree/internal/frontend"
	"github.com/corpling/cqptree/internal/store"
	"github.com/corpling/cqptree/internal/web"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve subcommand.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation web service",
		Long: `Run an HTTP service exposing the translators over a JSON API.

POST /translate accepts {"text": ..., "translator": ...} and returns the
compiled query program. GET /translators lists the front ends. When the
configuration names a database, every request is recorded there.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides the configuration)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return NewExitError(ExitCommandError, "cannot load configuration")
	}
	addr := cfg.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	if !opts.Verbose {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	var translationLog *store.Store
	if cfg.Server.Database != "" {
		translationLog, err = store.Open(cfg.Server.Database)
		if err != nil {
			formatter.Error(ErrCodeStore, fmt.Sprintf("cannot open translation log: %v", err), nil)
			return NewExitError(ExitCommandError, "cannot open translation log")
		}
		defer translationLog.Close()
	}

	server := web.NewServer(web.Options{
		Registry:   frontend.DefaultWith(cfg.Mapping),
		Logger:     logger,
		TokenLimit: cfg.Server.TokenLimit,
		Timeout:    cfg.Server.Timeout,
		Log:        translationLog,
	})

	level.Info(logger).Log("msg", "listening", "addr", addr)
	if err := http.ListenAndServe(addr, server.Router()); err != nil {
		formatter.Error(ErrCodeGeneric, fmt.Sprintf("server stopped: %v", err), nil)
		return NewExitError(ExitFailure, "server stopped")
	}
	return nil
}
