package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpling/cqptree/internal/frontend"
)

// NewTranslatorsCommand creates the translators subcommand.
func NewTranslatorsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "translators",
		Short:         "List the available front ends",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			names := frontend.Default().Names()
			if rootOpts.Format == "json" {
				return formatter.Success(names)
			}
			for _, name := range names {
				fmt.Fprintln(formatter.Writer, name)
			}
			return nil
		},
	}
}
