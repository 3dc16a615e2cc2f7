package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all subcommands.
type RootOptions struct {
	Verbose    bool
	Format     string
	ConfigPath string
}

// ValidFormats lists the accepted values for --format.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root cqptree command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "cqptree",
		Short: "Translate tree-shaped dependency queries into flat CQP queries",
		Long: `cqptree turns queries over dependency trees, written in one of several
front-end languages, into corpus queries over flat token sequences.

Supported front ends can be listed with "cqptree translators". When no
translator is named, the input language is guessed by trying each front
end in turn.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if opts.Format == f {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q (valid: %v)", opts.Format, ValidFormats)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a CUE configuration file")

	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewTranslatorsCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}
