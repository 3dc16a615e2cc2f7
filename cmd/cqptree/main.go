// Package main is the entry point for the cqptree CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/corpling/cqptree/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// ExitError paths have already written a formatted message.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
