// Package main is the entry point for the casql CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casql/casql/cmd/casql/commands"
	"github.com/casql/casql/internal/debug"
)

// Version information, set by the build.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "casql",
		Short:   "Schema-aware CQL toolkit for Cassandra",
		Long:    "casql compiles model schemas to CQL and keeps live tables in sync with them",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init(verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewSyncCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())

	return rootCmd.Execute()
}
