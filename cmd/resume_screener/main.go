// Package main provides the entry point for the résumé screener CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions are persistent flags shared by every subcommand.
type globalOptions struct {
	verbose   bool
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "resume_screener",
		Short: "Résumé screening and ranking",
		Long: "resume_screener scores résumés against job descriptions by keyword overlap, " +
			"audits résumé structure, ranks candidate batches against open vacancies and serves the same operations over a REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a human-readable report to stderr")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log format (console or json)")

	root.AddCommand(
		newServeCmd(opts),
		newMatchCmd(opts),
		newAnalyzeCmd(opts),
		newScreenCmd(opts),
		newValidateCmd(),
	)
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
