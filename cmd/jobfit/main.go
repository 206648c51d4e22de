// Package main provides the jobfit command line: the HTTP API, one-off analyses,
// local experience imports and an MCP tool server.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:     "jobfit",
		Short:   "Job-fit analyzer",
		Long:    "jobfit scores how well a candidate's recorded experience fits a job description and, for a fit candidate, writes tailored resume bullets.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), verbose)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug logs and a readable summary")

	root.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newImportCmd(),
		newTokenCmd(),
		newMCPCmd(),
	)
	return root
}

// setupLogging installs a text handler on w; verbose lowers the level to debug
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
