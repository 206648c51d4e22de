package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-fit-analyzer/internal/observability"
	"github.com/jonathan/job-fit-analyzer/internal/pipeline"
	"github.com/jonathan/job-fit-analyzer/internal/types"
)

type analyzeOptions struct {
	configPath string
	jobFile    string
	jobURL     string
	browser    bool
	userID     string
	dbURL      string
	sqlitePath string
	matchMode  string
	out        string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a job description against a user's experience",
		Long: `Runs one analysis: extracts the job's requirements, matches them against the
user's stored experiences and education and, when the candidate is a fit, writes
tailored bullets. The result is printed as JSON.`,
		Example: `  jobfit analyze --user-id 3f1c2a9e-8b7d-4c55-9e21-6a0f4d2b7c10 --job posting.md
  jobfit analyze --user-id 3f1c2a9e-8b7d-4c55-9e21-6a0f4d2b7c10 --job-url https://boards.greenhouse.io/acme/jobs/123 --browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a JSON config file")
	cmd.Flags().StringVarP(&opts.jobFile, "job", "j", "", "Path to a job description text or markdown file")
	cmd.Flags().StringVar(&opts.jobURL, "job-url", "", "URL of a job posting to fetch")
	cmd.Flags().BoolVar(&opts.browser, "browser", false, "Render the posting in headless Chrome when the static page is too thin")
	cmd.Flags().StringVarP(&opts.userID, "user-id", "u", "", "User whose experience is analyzed (required)")
	cmd.Flags().StringVar(&opts.dbURL, "db-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite", "", "Local SQLite store used when no PostgreSQL URL is set")
	cmd.Flags().StringVar(&opts.matchMode, "match-mode", string(types.MatchModeFlexible), "Keyword match mode: exact or flexible")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the JSON result to this file instead of stdout")

	cmd.MarkFlagsOneRequired("job", "job-url")
	cmd.MarkFlagsMutuallyExclusive("job", "job-url")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	ctx := cmd.Context()
	logger := slog.Default()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.dbURL != "" {
		cfg.DatabaseURL = opts.dbURL
	}
	if opts.sqlitePath != "" {
		cfg.SQLitePath = opts.sqlitePath
	}
	if opts.browser {
		cfg.UseBrowser = true
	}

	doc, err := loadJobDescription(ctx, cfg, opts.jobFile, opts.jobURL, logger)
	if err != nil {
		return err
	}
	if doc.UsedBrowser {
		logger.Info("job posting rendered in browser", slog.String("url", doc.URL))
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	gen, closeGen, err := generatorFactory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGen()

	result, err := pipeline.Run(ctx, newDeps(cfg, store, gen, logger), pipeline.Input{
		UserID: opts.userID,
		Request: types.AnalyzeRequest{
			JobDescription:   doc.Text,
			KeywordMatchType: types.MatchMode(opts.matchMode),
		},
		OnProgress: progressLogger(logger),
	})
	if err != nil {
		return err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintAnalysis(result)
	}

	return writeJSON(cmd.OutOrStdout(), opts.out, result)
}

// writeJSON writes v as indented JSON to path, or to w when path is empty
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
