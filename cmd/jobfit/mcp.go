package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-fit-analyzer/internal/config"
	"github.com/jonathan/job-fit-analyzer/internal/pipeline"
	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// AnalyzeJobFitInput is the argument of the analyze_job_fit tool
type AnalyzeJobFitInput struct {
	UserID           string `json:"user_id" jsonschema:"UUID of the user whose stored experience is analyzed"`
	JobDescription   string `json:"job_description,omitempty" jsonschema:"Full job description text (400 to 10000 characters). Either this or job_url is required"`
	JobURL           string `json:"job_url,omitempty" jsonschema:"URL of a job posting to fetch instead of passing the text"`
	KeywordMatchType string `json:"keyword_match_type,omitempty" jsonschema:"How strictly bullets must contain job keywords: exact or flexible (default)"`
}

// FetchJobDescriptionInput is the argument of the fetch_job_description tool
type FetchJobDescriptionInput struct {
	URL string `json:"url" jsonschema:"URL of the job posting"`
}

type mcpTools struct {
	cfg    *config.AppConfig
	deps   pipeline.Deps
	logger *slog.Logger
}

func newMCPServer(tools *mcpTools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "jobfit",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_job_fit",
		Description: "Score how well a user's stored experience fits a job description. Returns the extracted requirements, a 0-100 fit score with matched and unmatched requirements, tailored resume bullets when the score is at least 80, and an action plan.",
	}, tools.analyzeJobFit)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_job_description",
		Description: "Download a job posting and return its description as plain text, ready to pass to analyze_job_fit.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, tools.fetchJobDescription)

	return server
}

func (t *mcpTools) analyzeJobFit(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeJobFitInput) (*mcp.CallToolResult, any, error) {
	if input.UserID == "" {
		return nil, nil, errors.New("user_id is required")
	}

	text := input.JobDescription
	if text == "" {
		if input.JobURL == "" {
			return nil, nil, errors.New("job_description or job_url is required")
		}
		doc, err := loadJobDescription(ctx, t.cfg, "", input.JobURL, t.logger)
		if err != nil {
			return nil, nil, err
		}
		text = doc.Text
	}

	result, err := pipeline.Run(ctx, t.deps, pipeline.Input{
		UserID: input.UserID,
		Request: types.AnalyzeRequest{
			JobDescription:   text,
			KeywordMatchType: types.MatchMode(input.KeywordMatchType),
		},
		OnProgress: progressLogger(t.logger),
	})
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(result)
}

func (t *mcpTools) fetchJobDescription(ctx context.Context, _ *mcp.CallToolRequest, input FetchJobDescriptionInput) (*mcp.CallToolResult, any, error) {
	if input.URL == "" {
		return nil, nil, errors.New("url is required")
	}
	doc, err := loadJobDescription(ctx, t.cfg, "", input.URL, t.logger)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: doc.Text}},
	}, nil, nil
}

// jsonResult returns v as indented JSON text content
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func newMCPCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analyzer as MCP tools over stdio",
		Long:  "Runs a Model Context Protocol server on stdin/stdout exposing analyze_job_fit and fetch_job_description. Logs go to stderr.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
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

			server := newMCPServer(&mcpTools{cfg: cfg, deps: newDeps(cfg, store, gen, logger), logger: logger})
			logger.Info("mcp server starting", slog.String("version", version))
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	return cmd
}
