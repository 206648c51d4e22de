package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/job-fit-analyzer/internal/config"
	"github.com/jonathan/job-fit-analyzer/internal/db"
	"github.com/jonathan/job-fit-analyzer/internal/ingestion"
	"github.com/jonathan/job-fit-analyzer/internal/llm"
	"github.com/jonathan/job-fit-analyzer/internal/pipeline"
)

// generatorFactory builds the text generator for a run. Tests replace it with a fake.
var generatorFactory = func(ctx context.Context, cfg *config.AppConfig) (llm.Generator, func(), error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, nil, err
	}
	gen, err := llm.NewGenerator(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create generator: %w", err)
	}
	return gen, func() { _ = gen.Close() }, nil
}

// loadConfig reads the environment, overlays the optional JSON file and validates the result
func loadConfig(path string) (*config.AppConfig, error) {
	cfg := config.Load()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore connects to PostgreSQL when a URL is configured and falls back to the local SQLite file
func openStore(ctx context.Context, cfg *config.AppConfig) (db.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return database, database.Close, nil
	}

	local, err := db.OpenLocal(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return local, func() { _ = local.Close() }, nil
}

// newDeps assembles the pipeline collaborators from the configuration
func newDeps(cfg *config.AppConfig, store db.Store, gen llm.Generator, logger *slog.Logger) pipeline.Deps {
	return pipeline.Deps{
		Store:     store,
		Generator: gen,
		Scoring:   cfg.ScoringConfig(),
		Settings:  cfg.LLMSettings(logger),
		Limits:    cfg.WidthLimits(),
		Logger:    logger,
		Now:       time.Now,
	}
}

// loadJobDescription reads the posting from a local file or downloads it from a URL
func loadJobDescription(ctx context.Context, cfg *config.AppConfig, path, pageURL string, logger *slog.Logger) (*ingestion.Document, error) {
	switch {
	case path != "":
		return ingestion.ReadJobDescription(path)
	case pageURL != "":
		opts := ingestion.DefaultOptions()
		opts.UseBrowser = cfg.UseBrowser
		opts.Logger = logger
		return ingestion.FetchJobDescription(ctx, pageURL, opts)
	default:
		return nil, errors.New("a job description file or URL is required")
	}
}

// progressLogger reports pipeline steps at debug level
func progressLogger(logger *slog.Logger) pipeline.ProgressCallback {
	return func(event pipeline.ProgressEvent) {
		logger.Debug(event.Message, slog.String("step", event.Step))
	}
}
