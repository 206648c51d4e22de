package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-fit-analyzer/internal/config"
	"github.com/jonathan/job-fit-analyzer/internal/db"
	"github.com/jonathan/job-fit-analyzer/internal/server"
	"github.com/jonathan/job-fit-analyzer/internal/server/ratelimit"
)

func newServeCmd() *cobra.Command {
	var (
		port       int
		configPath string
		migrate    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Starts the HTTP API with authenticated analyze endpoints.

Endpoints:
  POST /analyze          Run an analysis and return the result
  POST /analyze/stream   Run an analysis and stream progress as server-sent events
  GET  /health           Health check`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL environment variable is required")
			}

			jwtCfg, err := config.NewJWTConfig()
			if err != nil {
				return err
			}

			database, err := db.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if migrate {
				if err := database.Migrate(ctx); err != nil {
					database.Close()
					return err
				}
			}

			gen, closeGen, err := generatorFactory(ctx, cfg)
			if err != nil {
				database.Close()
				return err
			}

			srv := server.New(server.Config{
				Port:           cfg.Port,
				RequestTimeout: cfg.RequestTimeout,
				RateLimit:      ratelimit.LoadConfig(),
				Logger:         logger,
			}, server.NewJWTService(jwtCfg), server.PipelineAnalyzer(newDeps(cfg, database, gen, logger)))
			srv.OnShutdown(closeGen)
			srv.OnShutdown(database.Close)

			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on (defaults to PORT)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Create the analyses table if it does not exist")

	return cmd
}
