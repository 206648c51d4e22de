package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-fit-analyzer/internal/config"
	"github.com/jonathan/job-fit-analyzer/internal/db"
	"github.com/jonathan/job-fit-analyzer/internal/experience"
)

func newImportCmd() *cobra.Command {
	var (
		file       string
		userID     string
		sqlitePath string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load an experience bank into the local SQLite store",
		Long: `Reads an experience bank JSON file, normalizes it and replaces the user's
experiences and education in the local SQLite store used for offline analyses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bank, err := experience.LoadExperienceBank(file)
			if err != nil {
				return err
			}
			if err := experience.NormalizeExperienceBank(bank, userID); err != nil {
				return err
			}

			path := sqlitePath
			if path == "" {
				path = config.Load().SQLitePath
			}
			local, err := db.OpenLocal(path)
			if err != nil {
				return err
			}
			defer func() { _ = local.Close() }()

			stats, err := local.ImportBank(cmd.Context(), bank)
			if err != nil {
				return err
			}

			slog.Info("experience bank imported",
				slog.String("user_id", bank.UserID),
				slog.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d experiences across %d roles at %d companies, and %d education records\n",
				stats.Experiences, stats.Roles, stats.Companies, stats.Education)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the experience bank JSON file (required)")
	cmd.Flags().StringVarP(&userID, "user-id", "u", "", "Import under this user instead of the file's userId")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite file to import into (defaults to SQLITE_PATH)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
