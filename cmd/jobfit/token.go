package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-fit-analyzer/internal/config"
	"github.com/jonathan/job-fit-analyzer/internal/server"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		hours  int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Long:  "Signs a token for a user with JWT_SECRET so the analyze endpoints can be called locally.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user-id: %w", err)
			}

			jwtCfg, err := config.NewJWTConfig()
			if err != nil {
				return err
			}
			if hours > 0 {
				jwtCfg.ExpirationHours = hours
			}

			token, err := server.NewJWTService(jwtCfg).GenerateToken(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user-id", "u", "", "User the token is issued to (required)")
	cmd.Flags().IntVar(&hours, "hours", 0, "Token lifetime in hours (defaults to JWT_EXPIRATION_HOURS)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}
