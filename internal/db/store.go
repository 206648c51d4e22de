// Package db reads a user's experiences and education and records finished analyses.
package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// Store is the storage the analysis pipeline depends on.
// Experiences and education are read-only; analyses are only ever inserted.
type Store interface {
	FetchExperiences(ctx context.Context, userID string) ([]types.Experience, error)
	FetchEducation(ctx context.Context, userID string) ([]types.Education, error)
	SaveAnalysis(ctx context.Context, result *types.AnalysisResult) error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*LocalDB)(nil)
)

// ImportStats counts the rows written by an import
type ImportStats struct {
	Companies   int `json:"companies"`
	Roles       int `json:"roles"`
	Experiences int `json:"experiences"`
	Education   int `json:"education"`
}

func checkUserID(userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return &apperrors.ValidationError{Field: "userId", Message: "must be a UUID", Cause: err}
	}
	return nil
}
