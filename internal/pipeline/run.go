// Package pipeline runs a complete job-fit analysis for one user and one job description.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
	"github.com/jonathan/job-fit-analyzer/internal/db"
	"github.com/jonathan/job-fit-analyzer/internal/llm"
	"github.com/jonathan/job-fit-analyzer/internal/matching"
	"github.com/jonathan/job-fit-analyzer/internal/parsing"
	"github.com/jonathan/job-fit-analyzer/internal/ranking"
	"github.com/jonathan/job-fit-analyzer/internal/rewriting"
	"github.com/jonathan/job-fit-analyzer/internal/types"
	"github.com/jonathan/job-fit-analyzer/internal/validation"
)

// Pipeline steps reported through ProgressCallback
const (
	StepValidate     = "validate_request"
	StepFetchProfile = "fetch_profile"
	StepRequirements = "extract_requirements"
	StepMatching     = "match_requirements"
	StepBullets      = "generate_bullets"
	StepSave         = "save_analysis"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Deps are the collaborators and settings shared by every run
type Deps struct {
	Store     db.Store
	Generator llm.Generator
	Scoring   ranking.ScoringConfig
	Settings  llm.Settings
	Limits    validation.WidthLimits
	Logger    *slog.Logger
	Now       func() time.Time
}

// Input is one analysis request for an authenticated user
type Input struct {
	UserID     string
	Request    types.AnalyzeRequest
	OnProgress ProgressCallback
}

// Run validates the request, loads the user's record, extracts requirements, matches
// them and, for a fit candidate, generates bullets. It stops at the first error and
// never returns a partial result. Saving the finished analysis is best effort.
func Run(ctx context.Context, deps Deps, in Input) (*types.AnalysisResult, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	settings := deps.Settings
	if settings.Logger == nil {
		settings.Logger = log
	}
	log = log.With(slog.String("user_id", in.UserID))

	if err := parsing.ValidateRequest(&in.Request); err != nil {
		return nil, err
	}
	emit(in, StepValidate, "request is valid", nil)

	experiences, education, err := fetchProfile(ctx, deps.Store, in.UserID)
	if err != nil {
		return nil, err
	}
	emit(in, StepFetchProfile, fmt.Sprintf("loaded %d experiences and %d education records", len(experiences), len(education)), nil)

	requirements, err := parsing.ExtractRequirements(ctx, deps.Generator, in.Request.JobDescription, settings)
	if err != nil {
		return nil, fmt.Errorf("requirement extraction failed: %w", err)
	}
	log.Info("requirements extracted",
		slog.Int("requirements", len(requirements.JobRequirements)),
		slog.Int("keywords", len(requirements.AllKeywords)),
	)
	emit(in, StepRequirements, fmt.Sprintf("extracted %d requirements", len(requirements.JobRequirements)), requirements)

	engine := matching.NewEngine(deps.Generator, deps.Scoring, settings, matching.WithClock(now))
	match, err := engine.Match(ctx, requirements.JobRequirements, experiences, education)
	if err != nil {
		return nil, fmt.Errorf("matching failed: %w", err)
	}
	emit(in, StepMatching, fmt.Sprintf("score %d (%s)", match.OverallScore, match.FitLevel), match)

	result := &types.AnalysisResult{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		JobTitle:         requirements.JobTitle,
		CompanySummary:   requirements.CompanySummary,
		Requirements:     requirements,
		Match:            match,
		KeywordMatchType: in.Request.Mode(),
		CreatedAt:        now().UTC(),
	}

	if match.IsFit {
		bullets, err := rewriting.GenerateBullets(ctx, deps.Generator, rewriting.Input{
			Match:       match,
			Experiences: experiences,
			Keywords:    requirements.AllKeywords,
			Mode:        in.Request.Mode(),
		}, rewriting.Options{Settings: settings, Limits: deps.Limits})
		if err != nil {
			return nil, fmt.Errorf("bullet generation failed: %w", err)
		}
		result.Bullets = bullets
		emit(in, StepBullets, fmt.Sprintf("generated bullets for %d roles", len(bullets.BulletPoints)), bullets)
	} else {
		log.Info("bullet generation skipped", slog.Int("overall_score", match.OverallScore))
	}

	result.ActionPlan = BuildActionPlan(match)

	if deps.Store != nil {
		if err := deps.Store.SaveAnalysis(ctx, result); err != nil {
			log.Warn("failed to save analysis", slog.String("analysis_id", result.ID), slog.Any("error", err))
		} else {
			emit(in, StepSave, "analysis saved", nil)
		}
	}

	return result, nil
}

// fetchProfile loads experiences and education concurrently
func fetchProfile(ctx context.Context, store db.Store, userID string) ([]types.Experience, []types.Education, error) {
	if store == nil {
		return nil, nil, &apperrors.NoDataError{Resource: "experiences", Message: "no experience store configured"}
	}

	var experiences []types.Experience
	var education []types.Education

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		experiences, err = store.FetchExperiences(gCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch experiences: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		education, err = store.FetchEducation(gCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch education: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if len(experiences) == 0 {
		return nil, nil, &apperrors.NoDataError{
			Resource: "experiences",
			Message:  "no experiences recorded for this user; add experiences before analyzing a job",
		}
	}
	return experiences, education, nil
}

func emit(in Input, step, message string, content any) {
	if in.OnProgress != nil {
		in.OnProgress(ProgressEvent{Step: step, Message: message, Content: content})
	}
}
