package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
	"github.com/jonathan/job-fit-analyzer/internal/llm"
	"github.com/jonathan/job-fit-analyzer/internal/ranking"
	"github.com/jonathan/job-fit-analyzer/internal/types"
	"github.com/jonathan/job-fit-analyzer/internal/validation"
)

type fakeStore struct {
	experiences []types.Experience
	education   []types.Education
	fetchErr    error
	saveErr     error
	fetched     bool
	saved       []*types.AnalysisResult
}

func (s *fakeStore) FetchExperiences(_ context.Context, _ string) ([]types.Experience, error) {
	s.fetched = true
	return s.experiences, s.fetchErr
}

func (s *fakeStore) FetchEducation(_ context.Context, _ string) ([]types.Education, error) {
	return s.education, nil
}

func (s *fakeStore) SaveAnalysis(_ context.Context, result *types.AnalysisResult) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, result)
	return nil
}

// stageGenerator answers each stage from its own script, keyed by schema name
type stageGenerator struct {
	responses map[string][]string
	err       error
	calls     []string
}

func (g *stageGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	name := req.ResponseFormat.JSONSchema.Name
	g.calls = append(g.calls, name)
	if g.err != nil {
		return "", g.err
	}
	script := g.responses[name]
	if len(script) == 0 {
		return "", fmt.Errorf("no response scripted for %s", name)
	}
	g.responses[name] = script[1:]
	return script[0], nil
}

var fixedNow = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

var jobDescription = strings.Repeat("We are hiring a senior backend engineer to design, build and operate Go services on Kubernetes. ", 6)

var criticalRequirements = []string{
	"Go in production",
	"Kubernetes operations",
	"PostgreSQL schema design",
	"Distributed systems design",
	"Mentoring engineers",
}

func testDeps(store *fakeStore, gen llm.Generator) Deps {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := Deps{
		Generator: gen,
		Scoring:   ranking.DefaultScoringConfig(),
		Settings:  llm.Settings{Model: "test-model", MaxAttempts: 3},
		Limits:    validation.DefaultWidthLimits(),
		Logger:    log,
		Now:       func() time.Time { return fixedNow },
	}
	// a nil *fakeStore must stay a nil interface, not a typed nil
	if store != nil {
		deps.Store = store
	}
	return deps
}

func testExperiences() []types.Experience {
	acme := types.Role{ID: "r1", Title: "Backend Engineer", Company: types.Company{Name: "Acme"}, StartDate: types.NewDate(2018, time.January, 1), EndDate: types.NewDate(2021, time.January, 1)}
	beta := types.Role{ID: "r2", Title: "Staff Engineer", Company: types.Company{Name: "Beta"}, StartDate: types.NewDate(2021, time.February, 1), IsCurrent: true}
	return []types.Experience{
		{ID: "e1", Role: beta, Title: "Cluster migration", Action: "Moved 40 services to Kubernetes", Result: "Cut hosting costs 30%"},
		{ID: "e2", Role: acme, Title: "Billing rewrite", Action: "Rewrote billing in Go on PostgreSQL", Result: "Cut invoice errors 40%"},
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

func requirementsPayload(t *testing.T) string {
	reqs := make([]map[string]any, 0, len(criticalRequirements))
	for _, r := range criticalRequirements {
		reqs = append(reqs, map[string]any{"requirement": r, "importance": "critical", "category": "technical_skill"})
	}
	return mustJSON(t, map[string]any{
		"jobTitle":        "Senior Backend Engineer",
		"companySummary":  "A payments company.",
		"jobRequirements": reqs,
		"allKeywords":     []string{"Go", "Kubernetes", "PostgreSQL"},
	})
}

func allMatchedPayload(t *testing.T) string {
	matched := make([]map[string]any, 0, len(criticalRequirements))
	for _, r := range criticalRequirements {
		matched = append(matched, map[string]any{
			"jobRequirement":     r,
			"experienceEvidence": "Moved 40 services and cut costs 30%",
			"experienceSource":   "Beta - Staff Engineer",
			"matchType":          "exact",
			"evidenceStrength":   "quantified",
		})
	}
	return mustJSON(t, map[string]any{"matchedRequirements": matched, "unmatchedRequirements": []any{}})
}

func nothingMatchedPayload(t *testing.T) string {
	unmatched := make([]map[string]any, 0, len(criticalRequirements))
	for _, r := range criticalRequirements {
		unmatched = append(unmatched, map[string]any{"requirement": r, "importance": "critical"})
	}
	return mustJSON(t, map[string]any{
		"matchedRequirements":   []any{},
		"unmatchedRequirements": unmatched,
		"recommendations":       map[string]any{"forCandidate": []string{"Build a service in Go and deploy it to Kubernetes."}},
	})
}

func bulletsPayload(t *testing.T) string {
	return mustJSON(t, map[string]any{
		"bulletPoints": map[string]any{
			"Beta - Staff Engineer": []map[string]any{{
				"text":           "Migrated 40 payment services to Kubernetes with Go tooling, cutting monthly hosting costs by 30% and deploy times by half across four teams",
				"experienceId":   "e1",
				"keywordsUsed":   []string{"Kubernetes", "Go"},
				"relevanceScore": 0.95,
			}},
			"Acme - Backend Engineer": []map[string]any{{
				"text":           "Rewrote the billing platform in Go on PostgreSQL, reducing invoice errors by 40% and saving the finance team 20 hours every month",
				"experienceId":   "e2",
				"keywordsUsed":   []string{"PostgreSQL"},
				"relevanceScore": 0.9,
			}},
		},
		"keywordsUsed":    []string{"Go", "Kubernetes", "PostgreSQL"},
		"keywordsNotUsed": []string{},
	})
}

func validInput(events *[]ProgressEvent) Input {
	return Input{
		UserID:  uuid.NewString(),
		Request: types.AnalyzeRequest{JobDescription: jobDescription},
		OnProgress: func(e ProgressEvent) {
			if events != nil {
				*events = append(*events, e)
			}
		},
	}
}

func TestRun_FitCandidateGetsBullets(t *testing.T) {
	store := &fakeStore{experiences: testExperiences()}
	gen := &stageGenerator{responses: map[string][]string{
		"requirements": {requirementsPayload(t)},
		"matching":     {allMatchedPayload(t)},
		"bullets":      {bulletsPayload(t)},
	}}
	var events []ProgressEvent

	result, err := Run(context.Background(), testDeps(store, gen), validInput(&events))
	require.NoError(t, err)

	assert.Equal(t, []string{"requirements", "matching", "bullets"}, gen.calls)
	assert.Equal(t, 100, result.Match.OverallScore)
	assert.Equal(t, types.FitExcellent, result.Match.FitLevel)
	assert.True(t, result.Match.IsFit)
	assert.Empty(t, result.Match.WeakEvidenceExperiences)
	assert.Equal(t, "Senior Backend Engineer", result.JobTitle)
	assert.Equal(t, types.MatchModeFlexible, result.KeywordMatchType)
	assert.Equal(t, fixedNow, result.CreatedAt)

	require.NotNil(t, result.Bullets)
	require.Len(t, result.Bullets.BulletPoints, 2)
	for role, points := range result.Bullets.BulletPoints {
		assert.LessOrEqual(t, len(points), 6, role)
		for _, p := range points {
			assert.True(t, p.IsWithinRange, p.Text)
		}
	}
	assert.Contains(t, result.Bullets.ActualKeywordsUsed, "Kubernetes")

	assert.True(t, result.ActionPlan.ReadyForApplication)
	assert.True(t, result.ActionPlan.ReadyForBulletGeneration)
	assert.Empty(t, result.ActionPlan.CriticalGaps)

	require.Len(t, store.saved, 1)
	assert.Same(t, result, store.saved[0])

	steps := make([]string, 0, len(events))
	for _, e := range events {
		steps = append(steps, e.Step)
	}
	assert.Equal(t, []string{StepValidate, StepFetchProfile, StepRequirements, StepMatching, StepBullets, StepSave}, steps)
}

func TestRun_NothingMatched(t *testing.T) {
	store := &fakeStore{experiences: testExperiences()}
	gen := &stageGenerator{responses: map[string][]string{
		"requirements": {requirementsPayload(t)},
		"matching":     {nothingMatchedPayload(t)},
	}}

	result, err := Run(context.Background(), testDeps(store, gen), validInput(nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"requirements", "matching"}, gen.calls, "no bullets below the fit threshold")
	assert.Equal(t, 0, result.Match.OverallScore)
	assert.False(t, result.Match.IsFit)
	assert.Nil(t, result.Match.WeakEvidenceExperiences)
	assert.Nil(t, result.Bullets)
	assert.False(t, result.ActionPlan.ReadyForBulletGeneration)
	assert.False(t, result.ActionPlan.ReadyForApplication)
	assert.Len(t, result.ActionPlan.CriticalGaps, 5)
	assert.Contains(t, result.ActionPlan.NextSteps, "Build a service in Go and deploy it to Kubernetes.")
	assert.Len(t, store.saved, 1)
}

func TestRun_InvalidRequest(t *testing.T) {
	store := &fakeStore{experiences: testExperiences()}
	gen := &stageGenerator{}
	in := validInput(nil)
	in.Request.JobDescription = "too short"

	_, err := Run(context.Background(), testDeps(store, gen), in)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
	assert.False(t, store.fetched)
	assert.Empty(t, gen.calls)
}

func TestRun_NoExperiences(t *testing.T) {
	store := &fakeStore{}
	gen := &stageGenerator{}

	_, err := Run(context.Background(), testDeps(store, gen), validInput(nil))

	var noData *apperrors.NoDataError
	require.ErrorAs(t, err, &noData)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
	assert.Empty(t, gen.calls)

	_, err = Run(context.Background(), testDeps(nil, gen), validInput(nil))
	assert.ErrorAs(t, err, &noData)
}

func TestRun_FetchFailure(t *testing.T) {
	store := &fakeStore{experiences: testExperiences(), fetchErr: errors.New("connection refused")}

	_, err := Run(context.Background(), testDeps(store, &stageGenerator{}), validInput(nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch experiences")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRun_StageFailureAborts(t *testing.T) {
	store := &fakeStore{experiences: testExperiences()}
	gen := &stageGenerator{err: &apperrors.UpstreamServiceError{StatusCode: 403, Message: "permission denied"}}

	result, err := Run(context.Background(), testDeps(store, gen), validInput(nil))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "requirement extraction failed")
	var upstream *apperrors.UpstreamServiceError
	assert.ErrorAs(t, err, &upstream)
	assert.Empty(t, store.saved)
}

func TestRun_SaveFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{experiences: testExperiences(), saveErr: errors.New("disk full")}
	gen := &stageGenerator{responses: map[string][]string{
		"requirements": {requirementsPayload(t)},
		"matching":     {nothingMatchedPayload(t)},
	}}

	result, err := Run(context.Background(), testDeps(store, gen), validInput(nil))

	require.NoError(t, err)
	assert.NotEmpty(t, result.ID)
}
