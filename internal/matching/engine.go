// Package matching decides which job requirements a candidate's record satisfies and scores the result.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/job-fit-analyzer/internal/llm"
	"github.com/jonathan/job-fit-analyzer/internal/prompts"
	"github.com/jonathan/job-fit-analyzer/internal/ranking"
	"github.com/jonathan/job-fit-analyzer/internal/schemas"
	"github.com/jonathan/job-fit-analyzer/internal/types"
)

const matchingMaxTokens = 8192

// calculationPattern recognizes an explicit arithmetic step such as "30 + 18" or "48 / 12"
var calculationPattern = regexp.MustCompile(`\d\s*[+*/=×]\s*\d`)

// Engine runs Stage 2a
type Engine struct {
	gen      llm.Generator
	scoring  ranking.ScoringConfig
	settings llm.Settings
	now      func() time.Time
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithClock sets the clock used to compute the length of current roles
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a matching engine
func NewEngine(gen llm.Generator, scoring ranking.ScoringConfig, settings llm.Settings, opts ...EngineOption) *Engine {
	e := &Engine{
		gen:      gen,
		scoring:  scoring,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// matchPayload is the generator's answer for the requirements it was given
type matchPayload struct {
	MatchedRequirements   []types.MatchedRequirement   `json:"matchedRequirements"`
	UnmatchedRequirements []types.UnmatchedRequirement `json:"unmatchedRequirements"`
	Recommendations       *types.Recommendations       `json:"recommendations,omitempty"`
}

// Match resolves every requirement to matched or unmatched and scores the outcome.
// Unmatched requirements lower the score; they are never an error.
func (e *Engine) Match(ctx context.Context, requirements []types.JobRequirement, experiences []types.Experience, education []types.Education) (*types.MatchResult, error) {
	log := e.logger()

	resolution := ranking.ResolveDegreeRequirements(requirements, education)
	if resolution.Match != nil {
		log.Info("degree requirements resolved",
			slog.Bool("meets", resolution.Match.Meets),
			slog.Bool("lenient", resolution.Match.Lenient),
			slog.String("required_level", resolution.Match.RequiredLevel.String()),
		)
	}

	var payload *matchPayload
	if len(resolution.Remaining) > 0 && len(experiences) > 0 {
		var err error
		payload, err = e.generate(ctx, requirements, resolution, experiences, education)
		if err != nil {
			return nil, err
		}
	}

	result := e.assemble(requirements, resolution.Matched, payload)
	log.Info("match scored",
		slog.Int("overall_score", result.OverallScore),
		slog.String("fit_level", string(result.FitLevel)),
		slog.Int("matched", len(result.MatchedRequirements)),
		slog.Int("unmatched", len(result.UnmatchedRequirements)),
		slog.Int("critical_gaps", len(result.CriticalGaps)),
	)
	return result, nil
}

func (e *Engine) generate(ctx context.Context, all []types.JobRequirement, resolution ranking.DegreeResolution, experiences []types.Experience, education []types.Education) (*matchPayload, error) {
	userPrompt, err := prompts.Render("matching.json", "match-requirements", map[string]string{
		"Today":        e.now().Format("2006-01-02"),
		"Requirements": FormatRequirements(resolution.Remaining),
		"Experiences":  FormatExperiencesByRole(experiences, e.now()),
		"Education":    FormatEducation(education),
	})
	if err != nil {
		return nil, err
	}

	return llm.CallWithRetry(ctx, e.gen, llm.RetryOptions{
		Settings: e.settings,
		Stage:    llm.StageMatching,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.MustGet("matching.json", "system")},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		Schema:    schemas.MustGet(schemas.Matching),
		MaxTokens: matchingMaxTokens,
	}, e.validator(all, resolution))
}

// validator checks a generated payload against the requirements it answers
func (e *Engine) validator(all []types.JobRequirement, resolution ranking.DegreeResolution) func(*matchPayload) error {
	byText := indexRequirements(resolution.Remaining)

	return func(p *matchPayload) error {
		if p.MatchedRequirements == nil {
			return errors.New("missing matchedRequirements array")
		}
		if p.UnmatchedRequirements == nil {
			return errors.New("missing unmatchedRequirements array")
		}

		for i, m := range p.MatchedRequirements {
			req, ok := byText[ranking.NormalizeRequirement(m.JobRequirement)]
			if !ok {
				return fmt.Errorf("matchedRequirements[%d].jobRequirement %q is not one of the listed requirements; copy the requirement text exactly", i, m.JobRequirement)
			}
			if strings.TrimSpace(m.ExperienceEvidence) == "" {
				return fmt.Errorf("matchedRequirements[%d].experienceEvidence is empty", i)
			}
			if req.Category == types.CategoryYearsExperience && !calculationPattern.MatchString(m.ExperienceSource) {
				return fmt.Errorf("matchedRequirements[%d].experienceSource for %q must show the calculation, e.g. \"24 months + 30 months = 54 / 12 = 4.5 years\"", i, m.JobRequirement)
			}
		}

		matched := append([]types.MatchedRequirement{}, resolution.Matched...)
		matched = append(matched, p.MatchedRequirements...)
		score := ranking.CalculateScore(e.scoring, all, matched)
		if score.Overall < e.scoring.FitThreshold() && (p.Recommendations == nil || len(p.Recommendations.ForCandidate) == 0) {
			return fmt.Errorf("missing recommendations.forCandidate array (required because the score is %d, below %d)", score.Overall, e.scoring.FitThreshold())
		}
		return nil
	}
}

// assemble merges the deterministic and generated matches and scores them.
// Every requirement ends up in exactly one list, in posting order. A requirement both
// matched and reported unmatched counts as matched; one the generator skipped is unmatched.
func (e *Engine) assemble(requirements []types.JobRequirement, prepass []types.MatchedRequirement, payload *matchPayload) *types.MatchResult {
	found := make(map[string]types.MatchedRequirement)
	add := func(m types.MatchedRequirement) {
		key := ranking.NormalizeRequirement(m.JobRequirement)
		if _, ok := found[key]; !ok {
			found[key] = m
		}
	}
	for _, m := range prepass {
		add(m)
	}
	if payload != nil {
		for _, m := range payload.MatchedRequirements {
			add(m)
		}
	}

	result := &types.MatchResult{
		MatchedRequirements:   []types.MatchedRequirement{},
		UnmatchedRequirements: []types.UnmatchedRequirement{},
	}
	placed := make(map[string]bool, len(requirements))
	unique := make([]types.JobRequirement, 0, len(requirements))
	for _, req := range requirements {
		key := ranking.NormalizeRequirement(req.Requirement)
		if placed[key] {
			continue
		}
		placed[key] = true
		unique = append(unique, req)

		if m, ok := found[key]; ok {
			m.JobRequirement = req.Requirement
			m.Importance = types.NormalizeImportance(req.Importance)
			m.Category = req.Category
			result.MatchedRequirements = append(result.MatchedRequirements, m)
			continue
		}
		result.UnmatchedRequirements = append(result.UnmatchedRequirements, types.UnmatchedRequirement{
			Requirement: req.Requirement,
			Importance:  types.NormalizeImportance(req.Importance),
			Category:    req.Category,
		})
	}

	score := ranking.CalculateScore(e.scoring, unique, result.MatchedRequirements)
	result.OverallScore = score.Overall
	result.EarnedPoints = score.EarnedPoints
	result.TotalPoints = score.TotalPoints
	result.FitLevel, result.IsFit = ranking.ClassifyFit(e.scoring, score.Overall)
	result.WeakEvidenceExperiences = ranking.DetectWeakEvidence(e.scoring, result.MatchedRequirements, score.Overall)
	result.CriticalGaps = ranking.CriticalGaps(result.UnmatchedRequirements)
	result.CategoryBreakdown = ranking.CategoryBreakdown(e.scoring, unique, result.MatchedRequirements)

	if !result.IsFit && payload != nil && payload.Recommendations != nil && len(payload.Recommendations.ForCandidate) > 0 {
		result.Recommendations = payload.Recommendations
	}
	return result
}

func (e *Engine) logger() *slog.Logger {
	if e.settings.Logger != nil {
		return e.settings.Logger
	}
	return slog.Default()
}

func indexRequirements(reqs []types.JobRequirement) map[string]types.JobRequirement {
	idx := make(map[string]types.JobRequirement, len(reqs))
	for _, r := range reqs {
		idx[ranking.NormalizeRequirement(r.Requirement)] = r
	}
	return idx
}
