// Package rewriting turns a candidate's experiences into verified, width-checked resume bullets.
package rewriting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
	"github.com/jonathan/job-fit-analyzer/internal/keywords"
	"github.com/jonathan/job-fit-analyzer/internal/llm"
	"github.com/jonathan/job-fit-analyzer/internal/matching"
	"github.com/jonathan/job-fit-analyzer/internal/prompts"
	"github.com/jonathan/job-fit-analyzer/internal/schemas"
	"github.com/jonathan/job-fit-analyzer/internal/types"
	"github.com/jonathan/job-fit-analyzer/internal/validation"
)

// MaxBulletsPerRole is the most bullets accepted for one role
const MaxBulletsPerRole = 6

const bulletsMaxTokens = 8192

var timeNow = time.Now

// Input is everything Stage 2b needs from earlier stages
type Input struct {
	Match       *types.MatchResult
	Experiences []types.Experience
	Keywords    []string
	Mode        types.MatchMode
}

// Options configures bullet generation
type Options struct {
	Settings llm.Settings
	Limits   validation.WidthLimits
}

// GenerateBullets runs Stage 2b. It refuses to run for a candidate who is not a fit.
//
// Generated bullets are trimmed when they render too wide, then every keyword claim is
// re-checked against the bullet's final text, so keywordsUsed only lists keywords the
// text really contains.
func GenerateBullets(ctx context.Context, gen llm.Generator, in Input, opts Options) (*types.BulletResult, error) {
	if in.Match == nil || !in.Match.IsFit {
		score := 0
		if in.Match != nil {
			score = in.Match.OverallScore
		}
		return nil, &apperrors.BusinessRuleError{
			Rule:    "fit_threshold",
			Message: fmt.Sprintf("bullets are only generated for a fit candidate; score %d is below the fit threshold", score),
		}
	}
	if len(in.Experiences) == 0 {
		return nil, &apperrors.NoDataError{Resource: "experiences", Message: "no experiences to write bullets from"}
	}

	mode := in.Mode
	if !mode.Valid() {
		mode = types.MatchModeFlexible
	}
	limits := opts.Limits
	if limits.Max == 0 {
		limits = validation.DefaultWidthLimits()
	}

	groups := types.GroupByRole(in.Experiences)
	userPrompt, err := buildPrompt(groups, in, mode, limits)
	if err != nil {
		return nil, err
	}

	payload, err := llm.CallWithRetry(ctx, gen, llm.RetryOptions{
		Settings: opts.Settings,
		Stage:    llm.StageBullets,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.MustGet("bullets.json", "system")},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		Schema:    schemas.MustGet(schemas.Bullets),
		MaxTokens: bulletsMaxTokens,
	}, bulletValidator(groups))
	if err != nil {
		return nil, err
	}

	return finalize(payload, in.Keywords, mode, limits, logger(opts.Settings)), nil
}

func buildPrompt(groups []types.RoleGroup, in Input, mode types.MatchMode, limits validation.WidthLimits) (string, error) {
	matched := make([]string, 0, len(in.Match.MatchedRequirements))
	for _, m := range in.Match.MatchedRequirements {
		matched = append(matched, "- "+m.JobRequirement)
	}

	var experiences []types.Experience
	for _, g := range groups {
		experiences = append(experiences, g.Experiences...)
	}

	return prompts.Render("bullets.json", "generate-bullets", map[string]string{
		"MinWidth":      strconv.FormatFloat(limits.Min, 'f', -1, 64),
		"MaxWidth":      strconv.FormatFloat(limits.Max, 'f', -1, 64),
		"MatchMode":     string(mode),
		"MatchModeHint": prompts.MustGet("bullets.json", "mode-"+string(mode)),
		"Keywords":      strings.Join(in.Keywords, ", "),
		"Matched":       strings.Join(matched, "\n"),
		"Experiences":   matching.FormatExperiencesByRole(experiences, timeNow()),
	})
}

// bulletValidator rejects bullets for unknown roles or experiences, empty text and oversized roles
func bulletValidator(groups []types.RoleGroup) func(*types.GeneratedBullets) error {
	known := make(map[string]map[string]bool, len(groups))
	for _, g := range groups {
		ids := make(map[string]bool, len(g.Experiences))
		for _, exp := range g.Experiences {
			ids[exp.ID] = true
		}
		known[g.Key] = ids
	}

	return func(p *types.GeneratedBullets) error {
		if p.BulletPoints == nil {
			return errors.New("missing bulletPoints object")
		}
		if p.KeywordsUsed == nil || p.KeywordsNotUsed == nil {
			return errors.New("missing keywordsUsed or keywordsNotUsed array")
		}
		if len(p.BulletPoints) == 0 {
			return errors.New("bulletPoints is empty; write bullets for at least one role")
		}

		roles := make([]string, 0, len(p.BulletPoints))
		for role := range p.BulletPoints {
			roles = append(roles, role)
		}
		sort.Strings(roles)

		for _, role := range roles {
			ids, ok := known[role]
			if !ok {
				return fmt.Errorf("bulletPoints key %q is not one of the roles; use the \"Company - Role\" keys exactly as given", role)
			}
			bullets := p.BulletPoints[role]
			if len(bullets) > MaxBulletsPerRole {
				return fmt.Errorf("bulletPoints[%q] has %d bullets; the limit is %d", role, len(bullets), MaxBulletsPerRole)
			}
			for i, b := range bullets {
				if strings.TrimSpace(b.Text) == "" {
					return fmt.Errorf("bulletPoints[%q][%d].text is empty", role, i)
				}
				if !ids[b.ExperienceID] {
					return fmt.Errorf("bulletPoints[%q][%d].experienceId %q is not an experience of that role", role, i, b.ExperienceID)
				}
			}
		}
		return nil
	}
}

// finalize trims over-wide bullets, verifies keyword claims and annotates each bullet
func finalize(p *types.GeneratedBullets, allKeywords []string, mode types.MatchMode, limits validation.WidthLimits, log *slog.Logger) *types.BulletResult {
	trimmed := make(map[string][]types.GeneratedBullet, len(p.BulletPoints))
	originals := make(map[string][]string, len(p.BulletPoints))
	for role, bullets := range p.BulletPoints {
		out := make([]types.GeneratedBullet, len(bullets))
		orig := make([]string, len(bullets))
		for i, b := range bullets {
			text := strings.TrimSpace(b.Text)
			if optimized, ok := validation.OptimizeBullet(text, limits); ok {
				orig[i] = text
				text = optimized
			}
			b.Text = text
			out[i] = b
		}
		trimmed[role] = out
		originals[role] = orig
	}

	verified := keywords.VerifyKeywordsInBullets(trimmed, allKeywords, mode)

	result := &types.BulletResult{
		BulletPoints:          make(map[string][]types.BulletPoint, len(verified.VerifiedBullets)),
		ActualKeywordsUsed:    verified.ActualKeywordsUsed,
		ActualKeywordsNotUsed: verified.ActualKeywordsNotUsed,
		ClaimedKeywordsUsed:   p.KeywordsUsed,
		MatchMode:             mode,
	}

	var overWide, trimmedCount int
	for role, bullets := range verified.VerifiedBullets {
		points := make([]types.BulletPoint, 0, len(bullets))
		for i, b := range bullets {
			check := validation.CheckBullet(b.Text, limits)
			style := CheckStyle(b.Text)
			if originals[role][i] != "" {
				trimmedCount++
			}
			if check.ExceedsMax {
				overWide++
			}
			points = append(points, types.BulletPoint{
				Text:           b.Text,
				OriginalText:   originals[role][i],
				ExperienceID:   b.ExperienceID,
				KeywordsUsed:   b.KeywordsUsed,
				RelevanceScore: b.RelevanceScore,
				VisualWidth:    check.Width,
				ExceedsMax:     check.ExceedsMax,
				BelowMin:       check.BelowMin,
				IsWithinRange:  check.IsWithinRange,
				StrongVerb:     style.StrongVerb,
				Quantified:     style.Quantified,
				StyleWarnings:  style.Warnings,
			})
		}
		result.BulletPoints[role] = points
	}

	log.Info("bullets generated",
		slog.Int("roles", len(result.BulletPoints)),
		slog.Int("trimmed", trimmedCount),
		slog.Int("still_too_wide", overWide),
		slog.Int("keywords_used", len(result.ActualKeywordsUsed)),
		slog.Int("keywords_claimed", len(p.KeywordsUsed)),
	)
	return result
}

func logger(s llm.Settings) *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
