package ranking

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// Default thresholds
const (
	DefaultFitThreshold       = 80
	DefaultExcellentThreshold = 90
	DefaultFairThreshold      = 60
	DefaultWeakEvidenceCutoff = 0.5
	DefaultMaxWeakEvidence    = 5
)

// ScoringConfig holds the weight tables and thresholds used to score a match.
// Fields are unexported so a config cannot change after it is built; derive
// variants with options instead.
type ScoringConfig struct {
	importanceWeights   map[types.Importance]float64
	evidenceMultipliers map[types.EvidenceStrength]float64
	matchTypeMultiplier map[types.MatchType]float64
	fitThreshold        int
	excellentThreshold  int
	fairThreshold       int
	weakEvidenceCutoff  float64
	maxWeakEvidence     int
}

// ScoringOption customizes a ScoringConfig at construction time
type ScoringOption func(*ScoringConfig)

// WithFitThreshold overrides the score at which a candidate counts as a fit
func WithFitThreshold(threshold int) ScoringOption {
	return func(c *ScoringConfig) {
		c.fitThreshold = threshold
	}
}

// WithImportanceWeight overrides the weight of one importance level
func WithImportanceWeight(importance types.Importance, weight float64) ScoringOption {
	return func(c *ScoringConfig) {
		c.importanceWeights[types.NormalizeImportance(importance)] = weight
	}
}

// WithMaxWeakEvidence overrides how many weak-evidence entries are surfaced
func WithMaxWeakEvidence(n int) ScoringOption {
	return func(c *ScoringConfig) {
		c.maxWeakEvidence = n
	}
}

// DefaultScoringConfig returns the standard weights: critical 3, high 2, medium 1, low 0.5
func DefaultScoringConfig() ScoringConfig {
	return NewScoringConfig()
}

// NewScoringConfig builds a config from the defaults plus any options
func NewScoringConfig(opts ...ScoringOption) ScoringConfig {
	c := ScoringConfig{
		importanceWeights: map[types.Importance]float64{
			types.ImportanceCritical: 3,
			types.ImportanceHigh:     2,
			types.ImportanceMedium:   1,
			types.ImportanceLow:      0.5,
		},
		evidenceMultipliers: map[types.EvidenceStrength]float64{
			types.EvidenceQuantified:   1.0,
			types.EvidenceDemonstrated: 0.8,
			types.EvidenceMentioned:    0.5,
			types.EvidenceImplied:      0.3,
		},
		matchTypeMultiplier: map[types.MatchType]float64{
			types.MatchExact:        1.0,
			types.MatchSemantic:     0.9,
			types.MatchSynonym:      0.9,
			types.MatchTransferable: 0.7,
			types.MatchContextual:   0.6,
		},
		fitThreshold:       DefaultFitThreshold,
		excellentThreshold: DefaultExcellentThreshold,
		fairThreshold:      DefaultFairThreshold,
		weakEvidenceCutoff: DefaultWeakEvidenceCutoff,
		maxWeakEvidence:    DefaultMaxWeakEvidence,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Weight returns the points a requirement of this importance is worth.
// "absolute" counts as critical. Unknown levels count as medium.
func (c ScoringConfig) Weight(importance types.Importance) float64 {
	if w, ok := c.importanceWeights[types.NormalizeImportance(importance)]; ok {
		return w
	}
	return c.importanceWeights[types.ImportanceMedium]
}

// EvidenceMultiplier returns the confidence multiplier for an evidence strength.
// ok is false when the strength is empty or unknown.
func (c ScoringConfig) EvidenceMultiplier(strength types.EvidenceStrength) (float64, bool) {
	m, ok := c.evidenceMultipliers[strength]
	return m, ok
}

// FitThreshold returns the minimum score that counts as a fit
func (c ScoringConfig) FitThreshold() int {
	return c.fitThreshold
}

// Score is the canonical importance-weighted fit score
type Score struct {
	EarnedPoints float64
	TotalPoints  float64
	Overall      int
}

// CalculateScore sums importance weights over all requirements and over the matched ones.
// Overall is round(earned / total * 100), and 0 when there are no requirements.
func CalculateScore(cfg ScoringConfig, requirements []types.JobRequirement, matched []types.MatchedRequirement) Score {
	matchedSet := make(map[string]bool, len(matched))
	for _, m := range matched {
		matchedSet[normalizeRequirement(m.JobRequirement)] = true
	}

	var score Score
	for _, req := range requirements {
		weight := cfg.Weight(req.Importance)
		score.TotalPoints += weight
		if matchedSet[normalizeRequirement(req.Requirement)] {
			score.EarnedPoints += weight
		}
	}

	if score.TotalPoints > 0 {
		overall := int(math.Round(score.EarnedPoints / score.TotalPoints * 100))
		score.Overall = max(0, min(100, overall))
	}
	return score
}

// ClassifyFit maps a score to a fit level. Only Excellent and Good are fits.
func ClassifyFit(cfg ScoringConfig, overall int) (types.FitLevel, bool) {
	switch {
	case overall >= cfg.excellentThreshold:
		return types.FitExcellent, overall >= cfg.fitThreshold
	case overall >= cfg.fitThreshold:
		return types.FitGood, true
	case overall >= cfg.fairThreshold:
		return types.FitFair, false
	default:
		return types.FitPoor, false
	}
}

// DetectWeakEvidence flags matches whose evidence multiplier is at or below the cutoff
// (mentioned or implied by default). Entries are deduplicated by requirement and capped.
// Nothing is returned once the score reaches the fit threshold.
func DetectWeakEvidence(cfg ScoringConfig, matched []types.MatchedRequirement, overall int) []types.WeakEvidence {
	if overall >= cfg.fitThreshold {
		return nil
	}

	var weak []types.WeakEvidence
	seen := make(map[string]bool)
	for _, m := range matched {
		multiplier, ok := cfg.EvidenceMultiplier(m.EvidenceStrength)
		if !ok || multiplier > cfg.weakEvidenceCutoff {
			continue
		}
		key := normalizeRequirement(m.JobRequirement)
		if seen[key] {
			continue
		}
		seen[key] = true

		weak = append(weak, types.WeakEvidence{
			Requirement:      m.JobRequirement,
			Evidence:         m.ExperienceEvidence,
			Source:           m.ExperienceSource,
			EvidenceStrength: m.EvidenceStrength,
			Confidence:       multiplier,
			Suggestion:       improvementSuggestion(m),
		})
		if len(weak) == cfg.maxWeakEvidence {
			break
		}
	}
	return weak
}

func improvementSuggestion(m types.MatchedRequirement) string {
	switch m.EvidenceStrength {
	case types.EvidenceImplied:
		return fmt.Sprintf("Your experience only implies %q. Add an experience that shows it directly, ideally with a measurable result.", m.JobRequirement)
	default:
		return fmt.Sprintf("You mention %q without showing it. Describe what you did and quantify the outcome.", m.JobRequirement)
	}
}

// CriticalGaps returns the unmatched requirements marked critical (or the legacy "absolute")
func CriticalGaps(unmatched []types.UnmatchedRequirement) []types.UnmatchedRequirement {
	gaps := []types.UnmatchedRequirement{}
	for _, u := range unmatched {
		if types.NormalizeImportance(u.Importance) == types.ImportanceCritical {
			gaps = append(gaps, u)
		}
	}
	return gaps
}

// CategoryBreakdown is a diagnostic view of coverage per category. Each matched requirement
// earns weight x match-type multiplier x evidence multiplier, so it rewards strong, direct
// evidence. It never feeds the overall score.
func CategoryBreakdown(cfg ScoringConfig, requirements []types.JobRequirement, matched []types.MatchedRequirement) map[types.Category]types.ScoreBreakdown {
	byText := make(map[string]types.MatchedRequirement, len(matched))
	for _, m := range matched {
		byText[normalizeRequirement(m.JobRequirement)] = m
	}

	breakdown := make(map[types.Category]types.ScoreBreakdown)
	for _, req := range requirements {
		weight := cfg.Weight(req.Importance)
		entry := breakdown[req.Category]
		entry.Possible += weight
		if m, ok := byText[normalizeRequirement(req.Requirement)]; ok {
			entry.Achieved += weight * cfg.matchMultiplier(m.MatchType) * cfg.evidenceOrFull(m.EvidenceStrength)
		}
		breakdown[req.Category] = entry
	}

	for category, entry := range breakdown {
		if entry.Possible > 0 {
			entry.Percentage = math.Round(entry.Achieved/entry.Possible*1000) / 10
		}
		breakdown[category] = entry
	}
	return breakdown
}

func (c ScoringConfig) matchMultiplier(mt types.MatchType) float64 {
	if m, ok := c.matchTypeMultiplier[mt]; ok {
		return m
	}
	return 1.0
}

func (c ScoringConfig) evidenceOrFull(strength types.EvidenceStrength) float64 {
	if m, ok := c.evidenceMultipliers[strength]; ok {
		return m
	}
	return 1.0
}

func normalizeRequirement(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// NormalizeRequirement is the key used to compare requirement text across stages
func NormalizeRequirement(s string) string {
	return normalizeRequirement(s)
}
