package ranking

import (
	"fmt"
	"testing"

	"github.com/jonathan/job-fit-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func req(text string, importance types.Importance, category types.Category) types.JobRequirement {
	return types.JobRequirement{Requirement: text, Importance: importance, Category: category}
}

func matched(text string, strength types.EvidenceStrength) types.MatchedRequirement {
	return types.MatchedRequirement{
		JobRequirement:     text,
		ExperienceEvidence: "evidence for " + text,
		ExperienceSource:   "Acme - Engineer",
		MatchType:          types.MatchExact,
		EvidenceStrength:   strength,
	}
}

func TestCalculateScore_CriticalAndMediumMatched(t *testing.T) {
	reqs := []types.JobRequirement{
		req("Go", types.ImportanceCritical, types.CategoryTechnicalSkill),
		req("Kubernetes", types.ImportanceHigh, types.CategoryTechnicalSkill),
		req("Mentoring", types.ImportanceMedium, types.CategorySoftSkill),
	}
	m := []types.MatchedRequirement{
		matched("Go", types.EvidenceQuantified),
		matched("Mentoring", types.EvidenceDemonstrated),
	}

	score := CalculateScore(DefaultScoringConfig(), reqs, m)

	assert.Equal(t, 4.0, score.EarnedPoints)
	assert.Equal(t, 6.0, score.TotalPoints)
	assert.Equal(t, 67, score.Overall)
}

func TestCalculateScore_Bounds(t *testing.T) {
	importances := []types.Importance{types.ImportanceCritical, types.ImportanceHigh, types.ImportanceMedium, types.ImportanceLow}
	var reqs []types.JobRequirement
	for i, imp := range importances {
		reqs = append(reqs, req(fmt.Sprintf("req-%d", i), imp, types.CategoryTechnicalSkill))
	}

	// Every subset of matches stays within [0, 100]
	for mask := 0; mask < 1<<len(reqs); mask++ {
		var m []types.MatchedRequirement
		for i := range reqs {
			if mask&(1<<i) != 0 {
				m = append(m, matched(reqs[i].Requirement, types.EvidenceDemonstrated))
			}
		}
		score := CalculateScore(DefaultScoringConfig(), reqs, m)
		assert.GreaterOrEqual(t, score.Overall, 0)
		assert.LessOrEqual(t, score.Overall, 100)
	}
}

func TestCalculateScore_NoRequirements(t *testing.T) {
	score := CalculateScore(DefaultScoringConfig(), nil, nil)
	assert.Equal(t, 0, score.Overall)
}

func TestCalculateScore_MatchIsCaseAndSpaceInsensitive(t *testing.T) {
	reqs := []types.JobRequirement{req("5+ years  of Go", types.ImportanceHigh, types.CategoryYearsExperience)}
	m := []types.MatchedRequirement{matched("5+ Years of go", types.EvidenceQuantified)}

	assert.Equal(t, 100, CalculateScore(DefaultScoringConfig(), reqs, m).Overall)
}

func TestScoringConfig_AbsoluteIsCritical(t *testing.T) {
	cfg := DefaultScoringConfig()
	assert.Equal(t, 3.0, cfg.Weight(types.ImportanceAbsolute))
	assert.Equal(t, 3.0, cfg.Weight("CRITICAL"))
	assert.Equal(t, 0.5, cfg.Weight(types.ImportanceLow))
	assert.Equal(t, 1.0, cfg.Weight("unknown"))
}

func TestScoringConfig_OptionsDoNotLeakBetweenConfigs(t *testing.T) {
	custom := NewScoringConfig(WithImportanceWeight(types.ImportanceLow, 0.25), WithFitThreshold(70))
	def := DefaultScoringConfig()

	assert.Equal(t, 0.25, custom.Weight(types.ImportanceLow))
	assert.Equal(t, 0.5, def.Weight(types.ImportanceLow))
	assert.Equal(t, 70, custom.FitThreshold())
	assert.Equal(t, 80, def.FitThreshold())
}

func TestClassifyFit(t *testing.T) {
	cfg := DefaultScoringConfig()
	tests := []struct {
		score int
		level types.FitLevel
		isFit bool
	}{
		{100, types.FitExcellent, true},
		{90, types.FitExcellent, true},
		{89, types.FitGood, true},
		{80, types.FitGood, true},
		{79, types.FitFair, false},
		{60, types.FitFair, false},
		{59, types.FitPoor, false},
		{0, types.FitPoor, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%d", tt.score), func(t *testing.T) {
			level, isFit := ClassifyFit(cfg, tt.score)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.isFit, isFit)
		})
	}
}

func TestDetectWeakEvidence_FlagsMentionedAndImplied(t *testing.T) {
	m := []types.MatchedRequirement{
		matched("Go", types.EvidenceQuantified),
		matched("Kafka", types.EvidenceMentioned),
		matched("Leadership", types.EvidenceImplied),
		matched("SQL", types.EvidenceDemonstrated),
		matched("kafka", types.EvidenceImplied),
	}

	weak := DetectWeakEvidence(DefaultScoringConfig(), m, 60)

	require.Len(t, weak, 2)
	assert.Equal(t, "Kafka", weak[0].Requirement)
	assert.Equal(t, 0.5, weak[0].Confidence)
	assert.Equal(t, "Leadership", weak[1].Requirement)
	assert.Equal(t, 0.3, weak[1].Confidence)
	assert.NotEmpty(t, weak[1].Suggestion)
}

func TestDetectWeakEvidence_CappedAtFive(t *testing.T) {
	var m []types.MatchedRequirement
	for i := 0; i < 8; i++ {
		m = append(m, matched(fmt.Sprintf("skill-%d", i), types.EvidenceMentioned))
	}

	assert.Len(t, DetectWeakEvidence(DefaultScoringConfig(), m, 50), 5)
}

func TestDetectWeakEvidence_SuppressedAtFitScore(t *testing.T) {
	m := []types.MatchedRequirement{matched("Kafka", types.EvidenceMentioned)}
	assert.Nil(t, DetectWeakEvidence(DefaultScoringConfig(), m, 80))
}

func TestDetectWeakEvidence_IgnoresMissingStrength(t *testing.T) {
	m := []types.MatchedRequirement{matched("Kafka", "")}
	assert.Empty(t, DetectWeakEvidence(DefaultScoringConfig(), m, 10))
}

func TestCriticalGaps(t *testing.T) {
	unmatched := []types.UnmatchedRequirement{
		{Requirement: "Go", Importance: types.ImportanceCritical},
		{Requirement: "Rust", Importance: types.ImportanceLow},
		{Requirement: "Clearance", Importance: types.ImportanceAbsolute},
	}

	gaps := CriticalGaps(unmatched)

	require.Len(t, gaps, 2)
	assert.Equal(t, "Go", gaps[0].Requirement)
	assert.Equal(t, "Clearance", gaps[1].Requirement)
	assert.NotNil(t, CriticalGaps(nil), "empty, not nil, so it serializes as []")
}

func TestCategoryBreakdown(t *testing.T) {
	reqs := []types.JobRequirement{
		req("Go", types.ImportanceCritical, types.CategoryTechnicalSkill),
		req("Kafka", types.ImportanceHigh, types.CategoryTechnicalSkill),
		req("Mentoring", types.ImportanceMedium, types.CategorySoftSkill),
	}
	m := []types.MatchedRequirement{
		matched("Go", types.EvidenceQuantified),
		{JobRequirement: "Kafka", MatchType: types.MatchTransferable, EvidenceStrength: types.EvidenceMentioned},
	}

	breakdown := CategoryBreakdown(DefaultScoringConfig(), reqs, m)

	tech := breakdown[types.CategoryTechnicalSkill]
	assert.Equal(t, 5.0, tech.Possible)
	assert.InDelta(t, 3.0+2*0.7*0.5, tech.Achieved, 1e-9)
	assert.InDelta(t, 74.0, tech.Percentage, 1e-9)

	soft := breakdown[types.CategorySoftSkill]
	assert.Equal(t, 1.0, soft.Possible)
	assert.Equal(t, 0.0, soft.Achieved)
	assert.Equal(t, 0.0, soft.Percentage)
}
