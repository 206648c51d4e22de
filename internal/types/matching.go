package types

// MatchType describes how the evidence relates to the requirement
type MatchType string

// Match types
const (
	MatchExact        MatchType = "exact"
	MatchSemantic     MatchType = "semantic"
	MatchSynonym      MatchType = "synonym"
	MatchTransferable MatchType = "transferable"
	MatchContextual   MatchType = "contextual"
)

// Valid reports whether the match type is known. Empty is allowed since the field is optional.
func (m MatchType) Valid() bool {
	switch m {
	case "", MatchExact, MatchSemantic, MatchSynonym, MatchTransferable, MatchContextual:
		return true
	}
	return false
}

// EvidenceStrength is the confidence tier of the evidence behind a match
type EvidenceStrength string

// Evidence strengths, strongest first
const (
	EvidenceQuantified   EvidenceStrength = "quantified"
	EvidenceDemonstrated EvidenceStrength = "demonstrated"
	EvidenceMentioned    EvidenceStrength = "mentioned"
	EvidenceImplied      EvidenceStrength = "implied"
)

// Valid reports whether the evidence strength is known. Empty is allowed since the field is optional.
func (e EvidenceStrength) Valid() bool {
	switch e {
	case "", EvidenceQuantified, EvidenceDemonstrated, EvidenceMentioned, EvidenceImplied:
		return true
	}
	return false
}

// MatchedRequirement links a requirement to the experience that satisfies it
type MatchedRequirement struct {
	JobRequirement     string           `json:"jobRequirement"`
	ExperienceEvidence string           `json:"experienceEvidence"`
	ExperienceSource   string           `json:"experienceSource"`
	MatchType          MatchType        `json:"matchType,omitempty"`
	EvidenceStrength   EvidenceStrength `json:"evidenceStrength,omitempty"`

	// Filled in from the extracted requirement after matching
	Importance Importance `json:"importance,omitempty"`
	Category   Category   `json:"category,omitempty"`
}

// UnmatchedRequirement is a requirement with no supporting evidence
type UnmatchedRequirement struct {
	Requirement string     `json:"requirement"`
	Importance  Importance `json:"importance"`
	Category    Category   `json:"category,omitempty"`
}

// ScoreBreakdown holds the points for one category
type ScoreBreakdown struct {
	Possible   float64 `json:"possible"`
	Achieved   float64 `json:"achieved"`
	Percentage float64 `json:"percentage"`
}

// WeakEvidence flags a match whose evidence is too thin to rely on
type WeakEvidence struct {
	Requirement      string           `json:"requirement"`
	Evidence         string           `json:"evidence"`
	Source           string           `json:"source,omitempty"`
	EvidenceStrength EvidenceStrength `json:"evidenceStrength"`
	Confidence       float64          `json:"confidence"`
	Suggestion       string           `json:"suggestion"`
}

// Recommendations carries generator advice returned with low scores
type Recommendations struct {
	ForCandidate []string `json:"forCandidate"`
}

// FitLevel is the human-readable fit classification
type FitLevel string

// Fit levels
const (
	FitExcellent FitLevel = "Excellent"
	FitGood      FitLevel = "Good"
	FitFair      FitLevel = "Fair"
	FitPoor      FitLevel = "Poor"
)

// MatchResult is the Stage 2a output
type MatchResult struct {
	MatchedRequirements     []MatchedRequirement        `json:"matchedRequirements"`
	UnmatchedRequirements   []UnmatchedRequirement      `json:"unmatchedRequirements"`
	OverallScore            int                         `json:"overallScore"`
	EarnedPoints            float64                     `json:"earnedPoints"`
	TotalPoints             float64                     `json:"totalPoints"`
	FitLevel                FitLevel                    `json:"fitLevel"`
	IsFit                   bool                        `json:"isFit"`
	WeakEvidenceExperiences []WeakEvidence              `json:"weakEvidenceExperiences,omitempty"`
	CriticalGaps            []UnmatchedRequirement      `json:"criticalGaps"`
	CategoryBreakdown       map[Category]ScoreBreakdown `json:"categoryBreakdown,omitempty"`
	Recommendations         *Recommendations            `json:"recommendations,omitempty"`
}
