package types

// MatchMode selects how strictly keywords are matched against bullet text
type MatchMode string

// Keyword match modes
const (
	MatchModeExact    MatchMode = "exact"
	MatchModeFlexible MatchMode = "flexible"
)

// Valid reports whether the mode is known
func (m MatchMode) Valid() bool {
	return m == MatchModeExact || m == MatchModeFlexible
}

// GeneratedBullet is a bullet as returned by the generator, before verification
type GeneratedBullet struct {
	Text           string   `json:"text"`
	ExperienceID   string   `json:"experienceId"`
	KeywordsUsed   []string `json:"keywordsUsed"`
	RelevanceScore float64  `json:"relevanceScore"`
}

// GeneratedBullets is the raw Stage 2b generator payload
type GeneratedBullets struct {
	BulletPoints    map[string][]GeneratedBullet `json:"bulletPoints"`
	KeywordsUsed    []string                     `json:"keywordsUsed"`
	KeywordsNotUsed []string                     `json:"keywordsNotUsed"`
}

// BulletPoint is a final, verified and width-annotated bullet
type BulletPoint struct {
	Text           string   `json:"text"`
	OriginalText   string   `json:"originalText,omitempty"`
	ExperienceID   string   `json:"experienceId"`
	KeywordsUsed   []string `json:"keywordsUsed"`
	RelevanceScore float64  `json:"relevanceScore"`
	VisualWidth    float64  `json:"visualWidth"`
	ExceedsMax     bool     `json:"exceedsMax"`
	BelowMin       bool     `json:"belowMin"`
	IsWithinRange  bool     `json:"isWithinRange"`
	StrongVerb     bool     `json:"strongVerb"`
	Quantified     bool     `json:"quantified"`
	StyleWarnings  []string `json:"styleWarnings,omitempty"`
}

// BulletResult is the Stage 2b output
type BulletResult struct {
	BulletPoints          map[string][]BulletPoint `json:"bulletPoints"`
	ActualKeywordsUsed    []string                 `json:"keywordsUsed"`
	ActualKeywordsNotUsed []string                 `json:"keywordsNotUsed"`
	ClaimedKeywordsUsed   []string                 `json:"claimedKeywordsUsed,omitempty"`
	MatchMode             MatchMode                `json:"keywordMatchType"`
}
