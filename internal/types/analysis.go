package types

import "time"

// ActionPlan tells the candidate what to do with the analysis
type ActionPlan struct {
	ReadyForApplication      bool     `json:"readyForApplication"`
	ReadyForBulletGeneration bool     `json:"readyForBulletGeneration"`
	CriticalGaps             []string `json:"criticalGaps"`
	ImprovementAreas         []string `json:"improvementAreas"`
	NextSteps                []string `json:"nextSteps"`
}

// AnalysisResult is the unified output of one analysis run
type AnalysisResult struct {
	ID               string              `json:"id"`
	UserID           string              `json:"userId"`
	JobTitle         string              `json:"jobTitle,omitempty"`
	CompanySummary   string              `json:"companySummary,omitempty"`
	Requirements     *RequirementsResult `json:"requirements"`
	Match            *MatchResult        `json:"match"`
	Bullets          *BulletResult       `json:"bullets,omitempty"`
	ActionPlan       ActionPlan          `json:"actionPlan"`
	KeywordMatchType MatchMode           `json:"keywordMatchType"`
	CreatedAt        time.Time           `json:"createdAt"`
}
