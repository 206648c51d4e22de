package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// maxImprovementAreas caps the suggestions listed in an action plan
const maxImprovementAreas = 5

// BuildActionPlan turns a match result into readiness flags and next steps.
// A fit candidate with no critical gaps is ready to apply; any fit candidate gets bullets.
func BuildActionPlan(match *types.MatchResult) types.ActionPlan {
	plan := types.ActionPlan{
		CriticalGaps:     []string{},
		ImprovementAreas: []string{},
		NextSteps:        []string{},
	}
	if match == nil {
		return plan
	}

	for _, gap := range match.CriticalGaps {
		plan.CriticalGaps = append(plan.CriticalGaps, gap.Requirement)
	}
	plan.ReadyForBulletGeneration = match.IsFit
	plan.ReadyForApplication = match.IsFit && len(plan.CriticalGaps) == 0

	for _, weak := range match.WeakEvidenceExperiences {
		if len(plan.ImprovementAreas) == maxImprovementAreas {
			break
		}
		plan.ImprovementAreas = append(plan.ImprovementAreas, fmt.Sprintf("%s: %s", weak.Requirement, weak.Suggestion))
	}
	for _, unmatched := range match.UnmatchedRequirements {
		if len(plan.ImprovementAreas) == maxImprovementAreas {
			break
		}
		if types.NormalizeImportance(unmatched.Importance) == types.ImportanceHigh {
			plan.ImprovementAreas = append(plan.ImprovementAreas, "No evidence yet for: "+unmatched.Requirement)
		}
	}

	switch {
	case plan.ReadyForApplication:
		plan.NextSteps = append(plan.NextSteps,
			"Add the generated bullets to your resume and review them for accuracy.",
			"Apply: your record covers every critical requirement.",
		)
	case match.IsFit:
		plan.NextSteps = append(plan.NextSteps,
			"Add the generated bullets to your resume and review them for accuracy.",
			fmt.Sprintf("Address the critical gaps in your cover letter: %s.", strings.Join(plan.CriticalGaps, "; ")),
		)
	default:
		if len(plan.CriticalGaps) > 0 {
			plan.NextSteps = append(plan.NextSteps,
				fmt.Sprintf("Close the critical gaps before applying: %s.", strings.Join(plan.CriticalGaps, "; ")))
		}
		if match.Recommendations != nil {
			plan.NextSteps = append(plan.NextSteps, match.Recommendations.ForCandidate...)
		}
		plan.NextSteps = append(plan.NextSteps,
			"Record experiences that show the missing requirements, then run the analysis again.")
	}
	return plan
}
