// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// PrintAnalysis prints every section of a finished analysis.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}
	p.PrintRequirements(result.Requirements)
	p.PrintMatch(result.Match)
	p.PrintBullets(result.Bullets)
	p.PrintActionPlan(result.ActionPlan)
}

// PrintRequirements outputs the extracted job requirements, most important first.
func (p *Printer) PrintRequirements(reqs *types.RequirementsResult) {
	if reqs == nil {
		return
	}

	var sb strings.Builder
	if reqs.JobTitle != "" {
		fmt.Fprintf(&sb, "Role:     %s\n", reqs.JobTitle)
	}
	fmt.Fprintf(&sb, "Requirements: %d   Keywords: %d\n", len(reqs.JobRequirements), len(reqs.AllKeywords))

	ordered := append([]types.JobRequirement(nil), reqs.JobRequirements...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return importanceRank(ordered[i].Importance) < importanceRank(ordered[j].Importance)
	})

	if len(ordered) > 0 {
		sb.WriteString("\n")
		count := min(len(ordered), maxItemsToShow)
		for i := 0; i < count; i++ {
			r := ordered[i]
			fmt.Fprintf(&sb, "  • [%s] %s\n", types.NormalizeImportance(r.Importance), r.Requirement)
		}
		if len(ordered) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(ordered)-maxItemsToShow)
		}
	}

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatch outputs the score, fit level and the gaps that cost the most.
func (p *Printer) PrintMatch(match *types.MatchResult) {
	if match == nil {
		return
	}

	var sb strings.Builder
	fit := "not a fit"
	if match.IsFit {
		fit = "fit"
	}
	fmt.Fprintf(&sb, "Score:    %d/100 (%s, %s)\n", match.OverallScore, match.FitLevel, fit)
	fmt.Fprintf(&sb, "Points:   %.1f of %.1f\n", match.EarnedPoints, match.TotalPoints)
	fmt.Fprintf(&sb, "Matched:  %d   Unmatched: %d\n", len(match.MatchedRequirements), len(match.UnmatchedRequirements))

	if len(match.CriticalGaps) > 0 {
		sb.WriteString("\nCritical gaps:\n")
		for _, gap := range match.CriticalGaps {
			fmt.Fprintf(&sb, "  ✗ %s\n", gap.Requirement)
		}
	}

	if len(match.WeakEvidenceExperiences) > 0 {
		sb.WriteString("\nWeak evidence:\n")
		count := min(len(match.WeakEvidenceExperiences), 3)
		for i := 0; i < count; i++ {
			w := match.WeakEvidenceExperiences[i]
			fmt.Fprintf(&sb, "  ⚠ %s (%s)\n", w.Requirement, w.EvidenceStrength)
		}
	}

	if match.Recommendations != nil && len(match.Recommendations.ForCandidate) > 0 {
		sb.WriteString("\nRecommendations:\n")
		count := min(len(match.Recommendations.ForCandidate), 3)
		for i := 0; i < count; i++ {
			fmt.Fprintf(&sb, "  • %s\n", match.Recommendations.ForCandidate[i])
		}
	}

	p.printBox("JOB FIT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBullets outputs generated bullets per role with width and style indicators.
func (p *Printer) PrintBullets(bullets *types.BulletResult) {
	if bullets == nil || len(bullets.BulletPoints) == 0 {
		return
	}

	roles := make([]string, 0, len(bullets.BulletPoints))
	for role := range bullets.BulletPoints {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Keywords used: %d   not used: %d\n", len(bullets.ActualKeywordsUsed), len(bullets.ActualKeywordsNotUsed))

	for _, role := range roles {
		fmt.Fprintf(&sb, "\n%s\n", role)
		for _, b := range bullets.BulletPoints[role] {
			fmt.Fprintf(&sb, "• %s\n", b.Text)

			checks := []string{fmt.Sprintf("%.0fw", b.VisualWidth)}
			if b.IsWithinRange {
				checks = append(checks, "✓width")
			}
			if b.StrongVerb {
				checks = append(checks, "✓verb")
			}
			if b.Quantified {
				checks = append(checks, "✓metrics")
			}
			if b.OriginalText != "" {
				checks = append(checks, "trimmed")
			}
			fmt.Fprintf(&sb, "  [%s]\n", strings.Join(checks, " "))
		}
	}

	p.printBox("GENERATED BULLETS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintActionPlan outputs readiness flags and next steps.
func (p *Printer) PrintActionPlan(plan types.ActionPlan) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ready to apply:     %s\n", yesNo(plan.ReadyForApplication))
	fmt.Fprintf(&sb, "Bullets generated:  %s\n", yesNo(plan.ReadyForBulletGeneration))

	if len(plan.ImprovementAreas) > 0 {
		sb.WriteString("\nImprove:\n")
		for _, area := range plan.ImprovementAreas {
			fmt.Fprintf(&sb, "  • %s\n", area)
		}
	}
	if len(plan.NextSteps) > 0 {
		sb.WriteString("\nNext steps:\n")
		for i, step := range plan.NextSteps {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, step)
		}
	}

	p.printBox("ACTION PLAN", strings.TrimSuffix(sb.String(), "\n"))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func importanceRank(i types.Importance) int {
	switch types.NormalizeImportance(i) {
	case types.ImportanceCritical:
		return 0
	case types.ImportanceHigh:
		return 1
	case types.ImportanceMedium:
		return 2
	default:
		return 3
	}
}
