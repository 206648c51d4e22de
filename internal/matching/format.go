package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// FormatRequirements renders requirements as prompt lines: "- [importance] (category) text"
func FormatRequirements(reqs []types.JobRequirement) string {
	var sb strings.Builder
	for _, r := range reqs {
		fmt.Fprintf(&sb, "- [%s] (%s) %s", types.NormalizeImportance(r.Importance), r.Category, r.Requirement)
		if r.MinimumYears != nil {
			fmt.Fprintf(&sb, " (minimum %g years)", *r.MinimumYears)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatExperiencesByRole renders experiences grouped under their "Company - Role" key,
// with each role's dates and length in months so the generator can total them.
func FormatExperiencesByRole(experiences []types.Experience, now time.Time) string {
	var sb strings.Builder
	for i, group := range types.GroupByRole(experiences) {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "### %s (%s, %d months)\n", group.Key, dateRange(group.Role), group.Role.DurationMonths(now))
		for _, exp := range group.Experiences {
			fmt.Fprintf(&sb, "- [%s] %s\n", exp.ID, exp.Title)
			if exp.Situation != nil && *exp.Situation != "" {
				fmt.Fprintf(&sb, "  Situation: %s\n", *exp.Situation)
			}
			if exp.Task != nil && *exp.Task != "" {
				fmt.Fprintf(&sb, "  Task: %s\n", *exp.Task)
			}
			fmt.Fprintf(&sb, "  Action: %s\n", exp.Action)
			fmt.Fprintf(&sb, "  Result: %s\n", exp.Result)
			if len(exp.Tags) > 0 {
				fmt.Fprintf(&sb, "  Tags: %s\n", strings.Join(exp.Tags, ", "))
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func dateRange(r types.Role) string {
	start := "unknown start"
	if r.StartDate != nil && !r.StartDate.IsZero() {
		start = r.StartDate.Format("2006-01")
	}
	end := "present"
	if !r.IsCurrent {
		end = "unknown end"
		if r.EndDate != nil && !r.EndDate.IsZero() {
			end = r.EndDate.Format("2006-01")
		}
	}
	return start + " to " + end
}

// FormatEducation renders education records, one per line
func FormatEducation(education []types.Education) string {
	if len(education) == 0 {
		return "None recorded"
	}
	lines := make([]string, 0, len(education))
	for _, edu := range education {
		degree := edu.Degree
		if degree == "" {
			degree = "Degree not specified"
		}
		line := fmt.Sprintf("- %s", degree)
		if edu.Field != "" {
			line += " in " + edu.Field
		}
		if edu.School != "" {
			line += ", " + edu.School
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
