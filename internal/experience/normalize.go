package experience

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-fit-analyzer/internal/parsing"
	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// NormalizeExperienceBank trims text fields, canonicalizes tags and checks that every
// record carries what the analyzer needs. userID, when set, overrides the bank's own.
func NormalizeExperienceBank(bank *types.ExperienceBank, userID string) error {
	if userID != "" {
		bank.UserID = userID
	}
	bank.UserID = strings.TrimSpace(bank.UserID)
	if _, err := uuid.Parse(bank.UserID); err != nil {
		return &NormalizationError{Section: "userId", Index: -1, Message: "must be a UUID"}
	}

	for i := range bank.Experiences {
		if err := normalizeExperience(&bank.Experiences[i]); err != nil {
			err.Index = i
			return err
		}
	}
	for i := range bank.Education {
		if err := normalizeEducation(&bank.Education[i]); err != nil {
			err.Index = i
			return err
		}
	}
	return nil
}

func normalizeExperience(exp *types.Experience) *NormalizationError {
	fail := func(msg string) *NormalizationError {
		return &NormalizationError{Section: "experiences", Message: msg}
	}

	exp.Title = strings.TrimSpace(exp.Title)
	exp.Action = strings.TrimSpace(exp.Action)
	exp.Result = strings.TrimSpace(exp.Result)
	exp.Situation = trimOptional(exp.Situation)
	exp.Task = trimOptional(exp.Task)
	exp.Role.Title = strings.TrimSpace(exp.Role.Title)
	exp.Role.Specialty = strings.TrimSpace(exp.Role.Specialty)
	exp.Role.Company.Name = strings.TrimSpace(exp.Role.Company.Name)
	exp.Tags = parsing.NormalizeTags(exp.Tags)

	switch {
	case exp.Role.Company.Name == "":
		return fail("role.company.name is required")
	case exp.Role.Title == "":
		return fail("role.title is required")
	case exp.Action == "" && exp.Result == "":
		return fail("action or result is required")
	}

	if exp.Role.IsCurrent {
		exp.Role.EndDate = nil
	}
	if endsBeforeStart(exp.Role.StartDate, exp.Role.EndDate) {
		return fail("role.endDate is before role.startDate")
	}
	return nil
}

func normalizeEducation(edu *types.Education) *NormalizationError {
	edu.School = strings.TrimSpace(edu.School)
	edu.Degree = strings.TrimSpace(edu.Degree)
	edu.Field = strings.TrimSpace(edu.Field)

	if edu.School == "" {
		return &NormalizationError{Section: "education", Message: "school is required"}
	}
	if endsBeforeStart(edu.StartDate, edu.EndDate) {
		return &NormalizationError{Section: "education", Message: "endDate is before startDate"}
	}
	return nil
}

// trimOptional trims s and turns a blank value into nil
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func endsBeforeStart(start, end *types.Date) bool {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return false
	}
	return end.Before(start.Time)
}
