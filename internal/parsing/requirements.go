// Package parsing turns a raw job description into weighted, categorized requirements.
package parsing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
	"github.com/jonathan/job-fit-analyzer/internal/llm"
	"github.com/jonathan/job-fit-analyzer/internal/prompts"
	"github.com/jonathan/job-fit-analyzer/internal/schemas"
	"github.com/jonathan/job-fit-analyzer/internal/types"
	"github.com/jonathan/job-fit-analyzer/internal/validation"
)

const requirementsMaxTokens = 4096

// ValidateJobDescription checks the length bounds of a job description before any
// generator call: 400 to 10,000 characters and at least 50 words.
func ValidateJobDescription(text string) error {
	req := types.AnalyzeRequest{JobDescription: text}
	if err := req.Validate(); err != nil {
		return toValidationError(err)
	}
	return nil
}

// ValidateRequest checks a full analysis request
func ValidateRequest(req *types.AnalyzeRequest) error {
	if req == nil {
		return &apperrors.ValidationError{Field: "body", Message: "request body is required"}
	}
	if err := req.Validate(); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &apperrors.ValidationError{Message: err.Error(), Cause: err}
	}

	fe := fieldErrs[0]
	field := fieldName(fe.Field())
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = fmt.Sprintf("must be at least %s characters (got %d)", fe.Param(), runeLen(fe.Value()))
	case "max":
		msg = fmt.Sprintf("must be at most %s characters (got %d)", fe.Param(), runeLen(fe.Value()))
	case "minwords":
		msg = fmt.Sprintf("must contain at least %s words (got %d)", fe.Param(), wordLen(fe.Value()))
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &apperrors.ValidationError{Field: field, Message: msg, Cause: err}
}

func fieldName(structField string) string {
	switch structField {
	case "JobDescription":
		return "jobDescription"
	case "KeywordMatchType":
		return "keywordMatchType"
	}
	return structField
}

func runeLen(v any) int {
	s, _ := v.(string)
	return utf8.RuneCountInString(s)
}

func wordLen(v any) int {
	s, _ := v.(string)
	return types.WordCount(s)
}

// ExtractRequirements runs Stage 1: the generator enumerates the posting's requirements
// and keywords. The result has normalized importance levels and deduplicated keywords.
func ExtractRequirements(ctx context.Context, gen llm.Generator, jobDescription string, settings llm.Settings) (*types.RequirementsResult, error) {
	if err := ValidateJobDescription(jobDescription); err != nil {
		return nil, err
	}

	log := settings.Logger
	if log == nil {
		log = slog.Default()
	}
	validation.WarnOnInjection(log, jobDescription, "job_description")

	userPrompt, err := prompts.Render("requirements.json", "extract-requirements", map[string]string{
		"JobDescription": validation.QuoteExternalContent(jobDescription, "job description"),
	})
	if err != nil {
		return nil, err
	}

	result, err := llm.CallWithRetry(ctx, gen, llm.RetryOptions{
		Settings: settings,
		Stage:    llm.StageRequirements,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.MustGet("requirements.json", "system")},
			{Role: llm.RoleUser, Content: userPrompt},
		},
		Schema:    schemas.MustGet(schemas.Requirements),
		MaxTokens: requirementsMaxTokens,
	}, validateRequirements)
	if err != nil {
		return nil, err
	}

	return postProcess(result), nil
}

// validateRequirements rejects payloads the later stages cannot use
func validateRequirements(r *types.RequirementsResult) error {
	if len(r.JobRequirements) == 0 {
		return errors.New("jobRequirements is empty; list at least one requirement")
	}
	if r.AllKeywords == nil {
		return errors.New("missing allKeywords array")
	}
	for i, req := range r.JobRequirements {
		if strings.TrimSpace(req.Requirement) == "" {
			return fmt.Errorf("jobRequirements[%d].requirement is empty", i)
		}
		if !types.NormalizeImportance(req.Importance).Valid() {
			return fmt.Errorf("jobRequirements[%d].importance %q is not one of critical, high, medium, low", i, req.Importance)
		}
		if !req.Category.Valid() {
			return fmt.Errorf("jobRequirements[%d].category %q is not a known category", i, req.Category)
		}
	}
	return nil
}

// postProcess normalizes a validated Stage 1 payload. Requirements with the same text
// are kept once, at the highest importance given.
func postProcess(r *types.RequirementsResult) *types.RequirementsResult {
	out := &types.RequirementsResult{
		JobTitle:       strings.TrimSpace(r.JobTitle),
		CompanySummary: strings.TrimSpace(r.CompanySummary),
	}

	index := make(map[string]int)
	for _, req := range r.JobRequirements {
		req.Requirement = strings.Join(strings.Fields(req.Requirement), " ")
		req.Importance = types.NormalizeImportance(req.Importance)

		key := strings.ToLower(req.Requirement)
		if i, ok := index[key]; ok {
			if importanceRank(req.Importance) > importanceRank(out.JobRequirements[i].Importance) {
				out.JobRequirements[i].Importance = req.Importance
			}
			continue
		}
		index[key] = len(out.JobRequirements)
		out.JobRequirements = append(out.JobRequirements, req)
	}

	out.AllKeywords = DedupeKeywords(r.AllKeywords)
	return out
}

func importanceRank(i types.Importance) int {
	switch i {
	case types.ImportanceCritical:
		return 4
	case types.ImportanceHigh:
		return 3
	case types.ImportanceMedium:
		return 2
	case types.ImportanceLow:
		return 1
	}
	return 0
}

// DedupeKeywords trims keywords and drops case-insensitive duplicates, keeping the first spelling
func DedupeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}
