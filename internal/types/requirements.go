// Package types provides type definitions for structured data used throughout the job-fit analyzer.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Importance ranks how strongly a job posting asks for a requirement
type Importance string

// Importance levels. ImportanceAbsolute is a legacy spelling of critical.
const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
	ImportanceAbsolute Importance = "absolute"
)

// Valid reports whether the importance is one of the known levels (including the legacy one)
func (i Importance) Valid() bool {
	switch i {
	case ImportanceCritical, ImportanceHigh, ImportanceMedium, ImportanceLow, ImportanceAbsolute:
		return true
	}
	return false
}

// NormalizeImportance folds casing and maps the legacy "absolute" level onto critical.
// Unknown values are returned lowercased and unchanged so callers can reject them.
func NormalizeImportance(i Importance) Importance {
	normalized := Importance(strings.ToLower(strings.TrimSpace(string(i))))
	if normalized == ImportanceAbsolute {
		return ImportanceCritical
	}
	return normalized
}

// Category classifies what kind of qualification a requirement asks for
type Category string

// Requirement categories
const (
	CategoryEducationDegree Category = "education_degree"
	CategoryEducationField  Category = "education_field"
	CategoryYearsExperience Category = "years_experience"
	CategoryRoleTitle       Category = "role_title"
	CategoryTechnicalSkill  Category = "technical_skill"
	CategorySoftSkill       Category = "soft_skill"
	CategoryDomainKnowledge Category = "domain_knowledge"
)

// AllCategories lists every category in a stable order
func AllCategories() []Category {
	return []Category{
		CategoryEducationDegree,
		CategoryEducationField,
		CategoryYearsExperience,
		CategoryRoleTitle,
		CategoryTechnicalSkill,
		CategorySoftSkill,
		CategoryDomainKnowledge,
	}
}

// Valid reports whether the category is known
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// JobRequirement is a single weighted requirement extracted from a job description.
// It is created once per analysis run and not modified afterwards.
type JobRequirement struct {
	Requirement           string     `json:"requirement"`
	Importance            Importance `json:"importance"`
	Category              Category   `json:"category"`
	MinimumDegreeLevel    string     `json:"minimumDegreeLevel,omitempty"`
	MinimumYears          *float64   `json:"minimumYears,omitempty"`
	RequiredTitleKeywords []string   `json:"requiredTitleKeywords,omitempty"`
	PreferredFields       []string   `json:"preferredFields,omitempty"`
}

// RequirementsResult is the Stage 1 output
type RequirementsResult struct {
	JobRequirements []JobRequirement `json:"jobRequirements"`
	AllKeywords     []string         `json:"allKeywords"`
	JobTitle        string           `json:"jobTitle"`
	CompanySummary  string           `json:"companySummary"`
}
