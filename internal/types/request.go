package types

import (
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Job description bounds accepted by the analyzer
const (
	MinJobDescriptionChars = 400
	MaxJobDescriptionChars = 10000
	MinJobDescriptionWords = 50
)

// AnalyzeRequest is the body of a job-fit analysis request
type AnalyzeRequest struct {
	JobDescription   string    `json:"jobDescription" validate:"required,min=400,max=10000,minwords=50"`
	KeywordMatchType MatchMode `json:"keywordMatchType,omitempty" validate:"omitempty,oneof=exact flexible"`
}

// Validate validates the AnalyzeRequest using the validator.
func (r *AnalyzeRequest) Validate() error {
	return Validator().Struct(r)
}

// Mode returns the requested match mode, defaulting to flexible
func (r *AnalyzeRequest) Mode() MatchMode {
	if r.KeywordMatchType == "" {
		return MatchModeFlexible
	}
	return r.KeywordMatchType
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the custom "minwords" tag registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("minwords", func(fl validator.FieldLevel) bool {
			minWords, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return WordCount(fl.Field().String()) >= minWords
		})
	})
	return validate
}

// WordCount counts whitespace-separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}
