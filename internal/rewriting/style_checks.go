package rewriting

import (
	"regexp"
	"strings"

	"github.com/jonathan/job-fit-analyzer/internal/validation"
)

// Style warnings attached to bullets
const (
	WarnSemicolon    = "contains a semicolon"
	WarnEmDash       = "contains an em-dash"
	WarnAbbreviation = "contains an abbreviation"
	WarnWeakOpening  = "does not open with an action verb"
)

var digitPattern = regexp.MustCompile(`\d`)

// abbreviations are shorthand forms the generator is told to avoid
var abbreviations = []string{"e.g.", "i.e.", "etc.", "approx.", "w/", "w/o", "mgmt", "dept.", "yrs", "govt"}

// StyleChecksResult holds the style annotations for one bullet
type StyleChecksResult struct {
	StrongVerb bool
	Quantified bool
	Warnings   []string
}

// CheckStyle annotates a bullet against the writing rules given to the generator.
// The checks only report; they never change the text.
func CheckStyle(text string) StyleChecksResult {
	result := StyleChecksResult{
		StrongVerb: checkStrongVerb(text),
		Quantified: checkQuantifiedImpact(text),
	}

	if strings.Contains(text, ";") {
		result.Warnings = append(result.Warnings, WarnSemicolon)
	}
	if strings.ContainsAny(text, "—―") || strings.Contains(text, " -- ") {
		result.Warnings = append(result.Warnings, WarnEmDash)
	}
	if found := findAbbreviations(text); len(found) > 0 {
		result.Warnings = append(result.Warnings, WarnAbbreviation+" ("+strings.Join(found, ", ")+")")
	}
	if !result.StrongVerb {
		result.Warnings = append(result.Warnings, WarnWeakOpening)
	}
	return result
}

// checkStrongVerb checks if text starts with an action verb
func checkStrongVerb(text string) bool {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(words) == 0 {
		return false
	}

	firstWord := strings.TrimRight(words[0], ".,!?;:")
	if validation.IsActionVerb(firstWord) {
		return true
	}

	// Past-tense openers are almost always action verbs
	return strings.HasSuffix(firstWord, "ed") && len(firstWord) > 3
}

// checkQuantifiedImpact checks if text contains numbers or metrics
func checkQuantifiedImpact(text string) bool {
	return digitPattern.MatchString(text) || strings.Contains(text, "%")
}

func findAbbreviations(text string) []string {
	lower := " " + strings.ToLower(text) + " "
	var found []string
	for _, abbr := range abbreviations {
		if strings.Contains(lower, " "+abbr+" ") || strings.Contains(lower, " "+abbr+",") || strings.Contains(lower, "("+abbr) {
			found = append(found, abbr)
		}
	}
	return found
}
