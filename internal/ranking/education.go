// Package ranking scores how well a candidate's record covers a job's requirements.
package ranking

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// DegreeLevel is an ordinal degree rank. Higher values satisfy lower requirements.
type DegreeLevel int

// Degree levels in ascending order. DegreeNone means no degree was recorded or asked for.
const (
	DegreeNone DegreeLevel = iota
	DegreeOther
	DegreeDiploma
	DegreeAssociate
	DegreeBachelor
	DegreeMaster
	DegreePhD
)

var degreeNames = map[DegreeLevel]string{
	DegreeNone:      "None",
	DegreeOther:     "Other",
	DegreeDiploma:   "Diploma",
	DegreeAssociate: "Associate",
	DegreeBachelor:  "Bachelor's",
	DegreeMaster:    "Master's",
	DegreePhD:       "PhD",
}

func (d DegreeLevel) String() string {
	if name, ok := degreeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DegreeLevel(%d)", int(d))
}

// degreeTokens maps words found in degree names to their level
var degreeTokens = []struct {
	level  DegreeLevel
	tokens []string
}{
	{DegreePhD, []string{"phd", "doctorate", "doctoral", "doctor", "dphil", "edd"}},
	{DegreeMaster, []string{"master", "masters", "ms", "msc", "ma", "mba", "meng", "mfa", "mph"}},
	{DegreeBachelor, []string{"bachelor", "bachelors", "bs", "bsc", "ba", "beng", "bfa", "undergraduate", "baccalaureate"}},
	{DegreeAssociate, []string{"associate", "associates", "aa", "aas"}},
	{DegreeDiploma, []string{"diploma", "ged", "certificate", "highschool"}},
}

// degreeLevelsIn returns every degree level named in s, in descending order
func degreeLevelsIn(s string) []DegreeLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(".", "", "'", "", "’", "", "high school", "highschool").Replace(s)

	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[w] = true
	}

	var levels []DegreeLevel
	for _, entry := range degreeTokens {
		for _, token := range entry.tokens {
			if present[token] {
				levels = append(levels, entry.level)
				break
			}
		}
	}
	return levels
}

// ParseDegreeLevel recognizes common degree spellings ("B.S.", "Master of Science", "PhD").
// When several levels are named ("BS/MS") the highest wins. Empty input is DegreeNone;
// anything else unrecognized is DegreeOther.
func ParseDegreeLevel(s string) DegreeLevel {
	if strings.TrimSpace(s) == "" {
		return DegreeNone
	}
	levels := degreeLevelsIn(s)
	if len(levels) == 0 {
		return DegreeOther
	}
	return levels[0]
}

// HighestDegree returns the best degree level among the records and the record holding it.
// Records without a degree field are skipped; ok is false when none has one.
func HighestDegree(education []types.Education) (level DegreeLevel, record types.Education, ok bool) {
	for _, edu := range education {
		l := ParseDegreeLevel(edu.Degree)
		if l == DegreeNone {
			continue
		}
		if !ok || l > level {
			level, record, ok = l, edu, true
		}
	}
	return level, record, ok
}

// EducationMatch is the outcome of comparing a candidate's education to degree requirements
type EducationMatch struct {
	Meets         bool
	Lenient       bool
	UserLevel     DegreeLevel
	RequiredLevel DegreeLevel
	Evidence      string
	Source        string
}

// MeetsEducationRequirement compares the candidate's highest degree against the lowest of the
// required levels, so the most lenient requirement decides.
//
// A candidate with education records but no degree on any of them is leniently treated as
// meeting the requirement, with the school and field as evidence. A candidate with no
// records never meets it.
func MeetsEducationRequirement(education []types.Education, required []DegreeLevel) EducationMatch {
	threshold := lowestRequired(required)
	match := EducationMatch{RequiredLevel: threshold}

	if len(education) == 0 {
		return match
	}

	level, record, ok := HighestDegree(education)
	if !ok {
		first := education[0]
		match.Meets = true
		match.Lenient = true
		match.Evidence = describeEducation(first)
		match.Source = fmt.Sprintf("Education record at %s (degree not specified)", first.School)
		return match
	}

	match.UserLevel = level
	match.Meets = level >= threshold
	match.Evidence = describeEducation(record)
	match.Source = fmt.Sprintf("Education: %s (%s) compared to required minimum %s", record.School, level, threshold)
	return match
}

func lowestRequired(required []DegreeLevel) DegreeLevel {
	lowest := DegreeNone
	for _, level := range required {
		if level == DegreeNone {
			continue
		}
		if lowest == DegreeNone || level < lowest {
			lowest = level
		}
	}
	if lowest == DegreeNone {
		return DegreeOther
	}
	return lowest
}

func describeEducation(edu types.Education) string {
	parts := make([]string, 0, 3)
	if edu.Degree != "" {
		parts = append(parts, edu.Degree)
	}
	if edu.Field != "" {
		parts = append(parts, edu.Field)
	}
	if edu.School != "" {
		parts = append(parts, edu.School)
	}
	return strings.Join(parts, ", ")
}

// DegreeResolution splits requirements into deterministically resolved degree requirements and the rest
type DegreeResolution struct {
	Matched   []types.MatchedRequirement
	Unmatched []types.UnmatchedRequirement
	Remaining []types.JobRequirement
	Match     *EducationMatch
}

// ResolveDegreeRequirements answers every education_degree requirement without the generator.
// All degree requirements share one outcome, decided by the lowest level any of them asks for.
func ResolveDegreeRequirements(requirements []types.JobRequirement, education []types.Education) DegreeResolution {
	var (
		resolution DegreeResolution
		degreeReqs []types.JobRequirement
		levels     []DegreeLevel
	)

	for _, req := range requirements {
		if req.Category != types.CategoryEducationDegree {
			resolution.Remaining = append(resolution.Remaining, req)
			continue
		}
		degreeReqs = append(degreeReqs, req)
		levels = append(levels, requiredLevel(req))
	}

	if len(degreeReqs) == 0 {
		return resolution
	}

	match := MeetsEducationRequirement(education, levels)
	resolution.Match = &match

	for _, req := range degreeReqs {
		if !match.Meets {
			resolution.Unmatched = append(resolution.Unmatched, types.UnmatchedRequirement{
				Requirement: req.Requirement,
				Importance:  req.Importance,
				Category:    req.Category,
			})
			continue
		}
		strength := types.EvidenceDemonstrated
		if match.Lenient {
			strength = types.EvidenceMentioned
		}
		resolution.Matched = append(resolution.Matched, types.MatchedRequirement{
			JobRequirement:     req.Requirement,
			ExperienceEvidence: match.Evidence,
			ExperienceSource:   match.Source,
			MatchType:          types.MatchExact,
			EvidenceStrength:   strength,
			Importance:         req.Importance,
			Category:           req.Category,
		})
	}

	return resolution
}

// requiredLevel is the lowest level a requirement names, so "Bachelor's or Master's" asks for a Bachelor's.
// Requirements that name no level accept any degree.
func requiredLevel(req types.JobRequirement) DegreeLevel {
	levels := degreeLevelsIn(req.MinimumDegreeLevel)
	if len(levels) == 0 {
		levels = degreeLevelsIn(req.Requirement)
	}
	if len(levels) == 0 {
		return DegreeOther
	}
	return levels[len(levels)-1]
}
