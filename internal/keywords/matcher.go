// Package keywords checks whether job keywords actually appear in generated text.
package keywords

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

const (
	// minKeywordLength is the shortest single-word keyword flexible mode will consider
	minKeywordLength = 3
	// exactOnlyLength is the longest word that is matched exactly rather than by stem
	exactOnlyLength = 3
	// minStemLength is the shortest stem worth matching on; shorter stems use substring containment
	minStemLength = 3
)

// suffixes are stripped longest first so "ization" wins over "s"
var suffixes = []string{"ization", "isation", "tion", "ment", "ing", "ize", "ise", "es", "ed", "ly", "s"}

// IsKeywordInText reports whether keyword occurs in text.
//
// In exact mode the literal keyword must appear with word boundaries on both sides,
// ignoring case. In flexible mode every word of the keyword must appear, with words
// longer than three characters matched by stem so that "manage" finds "managed".
// Single-word keywords of two characters or fewer never match in flexible mode.
func IsKeywordInText(text, keyword string, mode types.MatchMode) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || text == "" {
		return false
	}

	if mode == types.MatchModeExact {
		return boundaryMatch(text, keyword)
	}

	words := strings.Fields(strings.ToLower(keyword))
	if len(words) == 1 && utf8.RuneCountInString(words[0]) < minKeywordLength {
		return false
	}

	lowerText := strings.ToLower(text)
	for _, word := range words {
		if !wordInText(lowerText, word) {
			return false
		}
	}
	return true
}

func wordInText(lowerText, word string) bool {
	if utf8.RuneCountInString(word) <= exactOnlyLength {
		return boundaryMatch(lowerText, word)
	}

	stem := Stem(word)
	if utf8.RuneCountInString(stem) < minStemLength {
		return strings.Contains(lowerText, word)
	}

	pattern := `(?i)(?:^|[^\p{L}\p{N}_])[\p{L}\p{N}_]*` + regexp.QuoteMeta(stem)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return strings.Contains(lowerText, stem)
	}
	return re.MatchString(lowerText)
}

// boundaryMatch is a case-insensitive match of literal with non-word characters (or the
// ends of the text) on both sides. Unlike \b it also works for keywords such as "C++".
func boundaryMatch(text, literal string) bool {
	pattern := `(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(literal) + `(?:$|[^\p{L}\p{N}_])`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// Stem strips one known suffix from a lowercase word.
// Words with no known suffix are returned unchanged.
func Stem(word string) string {
	for _, suffix := range suffixes {
		if strings.HasSuffix(word, suffix) {
			return strings.TrimSuffix(word, suffix)
		}
	}
	return word
}
