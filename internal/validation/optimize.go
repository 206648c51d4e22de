package validation

import (
	"sort"
	"strings"
	"unicode"
)

// longWordThreshold is the length above which a word is assumed to carry meaning
const longWordThreshold = 8

// actionVerbs are never dropped when trimming a bullet
var actionVerbs = map[string]bool{
	"achieved": true, "architected": true, "automated": true, "built": true,
	"created": true, "delivered": true, "designed": true, "developed": true,
	"drove": true, "engineered": true, "implemented": true, "improved": true,
	"increased": true, "launched": true, "led": true, "managed": true,
	"migrated": true, "optimized": true, "reduced": true, "scaled": true,
	"shipped": true, "streamlined": true, "transformed": true,
}

// IsActionVerb reports whether word (any case, trailing punctuation ignored) is a known action verb
func IsActionVerb(word string) bool {
	return actionVerbs[normalizeWord(word)]
}

// OptimizeBullet trims filler words from a bullet that renders wider than limits.Max.
//
// The first word, words containing a digit, action verbs and words longer than eight
// characters are always kept. Other words are dropped shortest first until the text fits.
// If dropping every candidate still does not fit, the input is returned unchanged and
// the second return value is false.
func OptimizeBullet(text string, limits WidthLimits) (string, bool) {
	if CalculateVisualWidth(text) <= limits.Max {
		return text, false
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text, false
	}

	var droppable []int
	for i := 1; i < len(words); i++ {
		if !mustKeep(words[i]) {
			droppable = append(droppable, i)
		}
	}
	sort.SliceStable(droppable, func(a, b int) bool {
		return len(words[droppable[a]]) < len(words[droppable[b]])
	})

	dropped := make(map[int]bool, len(droppable))
	for _, idx := range droppable {
		dropped[idx] = true
		candidate := joinKept(words, dropped)
		if CalculateVisualWidth(candidate) <= limits.Max {
			return candidate, true
		}
	}

	return text, false
}

func mustKeep(word string) bool {
	if strings.IndexFunc(word, unicode.IsDigit) >= 0 {
		return true
	}
	if IsActionVerb(word) {
		return true
	}
	return len(normalizeWord(word)) > longWordThreshold
}

func joinKept(words []string, dropped map[int]bool) string {
	kept := make([]string, 0, len(words)-len(dropped))
	for i, w := range words {
		if !dropped[i] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func normalizeWord(word string) string {
	return strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}))
}
