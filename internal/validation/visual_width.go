// Package validation measures and trims resume bullet text and screens external input for prompt injection.
package validation

import "strings"

const (
	// DefaultMaxWidth is the widest a bullet may render and still fit on one resume line
	DefaultMaxWidth = 179.0
	// DefaultMinWidth is the narrowest a bullet should render before it looks sparse
	DefaultMinWidth = 100.0
)

// Glyph classes, checked in order. A character matches the first class that lists it.
const (
	extraWideGlyphs = "WM@%&"
	wideGlyphs      = "mwQGODBHNUAKR"
	narrowGlyphs    = "iljtfrIJ1!;:.'\"`|/"
)

// Per-class widths relative to an average lowercase letter
const (
	spaceWidth     = 0.55
	extraWideWidth = 1.25
	wideWidth      = 1.15
	narrowWidth    = 0.55
	hyphenWidth    = 0.70
	digitWidth     = 1.00
	upperWidth     = 1.10
	lowerWidth     = 1.00
	otherWidth     = 0.80
)

// WidthLimits bounds the acceptable visual width of a bullet
type WidthLimits struct {
	Max float64
	Min float64
}

// DefaultWidthLimits returns the standard single-line limits
func DefaultWidthLimits() WidthLimits {
	return WidthLimits{Max: DefaultMaxWidth, Min: DefaultMinWidth}
}

// WidthCheck is the result of measuring one bullet against the limits
type WidthCheck struct {
	Width         float64
	ExceedsMax    bool
	BelowMin      bool
	IsWithinRange bool
}

// CalculateVisualWidth approximates how wide text renders in a proportional resume font.
// Every character adds a non-negative amount, so the total never shrinks as text grows.
func CalculateVisualWidth(text string) float64 {
	total := 0.0
	for _, r := range text {
		total += charWidth(r)
	}
	return total
}

func charWidth(r rune) float64 {
	switch {
	case r == ' ':
		return spaceWidth
	case strings.ContainsRune(extraWideGlyphs, r):
		return extraWideWidth
	case strings.ContainsRune(wideGlyphs, r):
		return wideWidth
	case strings.ContainsRune(narrowGlyphs, r):
		return narrowWidth
	case r == '-':
		return hyphenWidth
	case r >= '0' && r <= '9':
		return digitWidth
	case r >= 'A' && r <= 'Z':
		return upperWidth
	case r >= 'a' && r <= 'z':
		return lowerWidth
	default:
		return otherWidth
	}
}

// CheckBullet measures text and flags it against the limits
func CheckBullet(text string, limits WidthLimits) WidthCheck {
	width := CalculateVisualWidth(text)
	check := WidthCheck{
		Width:      width,
		ExceedsMax: width > limits.Max,
		BelowMin:   width < limits.Min,
	}
	check.IsWithinRange = !check.ExceedsMax && !check.BelowMin
	return check
}
