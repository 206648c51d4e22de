package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateVisualWidth_Empty(t *testing.T) {
	assert.Equal(t, 0.0, CalculateVisualWidth(""))
}

func TestCalculateVisualWidth_GlyphClasses(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"space", " ", 0.55},
		{"extra wide", "W", 1.25},
		{"wide lowercase m", "m", 1.15},
		{"narrow i", "i", 0.55},
		{"narrow digit one", "1", 0.55},
		{"hyphen", "-", 0.70},
		{"digit", "7", 1.0},
		{"plain uppercase", "C", 1.10},
		{"plain lowercase", "a", 1.0},
		{"other symbol", ",", 0.80},
		{"mixed", "mQ-7x,", 5.8},
		{"words", "a b", 2.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateVisualWidth(tt.text), 1e-9)
		})
	}
}

func TestCalculateVisualWidth_Monotonic(t *testing.T) {
	text := "Led 12-person team; shipped W@M features & cut latency 40% (p99) — fast!"
	prev := 0.0
	for i := range text {
		width := CalculateVisualWidth(text[:i])
		assert.GreaterOrEqual(t, width, prev, "width shrank at byte %d", i)
		prev = width
	}
	assert.GreaterOrEqual(t, CalculateVisualWidth(text), prev)
}

func TestCheckBullet_Flags(t *testing.T) {
	limits := DefaultWidthLimits()

	short := CheckBullet("Built tools", limits)
	assert.True(t, short.BelowMin)
	assert.False(t, short.ExceedsMax)
	assert.False(t, short.IsWithinRange)

	long := CheckBullet(strings.Repeat("a", 200), limits)
	assert.True(t, long.ExceedsMax)
	assert.False(t, long.IsWithinRange)

	fits := CheckBullet(strings.Repeat("a", 150), limits)
	assert.True(t, fits.IsWithinRange)
	assert.InDelta(t, 150.0, fits.Width, 1e-9)
}

func TestOptimizeBullet_UnderBudgetUntouched(t *testing.T) {
	text := "Managed a team of five"
	got, changed := OptimizeBullet(text, DefaultWidthLimits())
	assert.False(t, changed)
	assert.Equal(t, text, got)
}

func TestOptimizeBullet_TrimsFillerWords(t *testing.T) {
	text := "Developed a new internal reporting system for the sales and the finance teams that cut the monthly close process from 10 days to 4 days and saved the whole company over $200K in a single fiscal year by removing all of the manual steps"
	limits := DefaultWidthLimits()
	require.Greater(t, CalculateVisualWidth(text), limits.Max)

	got, changed := OptimizeBullet(text, limits)
	require.True(t, changed)
	assert.LessOrEqual(t, CalculateVisualWidth(got), limits.Max)
	assert.True(t, strings.HasPrefix(got, "Developed "), "first word is kept")
	assert.Contains(t, got, "$200K")
	assert.Contains(t, got, "10")
	assert.Contains(t, got, "reporting")
}

func TestOptimizeBullet_IrreducibleReturnsOriginal(t *testing.T) {
	text := "Implemented " + strings.Repeat("infrastructure ", 15) + "automation"
	limits := DefaultWidthLimits()
	require.Greater(t, CalculateVisualWidth(text), limits.Max)

	got, changed := OptimizeBullet(text, limits)
	assert.False(t, changed)
	assert.Equal(t, text, got, "must be byte-identical when trimming cannot fit")
}

func TestIsActionVerb(t *testing.T) {
	assert.True(t, IsActionVerb("Led"))
	assert.True(t, IsActionVerb("optimized,"))
	assert.False(t, IsActionVerb("the"))
}
