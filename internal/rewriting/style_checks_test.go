package rewriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckStyle(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		strongVerb bool
		quantified bool
		warnings   []string
	}{
		{
			name:       "clean bullet",
			text:       "Reduced deploy time by 40% across 12 services",
			strongVerb: true,
			quantified: true,
		},
		{
			name:       "past tense opener",
			text:       "Modernized the billing pipeline",
			strongVerb: true,
		},
		{
			name:       "weak opening",
			text:       "Responsible for the billing pipeline",
			warnings:   []string{WarnWeakOpening},
		},
		{
			name:       "semicolon",
			text:       "Built the ingest service; cut latency 20%",
			strongVerb: true,
			quantified: true,
			warnings:   []string{WarnSemicolon},
		},
		{
			name:       "em-dash",
			text:       "Led the migration — 30 services moved",
			strongVerb: true,
			quantified: true,
			warnings:   []string{WarnEmDash},
		},
		{
			name:       "abbreviation",
			text:       "Automated reporting for dept. leads, e.g. finance",
			strongVerb: true,
			warnings:   []string{WarnAbbreviation + " (e.g., dept.)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckStyle(tt.text)
			assert.Equal(t, tt.strongVerb, got.StrongVerb)
			assert.Equal(t, tt.quantified, got.Quantified)
			assert.Equal(t, tt.warnings, got.Warnings)
		})
	}
}

func TestCheckStyle_Empty(t *testing.T) {
	got := CheckStyle("")
	assert.False(t, got.StrongVerb)
	assert.False(t, got.Quantified)
	assert.Equal(t, []string{WarnWeakOpening}, got.Warnings)
}
