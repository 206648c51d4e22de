package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"jobTitle\": \"Backend Engineer\"}\n```",
			expected: `{"jobTitle": "Backend Engineer"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"allKeywords\": [\"Go\"]}\n```",
			expected: `{"allKeywords": ["Go"]}`,
		},
		{
			name:     "plain object",
			input:    `{"matchedRequirements": []}`,
			expected: `{"matchedRequirements": []}`,
		},
		{
			name:     "preamble before object",
			input:    "Here is the analysis you asked for:\n{\"unmatchedRequirements\": []}",
			expected: `{"unmatchedRequirements": []}`,
		},
		{
			name:     "trailing chatter",
			input:    "{\"keywordsUsed\": [\"Go\"]}\n\nLet me know if you want more bullets.",
			expected: `{"keywordsUsed": ["Go"]}`,
		},
		{
			name:     "bracketed preamble before object",
			input:    "Here is the result [schema v2]:\n{\"jobRequirements\": [], \"allKeywords\": []}",
			expected: `{"jobRequirements": [], "allKeywords": []}`,
		},
		{
			name:     "bare array is not an object",
			input:    "Keywords:\n[\"Go\", \"Kafka\"]",
			expected: "Keywords:\n[\"Go\", \"Kafka\"]",
		},
		{
			name:     "escaped quotes and braces in strings",
			input:    `Result: {"text": "Built a \"{fast}\" cache"}`,
			expected: `{"text": "Built a \"{fast}\" cache"}`,
		},
		{
			name:     "no json at all",
			input:    "I could not analyze this posting.",
			expected: "I could not analyze this posting.",
		},
		{
			name:     "truncated object is returned as is",
			input:    `{"bulletPoints": {"Acme - Engineer": [`,
			expected: `{"bulletPoints": {"Acme - Engineer": [`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"nested", `{"a": {"b": 1}} tail`, `{"a": {"b": 1}}`},
		{"braces inside string", `{"t": "Hello {name}!"}`, `{"t": "Hello {name}!"}`},
		{"escaped backslash before quote", `{"p": "C:\\"} x`, `{"p": "C:\\"}`},
		{"empty", "", ""},
		{"not an object", "not json", ""},
		{"unbalanced", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSONObject(tt.input))
		})
	}
}
