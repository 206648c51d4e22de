package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-fit-analyzer/internal/config"
	"github.com/jonathan/job-fit-analyzer/internal/llm"
)

const fixtureUserID = "3f1c2a9e-8b7d-4c55-9e21-6a0f4d2b7c10"

var fixtureBank = filepath.Join("..", "..", "testdata", "valid", "experience_bank.json")

var testJobDescription = strings.Repeat("We are hiring a senior platform engineer to build and run Go services on Kubernetes with PostgreSQL. ", 6)

var testRequirements = []string{"Go in production", "Kubernetes operations", "PostgreSQL schema design"}

// scriptedGenerator answers each stage with a fixed payload, keyed by schema name
type scriptedGenerator struct {
	responses map[string]string
	calls     []string
}

func (g *scriptedGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	name := req.ResponseFormat.JSONSchema.Name
	g.calls = append(g.calls, name)
	resp, ok := g.responses[name]
	if !ok {
		return "", fmt.Errorf("no response scripted for %s", name)
	}
	return resp, nil
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

// notFitGenerator extracts three critical requirements and matches none of them
func notFitGenerator(t *testing.T) *scriptedGenerator {
	reqs := make([]map[string]any, 0, len(testRequirements))
	unmatched := make([]map[string]any, 0, len(testRequirements))
	for _, r := range testRequirements {
		reqs = append(reqs, map[string]any{"requirement": r, "importance": "critical", "category": "technical_skill"})
		unmatched = append(unmatched, map[string]any{"requirement": r, "importance": "critical"})
	}
	return &scriptedGenerator{responses: map[string]string{
		"requirements": mustJSON(t, map[string]any{
			"jobTitle":        "Senior Platform Engineer",
			"companySummary":  "A logistics company.",
			"jobRequirements": reqs,
			"allKeywords":     []string{"Go", "Kubernetes", "PostgreSQL"},
		}),
		"matching": mustJSON(t, map[string]any{
			"matchedRequirements":   []any{},
			"unmatchedRequirements": unmatched,
		}),
	}}
}

// useGenerator swaps generatorFactory for the duration of the test
func useGenerator(t *testing.T, gen llm.Generator) {
	t.Helper()
	original := generatorFactory
	generatorFactory = func(context.Context, *config.AppConfig) (llm.Generator, func(), error) {
		return gen, func() {}, nil
	}
	t.Cleanup(func() { generatorFactory = original })
}

// clearEnv isolates a test from the developer's .env
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "SQLITE_PATH", "GEMINI_API_KEY", "JOBFIT_MODEL", "JOBFIT_MAX_ATTEMPTS", "JOBFIT_USE_BROWSER", "JWT_SECRET", "JWT_EXPIRATION_HOURS"} {
		t.Setenv(key, "")
	}
	t.Setenv("JOBFIT_RETRY_DELAY", "1ms")
}

// runCmd executes the root command with args and returns stdout
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func importFixture(t *testing.T, sqlitePath string) {
	t.Helper()
	out, err := runCmd(t, "import", "--file", fixtureBank, "--sqlite", sqlitePath)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 3 experiences")
}

func writeJobFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.md")
	require.NoError(t, os.WriteFile(path, []byte(testJobDescription), 0o644))
	return path
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "analyze", "import", "token", "mcp"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
}
