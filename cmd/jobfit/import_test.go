package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCmd(t *testing.T) {
	clearEnv(t)
	sqlitePath := filepath.Join(t.TempDir(), "jobfit.db")

	out, err := runCmd(t, "import", "--file", fixtureBank, "--sqlite", sqlitePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 experiences across 2 roles at 2 companies, and 1 education records")

	_, err = os.Stat(sqlitePath)
	assert.NoError(t, err)
}

func TestImportCmd_UserIDOverride(t *testing.T) {
	clearEnv(t)
	sqlitePath := filepath.Join(t.TempDir(), "jobfit.db")

	_, err := runCmd(t, "import", "--file", fixtureBank, "--sqlite", sqlitePath, "--user-id", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a UUID")
}

func TestImportCmd_Errors(t *testing.T) {
	clearEnv(t)

	_, err := runCmd(t, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")

	_, err = runCmd(t, "import", "--file", "/nonexistent/bank.json", "--sqlite", filepath.Join(t.TempDir(), "jobfit.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}
