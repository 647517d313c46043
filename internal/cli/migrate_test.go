package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestMigrateUp_AppliesAllMigrations(t *testing.T) {
	path := testDBPath(t)

	out, err := runCLI(t, "migrate", "up", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 2")
	assert.Contains(t, out, "[x] 0001 core tables")
	assert.Contains(t, out, "[x] 0002 import runs")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	path := testDBPath(t)

	_, err := runCLI(t, "migrate", "up", "--db", path)
	require.NoError(t, err)

	out, err := runCLI(t, "migrate", "up", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 2")
}

func TestMigrateStatus_FreshDatabase(t *testing.T) {
	path := testDBPath(t)

	out, err := runCLI(t, "migrate", "status", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 0")
	assert.Contains(t, out, "[ ] 0001 core tables")
	assert.Contains(t, out, "[ ] 0002 import runs")
}

func TestMigrateStatus_Golden(t *testing.T) {
	path := testDBPath(t)

	_, err := runCLI(t, "migrate", "up", "--db", path)
	require.NoError(t, err)

	out, err := runCLI(t, "migrate", "status", "--db", path)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "migrate_status", []byte(out))
}

func TestMigrateDown_ToTargetVersion(t *testing.T) {
	path := testDBPath(t)

	_, err := runCLI(t, "migrate", "up", "--db", path)
	require.NoError(t, err)

	out, err := runCLI(t, "migrate", "down", "--db", path, "--to", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 1")
	assert.Contains(t, out, "[x] 0001 core tables")
	assert.Contains(t, out, "[ ] 0002 import runs")
}

func TestMigrateDown_InvalidTarget(t *testing.T) {
	path := testDBPath(t)

	_, err := runCLI(t, "migrate", "up", "--db", path)
	require.NoError(t, err)

	_, err = runCLI(t, "migrate", "down", "--db", path, "--to", "99")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestMigrateStatus_JSONFormat(t *testing.T) {
	path := testDBPath(t)

	_, err := runCLI(t, "migrate", "up", "--db", path)
	require.NoError(t, err)

	out, err := runCLI(t, "migrate", "status", "--db", path, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["version"])
}
