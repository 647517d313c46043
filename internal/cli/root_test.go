package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := runCLI(t, "migrate", "status", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootOptions_DatabasePath_FlagWins(t *testing.T) {
	opts := &RootOptions{Database: "/tmp/override.db", Config: "/nonexistent.yaml"}

	path, err := opts.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", path)
}

func TestRootOptions_DatabasePath_FromConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  path: /data/contests.db\n"), 0o644))

	opts := &RootOptions{Config: cfgPath}

	path, err := opts.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "/data/contests.db", path)
}

func TestRootOptions_DatabasePath_Default(t *testing.T) {
	opts := &RootOptions{}

	path, err := opts.DatabasePath()
	require.NoError(t, err)
	assert.Equal(t, "contestdb.db", path)
}

func TestRootOptions_DatabasePath_BadConfig(t *testing.T) {
	opts := &RootOptions{Config: filepath.Join(t.TempDir(), "missing.yaml")}

	_, err := opts.DatabasePath()
	assert.Error(t, err)
}
