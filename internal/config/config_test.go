package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestResolveDefaultsWithoutFile(t *testing.T) {
	cfg, err := Resolve(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
	assert.True(t, cfg.Execute.Enabled)
	assert.Equal(t, "jupyter", cfg.Execute.Command)
	assert.Equal(t, 60*time.Second, cfg.Execute.CellTimeout.Std())
	assert.True(t, cfg.Cache.Enabled)
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "submitted", "alice")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, ok, err := Find(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestLoadFileResolvesRelativeDirs(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
[course]
submitted = "collected"
stage = "/abs/stage"

[execute]
timeout = "90s"
enabled = false

[cache]
enabled = false
`)
	cfg, err := LoadFile(path, Default())
	require.NoError(t, err)
	assert.Equal(t, root, cfg.Course.Dir)
	assert.Equal(t, filepath.Join(root, "collected"), cfg.Course.Submitted)
	assert.Equal(t, "/abs/stage", cfg.Course.Stage)
	assert.Empty(t, cfg.Course.Source)
	assert.Equal(t, 90*time.Second, cfg.Execute.CellTimeout.Std())
	assert.False(t, cfg.Execute.Enabled)
	assert.Equal(t, "jupyter", cfg.Execute.Command, "keys absent from the file keep their defaults")
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[course]\nsubmited = \"x\"\n")
	_, err := LoadFile(path, Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submited")
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[course\n")
	_, err := LoadFile(path, Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse TOML")
}

func TestEnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[execute]\ncommand = \"jupyter\"\ntimeout = \"30s\"\n")
	t.Setenv("NBMEND_EXECUTE_COMMAND", "/opt/conda/bin/jupyter")
	t.Setenv("NBMEND_CACHE", "false")

	cfg, err := Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, "/opt/conda/bin/jupyter", cfg.Execute.Command)
	assert.Equal(t, 30*time.Second, cfg.Execute.CellTimeout.Std())
	assert.False(t, cfg.Cache.Enabled)
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("NBMEND_EXECUTE_TIMEOUT", "soon")
	_, err := Resolve(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Execute.Command = " "
	assert.Error(t, cfg.Validate())
	cfg.Execute.Enabled = false
	assert.NoError(t, cfg.Validate())
}
