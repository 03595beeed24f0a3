package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Analysis.Window)
	assert.Nil(t, cfg.Log.Level)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[analysis]
window = 14
target = 75.5
since = "2025-01-01"

[gym]
routine = "plan.yaml"

[log]
level = "debug"
json = true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Analysis.Window)
	assert.Equal(t, 14, *cfg.Analysis.Window)
	assert.Equal(t, 75.5, *cfg.Analysis.Target)
	assert.Equal(t, "2025-01-01", *cfg.Analysis.Since)
	assert.Equal(t, "plan.yaml", *cfg.Gym.Routine)
	assert.Nil(t, cfg.Gym.Log)
	assert.Equal(t, "debug", *cfg.Log.Level)
	assert.True(t, *cfg.Log.JSON)
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[analysis]\nwindw = 3\n"), 0o600))
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "windw")
}

func TestTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(Template), 0o600))
	_, err := LoadConfig(path)
	require.NoError(t, err)
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	assert.Equal(t, filepath.Join("/cfg", "wtrack", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "wtrack", "wtrack.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/state", "wtrack", "wtrack.log"), DefaultLogPath())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "plan.yaml"), ExpandHome("~/plan.yaml"))
	assert.Equal(t, "/abs/plan.yaml", ExpandHome("/abs/plan.yaml"))
}
