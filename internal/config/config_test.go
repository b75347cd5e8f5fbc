package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every RECKON_* variable the loader reads, so tests are
// insulated from the developer's environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RECKON_BASE_DIR", "RECKON_LOG_DIR", "RECKON_HISTORY_DIR",
		"RECKON_MAX_HISTORY_SIZE", "RECKON_AUTO_SAVE", "RECKON_PRECISION",
		"RECKON_MAX_INPUT_VALUE", "RECKON_ENCODING", "RECKON_HISTORY_BACKEND",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.MaxHistorySize)
	assert.True(t, cfg.AutoSave)
	assert.Equal(t, 10, cfg.Precision)
	assert.Equal(t, "1e100", cfg.MaxInputValue)
	assert.Equal(t, "utf-8", cfg.Encoding)
	assert.Equal(t, BackendCSV, cfg.HistoryBackend)
	assert.NotEmpty(t, cfg.LogDir)
	assert.NotEmpty(t, cfg.HistoryDir)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "reckon.yaml")
	content := `
base_dir: /tmp/reckon-test
max_history_size: 5
auto_save: false
precision: 2
history_backend: sqlite
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/reckon-test", cfg.BaseDir)
	assert.Equal(t, 5, cfg.MaxHistorySize)
	assert.False(t, cfg.AutoSave)
	assert.Equal(t, 2, cfg.Precision)
	assert.Equal(t, BackendSQLite, cfg.HistoryBackend)

	// Derived paths follow base_dir.
	assert.Equal(t, filepath.Join("/tmp/reckon-test", "logs"), cfg.LogDir)
	assert.Equal(t, filepath.Join("/tmp/reckon-test", "history"), cfg.HistoryDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "reckon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_history_size: 5\n"), 0o644))

	t.Setenv("RECKON_MAX_HISTORY_SIZE", "42")
	t.Setenv("RECKON_AUTO_SAVE", "false")
	t.Setenv("RECKON_PRECISION", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.MaxHistorySize)
	assert.False(t, cfg.AutoSave)
	assert.Equal(t, 4, cfg.Precision)
}

func TestLoad_BadEnvValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("RECKON_MAX_HISTORY_SIZE", "many")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Default()
	base.fillDirs()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero history size", func(c *Config) { c.MaxHistorySize = 0 }},
		{"negative precision", func(c *Config) { c.Precision = -1 }},
		{"bad max input", func(c *Config) { c.MaxInputValue = "lots" }},
		{"non-positive max input", func(c *Config) { c.MaxInputValue = "0" }},
		{"unknown encoding", func(c *Config) { c.Encoding = "ebcdic-37" }},
		{"unknown backend", func(c *Config) { c.HistoryBackend = "parquet" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, base.Validate())
}

func TestMaxInput(t *testing.T) {
	cfg := Default()
	cfg.MaxInputValue = "250000"

	d, err := cfg.MaxInput()
	require.NoError(t, err)
	assert.Equal(t, "250000", d.String())
}

func TestEnsureDirs(t *testing.T) {
	cfg := Default()
	cfg.BaseDir = t.TempDir()
	cfg.LogDir = ""
	cfg.HistoryDir = ""
	cfg.fillDirs()

	require.NoError(t, cfg.EnsureDirs())

	for _, dir := range []string{cfg.LogDir, cfg.HistoryDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.HistoryDir = "/data/history"
	cfg.LogDir = "/data/logs"

	assert.Equal(t, filepath.Join("/data/history", "history.csv"), cfg.HistoryFile())
	assert.Equal(t, filepath.Join("/data/history", "history.db"), cfg.HistoryDB())
	assert.Equal(t, filepath.Join("/data/logs", "reckon.log"), cfg.LogFile())
}
