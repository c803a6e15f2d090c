package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithNoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadFromSearchPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, `
log_level: debug
pipeline:
  use_roi: false
recognizer:
  engine: gemini
  gemini:
    api_key: abc
server:
  port: 9090
`)

	l := NewLoaderWith(viper.New())
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Pipeline.UseROI)
	assert.Equal(t, "gemini", cfg.Recognizer.Engine)
	assert.Equal(t, "abc", cfg.Recognizer.Gemini.APIKey)
	assert.Equal(t, DefaultConfig().Recognizer.Gemini.Model, cfg.Recognizer.Gemini.Model)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.NotEmpty(t, l.ConfigFileUsed())
}

func TestLoadWithFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "batch:\n  workers: 2\n  recursive: true\n")

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.Recursive)
}

func TestLoadWithFile_Errors(t *testing.T) {
	_, err := NewLoaderWith(viper.New()).LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	bad := writeConfig(t, t.TempDir(), "log_level: trace\n")
	_, err = NewLoaderWith(viper.New()).LoadWithFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	cfg, err := NewLoaderWith(viper.New()).LoadWithFileWithoutValidation(bad)
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.LogLevel)

	broken := writeConfig(t, t.TempDir(), "server: [\n")
	_, err = NewLoaderWith(viper.New()).LoadWithFile(broken)
	assert.Error(t, err)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NUTRILABEL_LOG_LEVEL", "warn")
	t.Setenv("NUTRILABEL_RECOGNIZER_CLOVA_SECRET", "from-env")
	t.Setenv("NUTRILABEL_SERVER_RATE_LIMIT_ENABLED", "true")
	t.Setenv("NUTRILABEL_BATCH_WORKERS", "7")

	cfg, err := NewLoaderWith(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-env", cfg.Recognizer.Clova.Secret)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 7, cfg.Batch.Workers)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "info", doc["log_level"])
	assert.Contains(t, doc, "recognizer")

	cfg, err := NewLoaderWith(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := SearchPaths()
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/xdg/nutrilabel")
	assert.Equal(t, "/etc/nutrilabel", paths[len(paths)-1])
}
