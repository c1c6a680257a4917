package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.exa.ai", cfg.Engines.Exa.BaseURL)
	assert.Equal(t, int64(1000), cfg.Engines.Exa.Budget)
	assert.Equal(t, "https://google.serper.dev", cfg.Engines.Serper.BaseURL)
	assert.Equal(t, int64(2500), cfg.Engines.Serper.Budget)
	assert.Equal(t, "https://api.apollo.io", cfg.Engines.Apollo.BaseURL)
	assert.Equal(t, 15, cfg.Engines.Apollo.TimeoutSecs)
	assert.Equal(t, 3, cfg.Search.MinResults)
	assert.InDelta(t, 0.25, cfg.Search.RelevanceFloor, 0.001)
	assert.Equal(t, 15, cfg.Search.CacheTTLMins)
	assert.Equal(t, 25, cfg.Search.DefaultLimit)
	assert.Equal(t, 2, cfg.Search.MaxRetries)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Empty(t, cfg.Store.Driver)
	assert.Equal(t, "https://api.hubapi.com", cfg.CRM.HubSpot.BaseURL)
	assert.Equal(t, "https://login.salesforce.com", cfg.CRM.Salesforce.LoginURL)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.LLM.Anthropic.Model)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
engines:
  serper:
    key: test-key
    budget: 100
search:
  min_results: 5
cache:
  driver: redis
  redis_url: redis://localhost:6379/1
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Engines.Serper.Key)
	assert.Equal(t, int64(100), cfg.Engines.Serper.Budget)
	assert.Equal(t, 5, cfg.Search.MinResults)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 25, cfg.Search.DefaultLimit)
	assert.Equal(t, "https://google.serper.dev", cfg.Engines.Serper.BaseURL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
cache:
  driver: redis
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PROSPECTOR_CACHE_DRIVER", "memory")
	t.Setenv("PROSPECTOR_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("PROSPECTOR_SERVER_PORT", "3000")
	t.Setenv("PROSPECTOR_ENGINES_EXA_KEY", "exa-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "exa-secret", cfg.Engines.Exa.Key)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	require.Error(t, err)
}
