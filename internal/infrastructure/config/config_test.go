package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.6, cfg.Routing.MinimumScore)
	assert.Equal(t, 0.35, cfg.Routing.Weights.Capacity)
	assert.Equal(t, 0.25, cfg.Routing.Weights.Performance)
	assert.Equal(t, 0.20, cfg.Routing.Weights.Geography)
	assert.Equal(t, 0.20, cfg.Routing.Weights.PriceBand)
	assert.Equal(t, 15*time.Minute, cfg.Routing.RuleCacheTTL)
	assert.False(t, cfg.LLM.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.URL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestLoadFromMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadFrom("does/not/exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
routing:
  minimum_score: 0.75
llm:
  enabled: true
  model: gpt-4o
redis:
  url: redis.internal:6379
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 0.75, cfg.Routing.MinimumScore)
	assert.True(t, cfg.LLM.Enabled)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.URL)

	// Untouched keys keep their defaults
	assert.Equal(t, 0.35, cfg.Routing.Weights.Capacity)
	assert.Equal(t, 15*time.Minute, cfg.Routing.RuleCacheTTL)
}

func TestLoadFromEnvironmentOverrides(t *testing.T) {
	t.Setenv("LRE_ENVIRONMENT", "staging")
	t.Setenv("LRE_REDIS_URL", "redis-staging:6379")
	t.Setenv("LRE_LLM_MODEL", "gpt-4o")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "redis-staging:6379", cfg.Redis.URL)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
}

func TestLoadFromEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: production\n"), 0o644))

	t.Setenv("LRE_ENVIRONMENT", "staging")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
}
