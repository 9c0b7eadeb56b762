package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemma3", cfg.Model)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "flow", cfg.FlowDir)
	assert.Equal(t, "stop", cfg.Flow.OnFailure)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.CacheEnabled())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iterate.yaml")
	doc := `
model: llama3.1
output_dir: /tmp/records
ollama:
  host: http://ollama.internal:11434
redis:
  addr: localhost:6379
  cache_ttl: 1h
flow:
  on_failure: retry
  max_retries: 5
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "llama3.1", cfg.Model)
	assert.Equal(t, "/tmp/records", cfg.OutputDir)
	assert.Equal(t, "http://ollama.internal:11434", cfg.Ollama.Host)
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL.Std())
	assert.Equal(t, "retry", cfg.Flow.OnFailure)
	assert.Equal(t, 5, cfg.Flow.MaxRetries)
	assert.True(t, cfg.CacheEnabled())

	// untouched keys keep their defaults
	assert.Equal(t, "flow", cfg.FlowDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ITERATE_MODEL", "mistral")
	t.Setenv("ITERATE_REDIS_ADDR", "cache:6379")
	t.Setenv("ITERATE_REDIS_DB", "3")
	t.Setenv("ITERATE_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "iterate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: llama3.1\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.Model, "environment wins over the file")
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadInvalidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iterate.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flow:\n  on_failure: shrug\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "on_failure")
}
