package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.MaxRetries)
	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, 64, cfg.Sync.QueueSize)
	assert.Equal(t, 10*time.Second, cfg.Sync.Timeout)
	assert.False(t, cfg.Log.Debug)
	assert.Equal(t, "routinr.db", filepath.Base(cfg.Server.DBPath))
	assert.Equal(t, "logs", filepath.Base(cfg.Log.Dir))
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `api:
  url: https://routines.example.com/api/v1
  timeout: 5s
  max_retries: 4
sync:
  queue_size: 8
log:
  debug: true
  dir: /tmp/routinr-logs
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://routines.example.com/api/v1", cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 4, cfg.API.MaxRetries)
	assert.Equal(t, 8, cfg.Sync.QueueSize)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, "/tmp/routinr-logs", cfg.Log.Dir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api:\n  url: http://file.example.com/api/v1\n")
	t.Setenv("ROUTINR_API_URL", "http://env.example.com/api/v1")
	t.Setenv("ROUTINR_SYNC_QUEUE_SIZE", "3")
	t.Setenv("ROUTINR_SERVER_ADDR", "127.0.0.1:8080")
	t.Setenv("ROUTINR_LOG_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://env.example.com/api/v1", cfg.API.URL)
	assert.Equal(t, 3, cfg.Sync.QueueSize)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.True(t, cfg.Log.Debug)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad url scheme", func(t *testing.T) {
		path := writeConfig(t, "api:\n  url: ftp://example.com\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid api url")
	})

	t.Run("negative retries", func(t *testing.T) {
		path := writeConfig(t, "api:\n  max_retries: -1\n")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "api: [unclosed\n")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("directory instead of file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.url", envKey("ROUTINR_API_URL"))
	assert.Equal(t, "sync.queue_size", envKey("ROUTINR_SYNC_QUEUE_SIZE"))
	assert.Equal(t, "api.max_retries", envKey("ROUTINR_API_MAX_RETRIES"))
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, "routinr", filepath.Base(filepath.Dir(path)))
}
