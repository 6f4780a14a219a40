package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://chat.example.test
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "onboarding-chat", cfg.App.Name)
	assert.Equal(t, "http://chat.example.test", cfg.Backend.BaseURL)
	assert.Equal(t, 10000, cfg.Backend.Timeout)
	assert.Equal(t, 1, cfg.Backend.MaxRetries)
	assert.Equal(t, 1500, cfg.Widget.WelcomeDelay)
	assert.Equal(t, 800, cfg.Widget.StepDelay)
	assert.Equal(t, 3, cfg.Widget.SuggestionCount)
	assert.Contains(t, cfg.Widget.Greeting, "Welcome to OMX Digital")
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadFromFile_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: https://omx.example.test
  timeout: 2500
  max_retries: 0
widget:
  welcome_delay: 10
  step_delay: 20
  seed: 42
cache:
  driver: redis
  ttl: 60000
  redis:
    address: localhost:6379
    db: 2
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Backend.MaxRetries)
	assert.Equal(t, 2500*time.Millisecond, GetDuration(cfg.Backend.Timeout))
	assert.Equal(t, 10, cfg.Widget.WelcomeDelay)
	assert.Equal(t, uint64(42), cfg.Widget.Seed)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Cache.Redis.String())
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://from-file.test
`)
	t.Setenv("BACKEND_BASE_URL", "http://from-env.test")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env.test", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: http://localhost:5000
cache:
  driver: redis
  redis:
    address: localhost:6379
    password: ${ONBOARDING_REDIS_PASSWORD}
`)
	t.Setenv("ONBOARDING_REDIS_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Cache.Redis.Password)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "relative base url",
			body:    "backend:\n  base_url: /api\n",
			wantErr: "backend.base_url",
		},
		{
			name:    "unknown cache driver",
			body:    "cache:\n  driver: memcached\n",
			wantErr: "cache.driver",
		},
		{
			name:    "redis without address",
			body:    "cache:\n  driver: redis\n",
			wantErr: "cache.redis.address",
		},
		{
			name:    "negative retries",
			body:    "backend:\n  max_retries: -1\n",
			wantErr: "backend.max_retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadFromFile_UnsetPlaceholderFallsBackToDefault(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: ${ONBOARDING_UNSET_BASE_URL}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.Backend.BaseURL)
}
