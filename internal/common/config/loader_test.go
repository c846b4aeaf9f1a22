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
	path := writeConfig(t, "app:\n  name: canchapp\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 30000, cfg.API.Timeout)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, "canchapp", cfg.Session.KeyPrefix)
	assert.Equal(t, 7*24*time.Hour, GetDuration(cfg.Session.TTL))
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, float64(1), cfg.Tracing.SampleRatio)
	assert.Equal(t, "canchapp", cfg.Tracing.ServiceName)
}

func TestLoadFromFile_ExpandsAndTrims(t *testing.T) {
	t.Setenv("TEST_CANCHAPP_HOST", "api.canchapp.pe")
	path := writeConfig(t, `
api:
  base_url: https://${TEST_CANCHAPP_HOST}/api/
  timeout: 5000
session:
  store: redis
database:
  redis:
    address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.canchapp.pe/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, GetDuration(cfg.API.Timeout))
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "localhost:6379", cfg.Database.Redis.Address)
}

func TestLoadFromFile_ZeroTimeoutDisables(t *testing.T) {
	path := writeConfig(t, "api:\n  timeout: 0\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.API.Timeout)
}

func TestLoadFromFile_FrontendEnvName(t *testing.T) {
	t.Setenv("CANCHAPP_API", "http://10.0.0.5:8080/api")
	path := writeConfig(t, "logging:\n  level: debug\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8080/api", cfg.API.BaseURL)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, "api.base_url"},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://host/api" }, "api.base_url"},
		{"negative timeout", func(c *Config) { c.API.Timeout = -1 }, "api.timeout"},
		{"redis without address", func(c *Config) { c.Session.Store = SessionStoreRedis }, "database.redis.address"},
		{"unknown store", func(c *Config) { c.Session.Store = "file" }, "session.store"},
		{"sample ratio", func(c *Config) { c.Tracing.SampleRatio = 2 }, "sample_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
