package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.twitter.com/2", cfg.Twitter.BaseURL)
	assert.Equal(t, time.Second, cfg.RateLimit.PageInterval)
	assert.Equal(t, 1200*time.Millisecond, cfg.RateLimit.CursorPause)
	assert.Equal(t, 15*time.Second, cfg.RateLimit.ResetMargin)
	assert.Equal(t, 900*time.Second, cfg.RateLimit.FallbackSleep)
	assert.Equal(t, 10, cfg.Retry.MaxAttempts)
	assert.Equal(t, 48*time.Hour, cfg.Output.CacheMaxAge)
	assert.Equal(t, 2, cfg.Output.WindowMonths)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Metrics.Addr)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWITTERSTATS_BEARER_TOKEN", "env-token")
	t.Setenv("TWITTERSTATS_DATA_DIR", "/tmp/data")
	t.Setenv("TWITTERSTATS_CACHE_MAX_AGE", "24h")
	t.Setenv("TWITTERSTATS_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "env-token", cfg.Twitter.BearerToken)
	assert.Equal(t, "/tmp/data", cfg.Output.DataDirectory)
	assert.Equal(t, 24*time.Hour, cfg.Output.CacheMaxAge)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `twitter:
  bearer_token: file-token
rate_limit:
  page_interval: 5ms
  cursor_pause: 10ms
output:
  data_directory: /srv/archive
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-token", cfg.Twitter.BearerToken)
	assert.Equal(t, 5*time.Millisecond, cfg.RateLimit.PageInterval)
	assert.Equal(t, 10*time.Millisecond, cfg.RateLimit.CursorPause)
	assert.Equal(t, "/srv/archive", cfg.Output.DataDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, 900*time.Second, cfg.RateLimit.FallbackSleep)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.Twitter.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "negative page interval",
			mutate:  func(c *Config) { c.RateLimit.PageInterval = -time.Second },
			wantErr: true,
		},
		{
			name:    "zero fallback sleep",
			mutate:  func(c *Config) { c.RateLimit.FallbackSleep = 0 },
			wantErr: true,
		},
		{
			name:    "missing data directory",
			mutate:  func(c *Config) { c.Output.DataDirectory = "" },
			wantErr: true,
		},
		{
			name:    "zero window months",
			mutate:  func(c *Config) { c.Output.WindowMonths = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"bearer-token": "flag-token",
		"data-dir":     "/flag/data",
		"log-level":    "error",
		"metrics-addr": ":9102",
	})

	assert.Equal(t, "flag-token", cfg.Twitter.BearerToken)
	assert.Equal(t, "/flag/data", cfg.Output.DataDirectory)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, ":9102", cfg.Metrics.Addr)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("twitter:\n  bearer_token: from-file\n"), 0600))

	t.Setenv("TWITTERSTATS_BEARER_TOKEN", "from-env")

	// Environment wins over file.
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Twitter.BearerToken)

	// Flags win over environment.
	cfg, err = Load(path, map[string]interface{}{"bearer-token": "from-flag"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Twitter.BearerToken)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Twitter.BearerToken = "saved-token"
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "saved-token", loaded.Twitter.BearerToken)
}
