package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the archiver
type Config struct {
	// Twitter API credentials and endpoint
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Rate limiting and pacing configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Transport retry configuration (5xx and network faults only)
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// TwitterConfig holds Twitter API specific configuration
type TwitterConfig struct {
	BearerToken string        `yaml:"bearer_token" json:"bearer_token"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds the pacing protocol parameters.
// PageInterval is the minimum gap between consecutive requests,
// CursorPause the additional pause before consuming a next-page cursor.
// ResetMargin is added to the reset-header sleep on a 429; FallbackSleep
// is used when the computed sleep is non-positive.
type RateLimitConfig struct {
	PageInterval  time.Duration `yaml:"page_interval" json:"page_interval"`
	CursorPause   time.Duration `yaml:"cursor_pause" json:"cursor_pause"`
	ResetMargin   time.Duration `yaml:"reset_margin" json:"reset_margin"`
	FallbackSleep time.Duration `yaml:"fallback_sleep" json:"fallback_sleep"`
}

// RetryConfig holds transport retry configuration
type RetryConfig struct {
	MaxAttempts   int           `yaml:"max_attempts" json:"max_attempts"`
	BackoffFactor time.Duration `yaml:"backoff_factor" json:"backoff_factor"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	DataDirectory  string        `yaml:"data_directory" json:"data_directory"`
	MediaDirectory string        `yaml:"media_directory" json:"media_directory"`
	CacheMaxAge    time.Duration `yaml:"cache_max_age" json:"cache_max_age"`
	WindowMonths   int           `yaml:"window_months" json:"window_months"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// MetricsConfig holds metrics configuration. An empty address disables
// the listener.
type MetricsConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com/2",
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			PageInterval:  time.Second,
			CursorPause:   1200 * time.Millisecond,
			ResetMargin:   15 * time.Second,
			FallbackSleep: 900 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:   10,
			BackoffFactor: 5 * time.Second,
		},
		Output: OutputConfig{
			DataDirectory:  "Data",
			MediaDirectory: "Media",
			CacheMaxAge:    48 * time.Hour,
			WindowMonths:   2,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("TWITTERSTATS_BEARER_TOKEN"); token != "" {
		c.Twitter.BearerToken = token
	}
	if baseURL := os.Getenv("TWITTERSTATS_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}
	if dataDir := os.Getenv("TWITTERSTATS_DATA_DIR"); dataDir != "" {
		c.Output.DataDirectory = dataDir
	}
	if mediaDir := os.Getenv("TWITTERSTATS_MEDIA_DIR"); mediaDir != "" {
		c.Output.MediaDirectory = mediaDir
	}
	if maxAge := os.Getenv("TWITTERSTATS_CACHE_MAX_AGE"); maxAge != "" {
		if d, err := time.ParseDuration(maxAge); err == nil && d > 0 {
			c.Output.CacheMaxAge = d
		}
	}
	if logLevel := os.Getenv("TWITTERSTATS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if addr := os.Getenv("TWITTERSTATS_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".twitterstats.yaml",
		".twitterstats.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "twitterstats", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "twitterstats", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".twitterstats.yaml"),
		filepath.Join(os.Getenv("HOME"), ".twitterstats.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.RateLimit.PageInterval < 0 {
		errs = append(errs, errors.New("page interval cannot be negative"))
	}
	if c.RateLimit.FallbackSleep <= 0 {
		errs = append(errs, errors.New("fallback sleep must be positive"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max attempts cannot be negative"))
	}

	if c.Output.DataDirectory == "" {
		errs = append(errs, errors.New("data directory is required"))
	}
	if c.Output.WindowMonths <= 0 {
		errs = append(errs, errors.New("window months must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["bearer-token"].(string); ok && token != "" {
		c.Twitter.BearerToken = token
	}
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.Output.DataDirectory = dataDir
	}
	if mediaDir, ok := flags["media-dir"].(string); ok && mediaDir != "" {
		c.Output.MediaDirectory = mediaDir
	}
	if maxAge, ok := flags["cache-max-age"].(time.Duration); ok && maxAge > 0 {
		c.Output.CacheMaxAge = maxAge
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if addr, ok := flags["metrics-addr"].(string); ok && addr != "" {
		c.Metrics.Addr = addr
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twitterstats.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
