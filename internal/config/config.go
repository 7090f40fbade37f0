package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/farhan-ahmed1/settle/pkg/client"
)

// Config holds all configuration for settle
type Config struct {
	Fetcher FetcherConfig `yaml:"fetcher"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// FetcherConfig holds remote fetch settings
type FetcherConfig struct {
	// Absolute URL fetched on every call
	Endpoint string `yaml:"endpoint"`

	// Timeout of the default HTTP transport
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			Endpoint: getEnv("SETTLE_ENDPOINT", client.DefaultEndpoint),
			Timeout:  getEnvDuration("SETTLE_TIMEOUT", 30*time.Second),
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "settle",
		},
		Logging: LoggingConfig{
			Level:  getEnv("SETTLE_LOG_LEVEL", "info"),
			Format: getEnv("SETTLE_LOG_FORMAT", "text"),
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Fetcher.Endpoint == "" {
		return fmt.Errorf("fetcher endpoint cannot be empty")
	}
	u, err := url.Parse(c.Fetcher.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("fetcher endpoint must be an absolute URL, got %q", c.Fetcher.Endpoint)
	}
	if c.Fetcher.Timeout < 0 {
		return fmt.Errorf("fetcher timeout cannot be negative")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics namespace cannot be empty when metrics are enabled")
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration variable, falling back on absence or error
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
