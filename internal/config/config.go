// Package config loads streamrelay configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mandalnilabja/streamrelay/internal/telemetry"
)

// Defaults mirror the upstream the relay was first deployed against.
const (
	DefaultServerPort      = ":5000"
	DefaultBaseURL         = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel           = "gemini-2.5-flash-preview-05-20"
	DefaultReasoningEffort = "low"
	DefaultAPIKeyEnv       = "GEMINI_API_KEY"
	DefaultUpstreamTimeout = 5 * time.Minute
	DefaultCacheTTL        = 10 * time.Minute
	DefaultCacheMaxBytes   = 64 << 20
	DefaultMaxBodyBytes    = 1 << 20
)

// ErrInvalidConfig is returned when a configuration value cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration.
// Priority: CLI flags → Env vars → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":5000")
	ServerPort string

	// MaxBodyBytes caps inbound chat request bodies
	MaxBodyBytes int64

	LogLevel  slog.Level
	LogFormat string

	Upstream UpstreamConfig
	Usage    UsageConfig
	Cache    CacheConfig
	Tracing  TracingConfig
}

// UpstreamConfig holds the completion API settings. APIKey is read from the
// environment variable named by APIKeyEnv.
type UpstreamConfig struct {
	BaseURL         string
	Model           string
	ReasoningEffort string
	APIKeyEnv       string
	APIKey          string
	Timeout         time.Duration
}

// UsageConfig controls the SQLite request log.
type UsageConfig struct {
	Enabled bool
	DBPath  string
}

// CacheConfig controls the reply cache.
type CacheConfig struct {
	Enabled  bool
	TTL      time.Duration
	MaxBytes int64
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Exporter string
	Endpoint string
}

// Load reads configuration from .env, the config file, environment
// variables and flag overrides, in increasing priority.
func Load(o *Overrides) (*Config, error) {
	_ = godotenv.Load()

	if o == nil {
		o = &Overrides{}
	}

	path := o.ConfigPath
	if path == "" {
		path = getEnvOrFile("STREAMRELAY_CONFIG", "", ConfigPath())
	}
	file, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}

	cfg := &Config{
		ServerPort: getEnvOrFile("SERVER_PORT", file.ServerPort, DefaultServerPort),
		LogFormat:  getEnvOrFile("LOG_FORMAT", file.LogFormat, "text"),
		Upstream: UpstreamConfig{
			BaseURL:         getEnvOrFile("UPSTREAM_BASE_URL", file.Upstream.BaseURL, DefaultBaseURL),
			Model:           getEnvOrFile("UPSTREAM_MODEL", file.Upstream.Model, DefaultModel),
			ReasoningEffort: getEnvOrFile("UPSTREAM_REASONING_EFFORT", file.Upstream.ReasoningEffort, DefaultReasoningEffort),
			APIKeyEnv:       getEnvOrFile("UPSTREAM_API_KEY_ENV", file.Upstream.APIKeyEnv, DefaultAPIKeyEnv),
		},
		Usage: UsageConfig{
			Enabled: getEnvBoolOrFile("USAGE_LOG", file.Usage.Enabled, true),
			DBPath:  expandHome(getEnvOrFile("USAGE_DB_PATH", file.Usage.DBPath, DBPath())),
		},
		Cache: CacheConfig{
			Enabled:  getEnvBoolOrFile("REPLY_CACHE", file.Cache.Enabled, false),
			MaxBytes: file.Cache.MaxBytes,
		},
		Tracing: TracingConfig{
			Exporter: getEnvOrFile("TRACE_EXPORTER", file.Tracing.Exporter, telemetry.ExporterNone),
			Endpoint: getEnvOrFile("OTEL_EXPORTER_OTLP_ENDPOINT", file.Tracing.Endpoint, ""),
		},
	}
	cfg.Upstream.APIKey = os.Getenv(cfg.Upstream.APIKeyEnv)
	if cfg.Cache.MaxBytes <= 0 {
		cfg.Cache.MaxBytes = DefaultCacheMaxBytes
	}

	if cfg.Upstream.Timeout, err = getEnvDurationOrFile("UPSTREAM_TIMEOUT", file.Upstream.Timeout, DefaultUpstreamTimeout); err != nil {
		return nil, err
	}
	if cfg.MaxBodyBytes, err = getEnvInt64OrFile("MAX_BODY_BYTES", file.MaxBodyBytes, DefaultMaxBodyBytes); err != nil {
		return nil, err
	}
	if cfg.Cache.TTL, err = getEnvDurationOrFile("REPLY_CACHE_TTL", file.Cache.TTL, DefaultCacheTTL); err != nil {
		return nil, err
	}

	level := getEnvOrFile("LOG_LEVEL", file.LogLevel, "info")
	o.apply(cfg, &level)
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", ErrInvalidConfig, level)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}

	switch c.Tracing.Exporter {
	case telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterOTLP:
	default:
		return fmt.Errorf("%w: tracing exporter %q", ErrInvalidConfig, c.Tracing.Exporter)
	}

	if c.Upstream.Model == "" {
		return fmt.Errorf("%w: upstream model is empty", ErrInvalidConfig)
	}
	return nil
}

// getEnvOrFile returns env value, file value, or default (in priority order)
func getEnvOrFile(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvBoolOrFile returns env bool, file bool, or default (in priority order)
func getEnvBoolOrFile(key string, fileValue *bool, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getEnvDurationOrFile parses a duration from env or file, falling back to the default.
func getEnvDurationOrFile(key, fileValue string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnvOrFile(key, fileValue, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return d, nil
}

// getEnvInt64OrFile parses a positive integer from env or file, falling back to the default.
func getEnvInt64OrFile(key string, fileValue, defaultValue int64) (int64, error) {
	if raw := os.Getenv(key); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidConfig, key)
		}
		return n, nil
	}
	if fileValue < 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrInvalidConfig, key)
	}
	if fileValue > 0 {
		return fileValue, nil
	}
	return defaultValue, nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
