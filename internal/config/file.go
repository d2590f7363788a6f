package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
// Pointer fields distinguish "unset" from the zero value.
type FileConfig struct {
	ServerPort   string          `toml:"server_port"`
	MaxBodyBytes int64           `toml:"max_body_bytes"`
	LogLevel     string          `toml:"log_level"`
	LogFormat    string          `toml:"log_format"`
	Upstream     UpstreamSection `toml:"upstream"`
	Usage        UsageSection    `toml:"usage"`
	Cache        CacheSection    `toml:"cache"`
	Tracing      TracingSection  `toml:"tracing"`
}

// UpstreamSection configures the completion API.
type UpstreamSection struct {
	BaseURL         string `toml:"base_url"`
	Model           string `toml:"model"`
	ReasoningEffort string `toml:"reasoning_effort"`
	APIKeyEnv       string `toml:"api_key_env"`
	Timeout         string `toml:"timeout"`
}

// UsageSection configures the request/usage log.
type UsageSection struct {
	Enabled *bool  `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// CacheSection configures the reply cache.
type CacheSection struct {
	Enabled  *bool  `toml:"enabled"`
	TTL      string `toml:"ttl"`
	MaxBytes int64  `toml:"max_bytes"`
}

// TracingSection configures OpenTelemetry export.
type TracingSection struct {
	Exporter string `toml:"exporter"`
	Endpoint string `toml:"endpoint"`
}

// ConfigPath returns the default config file path (~/.streamrelay/config.toml).
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file at path.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile(path string) (*FileConfig, error) {
	cfg := &FileConfig{}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile(path string) error {
	// If config already exists, do nothing
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := EnsureDir(path); err != nil {
		return err
	}

	defaultConfig := `# streamrelay configuration
# server_port = ":5000"
# max_body_bytes = 1048576   # cap on POST /chat bodies
# log_level = "info"    # debug, info, warn, error
# log_format = "text"   # text, json

# [upstream]
# base_url = "https://generativelanguage.googleapis.com/v1beta/openai/"
# model = "gemini-2.5-flash-preview-05-20"
# reasoning_effort = "low"
# api_key_env = "GEMINI_API_KEY"   # name of the env var holding the key
# timeout = "5m"

# [usage]
# enabled = true
# db_path = "~/.streamrelay/streamrelay.db"

# [cache]
# enabled = false
# ttl = "10m"
# max_bytes = 67108864

# [tracing]
# exporter = ""   # "", "stdout" or "otlp"
# endpoint = "localhost:4317"
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
