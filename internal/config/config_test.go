package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/mandalnilabja/streamrelay/internal/telemetry"
)

// clearEnv unsets every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STREAMRELAY_CONFIG", "SERVER_PORT", "LOG_LEVEL", "LOG_FORMAT",
		"UPSTREAM_BASE_URL", "UPSTREAM_MODEL", "UPSTREAM_REASONING_EFFORT",
		"UPSTREAM_API_KEY_ENV", "UPSTREAM_TIMEOUT", "GEMINI_API_KEY",
		"USAGE_LOG", "USAGE_DB_PATH", "REPLY_CACHE", "REPLY_CACHE_TTL",
		"TRACE_EXPORTER", "OTEL_EXPORTER_OTLP_ENDPOINT", "MAX_BODY_BYTES",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(&Overrides{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != DefaultServerPort {
		t.Errorf("expected port %q, got %q", DefaultServerPort, cfg.ServerPort)
	}
	if cfg.Upstream.BaseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Model != "gemini-2.5-flash-preview-05-20" {
		t.Errorf("unexpected model %q", cfg.Upstream.Model)
	}
	if cfg.Upstream.ReasoningEffort != "low" {
		t.Errorf("unexpected reasoning effort %q", cfg.Upstream.ReasoningEffort)
	}
	if cfg.Upstream.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("unexpected api key env %q", cfg.Upstream.APIKeyEnv)
	}
	if cfg.Upstream.APIKey != "" {
		t.Errorf("expected no api key, got %q", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.Timeout != DefaultUpstreamTimeout {
		t.Errorf("unexpected timeout %v", cfg.Upstream.Timeout)
	}
	if !cfg.Usage.Enabled {
		t.Error("expected usage log enabled by default")
	}
	if cfg.Cache.Enabled {
		t.Error("expected reply cache disabled by default")
	}
	if cfg.Cache.MaxBytes != DefaultCacheMaxBytes {
		t.Errorf("unexpected cache size %d", cfg.Cache.MaxBytes)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.Tracing.Exporter != telemetry.ExporterNone {
		t.Errorf("expected no exporter, got %q", cfg.Tracing.Exporter)
	}
	if cfg.MaxBodyBytes != DefaultMaxBodyBytes {
		t.Errorf("expected body limit %d, got %d", DefaultMaxBodyBytes, cfg.MaxBodyBytes)
	}
}

func TestLoad_MaxBodyBytes(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "max_body_bytes = 2048\n")

	cfg, err := Load(&Overrides{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxBodyBytes != 2048 {
		t.Errorf("expected file body limit, got %d", cfg.MaxBodyBytes)
	}

	t.Setenv("MAX_BODY_BYTES", "4096")
	cfg, err = Load(&Overrides{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxBodyBytes != 4096 {
		t.Errorf("expected env body limit, got %d", cfg.MaxBodyBytes)
	}
}

func TestLoad_APIKeyFromNamedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load(&Overrides{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Upstream.APIKey != "gem-key" {
		t.Errorf("expected api key from GEMINI_API_KEY, got %q", cfg.Upstream.APIKey)
	}

	t.Setenv("UPSTREAM_API_KEY_ENV", "OTHER_KEY")
	t.Setenv("OTHER_KEY", "other-key")
	cfg, err = Load(&Overrides{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Upstream.APIKey != "other-key" {
		t.Errorf("expected api key from OTHER_KEY, got %q", cfg.Upstream.APIKey)
	}
}

func TestLoad_Priority(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server_port = ":7000"
log_level = "warn"

[upstream]
model = "file-model"
reasoning_effort = "medium"
timeout = "30s"

[usage]
enabled = false

[cache]
enabled = true
ttl = "1m"
max_bytes = 1024
`)

	cfg, err := Load(&Overrides{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != ":7000" {
		t.Errorf("expected file port, got %q", cfg.ServerPort)
	}
	if cfg.Upstream.Model != "file-model" || cfg.Upstream.ReasoningEffort != "medium" {
		t.Errorf("expected file upstream settings, got %+v", cfg.Upstream)
	}
	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Upstream.Timeout)
	}
	if cfg.Usage.Enabled {
		t.Error("expected usage disabled by file")
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != time.Minute || cfg.Cache.MaxBytes != 1024 {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", cfg.LogLevel)
	}

	// env beats file
	t.Setenv("SERVER_PORT", ":8000")
	t.Setenv("UPSTREAM_MODEL", "env-model")
	cfg, err = Load(&Overrides{ConfigPath: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != ":8000" || cfg.Upstream.Model != "env-model" {
		t.Errorf("expected env overrides, got port=%q model=%q", cfg.ServerPort, cfg.Upstream.Model)
	}

	// flags beat env
	cfg, err = Load(&Overrides{ConfigPath: path, ServerPort: ":9000", LogLevel: "debug"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerPort != ":9000" {
		t.Errorf("expected flag port, got %q", cfg.ServerPort)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad duration", env: map[string]string{"UPSTREAM_TIMEOUT": "soon"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}},
		{name: "bad exporter", env: map[string]string{"TRACE_EXPORTER": "zipkin"}},
		{name: "bad body limit", env: map[string]string{"MAX_BODY_BYTES": "lots"}},
		{name: "zero body limit", env: map[string]string{"MAX_BODY_BYTES": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(&Overrides{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `server_port = [`)

	if _, err := Load(&Overrides{ConfigPath: path}); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestBindFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o := BindFlags(fs)

	if err := fs.Parse([]string{"-p", ":6000", "--log-level", "error", "--config=/tmp/x.toml"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if o.ServerPort != ":6000" || o.LogLevel != "error" || o.ConfigPath != "/tmp/x.toml" {
		t.Errorf("unexpected overrides %+v", o)
	}
}

func TestEnsureConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := EnsureConfigFile(path); err != nil {
		t.Fatalf("EnsureConfigFile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	// The generated file is all comments and must load as an empty config.
	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if file.ServerPort != "" || file.Usage.Enabled != nil {
		t.Errorf("expected empty file config, got %+v", file)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/data.db"); got != filepath.Join(home, "data.db") {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := expandHome("/abs/data.db"); got != "/abs/data.db" {
		t.Errorf("expected absolute path unchanged, got %q", got)
	}
}
