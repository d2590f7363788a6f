package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mandalnilabja/streamrelay/internal/config"
	"github.com/mandalnilabja/streamrelay/internal/version"
)

func setupLogger(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func printStartupBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "streamrelay %s - streaming chat relay\n", version.Version)
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "Chat:       POST http://localhost%s/chat\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Reply:      POST http://localhost%s/chat/reply\n", cfg.ServerPort)
	fmt.Fprintf(os.Stderr, "Upstream:   %s (%s)\n", cfg.Upstream.BaseURL, cfg.Upstream.Model)
	if cfg.Usage.Enabled {
		fmt.Fprintf(os.Stderr, "Usage log:  %s\n", cfg.Usage.DBPath)
	}
	if cfg.Cache.Enabled {
		fmt.Fprintf(os.Stderr, "Cache:      on (ttl %s)\n", cfg.Cache.TTL)
	}
	fmt.Fprintln(os.Stderr, "════════════════════════════════════════════════")
	fmt.Fprintf(os.Stderr, "\n")
}
