package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/mandalnilabja/streamrelay/internal/app"
	"github.com/mandalnilabja/streamrelay/internal/config"
	"github.com/mandalnilabja/streamrelay/internal/telemetry"
	"github.com/mandalnilabja/streamrelay/internal/tokenizer"
	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler"
	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler/chat"
	"github.com/mandalnilabja/streamrelay/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "streamrelay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Flags and configuration
	fs := pflag.NewFlagSet("api", pflag.ContinueOnError)
	overrides := config.BindFlags(fs)
	showVersion := fs.BoolP("version", "v", false, "print version and exit")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Println(version.Version)
		return nil
	}

	if overrides.ConfigPath == "" && os.Getenv("STREAMRELAY_CONFIG") == "" {
		// Best effort: a read-only home must not prevent start-up.
		_ = config.EnsureConfigFile(config.ConfigPath())
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if cfg.Upstream.APIKey == "" {
		logger.Warn("no upstream API key configured; upstream calls will fail",
			"env", cfg.Upstream.APIKeyEnv)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Tracing.Exporter, cfg.Tracing.Endpoint, version.Version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	// 3. Usage log and reply cache (both optional)
	opts := chat.Options{
		Provider:        newProvider(cfg),
		Model:           cfg.Upstream.Model,
		ReasoningEffort: cfg.Upstream.ReasoningEffort,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		Tokenizer:       tokenizer.New(),
		Logger:          logger,
	}

	if cfg.Usage.Enabled {
		store, err := openStorage(cfg.Usage.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Storage = store
	}

	if cfg.Cache.Enabled {
		replyCache, err := newReplyCache(cfg)
		if err != nil {
			return err
		}
		defer replyCache.Close()
		opts.Cache = replyCache
	}

	// 4. Handlers and router
	repo := handler.NewRepo(opts)
	// Runs before storage closes so in-flight usage records land.
	defer repo.Chat.Wait()
	router := app.NewRouter(repo, &app.RouterOptions{Logger: logger})

	printStartupBanner(cfg)

	// 5. Serve until SIGINT/SIGTERM
	srv := app.NewServer(cfg, router, logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
