package main

import (
	"fmt"

	"github.com/mandalnilabja/streamrelay/internal/cache"
	"github.com/mandalnilabja/streamrelay/internal/config"
	"github.com/mandalnilabja/streamrelay/internal/provider/openaicompat"
	"github.com/mandalnilabja/streamrelay/internal/storage"
)

// newProvider builds the upstream client once; it is shared read-only by
// every request.
func newProvider(cfg *config.Config) *openaicompat.Provider {
	return openaicompat.New(openaicompat.Config{
		BaseURL: cfg.Upstream.BaseURL,
		APIKey:  cfg.Upstream.APIKey,
		Timeout: cfg.Upstream.Timeout,
	})
}

// openStorage opens the usage database, creating its directory first.
func openStorage(dbPath string) (storage.Storage, error) {
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database: %w", err)
	}
	return store, nil
}

func newReplyCache(cfg *config.Config) (*cache.ReplyCache, error) {
	c, err := cache.New(cfg.Cache.MaxBytes, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create reply cache: %w", err)
	}
	return c, nil
}
