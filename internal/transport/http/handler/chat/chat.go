// Package chat implements the relay endpoints: POST /chat streams the
// upstream reply as plain text, POST /chat/reply returns it as JSON.
package chat

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/mandalnilabja/streamrelay/internal/cache"
	"github.com/mandalnilabja/streamrelay/internal/provider"
	"github.com/mandalnilabja/streamrelay/internal/storage"
	"github.com/mandalnilabja/streamrelay/internal/tokenizer"
	"github.com/mandalnilabja/streamrelay/internal/transport/http/middleware"
	"github.com/mandalnilabja/streamrelay/internal/types"
)

// CacheHeader reports whether a reply was served from the reply cache.
const CacheHeader = "X-Cache"

// DefaultMaxBodyBytes applies when Options.MaxBodyBytes is not set.
const DefaultMaxBodyBytes = 1 << 20

// Options configures the relay handlers. Provider is required; the rest
// are optional collaborators.
type Options struct {
	Provider        provider.Provider
	Model           string
	ReasoningEffort string
	MaxBodyBytes    int64

	Storage   storage.Storage
	Tokenizer tokenizer.Tokenizer
	Cache     *cache.ReplyCache
	Logger    *slog.Logger
}

// Handlers holds the dependencies for the relay endpoints.
// Fields other than mu and closed are read-only after New.
type Handlers struct {
	provider        provider.Provider
	model           string
	reasoningEffort string
	maxBodyBytes    int64

	storage   storage.Storage
	tokenizer tokenizer.Tokenizer
	cache     *cache.ReplyCache
	logger    *slog.Logger

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// New creates the relay handlers.
func New(opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return &Handlers{
		provider:        opts.Provider,
		model:           opts.Model,
		reasoningEffort: opts.ReasoningEffort,
		maxBodyBytes:    maxBody,
		storage:         opts.Storage,
		tokenizer:       opts.Tokenizer,
		cache:           opts.Cache,
		logger:          logger,
	}
}

// Wait blocks until pending usage records are written. Requests that
// finish after Wait is called are not recorded.
func (h *Handlers) Wait() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.pending.Wait()
}

// decodeBody reads the chat request, refusing bodies over the size limit.
func (h *Handlers) decodeBody(w http.ResponseWriter, r *http.Request) (*types.ChatRequest, error) {
	return types.DecodeChatRequest(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
}

// requestID returns the id assigned by middleware.RequestID, or a fresh one
// when the handler is mounted without it.
func requestID(ctx context.Context) string {
	if id := middleware.GetRequestID(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}
