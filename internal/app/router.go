// Package app wires handlers, middleware and the HTTP server together.
package app

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler"
	"github.com/mandalnilabja/streamrelay/internal/transport/http/middleware"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger *slog.Logger
}

// NewRouter creates and configures the HTTP router with all application routes.
// Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	// Relay
	mux.HandleFunc("POST /chat", repo.Chat.Chat)
	mux.HandleFunc("POST /chat/reply", repo.Chat.Reply)

	// Infrastructure
	mux.HandleFunc("GET /api/health", repo.Infra.HealthCheck)
	mux.HandleFunc("GET /api/usage", repo.Infra.GetUsage)
	mux.HandleFunc("GET /api/logs", repo.Infra.GetRequestLogs)
	mux.HandleFunc("DELETE /api/logs", repo.Infra.DeleteRequestLogs)

	// Root returns JSON status
	mux.HandleFunc("GET /{$}", repo.Infra.RootStatus)

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	// Request logging (if logger provided)
	if opts != nil && opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}

	// Request ID (always applied)
	h = middleware.RequestID(h)

	// CORS (always applied)
	h = middleware.CORS(h)

	// One server span per request; a no-op unless a tracer is installed.
	return otelhttp.NewHandler(h, "streamrelay",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
