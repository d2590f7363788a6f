package infra

import (
	"net/http"
	"time"

	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/streamrelay/internal/version"
)

// RootStatus returns JSON status and version information at /.
func (h *Handlers) RootStatus(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, map[string]any{
		"name":    "streamrelay",
		"version": version.Version,
		"status":  "running",
		"chat":    "/chat",
		"reply":   "/chat/reply",
	}, http.StatusOK)
}

// HealthCheck handler returns the application health status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, map[string]any{
		"status":         "active",
		"app":            "streamrelay",
		"provider":       h.Provider,
		"model":          h.Model,
		"usage_log":      h.Storage != nil,
		"uptime_seconds": int64(time.Since(h.StartTime).Seconds()),
	}, http.StatusOK)
}
