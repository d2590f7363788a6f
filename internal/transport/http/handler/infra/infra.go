// Package infra serves status, health and usage endpoints.
package infra

import (
	"time"

	"github.com/mandalnilabja/streamrelay/internal/storage"
)

// Handlers holds the dependencies for infrastructure HTTP handlers.
// Storage is nil when the usage log is disabled.
type Handlers struct {
	Storage   storage.Storage
	Provider  string
	Model     string
	StartTime time.Time
}

// New creates a new instance of infrastructure handlers.
func New(store storage.Storage, provider, model string, startTime time.Time) *Handlers {
	return &Handlers{
		Storage:   store,
		Provider:  provider,
		Model:     model,
		StartTime: startTime,
	}
}
