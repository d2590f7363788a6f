// Package handler composes the HTTP handlers of the relay.
package handler

import (
	"time"

	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler/chat"
	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler/infra"
)

// Repo composes all domain-specific handlers.
type Repo struct {
	Chat  *chat.Handlers
	Infra *infra.Handlers
}

// NewRepo creates a new instance of the composed handler repository.
func NewRepo(opts chat.Options) *Repo {
	return &Repo{
		Chat:  chat.New(opts),
		Infra: infra.New(opts.Storage, opts.Provider.Name(), opts.Model, time.Now()),
	}
}
