// Package provider defines the upstream completion provider contract.
package provider

import (
	"context"
	"errors"

	"github.com/mandalnilabja/streamrelay/internal/types"
)

// ErrNoAPIKey is returned when no API key is configured for the upstream.
var ErrNoAPIKey = errors.New("no API key configured")

// Provider defines the interface an upstream LLM provider must implement.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// BaseURL returns the provider's API endpoint
	BaseURL() string

	// Stream opens a streaming chat completion.
	// The returned error is non-nil only if the stream could not be opened;
	// in that case nothing has been received from upstream yet.
	// Chunks are delivered in arrival order on an unbuffered channel that is
	// closed when the upstream stream ends, fails (a final chunk with Err
	// set) or ctx is cancelled.
	Stream(ctx context.Context, req *types.CompletionRequest) (<-chan types.StreamChunk, error)
}
