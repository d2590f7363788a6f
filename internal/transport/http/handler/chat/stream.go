package chat

import (
	"context"
	"strings"

	"github.com/mandalnilabja/streamrelay/internal/types"
)

// streamResult summarizes a consumed upstream stream.
type streamResult struct {
	text  string
	model string
	usage *types.Usage

	// upstreamErr is set when the upstream failed after the stream opened.
	upstreamErr error
	// writeErr is set when the downstream write failed.
	writeErr error
	// canceled is set when the request context ended before completion.
	canceled bool
}

// consume reads chunks in arrival order and hands each non-empty delta to
// emit. It returns when the channel is closed or emit fails; the caller must
// cancel ctx afterwards so the producer can exit.
func consume(ctx context.Context, chunks <-chan types.StreamChunk, emit func(string) error) *streamResult {
	res := &streamResult{}
	var text strings.Builder

	for chunk := range chunks {
		if chunk.Err != nil {
			res.upstreamErr = chunk.Err
			break
		}
		if chunk.Model != "" {
			res.model = chunk.Model
		}
		if chunk.Usage != nil {
			res.usage = chunk.Usage
		}
		if !chunk.HasContent() {
			continue
		}

		text.WriteString(chunk.Content)
		if emit == nil {
			continue
		}
		if err := emit(chunk.Content); err != nil {
			res.writeErr = err
			break
		}
	}

	res.text = text.String()
	if res.upstreamErr == nil && res.writeErr == nil && ctx.Err() != nil {
		res.canceled = true
	}
	return res
}
