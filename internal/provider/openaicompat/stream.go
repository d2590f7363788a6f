package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/tmaxmax/go-sse"

	"github.com/mandalnilabja/streamrelay/internal/types"
)

// doneMarker is the data payload that terminates an OpenAI stream.
const doneMarker = "[DONE]"

// readStream parses the SSE body r and sends one chunk per upstream event
// on out. It returns nil when the stream ends normally, either with the
// [DONE] marker or at EOF.
func readStream(ctx context.Context, r io.Reader, out chan<- types.StreamChunk) error {
	for ev, err := range sse.Read(r, nil) {
		if err != nil {
			return err
		}

		data := strings.TrimSpace(ev.Data)
		if data == "" {
			continue
		}
		if data == doneMarker {
			return nil
		}

		var raw chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &raw); err != nil {
			continue // Skip malformed chunks
		}
		if raw.Error != nil {
			return errors.New(raw.Error.Message)
		}

		select {
		case out <- toStreamChunk(&raw):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// toStreamChunk converts a wire chunk to a provider-neutral chunk.
// Only the first choice is relayed.
func toStreamChunk(raw *chatCompletionChunk) types.StreamChunk {
	chunk := types.StreamChunk{
		Model: raw.Model,
		Usage: raw.Usage,
	}
	if len(raw.Choices) > 0 {
		choice := raw.Choices[0]
		chunk.Content = choice.Delta.Content
		if choice.FinishReason != nil {
			chunk.FinishReason = *choice.FinishReason
		}
	}
	return chunk
}
