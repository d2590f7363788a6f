package openaicompat

import (
	"encoding/json"

	"github.com/mandalnilabja/streamrelay/internal/types"
)

// chatCompletionRequest is the wire format of a chat completion request.
// Message content is always serialized, even when empty.
type chatCompletionRequest struct {
	Model           string          `json:"model"`
	Messages        []types.Message `json:"messages"`
	Stream          bool            `json:"stream"`
	ReasoningEffort string          `json:"reasoning_effort,omitempty"`
}

// chatCompletionChunk is the wire format of one streamed chunk.
type chatCompletionChunk struct {
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
	Usage   *types.Usage  `json:"usage,omitempty"`
	Error   *errorDetail  `json:"error,omitempty"`
}

type chunkChoice struct {
	Index int `json:"index"`
	Delta struct {
		Role    string `json:"role,omitempty"`
		Content string `json:"content,omitempty"`
	} `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorEnvelope struct {
	Error *errorDetail `json:"error"`
}

// parseErrorMessage extracts the error message from an upstream error body.
// Gemini wraps the envelope in an array, OpenAI does not.
func parseErrorMessage(body []byte) string {
	var single errorEnvelope
	if err := json.Unmarshal(body, &single); err == nil && single.Error != nil {
		return single.Error.Message
	}

	var list []errorEnvelope
	if err := json.Unmarshal(body, &list); err == nil {
		for _, e := range list {
			if e.Error != nil {
				return e.Error.Message
			}
		}
	}
	return ""
}
