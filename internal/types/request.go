package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedBody is returned when a chat request body is not a JSON object.
var ErrMalformedBody = errors.New("request body must be a JSON object")

// ChatRequest is the inbound body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// DecodeChatRequest reads a chat request from r.
// An empty body is treated as {}. A "message" field that is missing, null
// or not a string yields an empty message. Anything that is not a JSON
// object is rejected with ErrMalformedBody.
func DecodeChatRequest(r io.Reader) (*ChatRequest, error) {
	req := &ChatRequest{}
	if r == nil {
		return req, nil
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if fields == nil {
		// literal null
		return nil, ErrMalformedBody
	}

	if raw, ok := fields["message"]; ok {
		var message string
		if err := json.Unmarshal(raw, &message); err == nil {
			req.Message = message
		}
	}
	return req, nil
}

// CompletionRequest is a provider-neutral streaming chat completion request.
type CompletionRequest struct {
	Model           string
	Messages        []Message
	ReasoningEffort string
	Stream          bool
}

// NewRelayRequest builds the two-message request sent upstream for a user
// message: the fixed system prompt followed by the user content.
func NewRelayRequest(model, reasoningEffort, userMessage string) *CompletionRequest {
	return &CompletionRequest{
		Model: model,
		Messages: []Message{
			NewTextMessage(RoleSystem, DefaultSystemPrompt),
			NewTextMessage(RoleUser, userMessage),
		},
		ReasoningEffort: reasoningEffort,
		Stream:          true,
	}
}

// UserContent returns the content of the last user message.
func (r *CompletionRequest) UserContent() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}
