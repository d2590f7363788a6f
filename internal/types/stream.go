package types

// Usage reports token counts for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// StreamChunk is one unit read from an upstream completion stream.
// Content may be empty (role-only, finish or usage chunks).
// A chunk with Err set is the last one on the channel.
type StreamChunk struct {
	Content      string
	FinishReason string
	Model        string
	Usage        *Usage
	Err          error
}

// HasContent reports whether the chunk carries a text delta.
func (c StreamChunk) HasContent() bool {
	return c.Content != ""
}
