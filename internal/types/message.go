// Package types provides the request, stream and error types shared by the
// relay handlers and the upstream providers.
package types

// Role constants for message roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// DefaultSystemPrompt is the system message prepended to every relayed chat.
const DefaultSystemPrompt = "You are a helpful assistant."

// Message is a single chat message sent upstream.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewTextMessage creates a simple text message.
func NewTextMessage(role, content string) Message {
	return Message{
		Role:    role,
		Content: content,
	}
}
