package tokenizer

import "github.com/mandalnilabja/streamrelay/internal/types"

// Message token overhead, from OpenAI's chat format documentation.
const (
	messageOverhead    = 3 // <|start|>role<|end|>
	replyPrimingTokens = 3
)

// CountMessages counts tokens for a slice of messages.
func (t *TiktokenTokenizer) CountMessages(messages []types.Message, model string) (int, error) {
	total := 0
	for _, msg := range messages {
		roleTokens, err := t.CountTokens(msg.Role, model)
		if err != nil {
			return 0, err
		}
		contentTokens, err := t.CountTokens(msg.Content, model)
		if err != nil {
			return 0, err
		}
		total += roleTokens + contentTokens + messageOverhead
	}

	return total + replyPrimingTokens, nil
}

// CountRequest counts total prompt tokens for a full request.
func (t *TiktokenTokenizer) CountRequest(req *types.CompletionRequest) (int, error) {
	return t.CountMessages(req.Messages, req.Model)
}
