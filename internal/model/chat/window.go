package chat

import "github.com/cloudwego/eino/schema"

// MaxWindowMessages caps the number of messages submitted to a backend.
const MaxWindowMessages = 10

// DefaultSystemPrompt seeds every new conversation.
const DefaultSystemPrompt = "You are Jarvis, an AI assistant. Respond as if you were Tony Stark's AI."

// Trim keeps the leading system message, if any, plus the most recent
// messages so the result holds at most limit entries in chronological order.
func Trim(messages []*schema.Message, limit int) []*schema.Message {
	if limit <= 0 {
		limit = MaxWindowMessages
	}
	if len(messages) <= limit {
		return append([]*schema.Message(nil), messages...)
	}

	if messages[0] != nil && messages[0].Role == schema.System {
		out := make([]*schema.Message, 0, limit)
		out = append(out, messages[0])
		return append(out, messages[len(messages)-(limit-1):]...)
	}
	return append([]*schema.Message(nil), messages[len(messages)-limit:]...)
}

// EnsureUserTail returns messages with prompt as the final user message. The
// prompt is not appended again when it already closes the sequence.
func EnsureUserTail(messages []*schema.Message, prompt string) []*schema.Message {
	out := append([]*schema.Message(nil), messages...)
	if HasUserTail(out, prompt) {
		return out
	}
	return append(out, schema.UserMessage(prompt))
}

// HasUserTail reports whether the last message is a user message with content.
func HasUserTail(messages []*schema.Message, content string) bool {
	if len(messages) == 0 {
		return false
	}
	last := messages[len(messages)-1]
	return last != nil && last.Role == schema.User && last.Content == content
}

// SystemPrompt returns the leading system message content or fallback.
func SystemPrompt(messages []*schema.Message, fallback string) string {
	if len(messages) > 0 && messages[0] != nil && messages[0].Role == schema.System && messages[0].Content != "" {
		return messages[0].Content
	}
	return fallback
}
