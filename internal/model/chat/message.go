package chat

import "github.com/cloudwego/eino/schema"

// Message is the wire form of a context window entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FromSchema converts window entries into their wire form.
func FromSchema(messages []*schema.Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		out = append(out, Message{Role: string(msg.Role), Content: msg.Content})
	}
	return out
}
