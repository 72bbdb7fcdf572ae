// Package mock provides an offline chat model that echoes the latest user
// message. It lets the assistant run without credentials or network access.
package mock

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Prefix starts every echoed reply.
const Prefix = "ECHO: "

var _ model.BaseChatModel = (*ChatModel)(nil)

// ChatModel echoes the last user message.
type ChatModel struct{}

// New returns an echo model.
func New() *ChatModel {
	return &ChatModel{}
}

// Generate implements model.BaseChatModel.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return schema.AssistantMessage(Prefix+lastUserMessage(input), nil), nil
}

// Stream implements model.BaseChatModel, emitting the reply word by word.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}

	words := strings.SplitAfter(msg.Content, " ")
	chunks := make([]*schema.Message, 0, len(words))
	for _, w := range words {
		if w != "" {
			chunks = append(chunks, schema.AssistantMessage(w, nil))
		}
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func lastUserMessage(input []*schema.Message) string {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i] != nil && input[i].Role == schema.User {
			return input[i].Content
		}
	}
	return ""
}
