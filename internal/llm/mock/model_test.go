package mock

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEchoesLastUserMessage(t *testing.T) {
	msg, err := New().Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("first"),
		schema.AssistantMessage("reply", nil),
		schema.UserMessage("second"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ECHO: second", msg.Content)
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Generate(ctx, []*schema.Message{schema.UserMessage("hi")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStreamConcatenatesToReply(t *testing.T) {
	sr, err := New().Stream(context.Background(), []*schema.Message{schema.UserMessage("hello there")})
	require.NoError(t, err)
	defer sr.Close()

	var text string
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		text += chunk.Content
	}
	assert.Equal(t, "ECHO: hello there", text)
}
