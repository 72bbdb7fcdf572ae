package chat_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modelchat "github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
	chat "github.com/Jarvistrey/Jarvis-AI/internal/service/chat"
)

func TestWindowForNewSession(t *testing.T) {
	svc := chat.NewService("")

	window := svc.WindowFor("fresh")
	require.Len(t, window, 1)
	assert.Equal(t, schema.System, window[0].Role)
	assert.Equal(t, modelchat.DefaultSystemPrompt, window[0].Content)

	// Reading does not create state.
	assert.False(t, svc.Has("fresh"))
	assert.Len(t, svc.WindowFor("fresh"), 1)
}

func TestWindowCapKeepsSystemAndMostRecent(t *testing.T) {
	svc := chat.NewService("sys")

	for i := 0; i < 20; i++ {
		svc.AppendUserTurn("s", fmt.Sprintf("q%d", i))
		svc.AppendAssistantTurn("s", fmt.Sprintf("a%d", i))

		window := svc.WindowFor("s")
		assert.LessOrEqual(t, len(window), modelchat.MaxWindowMessages)
		assert.Equal(t, schema.System, window[0].Role)
	}

	window := svc.WindowFor("s")
	require.Len(t, window, modelchat.MaxWindowMessages)
	assert.Equal(t, "sys", window[0].Content)
	assert.Equal(t, "a15", window[1].Content)
	assert.Equal(t, "q16", window[2].Content)
	assert.Equal(t, "a19", window[9].Content)
}

func TestAppendUserTurnIsIdempotent(t *testing.T) {
	svc := chat.NewService("sys")

	svc.AppendUserTurn("s", "hello")
	svc.AppendUserTurn("s", "hello")

	window := svc.WindowFor("s")
	require.Len(t, window, 2)
	assert.Equal(t, schema.User, window[1].Role)
	assert.Equal(t, "hello", window[1].Content)

	svc.AppendAssistantTurn("s", "hi")
	svc.AppendUserTurn("s", "hello")
	assert.Len(t, svc.WindowFor("s"), 4)
}

func TestWindowForReturnsCopy(t *testing.T) {
	svc := chat.NewService("sys")
	svc.AppendUserTurn("s", "hello")

	window := svc.WindowFor("s")
	window[1] = schema.UserMessage("tampered")
	_ = append(window, schema.UserMessage("extra"))

	got := svc.WindowFor("s")
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[1].Content)
}

func TestResetAndRestore(t *testing.T) {
	svc := chat.NewService("sys")
	svc.AppendUserTurn("s", "hello")
	require.True(t, svc.Has("s"))

	svc.Reset("s")
	assert.False(t, svc.Has("s"))
	assert.Len(t, svc.WindowFor("s"), 1)

	turns := []modelchat.Turn{
		{UserInput: "q2", Response: "a2"},
		{UserInput: "q1", Response: "a1"},
	}
	svc.Restore("s", turns)

	window := svc.WindowFor("s")
	require.Len(t, window, 5)
	assert.Equal(t, "sys", window[0].Content)
	assert.Equal(t, "q1", window[1].Content)
	assert.Equal(t, "a1", window[2].Content)
	assert.Equal(t, "q2", window[3].Content)
	assert.Equal(t, schema.Assistant, window[4].Role)
}

func TestRestoreBoundsWindow(t *testing.T) {
	svc := chat.NewService("sys")
	turns := make([]modelchat.Turn, 8)
	for i := range turns {
		turns[i] = modelchat.Turn{UserInput: fmt.Sprintf("q%d", 7-i), Response: fmt.Sprintf("a%d", 7-i)}
	}
	svc.Restore("s", turns)

	window := svc.WindowFor("s")
	require.Len(t, window, modelchat.MaxWindowMessages)
	assert.Equal(t, "sys", window[0].Content)
	assert.Equal(t, "a7", window[9].Content)
}

func TestConcurrentSessions(t *testing.T) {
	svc := chat.NewService("sys")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			for j := 0; j < 10; j++ {
				svc.AppendUserTurn(id, fmt.Sprintf("q%d", j))
				svc.AppendAssistantTurn(id, fmt.Sprintf("a%d", j))
				_ = svc.WindowFor(id)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		window := svc.WindowFor(fmt.Sprintf("s%d", i))
		assert.Len(t, window, modelchat.MaxWindowMessages)
		assert.Equal(t, "a9", window[len(window)-1].Content)
	}
}
