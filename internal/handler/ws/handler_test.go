package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jarvistrey/Jarvis-AI/internal/service/ai"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/router"
)

type echoRouter struct {
	selectors []string
	delay     time.Duration
}

func (e *echoRouter) Route(ctx context.Context, sessionID, prompt, selector string) router.Result {
	e.selectors = append(e.selectors, selector)
	time.Sleep(e.delay)
	if prompt == "" {
		err := &ai.Error{Kind: ai.ErrInvalidInput}
		return router.Result{SessionID: sessionID, Text: err.Message(), Err: err}
	}
	return router.Result{SessionID: sessionID, Backend: ai.KindRemote, Text: "ECHO: " + prompt}
}

type frame struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

func dial(t *testing.T, r Router) *websocket.Conn {
	t.Helper()
	return dialHandler(t, New(r, "openai"))
}

func dialHandler(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	mux := chi.NewRouter()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocketPromptRoundTrip(t *testing.T) {
	r := &echoRouter{}
	conn := dial(t, r)

	hello := readFrame(t, conn)
	assert.Equal(t, "connected", hello.Type)
	assert.Equal(t, "s1", hello.SessionID)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "prompt",
		"data": PromptMessage{Text: "hi"},
	}))
	reply := readFrame(t, conn)
	assert.Equal(t, "response", reply.Type)

	var body struct {
		Response string `json:"response"`
		Backend  string `json:"backend"`
		OK       bool   `json:"ok"`
	}
	require.NoError(t, json.Unmarshal(reply.Data, &body))
	assert.Equal(t, "ECHO: hi", body.Response)
	assert.Equal(t, "openai", body.Backend)
	assert.True(t, body.OK)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "prompt",
		"data": PromptMessage{Text: "again", Backend: "llama"},
	}))
	readFrame(t, conn)
	assert.Equal(t, []string{"openai", "llama"}, r.selectors)
}

func TestWebSocketErrorFrames(t *testing.T) {
	conn := dial(t, &echoRouter{})
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "prompt", "data": PromptMessage{}}))
	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
	assert.Contains(t, string(f.Data), "Please enter a message.")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "dance"}))
	f = readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
	assert.Contains(t, string(f.Data), "unsupported message type")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping", "sessionId": "other"}))
	f = readFrame(t, conn)
	assert.Equal(t, "error", f.Type)
	assert.Contains(t, string(f.Data), "session mismatch")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	assert.Equal(t, "pong", readFrame(t, conn).Type)
}

func TestWebSocketSurvivesSlowExchange(t *testing.T) {
	h := New(&echoRouter{delay: 600 * time.Millisecond}, "openai")
	h.readTimeout = 200 * time.Millisecond
	h.pingInterval = time.Hour
	conn := dialHandler(t, h)
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "prompt", "data": PromptMessage{Text: "slow"}}))
	assert.Equal(t, "response", readFrame(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))
	assert.Equal(t, "pong", readFrame(t, conn).Type)
}
