package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/ai"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/router"
)

type fakeRouter struct {
	result   router.Result
	selector string
	prompt   string
	reset    string
	limit    int
	turns    []chat.Turn
	sessions []chat.Session
	storeErr error
}

func (f *fakeRouter) Route(ctx context.Context, sessionID, prompt, selector string) router.Result {
	f.prompt = prompt
	f.selector = selector
	res := f.result
	res.SessionID = sessionID
	return res
}

func (f *fakeRouter) Reset(sessionID string) { f.reset = sessionID }

func (f *fakeRouter) History(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	f.limit = limit
	return f.turns, f.storeErr
}

func (f *fakeRouter) Sessions(ctx context.Context) ([]chat.Session, error) {
	return f.sessions, f.storeErr
}

func setupRouter(f *fakeRouter) *chi.Mux {
	r := chi.NewRouter()
	New(f, "openai").RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestCreateSession(t *testing.T) {
	resp := doJSON(t, setupRouter(&fakeRouter{}), http.MethodPost, "/session", nil)
	require.Equal(t, http.StatusCreated, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body["id"], 36)
}

func TestChatSuccess(t *testing.T) {
	f := &fakeRouter{result: router.Result{Backend: ai.KindRemote, Text: "ECHO: hi", Turn: &chat.Turn{ID: 7}}}
	resp := doJSON(t, setupRouter(f), http.MethodPost, "/chat", map[string]string{"sessionId": "s1", "message": "hi"})
	require.Equal(t, http.StatusOK, resp.Code)

	var body ChatResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, ChatResponse{SessionID: "s1", Backend: "openai", Response: "ECHO: hi", OK: true, TurnID: 7}, body)
	assert.Equal(t, "openai", f.selector, "empty backend falls back to the default")
	assert.Equal(t, "hi", f.prompt)
}

func TestChatInvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{"))
	resp := httptest.NewRecorder()
	setupRouter(&fakeRouter{}).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestChatFailureStatus(t *testing.T) {
	tests := []struct {
		kind ai.ErrorKind
		want int
	}{
		{ai.ErrInvalidInput, http.StatusBadRequest},
		{ai.ErrUnknownBackend, http.StatusBadRequest},
		{ai.ErrConfiguration, http.StatusServiceUnavailable},
		{ai.ErrRemoteFailure, http.StatusBadGateway},
		{ai.ErrLocalFailure, http.StatusBadGateway},
		{ai.ErrStorage, http.StatusInternalServerError},
		{ai.ErrCanceled, http.StatusRequestTimeout},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := &ai.Error{Kind: tt.kind, Detail: "boom"}
			f := &fakeRouter{result: router.Result{Text: e.Message(), Err: e}}
			resp := doJSON(t, setupRouter(f), http.MethodPost, "/chat", map[string]string{"message": "hi", "backend": "llama"})
			assert.Equal(t, tt.want, resp.Code)

			var body ChatResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.False(t, body.OK)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.kind, body.Error.Kind)
			assert.Equal(t, e.Message(), body.Response)
			assert.Equal(t, "llama", f.selector)
		})
	}
}

func TestListSessions(t *testing.T) {
	f := &fakeRouter{sessions: []chat.Session{{ID: "a", Turns: 2, LastActive: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}}
	resp := doJSON(t, setupRouter(f), http.MethodGet, "/sessions", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"id":"a"`)

	empty := doJSON(t, setupRouter(&fakeRouter{}), http.MethodGet, "/sessions", nil)
	assert.JSONEq(t, `[]`, empty.Body.String())

	failing := doJSON(t, setupRouter(&fakeRouter{storeErr: errors.New("locked")}), http.MethodGet, "/sessions", nil)
	assert.Equal(t, http.StatusInternalServerError, failing.Code)
}

func TestListTurns(t *testing.T) {
	f := &fakeRouter{turns: []chat.Turn{{ID: 1, SessionID: "s1", UserInput: "hi", Response: "hello"}}}
	h := setupRouter(f)

	resp := doJSON(t, h, http.MethodGet, "/sessions/s1/turns?limit=3", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 3, f.limit)
	assert.Contains(t, resp.Body.String(), `"userInput":"hi"`)

	resp = doJSON(t, h, http.MethodGet, "/sessions/s1/turns", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, defaultHistoryLimit, f.limit)

	resp = doJSON(t, h, http.MethodGet, "/sessions/s1/turns?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestResetContext(t *testing.T) {
	f := &fakeRouter{}
	resp := doJSON(t, setupRouter(f), http.MethodDelete, "/sessions/s1/context", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "s1", f.reset)
}
