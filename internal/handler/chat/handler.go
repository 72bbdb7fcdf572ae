package chat

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/ai"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/router"
	"github.com/Jarvistrey/Jarvis-AI/pkg/utils"
)

// Router is the subset of the chat router the handler needs.
type Router interface {
	Route(ctx context.Context, sessionID, prompt, selector string) router.Result
	Reset(sessionID string)
	History(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error)
	Sessions(ctx context.Context) ([]chat.Session, error)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// Handler serves chat and session endpoints.
type Handler struct {
	router         Router
	defaultBackend string
}

// New creates a chat handler. Requests without a backend use defaultBackend.
func New(r Router, defaultBackend string) *Handler {
	return &Handler{router: r, defaultBackend: defaultBackend}
}

// RegisterRoutes mounts the chat routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Post("/chat", h.handleChat)
	r.Get("/sessions", h.handleListSessions)
	r.Get("/sessions/{sessionID}/turns", h.handleListTurns)
	r.Delete("/sessions/{sessionID}/context", h.handleResetContext)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusCreated, map[string]string{"id": uuid.NewString()})
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Backend   string `json:"backend"`
}

// ErrorBody describes a failed exchange.
type ErrorBody struct {
	Kind    ai.ErrorKind `json:"kind"`
	Message string       `json:"message"`
}

// ChatResponse is the body of POST /chat. Response always holds displayable
// text, including on failure.
type ChatResponse struct {
	SessionID string     `json:"sessionId"`
	Backend   string     `json:"backend"`
	Response  string     `json:"response"`
	OK        bool       `json:"ok"`
	TurnID    int64      `json:"turnId,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	backend := payload.Backend
	if strings.TrimSpace(backend) == "" {
		backend = h.defaultBackend
	}

	res := h.router.Route(r.Context(), payload.SessionID, payload.Message, backend)
	utils.RespondJSON(w, StatusFor(res), NewChatResponse(res))
}

// NewChatResponse converts a routing result to its wire form.
func NewChatResponse(res router.Result) ChatResponse {
	out := ChatResponse{
		SessionID: res.SessionID,
		Backend:   res.Backend.String(),
		Response:  res.Text,
		OK:        res.OK(),
	}
	if res.Turn != nil {
		out.TurnID = res.Turn.ID
	}
	if res.Err != nil {
		out.Error = &ErrorBody{Kind: res.Err.Kind, Message: res.Err.Message()}
	}
	return out
}

// StatusFor maps a routing result to an HTTP status code.
func StatusFor(res router.Result) int {
	if res.OK() {
		return http.StatusOK
	}
	switch res.Err.Kind {
	case ai.ErrInvalidInput, ai.ErrUnknownBackend:
		return http.StatusBadRequest
	case ai.ErrConfiguration:
		return http.StatusServiceUnavailable
	case ai.ErrRemoteFailure, ai.ErrLocalFailure:
		return http.StatusBadGateway
	case ai.ErrCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.router.Sessions(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []chat.Session{}
	}
	utils.RespondJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleListTurns(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	turns, err := h.router.History(r.Context(), sessionID, limit)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load turns")
		return
	}
	utils.RespondJSON(w, http.StatusOK, turns)
}

func (h *Handler) handleResetContext(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	h.router.Reset(sessionID)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "cleared", "sessionId": sessionID})
}
