// Package ws serves chat over a websocket connection.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Jarvistrey/Jarvis-AI/internal/handler/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/router"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultPingInterval = 54 * time.Second
	writeTimeout        = 10 * time.Second
)

// Router routes one prompt for a session.
type Router interface {
	Route(ctx context.Context, sessionID, prompt, selector string) router.Result
}

// Handler upgrades requests to websocket chat sessions.
type Handler struct {
	router         Router
	defaultBackend string
	upgrader       websocket.Upgrader
	// readTimeout is how long the connection may stay silent between frames,
	// not counting time spent routing a prompt.
	readTimeout  time.Duration
	pingInterval time.Duration
}

// New creates a websocket handler.
func New(r Router, defaultBackend string) *Handler {
	return &Handler{
		router:         r,
		defaultBackend: defaultBackend,
		readTimeout:    defaultReadTimeout,
		pingInterval:   defaultPingInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

// PromptMessage is the payload of a "prompt" frame.
type PromptMessage struct {
	Text    string `json:"text"`
	Backend string `json:"backend"`
}

// OutgoingMessage is written for every reply.
type OutgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type connectionState struct {
	sessionID string
	backend   string
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		return nil
	})

	go pingLoop(ctx, conn, h.pingInterval)

	state := &connectionState{sessionID: sessionID, backend: h.defaultBackend}
	h.send(conn, "connected", sessionID, map[string]any{"backend": state.backend})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(conn, sessionID, "session mismatch")
		} else {
			h.handleMessage(ctx, conn, state, &msg)
		}
		// Pongs are not read while a prompt is routed, so the deadline
		// restarts once the reply is out.
		conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "prompt":
		var prompt PromptMessage
		if err := json.Unmarshal(msg.Data, &prompt); err != nil {
			h.sendError(conn, state.sessionID, "invalid prompt payload")
			return
		}
		backend := state.backend
		if strings.TrimSpace(prompt.Backend) != "" {
			backend = prompt.Backend
		}

		res := h.router.Route(ctx, state.sessionID, prompt.Text, backend)
		msgType := "response"
		if !res.OK() {
			msgType = "error"
		}
		h.send(conn, msgType, state.sessionID, chat.NewChatResponse(res))
	case "ping":
		h.send(conn, "pong", state.sessionID, nil)
	default:
		h.sendError(conn, state.sessionID, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) send(conn *websocket.Conn, msgType, sessionID string, data any) {
	msg := OutgoingMessage{
		Type:      msgType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write %s failed: %v", msgType, err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID, message string) {
	h.send(conn, "error", sessionID, map[string]string{"message": message})
}

// pingLoop keeps the connection alive. WriteControl is safe to call
// concurrently with the reader loop's writes.
func pingLoop(ctx context.Context, conn *websocket.Conn, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
