// Package router dispatches prompts to a backend and records each exchange.
package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jarvistrey/Jarvis-AI/internal/config"
	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/ai"
	chatservice "github.com/Jarvistrey/Jarvis-AI/internal/service/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/store"
)

var (
	ErrWindowRequired = errors.New("window manager is required")
	ErrStoreRequired  = errors.New("store is required")
)

// Options wires a Router.
type Options struct {
	Config   config.BackendConfig
	Backends map[ai.Kind]ai.Backend
	Window   *chatservice.Service
	Store    store.Store
	// Models labels persisted turns with the model behind each backend.
	Models map[ai.Kind]string
	// RehydrateTurns is how many stored turns seed the window of a session
	// unseen since startup. Zero disables rehydration.
	RehydrateTurns int
}

// Router selects a backend per request, invokes it with the session's
// context window and persists successful exchanges before returning.
type Router struct {
	cfg       config.BackendConfig
	backends  map[ai.Kind]ai.Backend
	models    map[ai.Kind]string
	window    *chatservice.Service
	store     store.Store
	rehydrate int
	gate      *sessionGate
}

// New validates opts and returns a Router.
func New(opts Options) (*Router, error) {
	if opts.Window == nil {
		return nil, ErrWindowRequired
	}
	if opts.Store == nil {
		return nil, ErrStoreRequired
	}

	backends := make(map[ai.Kind]ai.Backend, len(opts.Backends))
	for kind, backend := range opts.Backends {
		if !kind.Valid() {
			return nil, fmt.Errorf("unsupported backend kind %q", kind)
		}
		backends[kind] = backend
	}
	models := make(map[ai.Kind]string, len(opts.Models))
	for kind, name := range opts.Models {
		models[kind] = name
	}

	return &Router{
		cfg:       opts.Config,
		backends:  backends,
		models:    models,
		window:    opts.Window,
		store:     opts.Store,
		rehydrate: opts.RehydrateTurns,
		gate:      newSessionGate(),
	}, nil
}

// Route runs one exchange. Failures never escape as errors or panics; they
// are reported in Result.Err with a displayable Result.Text. An empty
// sessionID starts a new session.
func (r *Router) Route(ctx context.Context, sessionID, prompt, selector string) (res Result) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	kind := ai.ParseKind(selector)
	if !kind.Valid() {
		return failure(sessionID, ai.KindUnknown, ai.UnknownBackendError(selector))
	}
	if err := r.checkConfig(kind); err != nil {
		return failure(sessionID, kind, err)
	}
	backend, ok := r.backends[kind]
	if !ok || backend == nil {
		return failure(sessionID, kind, &ai.Error{Kind: ai.ErrConfiguration, Backend: kind, Detail: "backend not available"})
	}
	if strings.TrimSpace(prompt) == "" {
		return failure(sessionID, kind, &ai.Error{Kind: ai.ErrInvalidInput, Backend: kind, Detail: "empty prompt"})
	}

	release, err := r.gate.acquire(ctx, sessionID)
	if err != nil {
		return failure(sessionID, kind, &ai.Error{Kind: ai.ErrCanceled, Backend: kind, Err: err})
	}
	defer release()

	defer func() {
		if p := recover(); p != nil {
			log.Printf("[router] recovered panic: session=%s backend=%s panic=%v", sessionID, kind, p)
			res = failure(sessionID, kind, &ai.Error{Kind: fallbackKind(kind), Backend: kind, Detail: fmt.Sprint(p)})
		}
	}()

	r.restore(ctx, sessionID)
	window := chat.Trim(chat.EnsureUserTail(r.window.WindowFor(sessionID), prompt), chat.MaxWindowMessages)

	log.Printf("[router] dispatch: session=%s backend=%s window=%d", sessionID, kind, len(window))
	start := time.Now()
	text, err := backend.Complete(ctx, prompt, window)
	latency := time.Since(start)
	if err != nil {
		e := ai.AsError(err, kind, fallbackKind(kind))
		if errors.Is(ctx.Err(), context.Canceled) && e.Kind != ai.ErrConfiguration {
			e = &ai.Error{Kind: ai.ErrCanceled, Backend: kind, Err: err}
		}
		log.Printf("[router] backend failed: session=%s backend=%s err=%v", sessionID, kind, e)
		return failure(sessionID, kind, e)
	}

	turn := &chat.Turn{
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		UserInput: prompt,
		Response:  text,
		Context: map[string]any{
			"backend":         kind.String(),
			"model":           r.models[kind],
			"latency_ms":      latency.Milliseconds(),
			"window_messages": len(window),
			"request_id":      uuid.NewString(),
		},
	}

	// A completed exchange is persisted even if the caller has gone away.
	if err := r.store.RecordTurn(context.WithoutCancel(ctx), turn); err != nil {
		log.Printf("[router] persist failed: session=%s err=%v", sessionID, err)
		return failure(sessionID, kind, &ai.Error{Kind: ai.ErrStorage, Backend: kind, Detail: err.Error(), Err: err})
	}

	r.window.AppendUserTurn(sessionID, prompt)
	r.window.AppendAssistantTurn(sessionID, text)

	log.Printf("[router] turn recorded: session=%s backend=%s id=%d latency=%s", sessionID, kind, turn.ID, latency.Round(time.Millisecond))
	return Result{SessionID: sessionID, Backend: kind, Text: text, Turn: turn}
}

func (r *Router) checkConfig(kind ai.Kind) *ai.Error {
	switch kind {
	case ai.KindRemote:
		if strings.TrimSpace(r.cfg.RemoteAPIKey) == "" {
			return ai.ConfigError(kind, ai.FieldRemoteAPIKey)
		}
	case ai.KindLocal:
		if strings.TrimSpace(r.cfg.LocalModelPath) == "" {
			return ai.ConfigError(kind, ai.FieldLocalModelPath)
		}
	}
	return nil
}

// restore seeds the window of a session unseen since startup from the store.
// Store errors leave the window empty; the exchange proceeds without history.
func (r *Router) restore(ctx context.Context, sessionID string) {
	if r.rehydrate <= 0 || r.window.Has(sessionID) {
		return
	}
	turns, err := r.store.RecentTurns(ctx, sessionID, r.rehydrate)
	if err != nil {
		log.Printf("[router] rehydrate failed: session=%s err=%v", sessionID, err)
		return
	}
	r.window.Restore(sessionID, turns)
	if len(turns) > 0 {
		log.Printf("[router] rehydrated session=%s turns=%d", sessionID, len(turns))
	}
}

// Window returns the current context window of a session.
func (r *Router) Window(sessionID string) []chat.Message {
	return chat.FromSchema(r.window.WindowFor(sessionID))
}

// Reset clears the in-memory window of a session. Stored turns are kept but
// not replayed into the window until the process restarts. A reset issued
// during an exchange waits for it, so the exchange cannot re-add its turn.
func (r *Router) Reset(sessionID string) {
	release, err := r.gate.acquire(context.Background(), sessionID)
	if err != nil {
		return
	}
	defer release()
	r.window.Restore(sessionID, nil)
}

// History returns up to limit stored turns, most recent first.
func (r *Router) History(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	return r.store.RecentTurns(ctx, sessionID, limit)
}

// Sessions lists stored sessions.
func (r *Router) Sessions(ctx context.Context) ([]chat.Session, error) {
	return r.store.Sessions(ctx)
}

// Available reports which backends are configured.
func (r *Router) Available() map[ai.Kind]bool {
	out := make(map[ai.Kind]bool, 2)
	for _, kind := range ai.Kinds() {
		_, registered := r.backends[kind]
		out[kind] = registered && r.checkConfig(kind) == nil
	}
	return out
}

func fallbackKind(kind ai.Kind) ai.ErrorKind {
	if kind == ai.KindLocal {
		return ai.ErrLocalFailure
	}
	return ai.ErrRemoteFailure
}
