package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Jarvistrey/Jarvis-AI/internal/handler/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/handler/persona"
	"github.com/Jarvistrey/Jarvis-AI/internal/handler/ws"
	middlewarePkg "github.com/Jarvistrey/Jarvis-AI/internal/middleware"
	personaModel "github.com/Jarvistrey/Jarvis-AI/internal/model/persona"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/router"
	"github.com/Jarvistrey/Jarvis-AI/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, chatRouter *router.Router, defaultBackend string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"status": "ok", "backends": availability(chatRouter)})
	})

	r.Route("/api", func(api chi.Router) {
		persona.New(personas).RegisterRoutes(api)
		chat.New(chatRouter, defaultBackend).RegisterRoutes(api)
		ws.New(chatRouter, defaultBackend).RegisterRoutes(api)
	})

	return r
}

func availability(r *router.Router) map[string]bool {
	out := make(map[string]bool)
	for kind, ok := range r.Available() {
		out[kind.String()] = ok
	}
	return out
}
