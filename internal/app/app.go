// Package app wires configuration into a ready-to-use router.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/Jarvistrey/Jarvis-AI/internal/config"
	"github.com/Jarvistrey/Jarvis-AI/internal/llm"
	"github.com/Jarvistrey/Jarvis-AI/internal/model/persona"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/ai"
	chatservice "github.com/Jarvistrey/Jarvis-AI/internal/service/chat"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/router"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/speech"
	"github.com/Jarvistrey/Jarvis-AI/internal/store"
)

// App holds the long-lived components shared by the server and the CLI.
type App struct {
	Config   *config.Config
	Persona  persona.Persona
	Personas persona.Store
	Store    store.Store
	Window   *chatservice.Service
	Router   *router.Router
	Speaker  speech.Speaker
	// Backends are the adapters behind Router, for direct probing.
	Backends map[ai.Kind]ai.Backend
}

// Build opens the store and constructs both backends. Backends with missing
// credentials are still registered so requests report the configuration
// problem instead of failing at startup.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	personas := persona.NewMemoryStore(persona.Seed())
	active := persona.Resolve(personas, cfg.Chat.Persona)

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	remoteModel := cfg.Remote.Model
	if remoteModel == "" {
		remoteModel = llm.DefaultModel(cfg.Remote.Provider)
	}
	remoteCfg := cfg.Remote
	remoteCfg.Model = remoteModel

	chatModel, err := llm.NewChatModel(ctx, remoteCfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create remote chat model: %w", err)
	}
	remote, err := ai.NewRemote(ctx, chatModel, ai.RemoteConfig{APIKey: cfg.Remote.APIKey, Model: remoteModel})
	if err != nil {
		st.Close()
		return nil, err
	}

	local := ai.NewLocal(ai.LocalConfig{
		ModelPath:      cfg.Local.ModelPath,
		Command:        cfg.Local.Command,
		Timeout:        cfg.Local.Timeout,
		AssistantName:  active.Name,
		Marker:         active.Marker,
		FlattenHistory: cfg.Local.FlattenHistory,
	})

	window := chatservice.NewService(active.SystemPrompt)

	backends := map[ai.Kind]ai.Backend{
		ai.KindRemote: remote,
		ai.KindLocal:  local,
	}
	r, err := router.New(router.Options{
		Config:   cfg.Backends(),
		Backends: backends,
		Window:   window,
		Store:    st,
		Models: map[ai.Kind]string{
			ai.KindRemote: remoteModel,
			ai.KindLocal:  cfg.Local.ModelPath,
		},
		RehydrateTurns: cfg.Chat.RehydrateTurns,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	log.Printf("[app] ready: provider=%s model=%s local=%q store=%s persona=%s",
		cfg.Remote.Provider, remoteModel, cfg.Local.ModelPath, cfg.Store.Path, active.ID)

	return &App{
		Config:   cfg,
		Persona:  active,
		Personas: personas,
		Store:    st,
		Window:   window,
		Router:   r,
		Speaker:  speech.New(cfg.Voice),
		Backends: backends,
	}, nil
}

// DefaultBackend returns the configured backend selector.
func (a *App) DefaultBackend() string {
	return a.Config.Chat.DefaultBackend
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
