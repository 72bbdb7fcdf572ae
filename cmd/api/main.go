package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Jarvistrey/Jarvis-AI/internal/app"
	"github.com/Jarvistrey/Jarvis-AI/internal/config"
	"github.com/Jarvistrey/Jarvis-AI/internal/handler"
	"github.com/Jarvistrey/Jarvis-AI/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	for kind, ok := range a.Router.Available() {
		if !ok {
			log.Printf("warning: %s backend is not configured, requests to it will fail", kind)
		}
	}

	router := handler.NewRouter(a.Personas, a.Router, a.DefaultBackend())
	if err := server.Run(ctx, server.New(cfg.Server.Addr, router)); err != nil {
		log.Printf("server error: %v", err)
		a.Close()
		os.Exit(1)
	}
}
