// Command backendtester sends one prompt straight to a backend adapter,
// bypassing the session store, to check credentials and connectivity.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Jarvistrey/Jarvis-AI/internal/app"
	"github.com/Jarvistrey/Jarvis-AI/internal/config"
	"github.com/Jarvistrey/Jarvis-AI/internal/service/ai"
)

const checkPrompt = "Confirm you are running and explain briefly what you can do."

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	backend := flag.String("backend", "openai", "Backend to check: openai or llama")
	prompt := flag.String("prompt", checkPrompt, "Prompt to send")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] failed to load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	kind := ai.ParseKind(*backend)
	if !kind.Valid() {
		flag.Usage()
		log.Fatalf("unknown backend %q", *backend)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	log.Printf("probing %s backend", kind)
	start := time.Now()
	reply, err := a.Backends[kind].Complete(ctx, *prompt, a.Window.WindowFor("backendtester"))
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		var aiErr *ai.Error
		if errors.As(err, &aiErr) {
			fmt.Println(aiErr.Message())
		}
		log.Printf("check failed after %s: %v", elapsed, err)
		a.Close()
		os.Exit(1)
	}

	log.Printf("check succeeded in %s", elapsed)
	fmt.Printf("\n%s: %s\n", a.Persona.Name, reply)
}
