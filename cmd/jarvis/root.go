package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Jarvistrey/Jarvis-AI/internal/app"
	"github.com/Jarvistrey/Jarvis-AI/internal/config"
)

var (
	configPath string
	verbose    bool
	version    string = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "jarvis",
	Short: "Chat with Jarvis through a hosted or a local language model",
	Long: `Jarvis is a conversational assistant that routes each message to either a
hosted chat-completion API (openai) or a local llama model, keeps a short
context window per session and records every exchange in a local database.

Quick Start:
  jarvis config set openai_api_key sk-...   # Store your API key
  jarvis chat                               # Start a conversation
  jarvis ask --backend llama "hello"        # One-shot question
  jarvis history --session <id>             # Review a session`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetOutput(cmd.ErrOrStderr())
		} else {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute runs the root command until ctx is done.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $JARVIS_CONFIG or config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.Path()
}

func loadConfig() (*config.Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()
	return config.LoadFrom(configFile())
}

func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, cfg)
}
