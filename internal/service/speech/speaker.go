// Package speech reads assistant replies aloud. It is independent of routing;
// callers decide when to speak.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	osexec "os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/Jarvistrey/Jarvis-AI/internal/config"
)

const defaultSpeakTimeout = 60 * time.Second

// ErrEmptyText is returned when there is nothing to say.
var ErrEmptyText = errors.New("speech text is empty")

// Speaker turns text into audible speech.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Speak(context.Context, string) error { return nil }

// CommandSpeaker runs an external text-to-speech program such as espeak:
//
//	<command> -s <rate> -- <text>
type CommandSpeaker struct {
	Command string
	// Rate is in words per minute.
	Rate    int
	Timeout time.Duration
}

// New returns a CommandSpeaker for cfg, or Nop when voice output is off.
func New(cfg config.VoiceConfig) Speaker {
	if !cfg.Enabled {
		return Nop{}
	}
	return &CommandSpeaker{Command: cfg.Command, Rate: cfg.Rate}
}

// Args returns the command line for text. The text follows "--" so replies
// starting with a dash are spoken rather than parsed as options.
func (s *CommandSpeaker) Args(text string) []string {
	rate := s.Rate
	if rate <= 0 {
		rate = config.DefaultVoiceRate
	}
	return []string{"-s", strconv.Itoa(rate), "--", text}
}

// Speak blocks until the program exits, the timeout elapses or ctx is done.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}

	command := s.Command
	if command == "" {
		command = config.DefaultVoiceCommand
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultSpeakTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := osexec.CommandContext(ctx, command, s.Args(text)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("speech interrupted: %w", ctx.Err())
		}
		log.Printf("[speech] %s failed: %v", command, err)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s failed: %w: %s", command, err, msg)
		}
		return fmt.Errorf("%s failed: %w", command, err)
	}
	return nil
}
