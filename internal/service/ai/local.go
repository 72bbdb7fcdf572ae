package ai

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
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
)

// Generation parameters passed to the local model process.
const (
	LocalMaxTokens     = 2048
	LocalTemperature   = 0.7
	LocalRepeatPenalty = 1.1

	DefaultLocalCommand = "llama-chat"
	DefaultLocalTimeout = 120 * time.Second

	// maxDiagnosticBytes bounds how much stderr is carried in an error.
	maxDiagnosticBytes = 2048
	waitDelay          = 2 * time.Second
)

// LocalConfig configures the local model process.
type LocalConfig struct {
	ModelPath string
	// Command is the inference executable, llama-chat by default.
	Command string
	Timeout time.Duration
	// AssistantName labels assistant turns in the flattened prompt.
	AssistantName string
	// Marker delimits the reply in the process output. Defaults to
	// AssistantName followed by a colon.
	Marker string
	// FlattenHistory renders earlier window messages into the prompt.
	FlattenHistory bool
}

// Local runs a local inference executable once per completion.
type Local struct {
	cfg LocalConfig
}

// NewLocal applies defaults to cfg.
func NewLocal(cfg LocalConfig) *Local {
	if cfg.Command == "" {
		cfg.Command = DefaultLocalCommand
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLocalTimeout
	}
	if cfg.AssistantName == "" {
		cfg.AssistantName = DefaultAssistantName
	}
	if cfg.Marker == "" {
		cfg.Marker = cfg.AssistantName + ":"
	}
	return &Local{cfg: cfg}
}

// ModelPath returns the configured model file.
func (l *Local) ModelPath() string {
	return l.cfg.ModelPath
}

// Args returns the command line arguments for a flattened prompt.
func (l *Local) Args(prompt string) []string {
	return []string{
		"-m", l.cfg.ModelPath,
		"-n", strconv.Itoa(LocalMaxTokens),
		"-p", prompt,
		"--temp", strconv.FormatFloat(LocalTemperature, 'f', -1, 64),
		"--repeat_penalty", strconv.FormatFloat(LocalRepeatPenalty, 'f', -1, 64),
	}
}

// Complete implements Backend.
func (l *Local) Complete(ctx context.Context, prompt string, window []*schema.Message) (string, error) {
	if strings.TrimSpace(l.cfg.ModelPath) == "" {
		return "", ConfigError(KindLocal, FieldLocalModelPath)
	}

	fullPrompt := FlattenPrompt(window, prompt, l.cfg.AssistantName, l.cfg.FlattenHistory)

	limit := l.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < limit {
		limit = time.Until(deadline)
	}

	runCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	cmd := osexec.CommandContext(runCtx, l.cfg.Command, l.Args(fullPrompt)...)
	setProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		return "", l.classify(ctx, runCtx, err, stderr.String(), limit)
	}

	log.Printf("[local] completion finished: model=%s elapsed=%s bytes=%d", l.cfg.ModelPath, time.Since(start).Round(time.Millisecond), stdout.Len())
	return ExtractReply(stdout.String(), l.cfg.Marker), nil
}

// classify maps a failed run to an Error. limit is the time the process was
// allowed, the smaller of the configured timeout and the caller's deadline.
func (l *Local) classify(parent, runCtx context.Context, err error, stderr string, limit time.Duration) *Error {
	diag := tail(strings.TrimSpace(stderr), maxDiagnosticBytes)

	if errors.Is(parent.Err(), context.Canceled) {
		return &Error{Kind: ErrCanceled, Backend: KindLocal, Err: parent.Err()}
	}

	var exitErr *osexec.ExitError
	isRealExit := errors.As(err, &exitErr) && exitErr.ExitCode() >= 0

	var detail string
	switch {
	case !isRealExit && runCtx.Err() != nil:
		detail = fmt.Sprintf("timeout after %s", limit.Round(time.Millisecond))
	case isRealExit:
		detail = fmt.Sprintf("%s exited with status %d", l.cfg.Command, exitErr.ExitCode())
	default:
		detail = fmt.Sprintf("failed to run %s: %v", l.cfg.Command, err)
	}
	if diag != "" {
		detail += ": " + diag
	}

	log.Printf("[local] completion failed: model=%s err=%v", l.cfg.ModelPath, err)
	return &Error{Kind: ErrLocalFailure, Backend: KindLocal, Detail: detail, Err: err}
}

// tail keeps at most the last n bytes of s without splitting a rune.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return "..." + s[start:]
}
