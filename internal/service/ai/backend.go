// Package ai adapts language-model backends to one completion contract.
package ai

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Backend completes a prompt given the session's context window. Failures are
// returned as *Error.
type Backend interface {
	Complete(ctx context.Context, prompt string, window []*schema.Message) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, prompt string, window []*schema.Message) (string, error)

func (f BackendFunc) Complete(ctx context.Context, prompt string, window []*schema.Message) (string, error) {
	return f(ctx, prompt, window)
}
