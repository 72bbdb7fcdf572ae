package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Jarvistrey/Jarvis-AI/internal/model/chat"
)

// Generation parameters sent with every remote completion.
const (
	RemoteMaxTokens    = 800
	RemoteTemperature  = float32(0.7)
	DefaultRemoteModel = "gpt-3.5-turbo"
)

// RemoteConfig configures the hosted chat-completion backend.
type RemoteConfig struct {
	APIKey string
	Model  string
}

// Remote sends the context window to a hosted chat model.
type Remote struct {
	apiKey string
	model  string
	chain  compose.Runnable[[]*schema.Message, *schema.Message]
}

// NewRemote compiles a single-node chain around chatModel. A nil chatModel is
// allowed so that a missing credential can still be reported per request.
func NewRemote(ctx context.Context, chatModel model.BaseChatModel, cfg RemoteConfig) (*Remote, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultRemoteModel
	}
	r := &Remote{apiKey: cfg.APIKey, model: cfg.Model}
	if chatModel == nil {
		return r, nil
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile remote chain: %w", err)
	}
	r.chain = runnable
	return r, nil
}

// Model returns the model identifier sent with each request.
func (r *Remote) Model() string {
	return r.model
}

// Complete implements Backend.
func (r *Remote) Complete(ctx context.Context, prompt string, window []*schema.Message) (string, error) {
	if strings.TrimSpace(r.apiKey) == "" {
		return "", ConfigError(KindRemote, FieldRemoteAPIKey)
	}
	if r.chain == nil {
		return "", &Error{Kind: ErrRemoteFailure, Backend: KindRemote, Detail: "no chat model available"}
	}

	messages := chat.Trim(chat.EnsureUserTail(window, prompt), chat.MaxWindowMessages)

	resp, err := r.chain.Invoke(ctx, messages, compose.WithChatModelOption(
		model.WithModel(r.model),
		model.WithMaxTokens(RemoteMaxTokens),
		model.WithTemperature(RemoteTemperature),
	))
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", &Error{Kind: ErrCanceled, Backend: KindRemote, Err: ctx.Err()}
		}
		log.Printf("[remote] completion failed: model=%s err=%v", r.model, err)
		return "", &Error{Kind: ErrRemoteFailure, Backend: KindRemote, Detail: err.Error(), Err: err}
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", &Error{Kind: ErrRemoteFailure, Backend: KindRemote, Detail: "malformed response: empty completion"}
	}
	return strings.TrimSpace(resp.Content), nil
}
