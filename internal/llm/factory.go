// Package llm builds the chat model behind the remote backend.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/Jarvistrey/Jarvis-AI/internal/config"
	"github.com/Jarvistrey/Jarvis-AI/internal/llm/gemini"
	"github.com/Jarvistrey/Jarvis-AI/internal/llm/mock"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

const (
	defaultArkBaseURL = "https://ark.cn-beijing.volces.com/api/v3"
	defaultArkRegion  = "cn-beijing"
)

// DefaultModel returns the model id used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderGemini:
		return gemini.DefaultModel
	case ProviderMock:
		return "echo"
	default:
		return "gpt-3.5-turbo"
	}
}

// NewChatModel creates the chat model for cfg.Provider. It returns nil
// without error when the API key is missing, leaving the remote backend to
// report the configuration problem per request.
func NewChatModel(ctx context.Context, cfg config.RemoteConfig) (model.BaseChatModel, error) {
	if cfg.Provider == ProviderMock {
		return mock.New(), nil
	}
	if cfg.APIKey == "" {
		return nil, nil
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel(cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		return newOpenAIChatModel(ctx, cfg, modelName)
	case ProviderArk:
		return newArkChatModel(ctx, cfg, modelName)
	case ProviderGemini:
		return gemini.New(ctx, cfg.APIKey, modelName)
	default:
		return nil, fmt.Errorf("unsupported remote provider %q", cfg.Provider)
	}
}

// newOpenAIChatModel targets api.openai.com unless BaseURL points at another
// OpenAI-compatible server such as LM Studio (http://127.0.0.1:1234/v1).
func newOpenAIChatModel(ctx context.Context, cfg config.RemoteConfig, modelName string) (model.BaseChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   modelName,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create openai chat model: %w", err)
	}
	return cm, nil
}

func newArkChatModel(ctx context.Context, cfg config.RemoteConfig, modelName string) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultArkBaseURL
	}
	region := cfg.Region
	if region == "" {
		region = defaultArkRegion
	}

	arkCfg := &ark.ChatModelConfig{
		BaseURL: baseURL,
		Region:  region,
		APIKey:  cfg.APIKey,
		Model:   modelName,
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		arkCfg.Timeout = &timeout
	}

	cm, err := ark.NewChatModel(ctx, arkCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}
	return cm, nil
}
