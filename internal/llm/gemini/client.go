// Package gemini exposes the Google Gemini API as an eino chat model.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var _ model.BaseChatModel = (*ChatModel)(nil)

// ChatModel implements model.BaseChatModel on top of genai.
type ChatModel struct {
	client *genai.Client
	model  string
}

// New creates a Gemini chat model. An empty modelName selects the default.
func New(ctx context.Context, apiKey, modelName string) (*ChatModel, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &ChatModel{client: gc, model: modelName}, nil
}

// Generate implements model.BaseChatModel.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	modelName, contents, config := m.buildRequest(input, opts)

	resp, err := m.client.Models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	out := schema.AssistantMessage(resp.Text(), nil)
	if resp.UsageMetadata != nil {
		out.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}}
	}
	return out, nil
}

// Stream implements model.BaseChatModel.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	modelName, contents, config := m.buildRequest(input, opts)
	seq := m.client.Models.GenerateContentStream(ctx, modelName, contents, config)

	sr, sw := schema.Pipe[*schema.Message](16)
	go func() {
		defer sw.Close()
		for resp, err := range seq {
			if err != nil {
				sw.Send(nil, fmt.Errorf("gemini: %w", err))
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if closed := sw.Send(schema.AssistantMessage(text, nil), nil); closed {
				return
			}
		}
	}()
	return sr, nil
}

func (m *ChatModel) buildRequest(input []*schema.Message, opts []model.Option) (string, []*genai.Content, *genai.GenerateContentConfig) {
	options := model.GetCommonOptions(&model.Options{Model: &m.model}, opts...)

	modelName := m.model
	if options.Model != nil && *options.Model != "" {
		modelName = *options.Model
	}

	system, contents := ConvertMessages(input)
	config := &genai.GenerateContentConfig{Temperature: options.Temperature}
	if options.MaxTokens != nil {
		config.MaxOutputTokens = int32(*options.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return modelName, contents, config
}

// ConvertMessages splits system messages into a system instruction and maps
// the remaining messages to genai contents.
func ConvertMessages(input []*schema.Message) (string, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: msg.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: msg.Content}}})
		}
	}
	return strings.Join(system, "\n\n"), contents
}
