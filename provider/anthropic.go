package provider

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"aide/model"
)

// anthropicModelNames maps catalog version ids to dated API model names.
var anthropicModelNames = map[string]anthropic.Model{
	"claude-3-opus":     anthropic.ModelClaude_3_Opus_20240229,
	"claude-3.5-sonnet": "claude-3-5-sonnet-20241022",
	"claude-3.5-haiku":  anthropic.ModelClaude3_5Haiku20241022,
}

// AnthropicProvider implements the Provider interface using Anthropic's
// official Go SDK. The SDK supplies the x-api-key and anthropic-version
// headers and the /v1/messages body shape.
type AnthropicProvider struct {
	client  *anthropic.Client
	baseURL string
}

// NewAnthropicProvider creates a new Anthropic provider instance.
func NewAnthropicProvider(baseURL, apiKey string) (*AnthropicProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:  &client,
		baseURL: baseURL,
	}, nil
}

// resolveAnthropicModel maps a catalog version id to the API model name,
// passing unknown ids through unchanged.
func resolveAnthropicModel(versionID string) anthropic.Model {
	if m, ok := anthropicModelNames[versionID]; ok {
		return m
	}
	return anthropic.Model(versionID)
}

// Chat implements Provider.Chat. The system prompt travels in the dedicated
// system parameter; history is preserved as structured multi-turn messages.
// The reply text comes from content[0].text.
func (p *AnthropicProvider) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	messages, system := ConvertToAnthropicMessages(AssembleMessages(req))

	params := anthropic.MessageNewParams{
		Model:       resolveAnthropicModel(req.Options.ModelVersion),
		Messages:    messages,
		MaxTokens:   int64(req.Options.MaxTokens),
		Temperature: anthropic.Float(req.Options.Temperature),
	}
	if len(system) > 0 {
		params.System = system
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Anthropic message failed: %w", err)
	}

	if len(msg.Content) == 0 {
		return "", fmt.Errorf("Anthropic returned no content")
	}

	return msg.Content[0].Text, nil
}

// Ping implements Provider.Ping with a minimal one-token message, since the
// API has no dedicated health endpoint.
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude_3_Haiku_20240307,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}
