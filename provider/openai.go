package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"aide/model"
)

// OpenAIProvider implements the Provider interface using OpenAI's official
// Go SDK: bearer-key auth, optional OpenAI-Organization header, and the
// /v1/chat/completions body shape.
type OpenAIProvider struct {
	client  openai.Client
	baseURL string
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - organizationID: optional OpenAI-Organization header value
func NewOpenAIProvider(baseURL, apiKey, organizationID string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	}
	if organizationID != "" {
		opts = append(opts, option.WithOrganization(organizationID))
	}

	return &OpenAIProvider{
		client:  openai.NewClient(opts...),
		baseURL: baseURL,
	}, nil
}

// Chat implements Provider.Chat. The assembled sequence keeps the full
// conversation history as separate role-tagged turns; the reply text comes
// from choices[0].message.content.
func (p *OpenAIProvider) Chat(ctx context.Context, req model.ChatRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Options.ModelVersion),
		Messages:    ConvertToOpenAIMessages(AssembleMessages(req)),
		MaxTokens:   openai.Int(int64(req.Options.MaxTokens)),
		Temperature: openai.Float(req.Options.Temperature),
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// Ping implements Provider.Ping by listing models, the cheapest
// authenticated endpoint OpenAI offers.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	_, err := p.client.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}
