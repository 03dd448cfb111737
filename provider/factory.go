package provider

import (
	"context"
	"fmt"

	"aide/model"
)

// New creates the transport adapter for a provider descriptor. This is the
// single dispatch point from provider id to wire format; callers never
// branch on provider ids themselves.
//
// Returns an "unsupported provider" error for ids outside the registry.
func New(desc Descriptor, creds model.Credentials) (model.Provider, error) {
	switch desc.ID {
	case "gemini":
		return NewGeminiProvider(desc.BaseURL, creds.APIKey)
	case "openai":
		return NewOpenAIProvider(desc.BaseURL, creds.APIKey, creds.OrganizationID)
	case "anthropic":
		return NewAnthropicProvider(desc.BaseURL, creds.APIKey)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", desc.ID)
	}
}

// NewByID resolves a provider id against the registry and creates its
// adapter.
func NewByID(id string, creds model.Credentials) (model.Provider, error) {
	desc, ok := Find(id)
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", id)
	}
	return New(desc, creds)
}

// Send validates the request locally, creates the adapter for the given
// provider id, and dispatches the message, returning the normalized reply
// text. Configuration errors (empty message, missing credentials, unknown
// provider) surface here, before any network call.
func Send(ctx context.Context, providerID string, creds model.Credentials, req model.ChatRequest) (string, error) {
	if err := ValidateRequest(req, creds); err != nil {
		return "", err
	}

	p, err := NewByID(providerID, creds)
	if err != nil {
		return "", err
	}

	return p.Chat(ctx, req)
}
