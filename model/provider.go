package model

import "context"

// ChatRequest is a provider-agnostic message dispatch: the new user message
// plus the options the assembler folds into the provider-specific payload.
type ChatRequest struct {
	Message string
	Options ChatOptions
}

// Provider abstracts the three supported LLM backends (Gemini, OpenAI,
// Anthropic) behind provider-agnostic types.
//
// The interface is defined in the model package (not provider) to avoid
// import cycles: adapter implementations import model, and UI code can hold
// a Provider without importing the provider package.
type Provider interface {
	// Chat builds the provider-specific request for req, sends it, and
	// returns the reply text extracted from the provider's envelope.
	Chat(ctx context.Context, req ChatRequest) (string, error)

	// Ping performs a minimal-cost request to confirm the configured
	// credentials are accepted by the provider.
	Ping(ctx context.Context) error
}

// ConnectionStatus is the derived result of a connectivity probe. It is
// recomputed whenever the provider, credentials, organization id, or model
// version changes.
type ConnectionStatus struct {
	Connected bool
	Name      string // resolved provider display name
	Err       error  // last probe error, nil when connected
}
