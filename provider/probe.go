package provider

import (
	"context"
	"fmt"

	"aide/config"
	"aide/model"
)

// Probe performs a minimal-cost request against the provider to confirm the
// supplied credentials before an assistant is considered configured. It is
// idempotent, has no side effect beyond the network call, and never mutates
// the assistant; the caller decides what to do with the status.
//
// Each provider probes its own way: Gemini a trivial "Hello" generate call
// with the key in the query string, OpenAI a models-list GET under the
// bearer (plus organization) headers, Anthropic a one-token message under
// x-api-key and anthropic-version.
func Probe(ctx context.Context, desc Descriptor, creds model.Credentials) model.ConnectionStatus {
	if creds.APIKey == "" {
		return model.ConnectionStatus{
			Name: desc.Name,
			Err:  fmt.Errorf("API key is missing"),
		}
	}

	p, err := New(desc, creds)
	if err != nil {
		return model.ConnectionStatus{Name: desc.Name, Err: err}
	}

	if err := p.Ping(ctx); err != nil {
		if config.Debug && config.DebugLog != nil {
			config.DebugLog.Printf("[Probe] %s connectivity check failed: %v", desc.ID, err)
		}
		return model.ConnectionStatus{Name: desc.Name, Err: err}
	}

	return model.ConnectionStatus{Connected: true, Name: desc.Name}
}

// ProbeByID resolves the provider id against the registry and probes it.
func ProbeByID(ctx context.Context, id string, creds model.Credentials) model.ConnectionStatus {
	desc, ok := Find(id)
	if !ok {
		return model.ConnectionStatus{
			Name: id,
			Err:  fmt.Errorf("unsupported provider: %s", id),
		}
	}
	return Probe(ctx, desc, creds)
}
