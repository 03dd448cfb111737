// Package provider implements the three supported LLM backends behind the
// model.Provider interface: Gemini (hand-built HTTP, since Google's endpoint
// naming shifts between API versions), OpenAI, and Anthropic (official SDKs).
//
// The package owns the full dispatch path: the static provider registry, the
// connectivity probe, prompt assembly (system prompt, knowledge-base block,
// history shaping), and the per-provider transport adapters. Everything above
// it works with provider-agnostic types from the model package.
package provider

// CredentialField names a credential input a provider requires.
type CredentialField string

const (
	FieldAPIKey         CredentialField = "apiKey"
	FieldOrganizationID CredentialField = "organizationId"
)

// ModelVersion is one selectable model for a provider.
type ModelVersion struct {
	ID   string
	Name string
}

// Descriptor describes one supported provider: identity, credential
// requirements, endpoint base, and the versions the editor offers. The
// catalog is immutable and defined at process start; adding a provider means
// appending an entry here plus an adapter case in the factory.
type Descriptor struct {
	ID             string
	Name           string
	Requires       []CredentialField
	BaseURL        string
	Versions       []ModelVersion
	DefaultVersion string
}

// RequiresOrganization reports whether the provider takes an organization id.
func (d Descriptor) RequiresOrganization() bool {
	for _, f := range d.Requires {
		if f == FieldOrganizationID {
			return true
		}
	}
	return false
}

var registry = []Descriptor{
	{
		ID:       "gemini",
		Name:     "Google Gemini",
		Requires: []CredentialField{FieldAPIKey},
		BaseURL:  "https://generativelanguage.googleapis.com",
		Versions: []ModelVersion{
			{ID: "gemini-2-flash", Name: "Gemini 2.0 Flash"},
			{ID: "gemini-2-pro", Name: "Gemini 2.0 Pro"},
			{ID: "gemini-2-flash-experimental", Name: "Gemini 2.0 Flash Thinking Experimental"},
			{ID: "gemma-2", Name: "Gemma 2"},
		},
		DefaultVersion: "gemini-2-flash",
	},
	{
		ID:       "openai",
		Name:     "OpenAI",
		Requires: []CredentialField{FieldAPIKey, FieldOrganizationID},
		BaseURL:  "https://api.openai.com/v1",
		Versions: []ModelVersion{
			{ID: "gpt-4-o", Name: "GPT-4o"},
			{ID: "gpt-4-o-mini", Name: "GPT-4o mini"},
			{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo"},
			{ID: "o1", Name: "O1"},
			{ID: "o1-mini", Name: "O1 Mini"},
			{ID: "o3", Name: "O3"},
			{ID: "o3-mini", Name: "O3 Mini"},
		},
		DefaultVersion: "gpt-4-o-mini",
	},
	{
		ID:       "anthropic",
		Name:     "Anthropic Claude",
		Requires: []CredentialField{FieldAPIKey},
		BaseURL:  "https://api.anthropic.com",
		Versions: []ModelVersion{
			{ID: "claude-3-opus", Name: "Claude 3 Opus"},
			{ID: "claude-3.5-sonnet", Name: "Claude 3.5 Sonnet"},
			{ID: "claude-3.5-haiku", Name: "Claude 3.5 Haiku"},
		},
		DefaultVersion: "claude-3.5-sonnet",
	},
}

// Registry returns the supported providers in display order.
func Registry() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Find looks up a provider descriptor by id.
func Find(id string) (Descriptor, bool) {
	for _, d := range registry {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// FindVersion resolves a version id within a descriptor to its display entry.
func (d Descriptor) FindVersion(id string) (ModelVersion, bool) {
	for _, v := range d.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return ModelVersion{}, false
}
