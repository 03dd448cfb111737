package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aide/model"
)

func TestNewByID(t *testing.T) {
	creds := model.Credentials{APIKey: "test-key"}

	tests := []struct {
		name        string
		id          string
		creds       model.Credentials
		expectError bool
	}{
		{name: "gemini", id: "gemini", creds: creds},
		{name: "openai", id: "openai", creds: model.Credentials{APIKey: "test-key", OrganizationID: "org-1"}},
		{name: "anthropic", id: "anthropic", creds: creds},
		{name: "unknown provider id", id: "mistral", creds: creds, expectError: true},
		{name: "gemini without key", id: "gemini", creds: model.Credentials{}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewByID(tt.id, tt.creds)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil {
				t.Fatal("expected non-nil provider")
			}
			var _ model.Provider = p
		})
	}
}

func TestNewReturnsConcreteAdapters(t *testing.T) {
	desc, _ := Find("gemini")
	p, err := New(desc, model.Credentials{APIKey: "k"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*GeminiProvider); !ok {
		t.Errorf("expected *GeminiProvider, got %T", p)
	}
}

func TestSendValidatesBeforeDispatch(t *testing.T) {
	// No server involved: both failures must be detected locally.
	if _, err := Send(context.Background(), "gemini", model.Credentials{APIKey: "k"},
		model.ChatRequest{Message: "  "}); err == nil {
		t.Error("expected error for empty message")
	}
	if _, err := Send(context.Background(), "gemini", model.Credentials{},
		model.ChatRequest{Message: "hi"}); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := Send(context.Background(), "mistral", model.Credentials{APIKey: "k"},
		model.ChatRequest{Message: "hi"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestRegistryCatalog(t *testing.T) {
	reg := Registry()
	if len(reg) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(reg))
	}

	wantOrder := []string{"gemini", "openai", "anthropic"}
	for i, id := range wantOrder {
		if reg[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, reg[i].ID, id)
		}
	}

	openaiDesc, ok := Find("openai")
	if !ok {
		t.Fatal("openai not in registry")
	}
	if !openaiDesc.RequiresOrganization() {
		t.Error("openai should require an organization id")
	}

	for _, id := range []string{"gemini", "anthropic"} {
		desc, _ := Find(id)
		if desc.RequiresOrganization() {
			t.Errorf("%s should not require an organization id", id)
		}
	}

	for _, desc := range reg {
		if len(desc.Versions) == 0 {
			t.Errorf("%s has no model versions", desc.ID)
		}
		if _, ok := desc.FindVersion(desc.DefaultVersion); !ok {
			t.Errorf("%s default version %s is not in its catalog", desc.ID, desc.DefaultVersion)
		}
	}
}

func TestRegistryReturnsCopy(t *testing.T) {
	reg := Registry()
	reg[0].ID = "mutated"
	if fresh := Registry(); fresh[0].ID != "gemini" {
		t.Error("Registry must not expose the internal slice")
	}
}

func TestProbeMissingKeyFailsLocally(t *testing.T) {
	desc, _ := Find("anthropic")
	status := Probe(context.Background(), desc, model.Credentials{})

	if status.Connected {
		t.Error("probe without key must not report connected")
	}
	if status.Err == nil || status.Err.Error() == "" {
		t.Error("probe failure must carry a reason")
	}
	if status.Name != desc.Name {
		t.Errorf("status name: got %q, want %q", status.Name, desc.Name)
	}
}

func TestProbeByIDUnknownProvider(t *testing.T) {
	status := ProbeByID(context.Background(), "mistral", model.Credentials{APIKey: "k"})
	if status.Connected {
		t.Error("unknown provider must not report connected")
	}
	if status.Err == nil || !strings.Contains(status.Err.Error(), "unsupported provider") {
		t.Errorf("unexpected probe error: %v", status.Err)
	}
}

func TestProbeAnthropicInvalidKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer server.Close()

	desc, _ := Find("anthropic")
	desc.BaseURL = server.URL

	status := Probe(context.Background(), desc, model.Credentials{APIKey: "bad-key"})
	if status.Connected {
		t.Error("invalid key must not report connected")
	}
	if status.Err == nil || status.Err.Error() == "" {
		t.Error("probe failure must carry a non-empty reason")
	}
	if status.Name != desc.Name {
		t.Errorf("status name: got %q, want %q", status.Name, desc.Name)
	}
}

func TestProbeGemini(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"API key not valid"}}`)
			return
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Hi"}]}}]}`)
	}))
	defer server.Close()

	desc, _ := Find("gemini")
	desc.BaseURL = server.URL

	status := Probe(context.Background(), desc, model.Credentials{APIKey: "good-key"})
	if !status.Connected {
		t.Errorf("expected connected, got error: %v", status.Err)
	}

	status = Probe(context.Background(), desc, model.Credentials{APIKey: "bad-key"})
	if status.Connected {
		t.Error("invalid key must not report connected")
	}
	if status.Err == nil || !strings.Contains(status.Err.Error(), "API key not valid") {
		t.Errorf("expected upstream reason in probe error, got: %v", status.Err)
	}
}
