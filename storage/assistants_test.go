package storage

import (
	"testing"

	"aide/config"
	"aide/model"
)

func newTestStore(t *testing.T) *AssistantStore {
	t.Helper()

	cipher := config.NewEncryptionManager(config.EncryptionPassphrase, "test passphrase")
	if err := cipher.Initialize(); err != nil {
		t.Fatalf("cipher init: %v", err)
	}

	store, err := NewAssistantStore(t.TempDir(), cipher)
	if err != nil {
		t.Fatalf("NewAssistantStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testAssistant() *model.Assistant {
	return &model.Assistant{
		Owner:        "alice",
		Name:         "Researcher",
		Instructions: "Be terse.",
		Provider:     "openai",
		ModelVersion: "gpt-4-o",
		Credentials: model.Credentials{
			APIKey:         "sk-secret",
			OrganizationID: "org-123",
		},
		MaxTokens:      1000,
		Temperature:    0.7,
		WelcomeMessage: "Hello!",
		Knowledge: []model.KnowledgeItem{
			{Name: "doc1.txt", Content: "Paris is the capital of France."},
		},
	}
}

func TestSaveAssignsID(t *testing.T) {
	store := newTestStore(t)

	a := testAssistant()
	if err := store.Save(a); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if a.ID == "" {
		t.Error("Save() did not assign an ID")
	}
	if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
		t.Error("Save() did not set timestamps")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	a := testAssistant()
	if err := store.Save(a); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Get(a.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if loaded.Name != a.Name {
		t.Errorf("name: got %q, want %q", loaded.Name, a.Name)
	}
	if loaded.Credentials.APIKey != "sk-secret" {
		t.Errorf("API key did not survive the cipher round trip: got %q", loaded.Credentials.APIKey)
	}
	if loaded.Credentials.OrganizationID != "org-123" {
		t.Errorf("organization id: got %q", loaded.Credentials.OrganizationID)
	}
	if loaded.WelcomeMessage != "Hello!" {
		t.Errorf("welcome message: got %q", loaded.WelcomeMessage)
	}
	if len(loaded.Knowledge) != 1 || loaded.Knowledge[0].Name != "doc1.txt" {
		t.Errorf("unexpected knowledge base: %+v", loaded.Knowledge)
	}
}

func TestSaveReplacesKnowledgeWholesale(t *testing.T) {
	store := newTestStore(t)

	a := testAssistant()
	if err := store.Save(a); err != nil {
		t.Fatalf("first Save() error: %v", err)
	}

	a.Knowledge = []model.KnowledgeItem{
		{Name: "doc2.txt", Content: "Berlin is the capital of Germany."},
		{Name: "doc3.txt", Content: "Madrid is the capital of Spain."},
	}
	if err := store.Save(a); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	loaded, err := store.Get(a.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if len(loaded.Knowledge) != 2 {
		t.Fatalf("expected old items replaced, got %d items", len(loaded.Knowledge))
	}
	if loaded.Knowledge[0].Name != "doc2.txt" || loaded.Knowledge[1].Name != "doc3.txt" {
		t.Errorf("knowledge order not preserved: %+v", loaded.Knowledge)
	}
}

func TestListByOwnerNewestFirst(t *testing.T) {
	store := newTestStore(t)

	first := testAssistant()
	first.Name = "First"
	if err := store.Save(first); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	second := testAssistant()
	second.Name = "Second"
	if err := store.Save(second); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	other := testAssistant()
	other.Owner = "bob"
	if err := store.Save(other); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	assistants, err := store.List("alice")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	if len(assistants) != 2 {
		t.Fatalf("expected 2 assistants for alice, got %d", len(assistants))
	}
	for _, a := range assistants {
		if a.Owner != "alice" {
			t.Errorf("listed assistant owned by %q", a.Owner)
		}
	}
}

func TestDeleteRemovesKnowledge(t *testing.T) {
	store := newTestStore(t)

	a := testAssistant()
	if err := store.Save(a); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := store.Delete(a.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := store.Get(a.ID); err == nil {
		t.Error("expected Get() after Delete() to fail")
	}

	var count int
	if err := store.db.QueryRow(
		`SELECT COUNT(*) FROM knowledge_items WHERE assistant_id = ?`, a.ID).Scan(&count); err != nil {
		t.Fatalf("count query error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected knowledge rows removed, found %d", count)
	}
}
