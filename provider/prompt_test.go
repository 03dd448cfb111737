package provider

import (
	"reflect"
	"strings"
	"testing"

	"aide/model"
)

func TestBuildSystemPromptKnowledgeMarkers(t *testing.T) {
	knowledge := []model.KnowledgeItem{
		{Name: "doc1.txt", Content: "Paris is the capital of France."},
		{Name: "doc2.txt", Content: "Berlin is the capital of Germany."},
	}

	prompt := BuildSystemPrompt("Be terse.", knowledge)

	if !strings.HasPrefix(prompt, "Be terse.") {
		t.Errorf("prompt does not start with instructions: %q", prompt[:40])
	}
	for _, item := range knowledge {
		if !strings.Contains(prompt, "=== START OF DOCUMENT: "+item.Name+" ===") {
			t.Errorf("missing start marker for %s", item.Name)
		}
		if !strings.Contains(prompt, "=== END OF DOCUMENT: "+item.Name+" ===") {
			t.Errorf("missing end marker for %s", item.Name)
		}
		if !strings.Contains(prompt, item.Content) {
			t.Errorf("missing content of %s", item.Name)
		}
	}
	if !strings.Contains(prompt, "KNOWLEDGE BASE USAGE RULES") {
		t.Error("missing usage rules")
	}
}

func TestBuildSystemPromptEmptyKnowledge(t *testing.T) {
	prompt := BuildSystemPrompt("Be terse.", nil)

	if strings.Contains(prompt, "KNOWLEDGE BASE") {
		t.Error("empty knowledge base must not produce a knowledge section")
	}
	if strings.Contains(prompt, "DOCUMENT") {
		t.Error("empty knowledge base must not produce document markers")
	}
}

func TestBuildSystemPromptDefaultInstructions(t *testing.T) {
	prompt := BuildSystemPrompt("   ", nil)
	if !strings.Contains(prompt, defaultInstructions) {
		t.Error("blank instructions should fall back to the default")
	}
}

func TestAssembleMessages(t *testing.T) {
	req := model.ChatRequest{
		Message: "What is the capital of France?",
		Options: model.ChatOptions{
			Instructions: "Be terse.",
			Knowledge:    []model.KnowledgeItem{{Name: "doc1", Content: "Paris is the capital of France."}},
			History: []model.Message{
				{Role: "user", Content: "Hi"},
				{Role: "assistant", Content: "Hello"},
			},
		},
	}

	msgs := AssembleMessages(req)

	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Errorf("first message role = %s, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "doc1") ||
		!strings.Contains(msgs[0].Content, "Paris is the capital of France.") {
		t.Error("system message missing knowledge base content")
	}
	if msgs[1].Role != "user" || msgs[1].Content != "Hi" {
		t.Errorf("history position 0 wrong: %+v", msgs[1])
	}
	if msgs[2].Role != "assistant" || msgs[2].Content != "Hello" {
		t.Errorf("history position 1 wrong: %+v", msgs[2])
	}
	last := msgs[len(msgs)-1]
	if last.Role != "user" || last.Content != req.Message {
		t.Errorf("trailing message wrong: %+v", last)
	}
}

func TestBuildFlattenedPromptLimitsHistory(t *testing.T) {
	var history []model.Message
	for i := 0; i < 15; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, model.Message{Role: role, Content: "turn-" + string(rune('a'+i))})
	}

	req := model.ChatRequest{
		Message: "next",
		Options: model.ChatOptions{Instructions: "Be terse.", History: history},
	}
	prompt := BuildFlattenedPrompt(req)

	// Turns a..e fall outside the window, f..o stay inside.
	for i := 0; i < 5; i++ {
		if strings.Contains(prompt, "turn-"+string(rune('a'+i))) {
			t.Errorf("turn %d should be outside the history window", i)
		}
	}
	for i := 5; i < 15; i++ {
		if !strings.Contains(prompt, "turn-"+string(rune('a'+i))) {
			t.Errorf("turn %d should be inside the history window", i)
		}
	}
	if !strings.HasSuffix(prompt, "User: next") {
		t.Errorf("prompt must end with the new user message, got %q", prompt[len(prompt)-30:])
	}
}

func TestBuildFlattenedPromptEntities(t *testing.T) {
	req := model.ChatRequest{
		Message: "Where does he live?",
		Options: model.ChatOptions{
			History: []model.Message{
				{Role: "user", Content: "Tell me about Albert Einstein"},
				{Role: "assistant", Content: "Einstein developed the theory of relativity."},
			},
		},
	}

	prompt := BuildFlattenedPrompt(req)
	if !strings.Contains(prompt, "CURRENT CONTEXT ENTITIES:") {
		t.Fatal("missing entity section")
	}
	if !strings.Contains(prompt, "Albert") || !strings.Contains(prompt, "Einstein") {
		t.Error("expected Albert and Einstein among entities")
	}
}

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name    string
		history []model.Message
		want    []string
	}{
		{
			name: "first appearance order no duplicates",
			history: []model.Message{
				{Role: "user", Content: "Is Paris bigger than Lyon?"},
				{Role: "assistant", Content: "Paris is bigger than Lyon."},
			},
			want: []string{"Is", "Paris", "Lyon"},
		},
		{
			name:    "lowercase only",
			history: []model.Message{{Role: "user", Content: "nothing capitalized here"}},
			want:    nil,
		},
		{
			name:    "single letter skipped",
			history: []model.Message{{Role: "user", Content: "I met Bob"}},
			want:    []string{"Bob"},
		},
		{
			name:    "hyphen and apostrophe kept",
			history: []model.Message{{Role: "user", Content: "Jean-Pierre met O'Brien"}},
			want:    []string{"Jean-Pierre", "O'Brien"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEntities(tt.history)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractEntities() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     model.ChatRequest
		creds   model.Credentials
		wantErr bool
	}{
		{
			name:    "valid",
			req:     model.ChatRequest{Message: "hi"},
			creds:   model.Credentials{APIKey: "k"},
			wantErr: false,
		},
		{
			name:    "empty message",
			req:     model.ChatRequest{Message: "   "},
			creds:   model.Credentials{APIKey: "k"},
			wantErr: true,
		},
		{
			name:    "missing key",
			req:     model.ChatRequest{Message: "hi"},
			creds:   model.Credentials{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req, tt.creds)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
