package provider

import (
	"testing"

	"aide/model"
)

func TestConvertToOpenAIMessages(t *testing.T) {
	input := []model.Message{
		{Role: "system", Content: "Be terse."},
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
		{Role: "user", Content: "How are you?"},
	}

	result := ConvertToOpenAIMessages(input)

	if len(result) != len(input) {
		t.Fatalf("length mismatch: got %d, want %d", len(result), len(input))
	}
	if result[0].OfSystem == nil {
		t.Error("message 0 should be a system message")
	}
	if result[1].OfUser == nil {
		t.Error("message 1 should be a user message")
	}
	if result[2].OfAssistant == nil {
		t.Error("message 2 should be an assistant message")
	}
	if result[3].OfUser == nil {
		t.Error("message 3 should be a user message")
	}
}

func TestConvertToOpenAIMessagesUnknownRole(t *testing.T) {
	result := ConvertToOpenAIMessages([]model.Message{{Role: "tool", Content: "x"}})
	if len(result) != 1 || result[0].OfUser == nil {
		t.Error("unknown roles should fall back to user messages")
	}
}

func TestConvertToAnthropicMessages(t *testing.T) {
	input := []model.Message{
		{Role: "system", Content: "Be terse."},
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
		{Role: "user", Content: "How are you?"},
	}

	msgs, system := ConvertToAnthropicMessages(input)

	if len(system) != 1 {
		t.Fatalf("expected 1 system block, got %d", len(system))
	}
	if system[0].Text != "Be terse." {
		t.Errorf("system block text: got %q", system[0].Text)
	}

	if len(msgs) != 3 {
		t.Fatalf("expected 3 conversation messages, got %d", len(msgs))
	}
	wantRoles := []string{"user", "assistant", "user"}
	wantContent := []string{"Hello", "Hi there", "How are you?"}
	for i, msg := range msgs {
		if string(msg.Role) != wantRoles[i] {
			t.Errorf("message %d role: got %q, want %q", i, msg.Role, wantRoles[i])
		}
		if len(msg.Content) != 1 || msg.Content[0].OfText == nil {
			t.Fatalf("message %d missing text block", i)
		}
		if msg.Content[0].OfText.Text != wantContent[i] {
			t.Errorf("message %d content: got %q, want %q", i, msg.Content[0].OfText.Text, wantContent[i])
		}
	}
}

func TestConvertToAnthropicMessagesEmpty(t *testing.T) {
	msgs, system := ConvertToAnthropicMessages(nil)
	if len(msgs) != 0 {
		t.Errorf("expected no messages, got %d", len(msgs))
	}
	if len(system) != 0 {
		t.Errorf("expected no system blocks, got %d", len(system))
	}
}
