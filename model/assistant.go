package model

import (
	"fmt"
	"strings"
	"time"
)

// Credentials holds the secrets supplied for a provider. The API key is kept
// in memory for the session and is only written to disk through the storage
// layer's cipher.
type Credentials struct {
	APIKey         string
	OrganizationID string
}

// KnowledgeItem is one uploaded reference document attached to an assistant.
// Content must be non-empty after whitespace trimming to be usable; items
// failing that check never reach the knowledge base.
type KnowledgeItem struct {
	Name    string
	Content string
}

// Assistant is a named, configured chat persona: instructions, a provider
// binding, credentials, generation options, and an optional knowledge base.
// Fields are mutated one at a time by the editor; the value is persisted only
// on explicit save.
type Assistant struct {
	ID             string
	Owner          string
	Name           string
	Instructions   string
	Provider       string
	ModelVersion   string
	Credentials    Credentials
	MaxTokens      int
	Temperature    float64
	Knowledge      []KnowledgeItem
	WelcomeMessage string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate reports the first configuration error that would make the
// assistant unusable. These are local checks: nothing here touches the
// network, and a failing assistant is never sent upstream or saved.
func (a *Assistant) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("assistant name is required")
	}
	if strings.TrimSpace(a.Instructions) == "" {
		return fmt.Errorf("instructions are required")
	}
	if a.Provider == "" {
		return fmt.Errorf("no provider selected")
	}
	if a.ModelVersion == "" {
		return fmt.Errorf("no model version selected")
	}
	if a.Credentials.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if a.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", a.MaxTokens)
	}
	if a.Temperature < 0 || a.Temperature > 1 {
		return fmt.Errorf("temperature must be in [0,1], got %g", a.Temperature)
	}
	return nil
}

// ChatOptions carries everything the prompt assembler folds into a request.
type ChatOptions struct {
	MaxTokens    int
	Temperature  float64
	ModelVersion string
	Instructions string
	Knowledge    []KnowledgeItem
	History      []Message
}

// ChatOptions builds the dispatch options for this assistant with the given
// conversation history.
func (a *Assistant) ChatOptions(history []Message) ChatOptions {
	return ChatOptions{
		MaxTokens:    a.MaxTokens,
		Temperature:  a.Temperature,
		ModelVersion: a.ModelVersion,
		Instructions: a.Instructions,
		Knowledge:    a.Knowledge,
		History:      history,
	}
}
