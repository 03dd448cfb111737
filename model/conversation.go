package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation holds the ordered message history for one assistant session.
// It lives in memory only: navigating away from the chat view or starting a
// new conversation discards it. The ID exists so that replies arriving from
// an in-flight provider call can be matched against the conversation they
// were requested for; a reply keyed to a stale ID is dropped by the caller.
type Conversation struct {
	ID       string
	Messages []Message

	welcome string
}

// NewConversation creates an empty conversation. If welcome is non-empty it
// is inserted as the leading assistant-authored message.
func NewConversation(welcome string) *Conversation {
	c := &Conversation{
		ID:      uuid.New().String(),
		welcome: welcome,
	}
	if welcome != "" {
		c.Messages = []Message{welcomeMessage(welcome)}
	}
	return c
}

func welcomeMessage(text string) Message {
	return Message{
		Role:      "assistant",
		Content:   text,
		Timestamp: time.Now(),
	}
}

// AppendUserMessage appends a user-authored message.
func (c *Conversation) AppendUserMessage(text string) {
	c.Messages = append(c.Messages, Message{
		Role:      "user",
		Content:   text,
		Timestamp: time.Now(),
	})
}

// AppendAssistantMessage appends an assistant-authored message.
func (c *Conversation) AppendAssistantMessage(text string) {
	c.Messages = append(c.Messages, Message{
		Role:      "assistant",
		Content:   text,
		Timestamp: time.Now(),
	})
}

// SetWelcomeMessage updates the welcome message and reconciles the leading
// message. Setting the same welcome twice yields exactly one leading
// assistant message. Clearing the welcome removes the leading message only
// when it is both first and assistant-authored, so a real reply that happens
// to lead the conversation is never removed.
func (c *Conversation) SetWelcomeMessage(text string) {
	if text == c.welcome {
		c.welcome = text
		if text != "" && len(c.Messages) == 0 {
			c.Messages = []Message{welcomeMessage(text)}
		}
		return
	}

	hadWelcomeLead := c.welcome != "" &&
		len(c.Messages) > 0 &&
		c.Messages[0].Role == "assistant" &&
		c.Messages[0].Content == c.welcome

	c.welcome = text

	switch {
	case text == "":
		if hadWelcomeLead {
			c.Messages = c.Messages[1:]
		}
	case hadWelcomeLead:
		c.Messages[0] = welcomeMessage(text)
	case len(c.Messages) == 0:
		c.Messages = []Message{welcomeMessage(text)}
	}
}

// WelcomeMessage returns the currently configured welcome message.
func (c *Conversation) WelcomeMessage() string {
	return c.welcome
}

// Reset discards the history, restoring either the single welcome message or
// an empty sequence. The conversation keeps its identity.
func (c *Conversation) Reset() {
	if c.welcome != "" {
		c.Messages = []Message{welcomeMessage(c.welcome)}
		return
	}
	c.Messages = nil
}

// History returns the messages in order. The returned slice is owned by the
// conversation and must not be mutated by callers.
func (c *Conversation) History() []Message {
	return c.Messages
}
