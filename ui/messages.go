package ui

import (
	"aide/knowledge"
	"aide/model"
)

type Message = model.Message

// chatReplyMsg carries a completed provider reply. ConversationID identifies
// the conversation the request was dispatched for; replies arriving after the
// conversation was reset or switched are dropped on receipt.
type chatReplyMsg struct {
	ConversationID string
	Text           string
}

// chatErrorMsg is the failure counterpart of chatReplyMsg.
type chatErrorMsg struct {
	ConversationID string
	Err            error
}

// probeResultMsg reports a connectivity probe outcome for the editor.
type probeResultMsg struct {
	Status model.ConnectionStatus
}

type assistantsLoadedMsg struct {
	Assistants []model.Assistant
	Err        error
}

type assistantSavedMsg struct {
	Assistant model.Assistant
	Err       error
}

type assistantDeletedMsg struct {
	ID  string
	Err error
}

// knowledgeExtractedMsg carries the fan-in result of a knowledge upload:
// usable items plus the per-file failures of the same batch.
type knowledgeExtractedMsg struct {
	Items    []model.KnowledgeItem
	Failures []knowledge.FileError
	Err      error
}

// markdownRenderedMsg delivers an async markdown render for one message.
type markdownRenderedMsg struct {
	ConversationID string
	MessageIndex   int
	Rendered       string
}
