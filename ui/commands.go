package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"aide/knowledge"
	"aide/model"
	"aide/provider"
	"aide/storage"
)

const chatTimeout = 3 * time.Minute

// sendChatCmd dispatches one message to the assistant's provider. The
// conversation id travels with the command so the reply can be matched back
// to the conversation it was sent from.
func sendChatCmd(assistant model.Assistant, conversationID, message string, history []Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()

		req := model.ChatRequest{
			Message: message,
			Options: assistant.ChatOptions(history),
		}

		text, err := provider.Send(ctx, assistant.Provider, assistant.Credentials, req)
		if err != nil {
			return chatErrorMsg{ConversationID: conversationID, Err: err}
		}
		return chatReplyMsg{ConversationID: conversationID, Text: text}
	}
}

// probeCmd checks the credentials currently entered in the editor.
func probeCmd(providerID string, creds model.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return probeResultMsg{Status: provider.ProbeByID(ctx, providerID, creds)}
	}
}

func loadAssistantsCmd(store *storage.AssistantStore, owner string) tea.Cmd {
	return func() tea.Msg {
		list, err := store.List(owner)
		assistants := make([]model.Assistant, 0, len(list))
		for _, a := range list {
			assistants = append(assistants, *a)
		}
		return assistantsLoadedMsg{Assistants: assistants, Err: err}
	}
}

func saveAssistantCmd(store *storage.AssistantStore, assistant model.Assistant) tea.Cmd {
	return func() tea.Msg {
		err := store.Save(&assistant)
		return assistantSavedMsg{Assistant: assistant, Err: err}
	}
}

func deleteAssistantCmd(store *storage.AssistantStore, id string) tea.Cmd {
	return func() tea.Msg {
		err := store.Delete(id)
		return assistantDeletedMsg{ID: id, Err: err}
	}
}

// extractKnowledgeCmd runs the concurrent extraction for an upload batch.
func extractKnowledgeCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		items, failures, err := knowledge.ExtractAll(ctx, paths)
		return knowledgeExtractedMsg{Items: items, Failures: failures, Err: err}
	}
}
