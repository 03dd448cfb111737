// Package ui is the terminal front end: an assistant selector, a
// configuration editor with credential checks and knowledge uploads, and the
// chat screen itself. It is a single bubbletea program; each screen keeps its
// own state struct and the App routes keys and async messages between them.
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"aide/config"
	"aide/storage"
)

type screen int

const (
	screenSelector screen = iota
	screenEditor
	screenChat
)

type App struct {
	cfg   *config.Config
	store *storage.AssistantStore

	width  int
	height int
	ready  bool

	screen   screen
	selector selectorState
	editor   editorState
	chat     chatState
}

func NewApp(cfg *config.Config, store *storage.AssistantStore) App {
	return App{
		cfg:      cfg,
		store:    store,
		selector: newSelectorState(),
		editor:   newEditorState(),
	}
}

func (a App) Init() tea.Cmd {
	return loadAssistantsCmd(a.store, a.cfg.Owner)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		if a.screen == screenChat {
			a.chat.layout(a.width, a.height)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case screenSelector:
			return a.handleSelectorKeys(msg)
		case screenEditor:
			return a.handleEditorKeys(msg)
		case screenChat:
			return a.handleChatKeys(msg)
		}

	case assistantsLoadedMsg:
		a.selector.loadErr = ""
		if msg.Err != nil {
			a.selector.loadErr = msg.Err.Error()
			return a, nil
		}
		a.selector.assistants = msg.Assistants
		if a.selector.selectedIdx >= len(msg.Assistants) {
			a.selector.selectedIdx = 0
		}
		a.selector.applyFilter()
		return a, nil

	case assistantSavedMsg:
		if msg.Err != nil {
			a.editor.saveErr = "save failed: " + msg.Err.Error()
			return a, nil
		}
		a.editor.assistant = msg.Assistant
		a.editor.isNew = false
		a.editor.dirty = false
		a.screen = screenSelector
		return a, loadAssistantsCmd(a.store, a.cfg.Owner)

	case assistantDeletedMsg:
		if msg.Err != nil {
			a.selector.loadErr = "delete failed: " + msg.Err.Error()
			return a, nil
		}
		return a, loadAssistantsCmd(a.store, a.cfg.Owner)

	case probeResultMsg:
		a.editor.probing = false
		status := msg.Status
		a.editor.probeStatus = &status
		return a, nil

	case knowledgeExtractedMsg:
		a.editor.extracting = false
		if msg.Err != nil {
			a.editor.knowledgeNotice = "extraction failed: " + msg.Err.Error()
			return a, nil
		}
		a.editor.assistant.Knowledge = append(a.editor.assistant.Knowledge, msg.Items...)
		if len(msg.Items) > 0 {
			a.editor.dirty = true
		}
		a.editor.knowledgeNotice = extractionNotice(msg)
		return a, nil

	case chatReplyMsg, chatErrorMsg, markdownRenderedMsg:
		return a.handleChatMsg(msg)

	default:
		if a.screen == screenChat {
			return a.handleChatMsg(msg)
		}
	}

	return a, nil
}

func extractionNotice(msg knowledgeExtractedMsg) string {
	parts := make([]string, 0, 2)
	if len(msg.Items) > 0 {
		parts = append(parts, fmt.Sprintf("added %d item(s)", len(msg.Items)))
	}
	for _, f := range msg.Failures {
		parts = append(parts, fmt.Sprintf("skipped %s: %v", f.Name, f.Err))
	}
	if len(parts) == 0 {
		return "nothing extracted"
	}
	return strings.Join(parts, "; ")
}

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	switch a.screen {
	case screenEditor:
		return a.renderEditor()
	case screenChat:
		return a.renderChat()
	default:
		return a.renderSelector()
	}
}
