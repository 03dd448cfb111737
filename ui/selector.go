package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"aide/model"
	"aide/provider"
)

// selectorState drives the assistant list screen: pick an assistant to chat
// with, create a new one, edit or delete an existing one. Filtering is fuzzy
// over assistant names.
type selectorState struct {
	assistants  []model.Assistant
	selectedIdx int

	filterMode  bool
	filterInput textinput.Model
	filtered    []model.Assistant

	confirmDelete *model.Assistant
	loadErr       string
}

func newSelectorState() selectorState {
	fi := textinput.New()
	fi.Placeholder = "filter assistants..."
	fi.CharLimit = 64
	return selectorState{filterInput: fi}
}

// visible returns the list the cursor moves over.
func (s *selectorState) visible() []model.Assistant {
	if s.filterMode || s.filterInput.Value() != "" {
		return s.filtered
	}
	return s.assistants
}

func (s *selectorState) applyFilter() {
	value := s.filterInput.Value()
	if value == "" {
		s.filtered = s.assistants
		return
	}

	targets := make([]string, len(s.assistants))
	for i, a := range s.assistants {
		targets[i] = a.Name
	}

	matches := fuzzy.Find(value, targets)
	s.filtered = make([]model.Assistant, 0, len(matches))
	for _, m := range matches {
		s.filtered = append(s.filtered, s.assistants[m.Index])
	}
	if s.selectedIdx >= len(s.filtered) {
		s.selectedIdx = 0
	}
}

func (a App) handleSelectorKeys(msg tea.KeyMsg) (App, tea.Cmd) {
	s := &a.selector

	if s.confirmDelete != nil {
		switch msg.String() {
		case "y", "Y":
			id := s.confirmDelete.ID
			s.confirmDelete = nil
			return a, deleteAssistantCmd(a.store, id)
		default:
			s.confirmDelete = nil
		}
		return a, nil
	}

	if s.filterMode {
		switch msg.String() {
		case "esc":
			s.filterMode = false
			s.filterInput.SetValue("")
			s.filterInput.Blur()
			s.filtered = nil
			s.selectedIdx = 0
			return a, nil
		case "enter":
			s.filterMode = false
			s.filterInput.Blur()
			return a, nil
		default:
			var cmd tea.Cmd
			s.filterInput, cmd = s.filterInput.Update(msg)
			s.applyFilter()
			return a, cmd
		}
	}

	visible := s.visible()
	switch msg.String() {
	case "j", "down":
		if s.selectedIdx < len(visible)-1 {
			s.selectedIdx++
		}
	case "k", "up":
		if s.selectedIdx > 0 {
			s.selectedIdx--
		}
	case "/":
		s.filterMode = true
		s.filterInput.Focus()
		s.applyFilter()
		return a, textinput.Blink
	case "n":
		return a.openEditorForNew()
	case "e":
		if s.selectedIdx < len(visible) {
			return a.openEditorFor(visible[s.selectedIdx])
		}
	case "d":
		if s.selectedIdx < len(visible) {
			target := visible[s.selectedIdx]
			s.confirmDelete = &target
		}
	case "enter":
		if s.selectedIdx < len(visible) {
			return a.openChatFor(visible[s.selectedIdx])
		}
	case "q":
		return a, tea.Quit
	}

	return a, nil
}

func (a App) renderSelector() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Assistants"))
	b.WriteString("\n\n")

	if a.selector.loadErr != "" {
		b.WriteString(ErrorStyle.Render("Failed to load assistants: "+a.selector.loadErr) + "\n\n")
	}

	visible := a.selector.visible()
	if len(visible) == 0 {
		if a.selector.filterInput.Value() != "" {
			b.WriteString(DimStyle.Render("No assistants match the filter.") + "\n")
		} else {
			b.WriteString(DimStyle.Render("No assistants yet. Press n to create one.") + "\n")
		}
	}

	for i, assistant := range visible {
		suffix := ""
		if desc, ok := provider.Find(assistant.Provider); ok {
			suffix = DimStyle.Render(fmt.Sprintf("  (%s, %s)", desc.Name, assistant.ModelVersion))
		}
		if i == a.selector.selectedIdx {
			b.WriteString(SelectedStyle.Render("> "+assistant.Name) + suffix)
		} else {
			b.WriteString("  " + assistant.Name + suffix)
		}
		b.WriteString("\n")
	}

	if target := a.selector.confirmDelete; target != nil {
		b.WriteString("\n" + ErrorStyle.Render(fmt.Sprintf("Delete %q and its knowledge base? (y/N)", target.Name)) + "\n")
	}

	if a.selector.filterMode {
		b.WriteString("\n/" + a.selector.filterInput.View() + "\n")
	}

	b.WriteString("\n" + FormatFooter(
		"j/k", "Navigate", "Enter", "Chat", "n", "New",
		"e", "Edit", "d", "Delete", "/", "Filter", "q", "Quit"))

	return b.String()
}
