package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"aide/model"
	"aide/provider"
)

type editorField int

const (
	fieldName editorField = iota
	fieldInstructions
	fieldProvider
	fieldModelVersion
	fieldAPIKey
	fieldOrganization
	fieldMaxTokens
	fieldTemperature
	fieldWelcome
	fieldKnowledge
)

var editorFieldLabels = map[editorField]string{
	fieldName:         "Name",
	fieldInstructions: "Instructions",
	fieldProvider:     "Provider",
	fieldModelVersion: "Model",
	fieldAPIKey:       "API key",
	fieldOrganization: "Organization ID",
	fieldMaxTokens:    "Max tokens",
	fieldTemperature:  "Temperature",
	fieldWelcome:      "Welcome message",
	fieldKnowledge:    "Knowledge base",
}

// editorState drives the assistant configuration form. Edits live on a local
// copy of the assistant; nothing touches the store until the user saves, and
// save is refused while validation fails.
type editorState struct {
	assistant model.Assistant
	isNew     bool
	dirty     bool

	focusedField editorField
	editMode     bool
	editInput    textinput.Model

	addingKnowledge    bool
	knowledgePathInput textinput.Model
	knowledgeIdx       int
	extracting         bool
	knowledgeNotice    string

	probing     bool
	probeStatus *model.ConnectionStatus

	saveErr string
}

func newEditorState() editorState {
	ei := textinput.New()
	ei.CharLimit = 0

	ki := textinput.New()
	ki.Placeholder = "path to .txt / .md / .pdf file"
	ki.CharLimit = 0

	return editorState{editInput: ei, knowledgePathInput: ki}
}

func (a App) openEditorForNew() (App, tea.Cmd) {
	desc := a.defaultProviderDescriptor()

	a.editor = newEditorState()
	a.editor.isNew = true
	a.editor.assistant = model.Assistant{
		Owner:        a.cfg.Owner,
		Provider:     desc.ID,
		ModelVersion: desc.DefaultVersion,
		MaxTokens:    1024,
		Temperature:  0.7,
	}
	a.screen = screenEditor
	return a, nil
}

func (a App) openEditorFor(assistant model.Assistant) (App, tea.Cmd) {
	a.editor = newEditorState()
	a.editor.assistant = assistant
	a.screen = screenEditor
	return a, nil
}

func (a App) defaultProviderDescriptor() provider.Descriptor {
	if desc, ok := provider.Find(a.cfg.DefaultProvider); ok {
		return desc
	}
	return provider.Registry()[0]
}

// fieldValue returns the display value of a form field.
func (e *editorState) fieldValue(f editorField) string {
	switch f {
	case fieldName:
		return e.assistant.Name
	case fieldInstructions:
		return e.assistant.Instructions
	case fieldProvider:
		if desc, ok := provider.Find(e.assistant.Provider); ok {
			return desc.Name
		}
		return e.assistant.Provider
	case fieldModelVersion:
		return e.assistant.ModelVersion
	case fieldAPIKey:
		if e.assistant.Credentials.APIKey == "" {
			return ""
		}
		return strings.Repeat("*", 8)
	case fieldOrganization:
		return e.assistant.Credentials.OrganizationID
	case fieldMaxTokens:
		return strconv.Itoa(e.assistant.MaxTokens)
	case fieldTemperature:
		return strconv.FormatFloat(e.assistant.Temperature, 'g', -1, 64)
	case fieldWelcome:
		return e.assistant.WelcomeMessage
	case fieldKnowledge:
		return fmt.Sprintf("%d items", len(e.assistant.Knowledge))
	}
	return ""
}

// visibleFields returns the form fields for the current provider; the
// organization row only exists for providers that take one.
func (e *editorState) visibleFields() []editorField {
	fields := []editorField{fieldName, fieldInstructions, fieldProvider, fieldModelVersion, fieldAPIKey}
	if desc, ok := provider.Find(e.assistant.Provider); ok && desc.RequiresOrganization() {
		fields = append(fields, fieldOrganization)
	}
	return append(fields, fieldMaxTokens, fieldTemperature, fieldWelcome, fieldKnowledge)
}

// cycleProvider switches to the next (or previous) provider in the catalog.
// The model version resets to the new provider's default and the probe result
// is invalidated; credentials are kept so switching back is cheap.
func (e *editorState) cycleProvider(delta int) {
	reg := provider.Registry()
	idx := 0
	for i, desc := range reg {
		if desc.ID == e.assistant.Provider {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(reg)) % len(reg)

	next := reg[idx]
	e.assistant.Provider = next.ID
	e.assistant.ModelVersion = next.DefaultVersion
	if !next.RequiresOrganization() {
		e.assistant.Credentials.OrganizationID = ""
	}
	e.probeStatus = nil
	e.dirty = true
}

func (e *editorState) cycleModelVersion(delta int) {
	desc, ok := provider.Find(e.assistant.Provider)
	if !ok || len(desc.Versions) == 0 {
		return
	}
	idx := 0
	for i, v := range desc.Versions {
		if v.ID == e.assistant.ModelVersion {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(desc.Versions)) % len(desc.Versions)
	e.assistant.ModelVersion = desc.Versions[idx].ID
	e.dirty = true
}

func (a App) handleEditorKeys(msg tea.KeyMsg) (App, tea.Cmd) {
	e := &a.editor

	if e.addingKnowledge {
		switch msg.String() {
		case "esc":
			e.addingKnowledge = false
			e.knowledgePathInput.SetValue("")
			e.knowledgePathInput.Blur()
			return a, nil
		case "enter":
			path := strings.TrimSpace(e.knowledgePathInput.Value())
			e.addingKnowledge = false
			e.knowledgePathInput.SetValue("")
			e.knowledgePathInput.Blur()
			if path == "" {
				return a, nil
			}
			e.extracting = true
			e.knowledgeNotice = ""
			return a, extractKnowledgeCmd([]string{path})
		default:
			var cmd tea.Cmd
			e.knowledgePathInput, cmd = e.knowledgePathInput.Update(msg)
			return a, cmd
		}
	}

	if e.editMode {
		switch msg.String() {
		case "esc":
			e.editMode = false
			e.editInput.Blur()
			return a, nil
		case "enter":
			e.commitEdit()
			return a, nil
		default:
			var cmd tea.Cmd
			e.editInput, cmd = e.editInput.Update(msg)
			return a, cmd
		}
	}

	fields := e.visibleFields()
	focusIdx := 0
	for i, f := range fields {
		if f == e.focusedField {
			focusIdx = i
			break
		}
	}

	switch msg.String() {
	case "esc":
		a.screen = screenSelector
		return a, loadAssistantsCmd(a.store, a.cfg.Owner)
	case "j", "down":
		if focusIdx < len(fields)-1 {
			e.focusedField = fields[focusIdx+1]
		}
	case "k", "up":
		if focusIdx > 0 {
			e.focusedField = fields[focusIdx-1]
		}
	case "h", "left":
		switch e.focusedField {
		case fieldProvider:
			e.cycleProvider(-1)
		case fieldModelVersion:
			e.cycleModelVersion(-1)
		}
	case "l", "right":
		switch e.focusedField {
		case fieldProvider:
			e.cycleProvider(1)
		case fieldModelVersion:
			e.cycleModelVersion(1)
		}
	case "enter":
		switch e.focusedField {
		case fieldProvider:
			e.cycleProvider(1)
		case fieldModelVersion:
			e.cycleModelVersion(1)
		case fieldKnowledge:
			e.addingKnowledge = true
			e.knowledgePathInput.Focus()
			return a, textinput.Blink
		default:
			e.startEdit()
			return a, textinput.Blink
		}
	case "a":
		if e.focusedField == fieldKnowledge {
			e.addingKnowledge = true
			e.knowledgePathInput.Focus()
			return a, textinput.Blink
		}
	case "x":
		if e.focusedField == fieldKnowledge && len(e.assistant.Knowledge) > 0 {
			if e.knowledgeIdx >= len(e.assistant.Knowledge) {
				e.knowledgeIdx = len(e.assistant.Knowledge) - 1
			}
			e.assistant.Knowledge = append(
				e.assistant.Knowledge[:e.knowledgeIdx],
				e.assistant.Knowledge[e.knowledgeIdx+1:]...)
			e.dirty = true
		}
	case "J":
		if e.focusedField == fieldKnowledge && e.knowledgeIdx < len(e.assistant.Knowledge)-1 {
			e.knowledgeIdx++
		}
	case "K":
		if e.focusedField == fieldKnowledge && e.knowledgeIdx > 0 {
			e.knowledgeIdx--
		}
	case "ctrl+t":
		if !e.probing {
			e.probing = true
			e.probeStatus = nil
			return a, probeCmd(e.assistant.Provider, e.assistant.Credentials)
		}
	case "ctrl+s":
		if err := e.assistant.Validate(); err != nil {
			e.saveErr = err.Error()
			return a, nil
		}
		e.saveErr = ""
		return a, saveAssistantCmd(a.store, e.assistant)
	}

	return a, nil
}

// startEdit opens the inline input pre-filled with the focused field's value.
func (e *editorState) startEdit() {
	e.editMode = true
	e.editInput.SetValue(e.rawValue(e.focusedField))
	e.editInput.CursorEnd()
	e.editInput.Focus()
	if e.focusedField == fieldAPIKey {
		e.editInput.EchoMode = textinput.EchoPassword
	} else {
		e.editInput.EchoMode = textinput.EchoNormal
	}
}

// rawValue is fieldValue without display masking, for edit prefill.
func (e *editorState) rawValue(f editorField) string {
	if f == fieldAPIKey {
		return e.assistant.Credentials.APIKey
	}
	return e.fieldValue(f)
}

func (e *editorState) commitEdit() {
	value := e.editInput.Value()
	e.editMode = false
	e.editInput.Blur()

	switch e.focusedField {
	case fieldName:
		e.assistant.Name = value
	case fieldInstructions:
		e.assistant.Instructions = value
	case fieldAPIKey:
		e.assistant.Credentials.APIKey = strings.TrimSpace(value)
		e.probeStatus = nil
	case fieldOrganization:
		e.assistant.Credentials.OrganizationID = strings.TrimSpace(value)
		e.probeStatus = nil
	case fieldMaxTokens:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			e.saveErr = fmt.Sprintf("max tokens must be a positive integer, got %q", value)
			return
		}
		e.assistant.MaxTokens = n
	case fieldTemperature:
		t, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || t < 0 || t > 1 {
			e.saveErr = fmt.Sprintf("temperature must be in [0,1], got %q", value)
			return
		}
		e.assistant.Temperature = t
	case fieldWelcome:
		e.assistant.WelcomeMessage = value
	}

	e.saveErr = ""
	e.dirty = true
}

func (a App) renderEditor() string {
	e := &a.editor
	var b strings.Builder

	title := "Edit Assistant"
	if e.isNew {
		title = "New Assistant"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	for _, f := range e.visibleFields() {
		label := editorFieldLabels[f]
		cursor := "  "
		if f == e.focusedField && !e.editMode {
			cursor = SelectedStyle.Render("> ")
		}

		if f == e.focusedField && e.editMode {
			b.WriteString(fmt.Sprintf("%s%-16s %s\n", cursor, label+":", e.editInput.View()))
			continue
		}

		value := e.fieldValue(f)
		if value == "" {
			value = DimStyle.Render("(not set)")
		}
		b.WriteString(fmt.Sprintf("%s%-16s %s\n", cursor, label+":", value))

		if f == fieldKnowledge {
			for i, item := range e.assistant.Knowledge {
				marker := "    - "
				if e.focusedField == fieldKnowledge && i == e.knowledgeIdx {
					marker = SelectedStyle.Render("    * ")
				}
				b.WriteString(marker + item.Name +
					DimStyle.Render(fmt.Sprintf(" (%d chars)", len(item.Content))) + "\n")
			}
		}
	}

	if e.addingKnowledge {
		b.WriteString("\nAdd file: " + e.knowledgePathInput.View() + "\n")
	}
	if e.extracting {
		b.WriteString("\n" + DimStyle.Render("Extracting text...") + "\n")
	}
	if e.knowledgeNotice != "" {
		b.WriteString("\n" + DimStyle.Render(e.knowledgeNotice) + "\n")
	}

	if e.probing {
		b.WriteString("\n" + DimStyle.Render("Checking connection...") + "\n")
	} else if e.probeStatus != nil {
		if e.probeStatus.Connected {
			b.WriteString("\n" + ConnectedStyle.Render("Connected to "+e.probeStatus.Name) + "\n")
		} else {
			reason := "unknown error"
			if e.probeStatus.Err != nil {
				reason = e.probeStatus.Err.Error()
			}
			b.WriteString("\n" + ErrorStyle.Render("Connection failed: "+reason) + "\n")
		}
	}

	if e.saveErr != "" {
		b.WriteString("\n" + ErrorStyle.Render(e.saveErr) + "\n")
	}

	b.WriteString("\n" + FormatFooter(
		"j/k", "Navigate", "Enter", "Edit", "h/l", "Cycle",
		"a", "Add file", "x", "Remove", "Ctrl+T", "Test", "Ctrl+S", "Save", "Esc", "Back"))

	return b.String()
}
