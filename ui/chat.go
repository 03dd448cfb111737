package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"aide/config"
	"aide/model"
)

// chatState drives one conversation with one assistant. The conversation is
// in-memory only; leaving the screen or resetting discards it. Replies are
// matched by conversation id, so a reply that arrives after a reset or a
// screen switch is dropped instead of landing in the wrong conversation.
type chatState struct {
	assistant    model.Assistant
	conversation *model.Conversation

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	waiting bool
	notice  string
	vpReady bool
}

func newChatState(assistant model.Assistant) chatState {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.SetHeight(3)
	ta.CharLimit = 0
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = DimStyle

	return chatState{
		assistant:    assistant,
		conversation: model.NewConversation(assistant.WelcomeMessage),
		textarea:     ta,
		spinner:      sp,
	}
}

func (a App) openChatFor(assistant model.Assistant) (App, tea.Cmd) {
	a.chat = newChatState(assistant)
	a.screen = screenChat
	a.chat.layout(a.width, a.height)
	a.chat.refreshViewport()
	return a, textarea.Blink
}

func (c *chatState) layout(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	vpHeight := height - c.textarea.Height() - 4
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !c.vpReady {
		c.viewport = viewport.New(width, vpHeight)
		c.vpReady = true
	} else {
		c.viewport.Width = width
		c.viewport.Height = vpHeight
	}
	c.textarea.SetWidth(width)
	c.refreshViewport()
}

// dispatchHistory is the message sequence handed to the provider: real turns
// only, inline error entries stay local to the screen.
func (c *chatState) dispatchHistory() []Message {
	history := c.conversation.History()
	out := make([]Message, 0, len(history))
	for _, m := range history {
		if m.Role == "user" || m.Role == "assistant" {
			out = append(out, m)
		}
	}
	return out
}

func (a App) handleChatKeys(msg tea.KeyMsg) (App, tea.Cmd) {
	c := &a.chat

	switch msg.String() {
	case "esc":
		a.screen = screenSelector
		return a, loadAssistantsCmd(a.store, a.cfg.Owner)

	case "enter":
		text := strings.TrimSpace(c.textarea.Value())
		if text == "" || c.waiting {
			return a, nil
		}

		// Capture the history before appending so the outgoing request does
		// not contain the new message twice.
		history := c.dispatchHistory()
		c.conversation.AppendUserMessage(text)
		c.textarea.Reset()
		c.waiting = true
		c.notice = ""
		c.refreshViewport()

		return a, tea.Batch(
			sendChatCmd(c.assistant, c.conversation.ID, text, history),
			c.spinner.Tick,
		)

	case "ctrl+r":
		// New conversation id: any reply still in flight belongs to the old
		// conversation and will be dropped when it lands.
		c.conversation = model.NewConversation(c.assistant.WelcomeMessage)
		c.waiting = false
		c.notice = ""
		c.refreshViewport()
		return a, nil

	case "ctrl+y":
		for i := len(c.conversation.Messages) - 1; i >= 0; i-- {
			if c.conversation.Messages[i].Role == "assistant" {
				if err := clipboard.WriteAll(c.conversation.Messages[i].Content); err != nil {
					c.notice = "copy failed: " + err.Error()
				} else {
					c.notice = "reply copied"
				}
				break
			}
		}
		return a, nil

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return a, cmd
}

// handleChatMsg processes the async messages belonging to the chat screen.
func (a App) handleChatMsg(msg tea.Msg) (App, tea.Cmd) {
	c := &a.chat

	switch msg := msg.(type) {
	case chatReplyMsg:
		if c.conversation == nil || msg.ConversationID != c.conversation.ID {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Chat] dropping reply for stale conversation %s", msg.ConversationID)
			}
			return a, nil
		}
		c.waiting = false
		c.conversation.AppendAssistantMessage(msg.Text)
		c.refreshViewport()
		idx := len(c.conversation.Messages) - 1
		return a, renderMarkdownAsync(c.conversation.ID, idx, a.width, msg.Text)

	case chatErrorMsg:
		if c.conversation == nil || msg.ConversationID != c.conversation.ID {
			return a, nil
		}
		c.waiting = false
		c.conversation.Messages = append(c.conversation.Messages, Message{
			Role:    "error",
			Content: msg.Err.Error(),
		})
		c.refreshViewport()
		return a, nil

	case markdownRenderedMsg:
		if c.conversation == nil || msg.ConversationID != c.conversation.ID {
			return a, nil
		}
		if msg.MessageIndex >= 0 && msg.MessageIndex < len(c.conversation.Messages) {
			c.conversation.Messages[msg.MessageIndex].Rendered = msg.Rendered
			c.refreshViewport()
		}
		return a, nil

	case spinner.TickMsg:
		if !c.waiting {
			return a, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (c *chatState) refreshViewport() {
	if !c.vpReady {
		return
	}

	var b strings.Builder
	for _, m := range c.conversation.Messages {
		switch m.Role {
		case "user":
			b.WriteString(UserStyle.Render("You") + "\n")
			b.WriteString(m.Content + "\n\n")
		case "assistant":
			b.WriteString(AssistantStyle.Render(c.assistant.Name) + "\n")
			body := m.Content
			if m.Rendered != "" {
				body = m.Rendered
			}
			b.WriteString(body + "\n\n")
		case "error":
			b.WriteString(ErrorStyle.Render("Error: "+m.Content) + "\n\n")
		}
	}

	atBottom := c.viewport.AtBottom()
	c.viewport.SetContent(b.String())
	if atBottom {
		c.viewport.GotoBottom()
	}
}

func (a App) renderChat() string {
	c := &a.chat
	var b strings.Builder

	name := runewidth.Truncate(c.assistant.Name, a.width/2, "…")
	b.WriteString(TitleStyle.Render(name))
	b.WriteString(DimStyle.Render(fmt.Sprintf("  (%s / %s)", c.assistant.Provider, c.assistant.ModelVersion)))
	b.WriteString("\n\n")

	b.WriteString(c.viewport.View())
	b.WriteString("\n")

	if c.waiting {
		b.WriteString(c.spinner.View() + DimStyle.Render(" waiting for reply...") + "\n")
	} else if c.notice != "" {
		b.WriteString(DimStyle.Render(c.notice) + "\n")
	}

	b.WriteString(c.textarea.View())
	b.WriteString("\n" + FormatFooter(
		"Enter", "Send", "Ctrl+R", "New conversation",
		"Ctrl+Y", "Copy reply", "Esc", "Back"))

	return b.String()
}
