package ui

import (
	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"aide/config"
)

// renderMarkdownAsync renders one message's content to terminal markdown off
// the update loop. Autolink stays disabled so plain URLs survive untouched
// and the terminal emulator handles link detection.
func renderMarkdownAsync(conversationID string, messageIndex, width int, content string) tea.Cmd {
	return func() tea.Msg {
		customExt := markdown.Extensions() &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		if config.DebugLog != nil {
			config.DebugLog.Printf("[Markdown] rendered message %d (%d chars)", messageIndex, len(content))
		}

		return markdownRenderedMsg{
			ConversationID: conversationID,
			MessageIndex:   messageIndex,
			Rendered:       string(rendered),
		}
	}
}
