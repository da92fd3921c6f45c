package tui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// writeClipboard copies text and reports status once done
func writeClipboard(text, status string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return clipboardMsg{err: err}
		}
		return clipboardMsg{status: status}
	}
}

// readClipboard reads the clipboard into a pasteMsg
func readClipboard() tea.Cmd {
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		if err != nil {
			return clipboardMsg{err: err}
		}
		return pasteMsg{text: text}
	}
}
