package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/s1dash/internal/filter"
	"github.com/studiowebux/s1dash/internal/format"
	"github.com/studiowebux/s1dash/internal/keybinds"
)

// openHelp shows the bindings of ctx
func (m *Model) openHelp(ctx keybinds.Context) {
	m.helpContext = ctx
	m.overlay = OverlayHelp
	m.helpView.SetContent(m.helpContent(ctx))
	m.helpView.GotoTop()
}

func (m *Model) helpContent(ctx keybinds.Context) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("Key bindings (%s)", ctx)) + "\n\n")
	for _, binding := range m.keybinds.ListBindings(ctx) {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", binding.Key, strings.ReplaceAll(string(binding.Action), "_", " ")))
	}

	b.WriteString("\n" + styleTitle.Render("Editor") + "\n\n")
	for _, binding := range m.keybinds.ListBindings(keybinds.ContextEditor) {
		if binding.Context != keybinds.ContextEditor {
			continue
		}
		b.WriteString(fmt.Sprintf("  %-14s %s\n", binding.Key, strings.ReplaceAll(string(binding.Action), "_", " ")))
	}
	b.WriteString("\n" + styleSubtle.Render("Bindings can be changed in "+keybindsHint))
	return b.String()
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.matchKey(keybinds.ContextHelp, msg)
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionCancel:
		m.overlay = OverlayNone
	case keybinds.ActionNavigateUp:
		m.helpView.LineUp(1)
	case keybinds.ActionNavigateDown:
		m.helpView.LineDown(1)
	}
	return nil
}

// openFilter starts fuzzy filtering the visible list
func (m *Model) openFilter() {
	m.overlay = OverlayFilter
	m.filterInput.SetValue(m.filterQuery)
	m.filterInput.CursorEnd()
	m.filterInput.Focus()
	m.focusedPanel = focusSidebar
}

func (m *Model) handleFilterKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextFilter, msg.String()); ok {
		switch action {
		case keybinds.ActionSubmit:
			m.filterInput.Blur()
			m.overlay = OverlayNone
			return nil
		case keybinds.ActionCancel:
			m.filterInput.Blur()
			m.filterInput.SetValue("")
			m.filterQuery = ""
			m.overlay = OverlayNone
			m.keyIndex = 0
			m.connIndex = 0
			return nil
		}
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	if m.filterInput.Value() != m.filterQuery {
		m.filterQuery = m.filterInput.Value()
		m.keyIndex = 0
		m.connIndex = 0
	}
	return cmd
}

// openQuery opens the JMESPath query view over the loaded value
func (m *Model) openQuery() {
	if _, _, ok := m.loadedValue(); !ok {
		m.setError("No value loaded")
		return
	}
	m.overlay = OverlayQuery
	m.bookmarkPos = -1
	m.queryInput.Focus()
	m.runQuery()
}

// runQuery evaluates the query input against the loaded value. An empty
// query shows the value itself.
func (m *Model) runQuery() {
	_, value, ok := m.loadedValue()
	if !ok {
		m.queryResult = ""
		m.queryError = "No value loaded"
		m.queryView.SetContent("")
		return
	}

	expr := strings.TrimSpace(m.queryInput.Value())
	raw := format.Raw(value)
	if expr == "" {
		m.queryResult = format.Pretty(raw)
		m.queryError = ""
	} else if result, err := filter.Eval(m.ctx, raw, expr); err != nil {
		m.queryError = err.Error()
	} else {
		m.queryResult = format.Pretty(result)
		m.queryError = ""
	}
	m.queryView.SetContent(format.Highlight(m.queryResult))
	m.queryView.GotoTop()
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextQuery, msg.String()); ok {
		switch action {
		case keybinds.ActionSubmit:
			m.runQuery()
			return nil
		case keybinds.ActionCancel:
			m.queryInput.Blur()
			m.overlay = OverlayNone
			return nil
		case keybinds.ActionCopyValue:
			if m.queryResult != "" {
				return writeClipboard(m.queryResult, "Copied query result")
			}
			return nil
		case keybinds.ActionPageUp:
			m.queryView.HalfViewUp()
			return nil
		case keybinds.ActionPageDown:
			m.queryView.HalfViewDown()
			return nil
		case keybinds.ActionSaveQuery:
			m.saveQuery()
			return nil
		case keybinds.ActionNavigateUp:
			m.cycleBookmark(1)
			return nil
		case keybinds.ActionNavigateDown:
			m.cycleBookmark(-1)
			return nil
		}
	}

	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	return cmd
}

// saveQuery bookmarks the current expression
func (m *Model) saveQuery() {
	if m.bookmarks == nil {
		m.setError("Saved queries are unavailable")
		return
	}
	expr := strings.TrimSpace(m.queryInput.Value())
	if expr == "" {
		m.setError("Nothing to save")
		return
	}

	saved, err := m.bookmarks.Save(expr)
	if err != nil {
		m.log.Warn().Err(err).Msg("Failed to save query")
		m.setError(err.Error())
		return
	}
	if saved {
		m.setStatus("Saved query " + expr)
	} else {
		m.setStatus("Query already saved")
	}
}

// cycleBookmark loads the next older (step 1) or newer (step -1) saved
// query and runs it. Stepping past the newest clears the input.
func (m *Model) cycleBookmark(step int) {
	if m.bookmarks == nil {
		return
	}
	saved, err := m.bookmarks.List()
	if err != nil {
		m.log.Warn().Err(err).Msg("Failed to list saved queries")
		m.setError(err.Error())
		return
	}
	if len(saved) == 0 {
		m.setStatus("No saved queries")
		return
	}

	pos := m.bookmarkPos + step
	if pos >= len(saved) {
		pos = len(saved) - 1
	}
	if pos < 0 {
		m.bookmarkPos = -1
		m.queryInput.SetValue("")
		m.runQuery()
		return
	}

	m.bookmarkPos = pos
	m.queryInput.SetValue(saved[pos].Expression)
	m.queryInput.CursorEnd()
	m.runQuery()
}
