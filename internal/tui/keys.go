package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/s1dash/internal/filter"
	"github.com/studiowebux/s1dash/internal/keybinds"
	"github.com/studiowebux/s1dash/internal/session"
)

// matchKey resolves a key press to an action in context, honouring
// multi-key sequences such as gg
func (m *Model) matchKey(context keybinds.Context, msg tea.KeyMsg) (keybinds.Action, bool) {
	action, ok, partial := m.keybinds.MatchSequence(context, msg.String())
	if partial {
		return "", false
	}
	return action, ok
}

// handleKeyPress routes a key press to the handler of the visible screen
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	switch m.overlay {
	case OverlayHelp:
		return m.handleHelpKeys(msg)
	case OverlayFilter:
		return m.handleFilterKeys(msg)
	case OverlayQuery:
		return m.handleQueryKeys(msg)
	case OverlayConfirmForget:
		return m.handleConfirmKeys(msg)
	}

	switch m.mode {
	case ModeConnect:
		if m.focusedPanel == focusSidebar {
			return m.handleConnectionListKeys(msg)
		}
		return m.handleConnectFormKeys(msg)
	case ModeConnecting:
		return m.handleConnectingKeys(msg)
	case ModeError:
		return m.handleErrorKeys(msg)
	}

	if m.focusedPanel == focusSidebar {
		return m.handleKeyListKeys(msg)
	}
	switch m.machine.KeyState().(type) {
	case session.KeyComposing, session.KeySubmitting:
		return m.handleCreateKeys(msg)
	case session.KeyReady, session.KeySaving:
		return m.handleEditorKeys(msg)
	default:
		return m.handleIdlePanelKeys(msg)
	}
}

func (m *Model) handleConnectingKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.matchKey(keybinds.ContextConnecting, msg)
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionDisconnect:
		m.disconnect()
	}
	return nil
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.matchKey(keybinds.ContextError, msg)
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionRetry:
		cmd, err := m.machine.Retry()
		if err != nil {
			m.setError(err.Error())
			return nil
		}
		m.syncFromMachine()
		return m.run(cmd)
	case keybinds.ActionGoBack:
		if err := m.machine.GoBack(); err != nil {
			m.setError(err.Error())
			return nil
		}
		m.syncFromMachine()
		m.focusForm()
	}
	return nil
}

func (m *Model) disconnect() {
	name := ""
	if c, ok := m.machine.Connection(); ok {
		name = c.Name
	}
	m.machine.Disconnect()
	m.syncFromMachine()
	m.errorMsg = ""
	if name != "" {
		m.setStatus("Disconnected from " + name)
	}
}

// visibleKeys returns the key listing after the active filter
func (m *Model) visibleKeys() []filter.Match {
	sess, ok := m.machine.Session()
	if !ok {
		return nil
	}
	return filter.Keys(sess.Keys, m.filterQuery)
}

func (m *Model) selectedKey() (string, bool) {
	keys := m.visibleKeys()
	if m.keyIndex < 0 || m.keyIndex >= len(keys) {
		return "", false
	}
	return keys[m.keyIndex].Key, true
}

// clampKeyIndex keeps the highlighted row inside the listing
func (m *Model) clampKeyIndex() {
	n := len(m.visibleKeys())
	if m.keyIndex >= n {
		m.keyIndex = n - 1
	}
	if m.keyIndex < 0 {
		m.keyIndex = 0
	}
}

// loadedValue returns the value held by the editor, if any
func (m *Model) loadedValue() (string, string, bool) {
	switch ks := m.machine.KeyState().(type) {
	case session.KeyReady:
		return ks.Key, ks.Value, true
	case session.KeySaving:
		return ks.Key, ks.Value, true
	}
	return "", "", false
}

// handleKeyListKeys handles the key listing sidebar
func (m *Model) handleKeyListKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.matchKey(keybinds.ContextKeys, msg)
	if !ok {
		return nil
	}

	pageSize := max(1, m.listHeight())
	n := len(m.visibleKeys())

	switch action {
	case keybinds.ActionNavigateUp:
		if m.keyIndex > 0 {
			m.keyIndex--
		}
	case keybinds.ActionNavigateDown:
		if m.keyIndex < n-1 {
			m.keyIndex++
		}
	case keybinds.ActionPageUp:
		m.keyIndex = max(0, m.keyIndex-pageSize)
	case keybinds.ActionPageDown:
		m.keyIndex = max(0, min(n-1, m.keyIndex+pageSize))
	case keybinds.ActionGoToTop:
		m.keyIndex = 0
	case keybinds.ActionGoToBottom:
		m.keyIndex = max(0, n-1)
	case keybinds.ActionSwitchFocus:
		m.focusedPanel = focusMain
	case keybinds.ActionSelectKey:
		key, ok := m.selectedKey()
		if !ok {
			return nil
		}
		cmd, err := m.machine.SelectKey(key)
		if err != nil {
			m.setError(err.Error())
			return nil
		}
		m.errorMsg = ""
		m.focusedPanel = focusMain
		m.syncFromMachine()
		return m.run(cmd)
	case keybinds.ActionClearFilter:
		m.filterQuery = ""
		m.clampKeyIndex()
	default:
		return m.handleDashboardAction(action)
	}
	return nil
}

// handleIdlePanelKeys handles the main panel while no value is loaded
func (m *Model) handleIdlePanelKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.matchKey(keybinds.ContextKeys, msg)
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionSwitchFocus, keybinds.ActionClearFilter:
		m.focusedPanel = focusSidebar
		return nil
	}
	return m.handleDashboardAction(action)
}

// handleDashboardAction runs the actions shared by the dashboard panels
func (m *Model) handleDashboardAction(action keybinds.Action) tea.Cmd {
	switch action {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionOpenHelp:
		ctx := keybinds.ContextKeys
		if m.focusedPanel == focusMain {
			ctx = keybinds.ContextEditor
		}
		m.openHelp(ctx)
	case keybinds.ActionNewKey:
		return m.newKey()
	case keybinds.ActionRefreshKeys:
		cmd, err := m.machine.Refresh()
		if err != nil {
			m.setError(err.Error())
			return nil
		}
		if cmd != nil {
			m.setStatus("Refreshing keys...")
		}
		return m.run(cmd)
	case keybinds.ActionDisconnect:
		m.disconnect()
	case keybinds.ActionDelete:
		return m.deleteKey()
	case keybinds.ActionCopyValue:
		if _, value, ok := m.loadedValue(); ok {
			return writeClipboard(value, "Copied value")
		}
		m.setError("No value loaded")
	case keybinds.ActionQueryValue:
		m.openQuery()
	case keybinds.ActionFilterKeys:
		m.openFilter()
	case keybinds.ActionDismissNotice:
		m.dismissNotice()
	}
	return nil
}

func (m *Model) newKey() tea.Cmd {
	if err := m.machine.NewKey(); err != nil {
		m.setError(err.Error())
		return nil
	}
	m.createKey.SetValue("")
	m.createKey.Focus()
	m.createValue = newBuffer("")
	m.createField = 0
	m.focusedPanel = focusMain
	m.syncFromMachine()
	return nil
}

func (m *Model) deleteKey() tea.Cmd {
	key, _, ok := m.loadedValue()
	if !ok {
		m.setError("No key loaded")
		return nil
	}
	cmd, err := m.machine.Delete()
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	m.setStatus(fmt.Sprintf("Deleting %s...", key))
	m.syncFromMachine()
	return m.run(cmd)
}

func (m *Model) dismissNotice() {
	m.machine.DismissNotice()
	m.errorMsg = ""
}

// handleEditorKeys handles the value editor
func (m *Model) handleEditorKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextEditor, msg.String()); ok {
		switch action {
		case keybinds.ActionIndent:
			m.tab(false)
			return nil
		case keybinds.ActionOutdent:
			m.tab(true)
			return nil
		case keybinds.ActionSave:
			return m.save()
		case keybinds.ActionDelete:
			return m.deleteKey()
		case keybinds.ActionCopyValue:
			return writeClipboard(m.editor.selected(), "Copied to clipboard")
		case keybinds.ActionPaste:
			return readClipboard()
		case keybinds.ActionQueryValue:
			m.openQuery()
			return nil
		case keybinds.ActionDismissNotice:
			m.dismissNotice()
			return nil
		case keybinds.ActionSwitchFocus:
			m.editor.clearSelection()
			m.focusedPanel = focusSidebar
			return nil
		case keybinds.ActionQuit:
			return tea.Quit
		}
	}

	changed, _ := m.editor.handleKey(msg.String(), msg.Runes)
	if changed {
		m.commitEditor()
	}
	return nil
}

// tab applies indent or outdent to the editor selection
func (m *Model) tab(shift bool) {
	start, end := m.editor.selection()
	edit, err := m.machine.EditTab(start, end, shift)
	if err != nil {
		m.setError(err.Error())
		return
	}
	if !edit.Changed {
		return
	}
	m.editor.text = edit.Text
	m.editor.cursor = edit.End
	m.editor.anchor = -1
	if edit.Start != edit.End {
		m.editor.anchor = edit.Start
	}
}

// commitEditor hands the buffer to the machine
func (m *Model) commitEditor() {
	if err := m.machine.Edit(m.editor.text); err != nil {
		m.setError(err.Error())
	}
}

func (m *Model) save() tea.Cmd {
	cmd, err := m.machine.Save()
	if err != nil {
		if errors.Is(err, session.ErrInvalidTransition) {
			if ks, ok := m.machine.KeyState().(session.KeySaving); ok {
				m.setStatus(fmt.Sprintf("Saving %s...", ks.Key))
			} else {
				m.setStatus("No changes to save")
			}
			return nil
		}
		m.setError(err.Error())
		return nil
	}
	m.setStatus("Saving...")
	m.syncFromMachine()
	return m.run(cmd)
}

// handleCreateKeys handles the new key form
func (m *Model) handleCreateKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keybinds.Match(keybinds.ContextCreate, msg.String()); ok {
		switch action {
		case keybinds.ActionNextField, keybinds.ActionPrevField:
			m.createField = 1 - m.createField
			if m.createField == 0 {
				m.createKey.Focus()
			} else {
				m.createKey.Blur()
			}
			return nil
		case keybinds.ActionSubmit:
			return m.submitKey()
		case keybinds.ActionPaste:
			return readClipboard()
		case keybinds.ActionCancel:
			m.focusedPanel = focusSidebar
			return nil
		}
	}

	if _, ok := m.machine.KeyState().(session.KeyComposing); !ok {
		return nil
	}

	var cmd tea.Cmd
	if m.createField == 0 {
		if msg.String() == "enter" {
			m.createField = 1
			m.createKey.Blur()
			return nil
		}
		m.createKey, cmd = m.createKey.Update(msg)
	} else {
		m.createValue.handleKey(msg.String(), msg.Runes)
	}
	m.commitDraft()
	return cmd
}

func (m *Model) commitDraft() {
	if err := m.machine.UpdateDraft(m.createKey.Value(), m.createValue.text); err != nil {
		m.setError(err.Error())
	}
}

func (m *Model) submitKey() tea.Cmd {
	cmd, err := m.machine.SubmitKey(m.createKey.Value(), m.createValue.text)
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	m.errorMsg = ""
	m.setStatus("Creating key...")
	m.syncFromMachine()
	return m.run(cmd)
}

// paste inserts clipboard text into the focused field
func (m *Model) paste(text string) {
	if text == "" {
		return
	}

	switch m.overlay {
	case OverlayFilter:
		m.filterInput.SetValue(m.filterInput.Value() + text)
		m.filterQuery = m.filterInput.Value()
		m.clampKeyIndex()
		return
	case OverlayQuery:
		m.queryInput.SetValue(m.queryInput.Value() + text)
		return
	case OverlayNone:
	default:
		return
	}

	switch m.mode {
	case ModeConnect:
		if m.focusedPanel == focusMain && m.form.field < fieldSave {
			input := &m.form.inputs[m.form.field]
			input.SetValue(input.Value() + text)
		}
	case ModeDashboard:
		if m.focusedPanel != focusMain {
			return
		}
		switch m.machine.KeyState().(type) {
		case session.KeyReady, session.KeySaving:
			m.editor.insert(text)
			m.commitEditor()
		case session.KeyComposing:
			if m.createField == 0 {
				m.createKey.SetValue(m.createKey.Value() + text)
			} else {
				m.createValue.insert(text)
			}
			m.commitDraft()
		}
	}
}

// handleConfirmKeys handles the forget confirmation dialog
func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.matchKey(keybinds.ContextConfirm, msg)
	if !ok {
		return nil
	}
	switch action {
	case keybinds.ActionConfirm:
		m.forgetConnection()
	case keybinds.ActionCancel:
		m.forgetID = ""
		m.overlay = OverlayNone
	}
	return nil
}
