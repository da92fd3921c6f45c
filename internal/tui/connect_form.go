package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/s1dash/internal/filter"
	"github.com/studiowebux/s1dash/internal/keybinds"
	"github.com/studiowebux/s1dash/internal/types"
)

const (
	fieldName = iota
	fieldToken
	fieldBaseURL
	fieldSave
	fieldCount
)

// connectForm is the name / token / base URL form plus the save toggle
type connectForm struct {
	inputs [fieldSave]textinput.Model
	save   bool
	field  int
	err    string
}

func newConnectForm() connectForm {
	var f connectForm

	name := textinput.New()
	name.Placeholder = "production"
	name.Prompt = "Name     "
	name.CharLimit = 120

	token := textinput.New()
	token.Placeholder = "database token"
	token.Prompt = "Token    "
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'

	baseURL := textinput.New()
	baseURL.Placeholder = types.DefaultBaseURL
	baseURL.Prompt = "Base URL "
	baseURL.CharLimit = 512
	baseURL.SetValue(types.DefaultBaseURL)

	f.inputs = [fieldSave]textinput.Model{name, token, baseURL}
	f.save = true
	f.focus(fieldName)
	return f
}

func (f *connectForm) focus(field int) {
	f.field = field
	for i := range f.inputs {
		if i == field {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *connectForm) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *connectForm) next() {
	f.focus((f.field + 1) % fieldCount)
}

func (f *connectForm) prev() {
	f.focus((f.field + fieldCount - 1) % fieldCount)
}

// fill loads a saved connection into the form
func (f *connectForm) fill(c types.Connection) {
	f.inputs[fieldName].SetValue(c.Name)
	f.inputs[fieldToken].SetValue(c.Credential)
	f.inputs[fieldBaseURL].SetValue(c.Endpoint())
	f.save = false
	f.err = ""
}

func (f *connectForm) value() types.ConnectionForm {
	return types.ConnectionForm{
		Name:       f.inputs[fieldName].Value(),
		Credential: f.inputs[fieldToken].Value(),
		BaseURL:    f.inputs[fieldBaseURL].Value(),
		Save:       f.save,
	}
}

// visibleConnections returns the saved connections after the active filter
func (m *Model) visibleConnections() []types.Connection {
	return filter.Connections(m.registry.List(), m.filterQuery)
}

func (m *Model) selectedConnection() (types.Connection, bool) {
	list := m.visibleConnections()
	if m.connIndex < 0 || m.connIndex >= len(list) {
		return types.Connection{}, false
	}
	return list[m.connIndex], true
}

// handleConnectionListKeys handles the saved connection sidebar
func (m *Model) handleConnectionListKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.matchKey(keybinds.ContextConnections, msg)
	if !ok {
		return nil
	}

	list := m.visibleConnections()

	switch action {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionOpenHelp:
		m.openHelp(keybinds.ContextConnections)
	case keybinds.ActionNavigateUp:
		if m.connIndex > 0 {
			m.connIndex--
		}
	case keybinds.ActionNavigateDown:
		if m.connIndex < len(list)-1 {
			m.connIndex++
		}
	case keybinds.ActionGoToTop, keybinds.ActionPageUp:
		m.connIndex = 0
	case keybinds.ActionGoToBottom, keybinds.ActionPageDown:
		m.connIndex = max(0, len(list)-1)
	case keybinds.ActionSwitchFocus:
		m.focusForm()
	case keybinds.ActionSelectConnection:
		if c, ok := m.selectedConnection(); ok {
			m.existingID = c.ID
			m.form.fill(c)
			m.focusForm()
		}
	case keybinds.ActionNewConnection:
		m.newConnection()
	case keybinds.ActionForgetConnection:
		if c, ok := m.selectedConnection(); ok {
			m.forgetID = c.ID
			m.overlay = OverlayConfirmForget
		}
	case keybinds.ActionFilterKeys:
		m.openFilter()
	}
	return nil
}

// handleConnectFormKeys handles the connect form
func (m *Model) handleConnectFormKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.matchKey(keybinds.ContextConnectForm, msg); ok {
		switch action {
		case keybinds.ActionNextField:
			m.form.next()
			return nil
		case keybinds.ActionPrevField:
			m.form.prev()
			return nil
		case keybinds.ActionToggleSave:
			m.toggleSave()
			return nil
		case keybinds.ActionSubmit:
			return m.submitConnectForm()
		case keybinds.ActionNewConnection:
			m.newConnection()
			return nil
		case keybinds.ActionForgetConnection:
			if m.existingID != "" {
				m.forgetID = m.existingID
				m.overlay = OverlayConfirmForget
			}
			return nil
		case keybinds.ActionPaste:
			return readClipboard()
		case keybinds.ActionCancel:
			m.form.blur()
			m.focusedPanel = focusSidebar
			return nil
		}
	}

	if m.form.field == fieldSave {
		if msg.String() == " " || msg.String() == "x" {
			m.toggleSave()
		}
		return nil
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.field], cmd = m.form.inputs[m.form.field].Update(msg)
	return cmd
}

// toggleSave flips "save connection". It is fixed for an existing connection.
func (m *Model) toggleSave() {
	if m.existingID != "" {
		return
	}
	m.form.save = !m.form.save
}

func (m *Model) focusForm() {
	m.focusedPanel = focusMain
	m.form.focus(m.form.field)
}

// newConnection clears the form and returns to Idle
func (m *Model) newConnection() {
	if m.mode == ModeError {
		if err := m.machine.GoBack(); err != nil {
			m.log.Warn().Err(err).Msg("failed to leave error screen")
			m.setError(err.Error())
			return
		}
	}
	m.existingID = ""
	m.form = newConnectForm()
	m.focusForm()
	m.syncFromMachine()
}

// submitConnectForm saves the form as configured and starts connecting
func (m *Model) submitConnectForm() tea.Cmd {
	conn, err := m.registry.Remember(m.form.value(), m.existingID)
	if err != nil {
		m.form.err = err.Error()
		return nil
	}
	m.form.err = ""

	if _, saved := m.registry.Get(conn.ID); saved {
		m.existingID = conn.ID
		m.form.save = false
	}

	m.log.Info().Str("connection", conn.Name).Str("endpoint", conn.Endpoint()).Msg("connecting")
	cmd, err := m.machine.Connect(conn)
	if err != nil {
		m.setError(err.Error())
		return nil
	}
	m.form.blur()
	m.syncFromMachine()
	return m.run(cmd)
}

// forgetConnection removes the connection awaiting confirmation
func (m *Model) forgetConnection() {
	id := m.forgetID
	m.forgetID = ""
	m.overlay = OverlayNone

	c, ok := m.registry.Get(id)
	if !ok {
		return
	}
	if err := m.registry.Forget(id); err != nil {
		m.setError(err.Error())
		return
	}
	if id == m.existingID {
		m.existingID = ""
		m.form = newConnectForm()
	}
	if n := len(m.visibleConnections()); m.connIndex >= n {
		m.connIndex = max(0, n-1)
	}
	m.setStatus(fmt.Sprintf("Forgot %s", c.Name))
}

// renderConnectForm renders the connect form panel
func (m *Model) renderConnectForm(width int) string {
	var b strings.Builder

	title := "Connect to a database"
	if c, ok := m.registry.Get(m.existingID); ok {
		title = "Connect to " + c.Name
	}
	b.WriteString(styleTitle.Render(title) + "\n\n")

	for i := range m.form.inputs {
		input := m.form.inputs[i]
		input.Width = max(10, width-12)
		b.WriteString(input.View() + "\n")
	}

	check := "[ ]"
	if m.form.save {
		check = "[x]"
	}
	toggle := check + " Save connection"
	switch {
	case m.existingID != "":
		toggle = styleSubtle.Render(toggle)
	case m.form.field == fieldSave && m.focusedPanel == focusMain:
		toggle = styleSelected.Render(toggle)
	}
	b.WriteString("\n" + toggle + "\n\n")

	submit := "Connect"
	if m.existingID != "" {
		submit = "Connect & update"
	}
	b.WriteString(styleSuccess.Render("[enter] "+submit) + "\n")
	if m.existingID != "" {
		b.WriteString(styleWarning.Render("[ctrl+f] Forget") + "  ")
	}
	b.WriteString(styleSubtle.Render("[ctrl+n] New connection"))

	if m.form.err != "" {
		b.WriteString("\n\n" + styleError.Render(m.form.err))
	}
	return b.String()
}

// renderConnectionList renders the saved connection sidebar
func (m *Model) renderConnectionList(width, height int) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Saved connections") + "\n\n")

	list := m.visibleConnections()
	if len(list) == 0 {
		if m.filterQuery != "" {
			b.WriteString(styleSubtle.Render("No match for " + m.filterQuery))
		} else {
			b.WriteString(styleSubtle.Render("No saved connections"))
		}
		return b.String()
	}

	start, end := window(len(list), m.connIndex, height-3)
	for i := start; i < end; i++ {
		c := list[i]
		line := truncate(c.Name, width-2)
		if c.ID == m.existingID {
			line = "● " + line
		} else {
			line = "  " + line
		}
		if i == m.connIndex && m.focusedPanel == focusSidebar {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
