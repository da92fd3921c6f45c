package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/studiowebux/s1dash/internal/bookmarks"
	"github.com/studiowebux/s1dash/internal/keybinds"
	"github.com/studiowebux/s1dash/internal/registry"
	"github.com/studiowebux/s1dash/internal/session"
)

// Mode is the screen shown for the connection state
type Mode int

const (
	ModeConnect    Mode = iota // Saved connections + connect form
	ModeConnecting             // Session opening
	ModeError                  // Connect failed
	ModeDashboard              // Key list + editor
)

// Overlay is a modal drawn over the current screen
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayFilter
	OverlayQuery
	OverlayConfirmForget
)

const (
	focusSidebar = "sidebar"
	focusMain    = "main"
)

// Model represents the TUI state
type Model struct {
	// Core state
	machine  *session.Machine
	registry *registry.Registry
	keybinds *keybinds.Registry
	ctx      context.Context
	log      zerolog.Logger
	version  string

	mode         Mode
	overlay      Overlay
	focusedPanel string // "sidebar" or "main"

	// Connection list and form (ModeConnect)
	connIndex  int
	existingID string // ID of the saved connection loaded into the form
	form       connectForm
	forgetID   string // Connection awaiting forget confirmation

	// Key list (ModeDashboard)
	keyIndex    int
	filterInput textinput.Model
	filterQuery string

	// Value editor
	editor    buffer
	editorKey string // Key the buffer was loaded for

	// New key form
	createKey   textinput.Model
	createValue buffer
	createField int // 0=key, 1=value

	// Query overlay
	queryInput  textinput.Model
	queryView   viewport.Model
	queryResult string
	queryError  string
	bookmarks   *bookmarks.Manager // nil disables saved queries
	bookmarkPos int                // Position while cycling saved queries, -1 when none

	helpView    viewport.Model
	helpContext keybinds.Context
	spinner     spinner.Model

	// UI state
	width     int
	height    int
	statusMsg string
	errorMsg  string
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewports()

	case sessionResultMsg:
		if m.machine.Apply(msg.result) {
			m.syncFromMachine()
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)

	case clipboardMsg:
		if msg.err != nil {
			m.setError("Clipboard: " + msg.err.Error())
		} else {
			m.setStatus(msg.status)
		}

	case pasteMsg:
		m.paste(msg.text)
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.overlay {
	case OverlayHelp:
		return m.renderHelp()
	case OverlayQuery:
		return m.renderQuery()
	case OverlayConfirmForget:
		return m.renderConfirmForget()
	}

	switch m.mode {
	case ModeConnecting:
		return m.renderConnecting()
	case ModeError:
		return m.renderError()
	default:
		return m.renderMain()
	}
}

// Custom message types
type sessionResultMsg struct {
	result session.Result
}

type clipboardMsg struct {
	status string
	err    error
}

type pasteMsg struct {
	text string
}

// run turns a session command into a tea command
func (m *Model) run(cmd session.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return sessionResultMsg{result: cmd(ctx)}
	}
}

// syncFromMachine aligns screen, focus and buffers with the machine state
func (m *Model) syncFromMachine() {
	prev := m.mode
	switch m.machine.State().(type) {
	case session.Idle:
		m.mode = ModeConnect
	case session.Connecting:
		m.mode = ModeConnecting
	case session.Failed, session.Retrying:
		m.mode = ModeError
	case session.Connected, session.Refreshing:
		if m.mode != ModeDashboard {
			m.mode = ModeDashboard
			m.focusedPanel = focusSidebar
			m.keyIndex = 0
		}
	}
	if m.mode != prev {
		m.filterQuery = ""
		m.filterInput.SetValue("")
	}

	if m.mode != ModeDashboard {
		if m.overlay == OverlayFilter || m.overlay == OverlayQuery {
			m.overlay = OverlayNone
		}
		m.editorKey = ""
		return
	}

	m.clampKeyIndex()

	switch ks := m.machine.KeyState().(type) {
	case session.KeyReady:
		m.loadEditor(ks.Key, ks.Value)
	case session.KeySaving:
		m.loadEditor(ks.Key, ks.Value)
	case session.KeyComposing:
		if m.createKey.Value() != ks.Key {
			m.createKey.SetValue(ks.Key)
		}
		if m.createValue.text != ks.Value {
			m.createValue.setText(ks.Value)
		}
		m.editorKey = ""
	default:
		m.editorKey = ""
	}

	if err := m.machine.Notice(); err != nil {
		m.setError(err.Error())
	}
}

// loadEditor resets the buffer when the machine holds a value the editor
// has not seen. Edits always go through the machine, so a mismatch means
// a fresh load.
func (m *Model) loadEditor(key, value string) {
	if m.editorKey == key && m.editor.text == value {
		return
	}
	if m.editorKey != key {
		m.editor = newBuffer(value)
	} else {
		m.editor.setText(value)
	}
	m.editorKey = key
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.errorMsg = ""
}

func (m *Model) setError(msg string) {
	m.errorMsg = msg
}
