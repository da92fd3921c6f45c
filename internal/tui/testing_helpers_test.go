package tui

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/s1dash/internal/registry"
	"github.com/studiowebux/s1dash/internal/store"
	"github.com/studiowebux/s1dash/internal/types"
)

const (
	testToken   = "token"
	testBaseURL = "mem://test"
)

// CreateTestModel creates a sized Model backed by a seeded memory store
func CreateTestModel(t *testing.T, values map[string]string, saved ...types.Connection) (*Model, *registry.MemoryStore) {
	t.Helper()
	return createTestModel(t, seededOpener(values), saved...)
}

func seededOpener(values map[string]string) *store.MemoryOpener {
	opener := store.NewMemoryOpener()
	opener.Seed(testToken, testBaseURL, values)
	return opener
}

func createTestModel(t *testing.T, opener store.Opener, saved ...types.Connection) (*Model, *registry.MemoryStore) {
	t.Helper()

	local := &registry.MemoryStore{Connections: saved}
	m := New(context.Background(), Options{
		Opener:   opener,
		Registry: registry.New(local),
		Version:  "test-version",
	})

	// Static cursors keep textinput from returning blink commands
	for i := range m.form.inputs {
		m.form.inputs[i].Cursor.SetMode(cursor.CursorStatic)
	}
	m.filterInput.Cursor.SetMode(cursor.CursorStatic)
	m.createKey.Cursor.SetMode(cursor.CursorStatic)
	m.queryInput.Cursor.SetMode(cursor.CursorStatic)

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, local
}

// fillForm types a connection into the connect form
func fillForm(m *Model, name string, save bool) {
	m.form.inputs[fieldName].SetValue(name)
	m.form.inputs[fieldToken].SetValue(testToken)
	m.form.inputs[fieldBaseURL].SetValue(testBaseURL)
	m.form.save = save
	m.focusedPanel = focusMain
}

// connectTestModel returns a model on the dashboard
func connectTestModel(t *testing.T, values map[string]string) *Model {
	t.Helper()
	m, _ := CreateTestModel(t, values)
	fillForm(m, "test", true)
	settle(m, press(m, "enter"))
	AssertModelField(t, "mode", m.mode, ModeDashboard)
	return m
}

// key builds the KeyMsg for a key name as bubbletea prints it
func key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+j":
		return tea.KeyMsg{Type: tea.KeyCtrlJ}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

// press sends each key and returns the command of the last one
func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

// typeText sends text one rune at a time
func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// settle runs cmd and feeds session results back until none are left
func settle(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		cmd = nil
		if r, ok := msg.(sessionResultMsg); ok {
			_, cmd = m.Update(r)
		}
	}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
