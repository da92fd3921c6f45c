package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/s1dash/internal/bookmarks"
	"github.com/studiowebux/s1dash/internal/keybinds"
	"github.com/studiowebux/s1dash/internal/logging"
	"github.com/studiowebux/s1dash/internal/registry"
	"github.com/studiowebux/s1dash/internal/session"
	"github.com/studiowebux/s1dash/internal/store"
)

// Options wire the TUI to its collaborators
type Options struct {
	Opener    store.Opener
	Registry  *registry.Registry
	Keybinds  *keybinds.Registry // Defaults when nil
	Bookmarks *bookmarks.Manager // Saved queries, optional
	Version   string
}

// New creates a new TUI model in the connect screen
func New(ctx context.Context, opts Options) *Model {
	kb := opts.Keybinds
	if kb == nil {
		kb = keybinds.NewDefaultRegistry()
	}

	filterInput := textinput.New()
	filterInput.Prompt = "/ "
	filterInput.Placeholder = "fuzzy filter"

	createKey := textinput.New()
	createKey.Prompt = "Key "
	createKey.Placeholder = "my-key"
	createKey.CharLimit = 512

	queryInput := textinput.New()
	queryInput.Prompt = "> "
	queryInput.Placeholder = "JMESPath expression, e.g. items[].name"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleTitle

	m := &Model{
		machine:      session.NewMachine(opts.Opener),
		registry:     opts.Registry,
		keybinds:     kb,
		ctx:          ctx,
		log:          logging.With("tui"),
		version:      opts.Version,
		mode:         ModeConnect,
		focusedPanel: focusMain,
		form:         newConnectForm(),
		editor:       newBuffer(""),
		createValue:  newBuffer(""),
		filterInput:  filterInput,
		createKey:    createKey,
		queryInput:   queryInput,
		bookmarks:    opts.Bookmarks,
		bookmarkPos:  -1,
		queryView:    viewport.New(80, 20),
		helpView:     viewport.New(80, 20),
		spinner:      sp,
	}

	// Start on the list when there is something to pick from
	if len(m.registry.List()) > 0 {
		m.focusedPanel = focusSidebar
		m.form.blur()
	}
	return m
}

// Run starts the TUI and blocks until it exits
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	// Release the session, if any
	m.machine.Disconnect()
	return err
}
