package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog"
	"github.com/studiowebux/s1dash/internal/activity"
	"github.com/studiowebux/s1dash/internal/filter"
	"github.com/studiowebux/s1dash/internal/format"
	"github.com/studiowebux/s1dash/internal/logging"
	"github.com/studiowebux/s1dash/internal/registry"
	"github.com/studiowebux/s1dash/internal/store"
	"github.com/studiowebux/s1dash/internal/types"
)

// App runs the scripting commands against saved connections
type App struct {
	Registry *registry.Registry
	Opener   store.Opener
	Out      io.Writer
	In       io.Reader

	// ActivityLog backs the activity command; nil when unavailable
	ActivityLog *activity.Manager

	// Select picks a connection when none is named; nil disables prompting
	Select func(connections []types.Connection) (types.Connection, error)

	log zerolog.Logger
}

// New creates an App writing to stdout and reading from stdin
func New(reg *registry.Registry, opener store.Opener) *App {
	app := &App{
		Registry: reg,
		Opener:   opener,
		Out:      os.Stdout,
		In:       os.Stdin,
		log:      logging.With("cli"),
	}
	if isInteractive() {
		app.Select = promptForConnection
	}
	return app
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// resolve finds a saved connection by ID or name, prompting when ref is empty
func (a *App) resolve(ref string) (types.Connection, error) {
	if ref != "" {
		conn, ok := a.Registry.Find(ref)
		if !ok {
			return types.Connection{}, fmt.Errorf("%w: %s", registry.ErrConnectionNotFound, ref)
		}
		return conn, nil
	}

	connections := a.Registry.List()
	switch {
	case len(connections) == 0:
		return types.Connection{}, errors.New("no saved connections, add one with 'connections add'")
	case len(connections) == 1:
		return connections[0], nil
	case a.Select == nil:
		return types.Connection{}, errors.New("connection name is required")
	}
	return a.Select(connections)
}

// open resolves ref and opens a session on it
func (a *App) open(ctx context.Context, ref string) (store.Client, types.Connection, error) {
	conn, err := a.resolve(ref)
	if err != nil {
		return nil, types.Connection{}, err
	}

	a.log.Debug().Str("connection", conn.Name).Str("endpoint", conn.Endpoint()).Msg("opening session")
	client, err := a.Opener.Open(ctx, conn.Credential, conn.Endpoint())
	if err != nil {
		return nil, conn, err
	}
	return client, conn, nil
}

func (a *App) close(client store.Client) {
	if err := store.Close(client); err != nil {
		a.log.Warn().Err(err).Msg("failed to close session")
	}
}

// ListConnections prints the saved connections. Tokens are never printed.
func (a *App) ListConnections() error {
	connections := a.Registry.List()
	if len(connections) == 0 {
		fmt.Fprintln(a.Out, "No saved connections")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("NAME", "ID", "ENDPOINT")
	for _, c := range connections {
		t.Row(c.Name, c.ID, c.Endpoint())
	}
	_, err := fmt.Fprintln(a.Out, t.Render())
	return err
}

// AddConnection saves a new connection
func (a *App) AddConnection(form types.ConnectionForm) (types.Connection, error) {
	form.Save = true
	conn, err := a.Registry.Remember(form, "")
	if err != nil {
		return types.Connection{}, err
	}
	fmt.Fprintf(a.Out, "Saved %s (%s)\n", conn.Name, conn.ID)
	return conn, nil
}

// ForgetConnection removes a saved connection by ID or name
func (a *App) ForgetConnection(ref string) error {
	conn, ok := a.Registry.Find(ref)
	if !ok {
		return fmt.Errorf("%w: %s", registry.ErrConnectionNotFound, ref)
	}
	if err := a.Registry.Forget(conn.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Forgot %s\n", conn.Name)
	return nil
}

// Keys prints the key listing, fuzzy filtered when pattern is set
func (a *App) Keys(ctx context.Context, ref, pattern string) error {
	client, _, err := a.open(ctx, ref)
	if err != nil {
		return err
	}
	defer a.close(client)

	keys, err := client.ListKeys(ctx)
	if err != nil {
		return err
	}
	for _, match := range filter.Keys(keys, pattern) {
		fmt.Fprintln(a.Out, match.Key)
	}
	return nil
}

// GetOptions contains options for printing a value
type GetOptions struct {
	Pretty bool   // Indent JSON values
	Filter string // JMESPath filter expression
	Query  string // JMESPath query or $(shell command)
}

// Get prints the value of key
func (a *App) Get(ctx context.Context, ref, key string, opts GetOptions) error {
	client, _, err := a.open(ctx, ref)
	if err != nil {
		return err
	}
	defer a.close(client)

	value, err := client.ReadRaw(ctx, key)
	if err != nil {
		return err
	}

	value, err = filter.Eval(ctx, value, opts.Filter, opts.Query)
	if err != nil {
		return err
	}
	if opts.Pretty {
		value = format.Pretty(value)
	}

	fmt.Fprintln(a.Out, value)
	return nil
}

// SetOptions contains options for writing a value
type SetOptions struct {
	Compact bool // Strip JSON formatting before writing
}

// Set writes value to key. A value of "-" is read from In.
func (a *App) Set(ctx context.Context, ref, key, value string, opts SetOptions) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}
	if value == "-" {
		data, err := io.ReadAll(a.In)
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
		value = strings.TrimSuffix(string(data), "\n")
	}
	if value == "" {
		return errors.New("value is required")
	}
	if opts.Compact {
		value = format.Raw(value)
	}

	client, conn, err := a.open(ctx, ref)
	if err != nil {
		return err
	}
	defer a.close(client)

	if err := client.WriteRaw(ctx, key, value); err != nil {
		return err
	}
	a.log.Info().Str("connection", conn.Name).Str("key", key).Msg("key written")
	return nil
}

// Delete removes key
func (a *App) Delete(ctx context.Context, ref, key string) error {
	client, conn, err := a.open(ctx, ref)
	if err != nil {
		return err
	}
	defer a.close(client)

	if err := client.DeleteKey(ctx, key); err != nil {
		return err
	}
	a.log.Info().Str("connection", conn.Name).Str("key", key).Msg("key deleted")
	return nil
}
