package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/studiowebux/s1dash/internal/logging"
	"github.com/studiowebux/s1dash/internal/store"
	"github.com/studiowebux/s1dash/internal/types"
)

// ErrInvalidTransition is returned when an operation is not allowed in the
// current state
var ErrInvalidTransition = errors.New("operation not allowed in current state")

// Cmd is an async call against the store. It must not touch the Machine.
type Cmd func(ctx context.Context) Result

// Result is the outcome of a Cmd, handed back to Machine.Apply
type Result interface {
	isResult()
}

// Machine is the connection state machine. It is not safe for concurrent
// use; Cmds are.
type Machine struct {
	opener store.Opener
	state  State

	seq uint64 // last generation handed out
	gen uint64 // generation of state

	log zerolog.Logger
}

// NewMachine creates a machine in Idle
func NewMachine(opener store.Opener) *Machine {
	m := &Machine{
		opener: opener,
		state:  Idle{},
		log:    logging.With("session"),
	}
	m.gen = m.next()
	return m
}

// State returns the current connection state
func (m *Machine) State() State {
	return m.state
}

// Session returns the open session, if any
func (m *Machine) Session() (*Session, bool) {
	switch s := m.state.(type) {
	case Connected:
		return s.Session, true
	case Refreshing:
		return s.Session, true
	default:
		return nil, false
	}
}

// Connection returns the connection the current state refers to
func (m *Machine) Connection() (types.Connection, bool) {
	switch s := m.state.(type) {
	case Connecting:
		return s.Connection, true
	case Connected:
		return s.Connection, true
	case Refreshing:
		return s.Connection, true
	case Failed:
		return s.Connection, true
	case Retrying:
		return s.Connection, true
	default:
		return types.Connection{}, false
	}
}

func (m *Machine) next() uint64 {
	m.seq++
	return m.seq
}

func (m *Machine) transition(s State) uint64 {
	m.log.Debug().
		Str("from", StateName(m.state)).
		Str("to", StateName(s)).
		Msg("transition")
	m.state = s
	m.gen = m.next()
	return m.gen
}

type connectResult struct {
	gen    uint64
	client store.Client
	keys   []string
	err    error
}

type refreshResult struct {
	gen  uint64
	keys []string
	err  error
}

func (connectResult) isResult() {}
func (refreshResult) isResult() {}

// Connect opens a session for conn. It is rejected while a session is open.
func (m *Machine) Connect(conn types.Connection) (Cmd, error) {
	switch m.state.(type) {
	case Idle, Connecting, Failed, Retrying:
	default:
		return nil, fmt.Errorf("connect from %s: %w", StateName(m.state), ErrInvalidTransition)
	}

	gen := m.transition(Connecting{Connection: conn})
	return m.openCmd(gen, conn), nil
}

// Retry re-runs the failed connect. A retry already in flight is left alone.
func (m *Machine) Retry() (Cmd, error) {
	switch s := m.state.(type) {
	case Failed:
		gen := m.transition(Retrying{Connection: s.Connection, Err: s.Err})
		return m.openCmd(gen, s.Connection), nil
	case Retrying:
		return nil, nil
	default:
		return nil, fmt.Errorf("retry from %s: %w", StateName(m.state), ErrInvalidTransition)
	}
}

func (m *Machine) openCmd(gen uint64, conn types.Connection) Cmd {
	opener := m.opener
	return func(ctx context.Context) Result {
		client, err := opener.Open(ctx, conn.Credential, conn.Endpoint())
		if err != nil {
			return connectResult{gen: gen, err: err}
		}
		keys, err := client.ListKeys(ctx)
		if err != nil {
			store.Close(client)
			return connectResult{gen: gen, err: &store.ConnectionError{Endpoint: conn.Endpoint(), Err: err}}
		}
		return connectResult{gen: gen, client: client, keys: keys}
	}
}

// Refresh re-fetches the key listing. The key machine is left as it is.
func (m *Machine) Refresh() (Cmd, error) {
	switch s := m.state.(type) {
	case Connected:
		gen := m.transition(Refreshing{Session: s.Session})
		client := s.Client
		return func(ctx context.Context) Result {
			keys, err := client.ListKeys(ctx)
			return refreshResult{gen: gen, keys: keys, err: err}
		}, nil
	case Refreshing:
		return nil, nil
	default:
		return nil, fmt.Errorf("refresh from %s: %w", StateName(m.state), ErrInvalidTransition)
	}
}

// Disconnect returns to Idle from any state and closes the session client.
// Requests in flight are not cancelled; their results are dropped.
func (m *Machine) Disconnect() {
	if sess, ok := m.Session(); ok {
		m.closeClient(sess.Client)
	}
	m.transition(Idle{})
}

// GoBack leaves the error screen
func (m *Machine) GoBack() error {
	switch m.state.(type) {
	case Failed, Retrying:
		m.transition(Idle{})
		return nil
	default:
		return fmt.Errorf("go back from %s: %w", StateName(m.state), ErrInvalidTransition)
	}
}

// Apply applies r if it still belongs to the live state and reports whether
// it did
func (m *Machine) Apply(r Result) bool {
	switch r := r.(type) {
	case connectResult:
		return m.applyConnect(r)
	case refreshResult:
		return m.applyRefresh(r)
	case loadResult:
		return m.applyLoad(r)
	case submitResult:
		return m.applySubmit(r)
	case saveResult:
		return m.applySave(r)
	case deleteResult:
		return m.applyDelete(r)
	default:
		return false
	}
}

func (m *Machine) applyConnect(r connectResult) bool {
	if r.gen != m.gen {
		m.log.Debug().Uint64("gen", r.gen).Uint64("live", m.gen).Msg("discarding stale connect result")
		if r.client != nil {
			m.closeClient(r.client)
		}
		return false
	}

	conn, _ := m.Connection()
	if r.err != nil {
		m.log.Warn().Err(r.err).Str("connection", conn.Name).Msg("connect failed")
		m.transition(Failed{Connection: conn, Err: r.err})
		return true
	}

	m.log.Info().Str("connection", conn.Name).Int("keys", len(r.keys)).Msg("connected")
	sess := &Session{
		Connection: conn,
		Client:     r.client,
		Keys:       r.keys,
		Key:        KeyMachine{State: KeyEmpty{}, gen: m.next()},
	}
	m.transition(Connected{Session: sess})
	return true
}

func (m *Machine) applyRefresh(r refreshResult) bool {
	if r.gen != m.gen {
		return false
	}
	s, ok := m.state.(Refreshing)
	if !ok {
		return false
	}

	if r.err != nil {
		m.log.Warn().Err(r.err).Msg("refresh failed")
		s.Key.Notice = r.err
	} else {
		s.Keys = r.keys
	}
	m.transition(Connected{Session: s.Session})
	return true
}

func (m *Machine) closeClient(c store.Client) {
	if err := store.Close(c); err != nil {
		m.log.Warn().Err(err).Msg("failed to close client")
	}
}
