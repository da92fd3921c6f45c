// Package registry keeps the ordered list of saved connections and writes it
// through to a LocalStore after every change.
package registry

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/studiowebux/s1dash/internal/types"
)

// ErrConnectionNotFound is returned for an unknown connection ID
var ErrConnectionNotFound = errors.New("connection not found")

// Registry is the saved connection list
type Registry struct {
	mu          sync.RWMutex
	store       LocalStore
	connections []types.Connection
}

// New loads the registry from store
func New(store LocalStore) *Registry {
	return &Registry{
		store:       store,
		connections: store.Load(),
	}
}

// NewID returns a fresh connection ID
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// List returns a copy of the connections in insertion order
func (r *Registry) List() []types.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.Connection{}, r.connections...)
}

// Get returns the connection with id
func (r *Registry) Get(id string) (types.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.connections[i], true
	}
	return types.Connection{}, false
}

// Find returns the first connection whose ID or name is ref
func (r *Registry) Find(ref string) (types.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.connections {
		if c.ID == ref || c.Name == ref {
			return c, true
		}
	}
	return types.Connection{}, false
}

// Mutate applies fn to a copy of the list, then persists and publishes the
// result. When fn fails nothing changes.
func (r *Registry) Mutate(fn func([]types.Connection) ([]types.Connection, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(append([]types.Connection{}, r.connections...))
	if err != nil {
		return err
	}
	if err := r.store.Save(next); err != nil {
		return fmt.Errorf("failed to save connections: %w", err)
	}
	r.connections = next
	return nil
}

// Add appends conn, assigning an ID when it has none
func (r *Registry) Add(conn types.Connection) (types.Connection, error) {
	if err := conn.Validate(); err != nil {
		return types.Connection{}, err
	}
	if conn.ID == "" {
		conn.ID = NewID()
	}

	err := r.Mutate(func(list []types.Connection) ([]types.Connection, error) {
		for _, c := range list {
			if c.ID == conn.ID {
				return nil, fmt.Errorf("connection already exists: %s", conn.ID)
			}
		}
		return append(list, conn), nil
	})
	return conn, err
}

// Replace swaps the connection with id for conn at the same index.
// The ID is kept.
func (r *Registry) Replace(id string, conn types.Connection) (types.Connection, error) {
	if err := conn.Validate(); err != nil {
		return types.Connection{}, err
	}
	conn.ID = id

	err := r.Mutate(func(list []types.Connection) ([]types.Connection, error) {
		for i := range list {
			if list[i].ID == id {
				list[i] = conn
				return list, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
	})
	return conn, err
}

// Forget removes the connection with id
func (r *Registry) Forget(id string) error {
	return r.Mutate(func(list []types.Connection) ([]types.Connection, error) {
		for i := range list {
			if list[i].ID == id {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
	})
}

// Remember resolves a submitted connect form into the connection to open.
// With an existing ID the saved entry is updated in place; otherwise the
// connection is appended when the form asks to save it, and left unsaved
// when it does not.
func (r *Registry) Remember(form types.ConnectionForm, existingID string) (types.Connection, error) {
	if existingID != "" {
		return r.Replace(existingID, form.Connection(existingID))
	}

	conn := form.Connection(NewID())
	if err := conn.Validate(); err != nil {
		return types.Connection{}, err
	}
	if !form.Save {
		return conn, nil
	}
	return r.Add(conn)
}

func (r *Registry) index(id string) int {
	for i := range r.connections {
		if r.connections[i].ID == id {
			return i
		}
	}
	return -1
}
