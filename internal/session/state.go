package session

import (
	"github.com/studiowebux/s1dash/internal/store"
	"github.com/studiowebux/s1dash/internal/types"
)

// State is a connection-level state. The set of implementations is closed.
type State interface {
	isState()
}

// Idle means no session is open
type Idle struct{}

// Connecting means an open call is in flight
type Connecting struct {
	Connection types.Connection
}

// Connected means a session is open and the key listing is current
type Connected struct {
	*Session
}

// Refreshing is Connected with a listing refresh in flight
type Refreshing struct {
	*Session
}

// Failed means the last connect or retry failed
type Failed struct {
	Connection types.Connection
	Err        error
}

// Retrying is Failed with a retry in flight
type Retrying struct {
	Connection types.Connection
	Err        error
}

func (Idle) isState()       {}
func (Connecting) isState() {}
func (Connected) isState()  {}
func (Refreshing) isState() {}
func (Failed) isState()     {}
func (Retrying) isState()   {}

// Session is the data shared by Connected and Refreshing. The key machine
// lives here so a refresh does not disturb it.
type Session struct {
	Connection types.Connection
	Client     store.Client
	Keys       []string
	Key        KeyMachine
}

// KeyMachine is the nested per-key state machine of a session
type KeyMachine struct {
	State KeyState

	// Notice is the last key-level error, shown inline until dismissed
	Notice error

	gen uint64
}

// KeyState is a key-level state. The set of implementations is closed.
type KeyState interface {
	isKeyState()
}

// KeyEmpty means no key is selected
type KeyEmpty struct{}

// KeyComposing is the new-key form
type KeyComposing struct {
	Key   string
	Value string
}

// KeySubmitting means a new key is being written
type KeySubmitting struct {
	Key   string
	Value string
}

// KeyLoading means a value is being fetched
type KeyLoading struct {
	Key string
}

// KeyReady is the edit buffer. Value is the display form.
type KeyReady struct {
	Key   string
	Value string
	Dirty bool
}

// KeySaving is KeyReady with a write in flight. The buffer stays editable.
type KeySaving struct {
	Key   string
	Value string
	Dirty bool
}

// KeyDeleting means a delete is in flight
type KeyDeleting struct {
	Key string

	// restore is the buffer to return to if the delete fails
	restore KeyReady
}

func (KeyEmpty) isKeyState()      {}
func (KeyComposing) isKeyState()  {}
func (KeySubmitting) isKeyState() {}
func (KeyLoading) isKeyState()    {}
func (KeyReady) isKeyState()      {}
func (KeySaving) isKeyState()     {}
func (KeyDeleting) isKeyState()   {}

// StateName returns a short label for s, used in logs and the status bar
func StateName(s State) string {
	switch s.(type) {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Refreshing:
		return "refreshing"
	case Failed:
		return "failed"
	case Retrying:
		return "retrying"
	default:
		return "unknown"
	}
}

// KeyStateName returns a short label for s
func KeyStateName(s KeyState) string {
	switch s.(type) {
	case KeyEmpty:
		return "empty"
	case KeyComposing:
		return "composing"
	case KeySubmitting:
		return "submitting"
	case KeyLoading:
		return "loading"
	case KeyReady:
		return "ready"
	case KeySaving:
		return "saving"
	case KeyDeleting:
		return "deleting"
	default:
		return "unknown"
	}
}

// Pending reports whether s is waiting on the store
func Pending(s State) bool {
	switch s.(type) {
	case Connecting, Refreshing, Retrying:
		return true
	default:
		return false
	}
}

// KeyPending reports whether s is waiting on the store. KeySaving is not
// counted: the editor stays usable while a save runs.
func KeyPending(s KeyState) bool {
	switch s.(type) {
	case KeySubmitting, KeyLoading, KeyDeleting:
		return true
	default:
		return false
	}
}
