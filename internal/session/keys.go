package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studiowebux/s1dash/internal/format"
	"github.com/studiowebux/s1dash/internal/textedit"
)

var (
	// ErrNotConnected is returned by key operations outside a session
	ErrNotConnected = errors.New("not connected")

	// ErrKeyRequired rejects a new key with an empty name
	ErrKeyRequired = errors.New("key is required")

	// ErrValueRequired rejects a new key with an empty value
	ErrValueRequired = errors.New("value is required")
)

type loadResult struct {
	gen uint64
	key string
	raw string
	err error
}

type submitResult struct {
	gen      uint64
	key      string
	value    string
	writeErr error
	keys     []string
	listErr  error
}

type saveResult struct {
	gen uint64
	err error
}

type deleteResult struct {
	gen     uint64
	err     error
	keys    []string
	listErr error
}

func (loadResult) isResult()   {}
func (submitResult) isResult() {}
func (saveResult) isResult()   {}
func (deleteResult) isResult() {}

// KeyState returns the key machine state, KeyEmpty outside a session
func (m *Machine) KeyState() KeyState {
	sess, ok := m.Session()
	if !ok {
		return KeyEmpty{}
	}
	return sess.Key.State
}

// Notice returns the last key-level error, nil when there is none
func (m *Machine) Notice() error {
	sess, ok := m.Session()
	if !ok {
		return nil
	}
	return sess.Key.Notice
}

// DismissNotice clears the key-level error
func (m *Machine) DismissNotice() {
	if sess, ok := m.Session(); ok {
		sess.Key.Notice = nil
	}
}

func (m *Machine) keyTransition(sess *Session, s KeyState) uint64 {
	m.log.Debug().
		Str("from", KeyStateName(sess.Key.State)).
		Str("to", KeyStateName(s)).
		Msg("key transition")
	sess.Key.State = s
	sess.Key.gen = m.next()
	return sess.Key.gen
}

// liveKey returns the session whose key machine is at gen
func (m *Machine) liveKey(gen uint64) (*Session, bool) {
	sess, ok := m.Session()
	if !ok || sess.Key.gen != gen {
		m.log.Debug().Uint64("gen", gen).Msg("discarding stale key result")
		return nil, false
	}
	return sess, true
}

// SelectKey loads key into the editor. Allowed from any key state.
func (m *Machine) SelectKey(key string) (Cmd, error) {
	sess, ok := m.Session()
	if !ok {
		return nil, ErrNotConnected
	}

	gen := m.keyTransition(sess, KeyLoading{Key: key})
	client := sess.Client
	return func(ctx context.Context) Result {
		raw, err := client.ReadRaw(ctx, key)
		return loadResult{gen: gen, key: key, raw: raw, err: err}
	}, nil
}

func (m *Machine) applyLoad(r loadResult) bool {
	sess, ok := m.liveKey(r.gen)
	if !ok {
		return false
	}
	if r.err != nil {
		m.log.Warn().Err(r.err).Str("key", r.key).Msg("load failed")
		sess.Key.Notice = r.err
		m.keyTransition(sess, KeyEmpty{})
		return true
	}
	m.keyTransition(sess, KeyReady{Key: r.key, Value: format.Pretty(r.raw)})
	return true
}

// NewKey opens the new-key form
func (m *Machine) NewKey() error {
	sess, ok := m.Session()
	if !ok {
		return ErrNotConnected
	}
	m.keyTransition(sess, KeyComposing{})
	return nil
}

// UpdateDraft edits the new-key form in place
func (m *Machine) UpdateDraft(key, value string) error {
	sess, ok := m.Session()
	if !ok {
		return ErrNotConnected
	}
	if _, ok := sess.Key.State.(KeyComposing); !ok {
		return fmt.Errorf("update draft while %s: %w", KeyStateName(sess.Key.State), ErrInvalidTransition)
	}
	sess.Key.State = KeyComposing{Key: key, Value: value}
	return nil
}

// SubmitKey writes a new key verbatim and refreshes the listing
func (m *Machine) SubmitKey(key, value string) (Cmd, error) {
	sess, ok := m.Session()
	if !ok {
		return nil, ErrNotConnected
	}
	if _, ok := sess.Key.State.(KeyComposing); !ok {
		return nil, fmt.Errorf("submit while %s: %w", KeyStateName(sess.Key.State), ErrInvalidTransition)
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrKeyRequired
	}
	if value == "" {
		return nil, ErrValueRequired
	}

	gen := m.keyTransition(sess, KeySubmitting{Key: key, Value: value})
	client := sess.Client
	return func(ctx context.Context) Result {
		r := submitResult{gen: gen, key: key, value: value}
		if r.writeErr = client.WriteRaw(ctx, key, value); r.writeErr != nil {
			return r
		}
		r.keys, r.listErr = client.ListKeys(ctx)
		return r
	}, nil
}

func (m *Machine) applySubmit(r submitResult) bool {
	sess, ok := m.liveKey(r.gen)
	if !ok {
		return false
	}
	if r.writeErr != nil {
		m.log.Warn().Err(r.writeErr).Str("key", r.key).Msg("create failed")
		sess.Key.Notice = r.writeErr
		m.keyTransition(sess, KeyComposing{Key: r.key, Value: r.value})
		return true
	}
	if r.listErr != nil {
		sess.Key.Notice = r.listErr
	} else {
		sess.Keys = r.keys
	}
	m.keyTransition(sess, KeyReady{Key: r.key, Value: format.Pretty(r.value)})
	return true
}

// Edit replaces the editor buffer and marks it dirty. It does not change
// the generation, so a save in flight still lands.
func (m *Machine) Edit(value string) error {
	sess, ok := m.Session()
	if !ok {
		return ErrNotConnected
	}
	switch s := sess.Key.State.(type) {
	case KeyReady:
		sess.Key.State = KeyReady{Key: s.Key, Value: value, Dirty: true}
	case KeySaving:
		sess.Key.State = KeySaving{Key: s.Key, Value: value, Dirty: true}
	default:
		return fmt.Errorf("edit while %s: %w", KeyStateName(sess.Key.State), ErrInvalidTransition)
	}
	return nil
}

// EditTab applies indent or outdent to the editor buffer at the given
// selection. An outdent with nothing to remove leaves the buffer clean.
func (m *Machine) EditTab(start, end int, shift bool) (textedit.Edit, error) {
	sess, ok := m.Session()
	if !ok {
		return textedit.Edit{}, ErrNotConnected
	}

	var value string
	switch s := sess.Key.State.(type) {
	case KeyReady:
		value = s.Value
	case KeySaving:
		value = s.Value
	default:
		return textedit.Edit{}, fmt.Errorf("edit while %s: %w", KeyStateName(sess.Key.State), ErrInvalidTransition)
	}

	edit := textedit.HandleTab(value, start, end, shift)
	if !edit.Changed {
		return edit, nil
	}
	return edit, m.Edit(edit.Text)
}

// Save writes the buffer in raw form. Only a dirty buffer can be saved.
func (m *Machine) Save() (Cmd, error) {
	sess, ok := m.Session()
	if !ok {
		return nil, ErrNotConnected
	}
	s, ok := sess.Key.State.(KeyReady)
	if !ok || !s.Dirty {
		return nil, fmt.Errorf("save while %s: %w", KeyStateName(sess.Key.State), ErrInvalidTransition)
	}

	gen := m.keyTransition(sess, KeySaving{Key: s.Key, Value: s.Value, Dirty: s.Dirty})
	client := sess.Client
	key, raw := s.Key, format.Raw(s.Value)
	return func(ctx context.Context) Result {
		return saveResult{gen: gen, err: client.WriteRaw(ctx, key, raw)}
	}, nil
}

func (m *Machine) applySave(r saveResult) bool {
	sess, ok := m.liveKey(r.gen)
	if !ok {
		return false
	}
	s, ok := sess.Key.State.(KeySaving)
	if !ok {
		return false
	}

	if r.err != nil {
		m.log.Warn().Err(r.err).Str("key", s.Key).Msg("save failed")
		sess.Key.Notice = r.err
		m.keyTransition(sess, KeyReady{Key: s.Key, Value: s.Value, Dirty: true})
		return true
	}
	m.keyTransition(sess, KeyReady{Key: s.Key, Value: s.Value, Dirty: false})
	return true
}

// Delete removes the selected key and refreshes the listing. A save in
// flight is superseded.
func (m *Machine) Delete() (Cmd, error) {
	sess, ok := m.Session()
	if !ok {
		return nil, ErrNotConnected
	}

	var restore KeyReady
	switch s := sess.Key.State.(type) {
	case KeyReady:
		restore = s
	case KeySaving:
		restore = KeyReady{Key: s.Key, Value: s.Value, Dirty: s.Dirty}
	default:
		return nil, fmt.Errorf("delete while %s: %w", KeyStateName(sess.Key.State), ErrInvalidTransition)
	}

	gen := m.keyTransition(sess, KeyDeleting{Key: restore.Key, restore: restore})
	client := sess.Client
	key := restore.Key
	return func(ctx context.Context) Result {
		r := deleteResult{gen: gen}
		if r.err = client.DeleteKey(ctx, key); r.err != nil {
			return r
		}
		r.keys, r.listErr = client.ListKeys(ctx)
		return r
	}, nil
}

func (m *Machine) applyDelete(r deleteResult) bool {
	sess, ok := m.liveKey(r.gen)
	if !ok {
		return false
	}
	s, ok := sess.Key.State.(KeyDeleting)
	if !ok {
		return false
	}

	if r.err != nil {
		m.log.Warn().Err(r.err).Str("key", s.Key).Msg("delete failed")
		sess.Key.Notice = r.err
		m.keyTransition(sess, s.restore)
		return true
	}
	if r.listErr != nil {
		sess.Key.Notice = r.listErr
	} else {
		sess.Keys = r.keys
	}
	m.keyTransition(sess, KeyEmpty{})
	return true
}
