package session

import (
	"context"
	"errors"
	"testing"

	"github.com/studiowebux/s1dash/internal/store"
)

func readyKey(t *testing.T, m *Machine) KeyReady {
	t.Helper()
	ready, ok := m.KeyState().(KeyReady)
	if !ok {
		t.Fatalf("expected KeyReady, got %s", KeyStateName(m.KeyState()))
	}
	return ready
}

func TestConnectListEditSave(t *testing.T) {
	m, opener := connected(t, map[string]string{"a": "1", "b": "x"})

	cmd, err := m.SelectKey("a")
	if _, ok := m.KeyState().(KeyLoading); !ok {
		t.Fatalf("expected KeyLoading, got %s", KeyStateName(m.KeyState()))
	}
	run(t, m, cmd, err)

	ready := readyKey(t, m)
	if ready.Value != "1" || ready.Dirty {
		t.Fatalf("got %+v, want value 1 clean", ready)
	}

	if err := m.Edit("2"); err != nil {
		t.Fatal(err)
	}
	if !readyKey(t, m).Dirty {
		t.Error("edit should mark the buffer dirty")
	}

	cmd, err = m.Save()
	run(t, m, cmd, err)

	ready = readyKey(t, m)
	if ready.Dirty {
		t.Error("save should clear dirty")
	}
	if ready.Value != "2" {
		t.Errorf("value: got %q, want %q", ready.Value, "2")
	}

	raw, err := opener.last().ReadRaw(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if raw != "2" {
		t.Errorf("stored value: got %q, want %q", raw, "2")
	}
}

func TestSelectKeyFormatsJSON(t *testing.T) {
	m, _ := connected(t, map[string]string{"doc": `{"a":[1,2]}`})

	cmd, err := m.SelectKey("doc")
	run(t, m, cmd, err)

	want := "{\n  \"a\": [\n    1,\n    2\n  ]\n}"
	if got := readyKey(t, m).Value; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSaveWritesRawForm(t *testing.T) {
	m, opener := connected(t, map[string]string{"doc": `{"a":1}`})

	cmd, err := m.SelectKey("doc")
	run(t, m, cmd, err)
	if err := m.Edit("{\n  \"a\": 2\n}"); err != nil {
		t.Fatal(err)
	}
	cmd, err = m.Save()
	run(t, m, cmd, err)

	raw, _ := opener.last().ReadRaw(context.Background(), "doc")
	if raw != `{"a":2}` {
		t.Errorf("stored value: got %q, want %q", raw, `{"a":2}`)
	}
}

func TestStaleLoad(t *testing.T) {
	for _, order := range []string{"a-first", "b-first"} {
		t.Run(order, func(t *testing.T) {
			m, _ := connected(t, map[string]string{"a": "from a", "b": "from b"})

			loadA, err := m.SelectKey("a")
			if err != nil {
				t.Fatal(err)
			}
			loadB, err := m.SelectKey("b")
			if err != nil {
				t.Fatal(err)
			}

			ra := loadA(context.Background())
			rb := loadB(context.Background())

			if order == "a-first" {
				if m.Apply(ra) {
					t.Error("stale load of a was applied")
				}
				if !m.Apply(rb) {
					t.Error("load of b was discarded")
				}
			} else {
				if !m.Apply(rb) {
					t.Error("load of b was discarded")
				}
				if m.Apply(ra) {
					t.Error("stale load of a was applied")
				}
			}

			ready := readyKey(t, m)
			if ready.Key != "b" || ready.Value != "from b" {
				t.Errorf("editor shows %+v, want b's content", ready)
			}
		})
	}
}

func TestDeleteThenSelect(t *testing.T) {
	m, _ := connected(t, map[string]string{"a": "1", "b": "2"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)

	cmd, err = m.Delete()
	if d, ok := m.KeyState().(KeyDeleting); !ok || d.Key != "a" {
		t.Fatalf("expected Deleting(a), got %#v", m.KeyState())
	}
	run(t, m, cmd, err)

	if _, ok := m.KeyState().(KeyEmpty); !ok {
		t.Fatalf("expected KeyEmpty, got %s", KeyStateName(m.KeyState()))
	}
	sess, _ := m.Session()
	if len(sess.Keys) != 1 || sess.Keys[0] != "b" {
		t.Errorf("keys: got %v, want [b]", sess.Keys)
	}

	cmd, err = m.SelectKey("a")
	run(t, m, cmd, err)

	if _, ok := m.KeyState().(KeyEmpty); !ok {
		t.Errorf("expected KeyEmpty after failed load, got %s", KeyStateName(m.KeyState()))
	}
	if !store.IsNotFound(m.Notice()) {
		t.Errorf("notice: got %v, want not found", m.Notice())
	}
}

func TestDeleteFailureRestoresBuffer(t *testing.T) {
	m, opener := connected(t, map[string]string{"a": "1"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)
	if err := m.Edit("edited"); err != nil {
		t.Fatal(err)
	}

	opener.last().failDelete = true
	cmd, err = m.Delete()
	run(t, m, cmd, err)

	ready := readyKey(t, m)
	if ready.Value != "edited" || !ready.Dirty {
		t.Errorf("got %+v, want the edited dirty buffer back", ready)
	}
	if !errors.Is(m.Notice(), errBoom) {
		t.Errorf("notice: got %v", m.Notice())
	}
}

func TestDeleteSupersedesSave(t *testing.T) {
	m, _ := connected(t, map[string]string{"a": "1"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)
	if err := m.Edit("2"); err != nil {
		t.Fatal(err)
	}

	save, err := m.Save()
	if err != nil {
		t.Fatal(err)
	}
	del, err := m.Delete()
	if err != nil {
		t.Fatal(err)
	}

	saveResult := save(context.Background())
	if !m.Apply(del(context.Background())) {
		t.Error("delete should apply")
	}
	if m.Apply(saveResult) {
		t.Error("save superseded by delete should be discarded")
	}
	if _, ok := m.KeyState().(KeyEmpty); !ok {
		t.Errorf("expected KeyEmpty, got %s", KeyStateName(m.KeyState()))
	}
}

func TestEditDuringSave(t *testing.T) {
	m, opener := connected(t, map[string]string{"a": "1"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)
	if err := m.Edit("2"); err != nil {
		t.Fatal(err)
	}

	save, err := m.Save()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Edit("3"); err != nil {
		t.Fatalf("edit while saving: %v", err)
	}
	if s, ok := m.KeyState().(KeySaving); !ok || s.Value != "3" || !s.Dirty {
		t.Fatalf("got %#v, want Saving with value 3", m.KeyState())
	}

	if !m.Apply(save(context.Background())) {
		t.Fatal("save result should still apply after an edit")
	}

	ready := readyKey(t, m)
	if ready.Value != "3" {
		t.Errorf("editor value: got %q, want %q", ready.Value, "3")
	}
	if ready.Dirty {
		t.Error("successful save clears dirty")
	}

	raw, _ := opener.last().ReadRaw(context.Background(), "a")
	if raw != "2" {
		t.Errorf("stored value: got %q, want the value sent (2)", raw)
	}
}

func TestSaveFailureKeepsBufferDirty(t *testing.T) {
	m, opener := connected(t, map[string]string{"a": "1"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)
	if err := m.Edit("2"); err != nil {
		t.Fatal(err)
	}

	opener.last().failWrite = true
	cmd, err = m.Save()
	run(t, m, cmd, err)

	ready := readyKey(t, m)
	if !ready.Dirty || ready.Value != "2" {
		t.Errorf("got %+v, want dirty buffer with value 2", ready)
	}
	var storeErr *store.StoreError
	if !errors.As(m.Notice(), &storeErr) {
		t.Errorf("notice: got %T, want *store.StoreError", m.Notice())
	}
}

func TestSaveRequiresDirty(t *testing.T) {
	m, _ := connected(t, map[string]string{"a": "1"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)

	if _, err := m.Save(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("save of a clean buffer: got %v, want ErrInvalidTransition", err)
	}
}

func TestDirtyOnlyChangedByEditAndSave(t *testing.T) {
	m, _ := connected(t, map[string]string{"a": "1", "b": "2"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)
	if err := m.Edit("9"); err != nil {
		t.Fatal(err)
	}

	refresh, err := m.Refresh()
	run(t, m, refresh, err)
	if !readyKey(t, m).Dirty {
		t.Error("refresh must not clear dirty")
	}

	m.DismissNotice()
	if !readyKey(t, m).Dirty {
		t.Error("dismissing a notice must not clear dirty")
	}
}

func TestFailedLoadLeavesNoPendingState(t *testing.T) {
	m, opener := connected(t, map[string]string{"a": "1"})
	opener.last().failRead = true

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)

	if KeyPending(m.KeyState()) {
		t.Errorf("key machine stuck in %s", KeyStateName(m.KeyState()))
	}
}

func TestCreateKey(t *testing.T) {
	m, _ := connected(t, map[string]string{"a": "1"})

	if err := m.NewKey(); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateDraft("new", `{"x":true}`); err != nil {
		t.Fatal(err)
	}
	if c, ok := m.KeyState().(KeyComposing); !ok || c.Key != "new" {
		t.Fatalf("expected Composing(new), got %#v", m.KeyState())
	}

	cmd, err := m.SubmitKey("new", `{"x":true}`)
	if _, ok := m.KeyState().(KeySubmitting); !ok {
		t.Fatalf("expected Submitting, got %s", KeyStateName(m.KeyState()))
	}
	run(t, m, cmd, err)

	ready := readyKey(t, m)
	if ready.Key != "new" || ready.Value != "{\n  \"x\": true\n}" || ready.Dirty {
		t.Errorf("got %+v", ready)
	}
	sess, _ := m.Session()
	if len(sess.Keys) != 2 {
		t.Errorf("keys: got %v, want [a new]", sess.Keys)
	}
}

func TestCreateKeyValidation(t *testing.T) {
	m, _ := connected(t, nil)

	if _, err := m.SubmitKey("k", "v"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("submit without form: got %v, want ErrInvalidTransition", err)
	}

	if err := m.NewKey(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SubmitKey("  ", "v"); !errors.Is(err, ErrKeyRequired) {
		t.Errorf("got %v, want ErrKeyRequired", err)
	}
	if _, err := m.SubmitKey("k", ""); !errors.Is(err, ErrValueRequired) {
		t.Errorf("got %v, want ErrValueRequired", err)
	}
	if _, ok := m.KeyState().(KeyComposing); !ok {
		t.Errorf("rejected submit should stay composing, got %s", KeyStateName(m.KeyState()))
	}
}

func TestCreateKeyWriteFailureReturnsToForm(t *testing.T) {
	m, opener := connected(t, nil)
	opener.last().failWrite = true

	if err := m.NewKey(); err != nil {
		t.Fatal(err)
	}
	cmd, err := m.SubmitKey("k", "v")
	run(t, m, cmd, err)

	c, ok := m.KeyState().(KeyComposing)
	if !ok {
		t.Fatalf("expected Composing, got %s", KeyStateName(m.KeyState()))
	}
	if c.Key != "k" || c.Value != "v" {
		t.Errorf("draft lost: got %+v", c)
	}
	if m.Notice() == nil {
		t.Error("expected a notice")
	}
}

func TestEditTab(t *testing.T) {
	m, _ := connected(t, map[string]string{"a": "x"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)

	edit, err := m.EditTab(0, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if edit.Text != "  x" || edit.Start != 2 {
		t.Errorf("indent: got %+v", edit)
	}
	ready := readyKey(t, m)
	if ready.Value != "  x" || !ready.Dirty {
		t.Errorf("buffer: got %+v", ready)
	}
}

func TestEditTabNoopOutdentStaysClean(t *testing.T) {
	m, _ := connected(t, map[string]string{"a": "x"})

	cmd, err := m.SelectKey("a")
	run(t, m, cmd, err)

	edit, err := m.EditTab(1, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if edit.Changed {
		t.Errorf("outdent with no unit should not change text: %+v", edit)
	}
	if readyKey(t, m).Dirty {
		t.Error("no-op outdent marked the buffer dirty")
	}
}

func TestKeyOpsRequireSession(t *testing.T) {
	m := NewMachine(newTestOpener(nil))

	if _, err := m.SelectKey("a"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("select: got %v", err)
	}
	if err := m.Edit("x"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("edit: got %v", err)
	}
	if _, err := m.Delete(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("delete: got %v", err)
	}
}

func TestKeyResultAfterReconnectIsDiscarded(t *testing.T) {
	m, _ := connected(t, map[string]string{"a": "1"})

	load, err := m.SelectKey("a")
	if err != nil {
		t.Fatal(err)
	}
	m.Disconnect()
	cmd, err := m.Connect(testConnection())
	run(t, m, cmd, err)

	if m.Apply(load(context.Background())) {
		t.Error("key load from the previous session was applied")
	}
	if _, ok := m.KeyState().(KeyEmpty); !ok {
		t.Errorf("expected KeyEmpty, got %s", KeyStateName(m.KeyState()))
	}
}
