package keybinds

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultRegistryMatch(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		context Context
		key     string
		want    Action
	}{
		{ContextKeys, "enter", ActionSelectKey},
		{ContextKeys, "ctrl+c", ActionQuitForce},
		{ContextEditor, "tab", ActionIndent},
		{ContextEditor, "shift+tab", ActionOutdent},
		{ContextEditor, "ctrl+s", ActionSave},
		{ContextError, "r", ActionRetry},
		{ContextError, "esc", ActionGoBack},
		{ContextConnectForm, "enter", ActionSubmit},
		{ContextQuery, "ctrl+b", ActionSaveQuery},
		{ContextQuery, "up", ActionNavigateUp},
	}

	for _, tt := range tests {
		got, ok := r.Match(tt.context, tt.key)
		if !ok {
			t.Errorf("%s/%s: no match", tt.context, tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("%s/%s: got %s, want %s", tt.context, tt.key, got, tt.want)
		}
	}

	if _, ok := r.Match(ContextEditor, "q"); ok {
		t.Error("q must not be bound in the editor")
	}
}

func TestDefaultActionsAreKnown(t *testing.T) {
	r := NewDefaultRegistry()
	for _, context := range AllContexts {
		for _, b := range r.ListBindings(context) {
			if !IsKnownAction(b.Action) {
				t.Errorf("%s/%s bound to unknown action %s", context, b.Key, b.Action)
			}
		}
	}
}

func TestMatchSequence(t *testing.T) {
	r := NewDefaultRegistry()

	_, ok, pending := r.MatchSequence(ContextKeys, "g")
	if ok || !pending {
		t.Fatalf("first g: ok=%v pending=%v, want pending", ok, pending)
	}
	action, ok, _ := r.MatchSequence(ContextKeys, "g")
	if !ok || action != ActionGoToTop {
		t.Errorf("gg: got %s ok=%v, want go_to_top", action, ok)
	}

	// A key that breaks the sequence still counts on its own
	r.MatchSequence(ContextKeys, "g")
	action, ok, pending = r.MatchSequence(ContextKeys, "j")
	if !ok || pending || action != ActionNavigateDown {
		t.Errorf("g j: got %s ok=%v pending=%v, want navigate_down", action, ok, pending)
	}

	// g in a context without gg is a plain key
	_, _, pending = r.MatchSequence(ContextEditor, "g")
	if pending {
		t.Error("g in the editor should not start a sequence")
	}

	// Named keys never start a sequence
	action, ok, pending = r.MatchSequence(ContextKeys, "home")
	if !ok || pending || action != ActionGoToTop {
		t.Errorf("home: got %s ok=%v pending=%v, want go_to_top", action, ok, pending)
	}
}

func TestDescribe(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.Describe(ContextKeys, ActionNavigateUp); got != "k, up" {
		t.Errorf("got %q, want %q", got, "k, up")
	}
	if got := r.Describe(ContextKeys, ActionIndent); got != "unbound" {
		t.Errorf("got %q, want unbound", got)
	}
	// Falls back to the global binding
	if got := r.Describe(ContextEditor, ActionQuitForce); got != "ctrl+c" {
		t.Errorf("got %q, want ctrl+c", got)
	}
}

func TestListBindings_ContextBeforeGlobal(t *testing.T) {
	r := NewRegistry()
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextKeys, "r", ActionRefreshKeys)
	r.Register(ContextKeys, "n", ActionNewKey)

	got := r.ListBindings(ContextKeys)
	want := []Binding{
		{Key: "n", Action: ActionNewKey, Context: ContextKeys},
		{Key: "r", Action: ActionRefreshKeys, Context: ContextKeys},
		{Key: "ctrl+c", Action: ActionQuitForce, Context: ContextGlobal},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestApplyConfigReplacesDefaults(t *testing.T) {
	r := NewDefaultRegistry()
	config, err := ParseConfig([]byte(`{
		// comments are fine
		"version": "1",
		"editor": {"save": "ctrl+w, ctrl+o",},
	}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if err := ApplyConfig(r, config); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, ok := r.Match(ContextEditor, "ctrl+s"); ok {
		t.Error("ctrl+s should no longer save")
	}
	if got := r.KeysFor(ContextEditor, ActionSave); !reflect.DeepEqual(got, []string{"ctrl+o", "ctrl+w"}) {
		t.Errorf("got %v, want [ctrl+o ctrl+w]", got)
	}
}

func TestApplyConfigRejectsUnknownAction(t *testing.T) {
	config := &Config{Keys: map[string]string{"launch_rockets": "L"}}
	if err := ApplyConfig(NewRegistry(), config); err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestApplyConfigRejectsReservedKey(t *testing.T) {
	config := &Config{Keys: map[string]string{"quit": "ctrl+c"}}
	if err := ApplyConfig(NewRegistry(), config); err == nil {
		t.Error("expected error for reserved key")
	}
}

func TestSplitKeys(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b", []string{"a", "b"}},
		{" ctrl+s , esc ", []string{"ctrl+s", "esc"}},
		{",", []string{","}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitKeys(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitKeys(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateKey(t *testing.T) {
	if err := ValidateKey(""); err == nil {
		t.Error("empty key should be invalid")
	}
	if err := ValidateKey("ctrl+"); err == nil {
		t.Error("bare modifier should be invalid")
	}
	if err := ValidateKey("ctrl+s"); err != nil {
		t.Errorf("ctrl+s: %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	r, err := LoadOrDefault(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if _, ok := r.Match(ContextKeys, "r"); !ok {
		t.Error("defaults should be loaded")
	}

	path := filepath.Join(dir, "keybinds.json")
	if err := os.WriteFile(path, []byte(`{"keys": {"refresh_keys": "R"}}`), 0600); err != nil {
		t.Fatal(err)
	}
	r, err = LoadOrDefault(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if action, _ := r.Match(ContextKeys, "R"); action != ActionRefreshKeys {
		t.Errorf("R: got %s, want refresh_keys", action)
	}

	if err := os.WriteFile(path, []byte(`{"keys": `), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrDefault(path); err == nil {
		t.Error("expected error for malformed file")
	}
}
