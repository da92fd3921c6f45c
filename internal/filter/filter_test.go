package filter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/studiowebux/s1dash/internal/format"
	"github.com/studiowebux/s1dash/internal/types"
)

func TestEval(t *testing.T) {
	value := `{"users":[{"name":"ada","active":true},{"name":"bob","active":false}]}`

	tests := []struct {
		name  string
		exprs []string
		want  string
	}{
		{"no expressions", nil, value},
		{"blank expressions", []string{"", "  "}, value},
		{"single query", []string{"users[0].name"}, `"ada"`},
		{"chained", []string{"users[?active]", "[].name"}, "[\n  \"ada\"\n]"},
		{"missing field", []string{"nope"}, "null"},
		{"shell after query", []string{"users[1].name", "$(tr -d '\"')"}, "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(context.Background(), value, tt.exprs...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval_NonJSONValue(t *testing.T) {
	_, err := Eval(context.Background(), "not json", "a")

	var formatErr *format.FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("got %v, want *format.FormatError", err)
	}
}

func TestEval_InvalidExpression(t *testing.T) {
	if _, err := Eval(context.Background(), `{"a":1}`, "a[?"); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestEval_ShellPipesValue(t *testing.T) {
	got, err := Eval(context.Background(), "plain text", "$(cat)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "plain text" {
		t.Errorf("got %q, want the value echoed back", got)
	}
}

func TestEval_ShellFailureReportsStderr(t *testing.T) {
	_, err := Eval(context.Background(), "x", "$(echo broken >&2; exit 3)")
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("got %v, want the command's stderr", err)
	}
}

func TestEval_CancelStopsShell(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := Eval(ctx, "x", "$(sleep 5)")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("command ran for %v after cancel", elapsed)
	}
}

func TestKeys(t *testing.T) {
	keys := []string{"user:1", "config", "user:2", "cache"}

	all := Keys(keys, "  ")
	if len(all) != len(keys) {
		t.Fatalf("empty pattern: got %d matches, want %d", len(all), len(keys))
	}
	for i, m := range all {
		if m.Key != keys[i] {
			t.Errorf("empty pattern should keep order: got %q at %d, want %q", m.Key, i, keys[i])
		}
	}

	matches := Keys(keys, "usr")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	for _, m := range matches {
		if !strings.HasPrefix(m.Key, "user:") {
			t.Errorf("unexpected match %q", m.Key)
		}
		if len(m.Indexes) != 3 {
			t.Errorf("match %q: got %d matched indexes, want 3", m.Key, len(m.Indexes))
		}
	}

	if got := Keys(keys, "zzz"); len(got) != 0 {
		t.Errorf("got %v, want no matches", got)
	}
}

func TestConnections(t *testing.T) {
	connections := []types.Connection{
		{ID: "1", Name: "production"},
		{ID: "2", Name: "staging"},
		{ID: "3", Name: "local redis"},
	}

	if got := Connections(connections, ""); len(got) != 3 {
		t.Errorf("empty pattern: got %d, want 3", len(got))
	}

	got := Connections(connections, "prod")
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("got %v, want production only", got)
	}
}
