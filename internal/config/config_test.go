package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitializeAt_CreatesLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")

	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt failed: %v", err)
	}

	if ConfigDir != dir {
		t.Errorf("ConfigDir = %s, want %s", ConfigDir, dir)
	}

	data, err := os.ReadFile(ConnectionsFile)
	if err != nil {
		t.Fatalf("connections file not created: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("connections file = %q, want %q", string(data), "[]")
	}

	if filepath.Dir(KeybindsFile) != dir {
		t.Errorf("KeybindsFile not under config dir: %s", KeybindsFile)
	}
}

func TestInitializeAt_KeepsExistingConnections(t *testing.T) {
	dir := t.TempDir()
	existing := `[{"id":"1","name":"a","token":"t"}]`
	if err := os.WriteFile(filepath.Join(dir, "connections.json"), []byte(existing), 0600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt failed: %v", err)
	}

	data, _ := os.ReadFile(ConnectionsFile)
	if string(data) != existing {
		t.Errorf("connections file overwritten: %s", string(data))
	}
}

func TestInitializeAt_HTTPTimeoutFromEnv(t *testing.T) {
	t.Setenv(EnvHTTPTimeout, "5s")
	original := HTTPTimeout
	t.Cleanup(func() { HTTPTimeout = original })

	if err := InitializeAt(t.TempDir()); err != nil {
		t.Fatalf("InitializeAt failed: %v", err)
	}
	if HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", HTTPTimeout)
	}
}

func TestInitializeAt_InvalidTimeout(t *testing.T) {
	t.Setenv(EnvHTTPTimeout, "soon")

	if err := InitializeAt(t.TempDir()); err == nil {
		t.Error("expected error for invalid timeout")
	}
}
