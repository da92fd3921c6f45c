package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/studiowebux/s1dash/internal/config"
	"github.com/studiowebux/s1dash/internal/logging"
	"github.com/studiowebux/s1dash/internal/types"
)

// LocalStore persists the connection list. Load never fails: a list that
// cannot be read comes back empty.
type LocalStore interface {
	Load() []types.Connection
	Save(connections []types.Connection) error
}

// FileStore keeps the connection list in a JSON file
type FileStore struct {
	Path string
}

// NewFileStore creates a store on the configured connections file
func NewFileStore() *FileStore {
	return &FileStore{Path: config.GetConnectionsFilePath()}
}

// Load reads the connection list
func (s *FileStore) Load() []types.Connection {
	log := logging.With("registry")

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.Path).Msg("failed to read connections file")
		}
		return []types.Connection{}
	}

	var connections []types.Connection
	if err := json.Unmarshal(data, &connections); err != nil {
		log.Warn().Err(err).Str("path", s.Path).Msg("failed to parse connections file, starting empty")
		return []types.Connection{}
	}
	if connections == nil {
		connections = []types.Connection{}
	}
	return connections
}

// Save writes the connection list
func (s *FileStore) Save(connections []types.Connection) error {
	data, err := json.MarshalIndent(connections, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal connections: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create connections directory: %w", err)
	}

	// Write to a temp file first so a crash never leaves half a list behind
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, config.FilePermissions); err != nil {
		return fmt.Errorf("failed to write connections file: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace connections file: %w", err)
	}

	return nil
}

// MemoryStore keeps the list in memory
type MemoryStore struct {
	Connections []types.Connection
	Saves       int
}

// Load implements LocalStore
func (s *MemoryStore) Load() []types.Connection {
	return append([]types.Connection{}, s.Connections...)
}

// Save implements LocalStore
func (s *MemoryStore) Save(connections []types.Connection) error {
	s.Connections = append([]types.Connection{}, connections...)
	s.Saves++
	return nil
}
