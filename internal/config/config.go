package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner only)
	FilePermissions = 0600
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// DefaultHTTPTimeout bounds a single S1 request
	DefaultHTTPTimeout = 30 * time.Second
)

// Environment variables understood by s1dash
const (
	EnvHome        = "S1DASH_HOME"
	EnvLogLevel    = "S1DASH_LOG_LEVEL"
	EnvHTTPTimeout = "S1DASH_HTTP_TIMEOUT"
)

var (
	// ConfigDir is the global configuration directory (~/.s1dash)
	ConfigDir string

	// ConnectionsFile holds the saved connection list
	ConnectionsFile string

	// KeybindsFile holds user keybinding overrides
	KeybindsFile string

	// LogFile receives the structured log while the TUI owns the terminal
	LogFile string

	// DatabasePath holds saved queries and backs sqlite:// connections without a path
	DatabasePath string

	// LogLevel is the zerolog level name
	LogLevel = "info"

	// HTTPTimeout is the S1 transport timeout
	HTTPTimeout = DefaultHTTPTimeout
)

// Initialize sets up the configuration directory and files.
// It loads a .env file from the working directory when present, then
// creates ~/.s1dash (or $S1DASH_HOME) if it doesn't exist.
func Initialize() error {
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	dir := os.Getenv(EnvHome)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".s1dash")
	}

	return InitializeAt(dir)
}

// InitializeAt sets up the configuration rooted at dir
func InitializeAt(dir string) error {
	ConfigDir = dir
	ConnectionsFile = filepath.Join(ConfigDir, "connections.json")
	KeybindsFile = filepath.Join(ConfigDir, "keybinds.json")
	LogFile = filepath.Join(ConfigDir, "s1dash.log")
	DatabasePath = filepath.Join(ConfigDir, "local.db")

	if level := os.Getenv(EnvLogLevel); level != "" {
		LogLevel = strings.ToLower(level)
	}

	if raw := os.Getenv(EnvHTTPTimeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHTTPTimeout, raw, err)
		}
		HTTPTimeout = timeout
	}

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create empty connections file if it doesn't exist
	if _, err := os.Stat(ConnectionsFile); os.IsNotExist(err) {
		if err := os.WriteFile(ConnectionsFile, []byte("[]"), FilePermissions); err != nil {
			return fmt.Errorf("failed to create connections file: %w", err)
		}
	}

	return nil
}

// loadDotEnv loads variables from path without overriding the environment
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// GetConnectionsFilePath returns the connections file path (local or global)
func GetConnectionsFilePath() string {
	if _, err := os.Stat(".connections.json"); err == nil {
		return ".connections.json"
	}
	return ConnectionsFile
}
