package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide logger. It discards everything until Init runs.
var Logger = zerolog.Nop()

// Options configure Init
type Options struct {
	Level   string // zerolog level name, defaults to info
	File    string // when set, logs are appended to this file
	Console bool   // human-readable output (stderr when File is empty)
}

// Init initializes the global logger.
// The TUI owns the terminal, so interactive runs log to a file; CLI runs log
// to stderr through a console writer.
func Init(opts Options) (io.Closer, error) {
	levelName := opts.Level
	if levelName == "" {
		levelName = "info"
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", levelName, err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file '%s': %w", opts.File, err)
		}
		output = file
		closer = file
	}

	if opts.Console {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
			NoColor:    opts.File != "",
		}
	}

	Logger = zerolog.New(output).With().Timestamp().Logger()
	log.Logger = Logger

	return closer, nil
}

// With returns a child logger tagged with a component name
func With(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
