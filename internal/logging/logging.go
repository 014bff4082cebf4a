// Package logging opens the leveled loggers used by the server and the viewer.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvLevel selects the log level ("debug", "info", "warn", "error").
const EnvLevel = "IMAGESTRIP_LOG_LEVEL"

// Open returns a logger writing to the file at path, appending, and to console
// when it is non-nil. The returned func closes the file.
func Open(path, prefix string, console io.Writer) (*log.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = file
	if console != nil {
		out = io.MultiWriter(console, file)
	}
	logger := log.NewWithOptions(out, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		Level:           LevelFromEnv(),
	})
	return logger, file.Close, nil
}

// LevelFromEnv reads EnvLevel, defaulting to info.
func LevelFromEnv() log.Level {
	raw := strings.TrimSpace(os.Getenv(EnvLevel))
	if raw == "" {
		return log.InfoLevel
	}
	level, err := log.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return log.InfoLevel
	}
	return level
}
