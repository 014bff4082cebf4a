package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestOpenWritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "server.log")
	var console bytes.Buffer

	logger, closeLog, err := Open(path, "strip", &console)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	logger.Info("session created", "id", "abc")
	if err := closeLog(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, out := range []string{string(data), console.String()} {
		if !strings.Contains(out, "session created") || !strings.Contains(out, "id=abc") {
			t.Fatalf("log output missing entry: %q", out)
		}
		if !strings.Contains(out, "strip") {
			t.Fatalf("log output missing prefix: %q", out)
		}
	}
}

func TestOpenFileOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.log")
	logger, closeLog, err := Open(path, "viewer", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeLog()
	logger.Warn("cycle failed")
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "cycle failed") {
		t.Fatalf("file missing entry: %q", data)
	}
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  log.Level
	}{
		{"", log.InfoLevel},
		{"debug", log.DebugLevel},
		{"WARN", log.WarnLevel},
		{"bogus", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Setenv(EnvLevel, tt.value)
		if got := LevelFromEnv(); got != tt.want {
			t.Fatalf("LevelFromEnv(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
