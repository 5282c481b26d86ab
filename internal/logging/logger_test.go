package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, "INFO")
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	logger.Info("worker started", "session_id", 1)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "coldhawk.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v\nline: %s", err, line)
	}

	if entry["msg"] != "worker started" {
		t.Errorf("msg = %v, want 'worker started'", entry["msg"])
	}
	if entry["session_id"] != float64(1) {
		t.Errorf("session_id = %v, want 1", entry["session_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, "ERROR")
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Error("error message")
	logger.Close()

	data, _ := os.ReadFile(filepath.Join(dir, "coldhawk.log"))
	content := string(data)

	if strings.Contains(content, "debug message") || strings.Contains(content, "info message") {
		t.Error("messages below ERROR should be filtered")
	}
	if !strings.Contains(content, "error message") {
		t.Error("error message should be logged")
	}
}

func TestWithSessionAttrs(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, "DEBUG")
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}

	child := logger.WithSession(4).WithRun("run-1").WithComponent("worker")
	child.Info("batch complete")
	logger.Close()

	data, _ := os.ReadFile(filepath.Join(dir, "coldhawk.log"))
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if entry["session_id"] != float64(4) {
		t.Errorf("session_id = %v, want 4", entry["session_id"])
	}
	if entry["run_id"] != "run-1" {
		t.Errorf("run_id = %v", entry["run_id"])
	}
	if entry["component"] != "worker" {
		t.Errorf("component = %v", entry["component"])
	}
}

func TestChildLoggerDoesNotMutateParent(t *testing.T) {
	logger := NopLogger()
	child := logger.WithSession(1)

	if len(logger.attrs) != 0 {
		t.Error("parent logger attrs should be unchanged")
	}
	if len(child.attrs) != 1 {
		t.Errorf("child logger should have 1 attr, got %d", len(child.attrs))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	// Should not panic and Close should be a no-op.
	logger.Info("discarded")
	if err := logger.Close(); err != nil {
		t.Errorf("Close() on nop logger: %v", err)
	}
}
