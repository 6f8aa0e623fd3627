package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kingrea/class-divider/internal/config"
)

func TestNewWritesJSONLines(t *testing.T) {
	projectDir := t.TempDir()
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("partitioned", zap.Int("groups", 3))
	logger.Debug("hidden at info level")
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.LogsDir(), FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "partitioned" || entry["groups"] != float64(3) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNopIsSafe(t *testing.T) {
	logger := Nop()
	logger.Info("ignored")
	if err := logger.Close(); err != nil {
		t.Fatalf("close nop: %v", err)
	}
	var nilLogger *Logger
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("close nil: %v", err)
	}
}

func TestWithConsoleTeesEntries(t *testing.T) {
	var buf strings.Builder
	logger := Nop().WithConsole(&buf)
	logger.Debug("divided", zap.Int("groups", 2))
	if !strings.Contains(buf.String(), "divided") || !strings.Contains(buf.String(), `"groups": 2`) {
		t.Fatalf("console output missing entry: %q", buf.String())
	}
	if Nop().WithConsole(nil) == nil {
		t.Fatalf("nil writer should return the receiver")
	}
}
