package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/photolens/photolens/internal/config"
)

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogFormatJSON, "DEBUG")

	logger.Debug("debug message")
	logger.Info("info message", "count", 3)
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(lines))
	}

	for i, line := range lines {
		var data map[string]any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogFormatJSON, "WARN")

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("visible")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("output should not contain filtered messages: %q", output)
	}
	if !strings.Contains(output, "visible") {
		t.Errorf("output should contain warn message: %q", output)
	}
}

func TestNewWithWriter_TerminalFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LogFormatPretty, "INFO")

	logger.Info("indexing started", "dir", "/photos")

	output := buf.String()
	if !strings.Contains(output, "indexing started") {
		t.Errorf("output should contain the message: %q", output)
	}
	if !strings.Contains(output, "dir") {
		t.Errorf("output should contain attribute keys: %q", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
