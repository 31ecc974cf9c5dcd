package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", "text", &buf)

	logger.Debug("hidden")
	logger.Info("visible", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "key=value") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("debug", "json", &buf)

	logger.Info("event", "run_id", "abc")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
	if record["msg"] != "event" || record["run_id"] != "abc" {
		t.Errorf("record: %v", record)
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic and must swallow all levels.
	logger := Discard()
	logger.Debug("a")
	logger.Error("b")
}
