package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	Component(logger, "registry").Info("constructed backend")
	logger.Debug("hidden")
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "constructed backend" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["component"] != "registry" {
		t.Errorf("component = %v", entry["component"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("missing timestamp field")
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("cache hit")
	_ = logger.Sync()

	if !strings.Contains(buf.String(), "cache hit") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"bad level", Config{Level: "loud"}},
		{"bad format", Config{Level: "info", Format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestComponentNil(t *testing.T) {
	if Component(nil, "x") == nil {
		t.Error("Component(nil) returned nil")
	}
}
