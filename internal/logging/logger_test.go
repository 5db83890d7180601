package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	scoped := NewComponentLogger(logger, "matcher")
	scoped.Info("scene resolved", String(FieldLocator, "clip.mp4"), Int(FieldScene, 2))

	out := buf.String()
	for _, want := range []string{"[matcher]", "scene resolved", "locator=clip.mp4", "scene=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no color codes for non-terminal writer: %q", out)
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Info("dropped")
	if logger.Enabled(nil, 0) {
		t.Fatal("nop logger should report disabled")
	}
}
