package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DEBUG,
		" WARN ":  WARN,
		"warning": WARN,
		"error":   ERROR,
		"info":    INFO,
		"":        INFO,
		"bogus":   INFO,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_LevelFilteringAndFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, WARN, FormatLogfmt)
	t.Cleanup(func() { Configure(os.Stdout, INFO, FormatAuto) })

	Info("hidden %d", 1)
	WithField("provider", "mymemory").Warn("attempt failed: %s", "timeout")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at WARN level: %q", out)
	}
	if !strings.Contains(out, "attempt failed: timeout") {
		t.Errorf("missing warn message: %q", out)
	}
	if !strings.Contains(out, "provider=mymemory") {
		t.Errorf("missing field: %q", out)
	}
}

func TestLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, DEBUG, FormatLogfmt)
	t.Cleanup(func() { Configure(os.Stdout, INFO, FormatAuto) })

	child := WithFields(map[string]interface{}{"intent": "summarize"})
	child.Debug("child")
	Debug("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "intent=summarize") {
		t.Errorf("child line missing field: %q", lines[0])
	}
	if strings.Contains(lines[1], "intent=") {
		t.Errorf("parent line should not carry child field: %q", lines[1])
	}
}
