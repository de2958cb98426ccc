package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{" info ", InfoLevel},
		{"Warning", WarnLevel},
		{"warn", WarnLevel},
		{"ERROR", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestJSONLoggerWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	logger := NewJSONLogger(&buf, DebugLevel).WithClock(func() time.Time { return fixed })

	logger.Info("graph decoded", GraphID("g-1"), Count(3))

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "INFO" || e.Message != "graph decoded" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Time != fixed.Format(time.RFC3339Nano) {
		t.Errorf("time = %s, want %s", e.Time, fixed.Format(time.RFC3339Nano))
	}
	if e.Fields["graph_id"] != "g-1" {
		t.Errorf("graph_id field = %v", e.Fields["graph_id"])
	}
	if e.Fields["count"] != float64(3) {
		t.Errorf("count field = %v", e.Fields["count"])
	}
}

func TestJSONLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept", Error(errors.New("boom")))

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Fields["error"] != "boom" {
		t.Errorf("error field = %v", entries[1].Fields["error"])
	}

	logger.SetLevel(DebugLevel)
	if logger.GetLevel() != DebugLevel {
		t.Errorf("GetLevel() = %v", logger.GetLevel())
	}
}

func TestJSONLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	parent := NewJSONLogger(&buf, InfoLevel)
	child := parent.With(Component("simulation"))

	child.Info("run", PlanID("plan-1"))
	parent.Info("plain")

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Fields["component"] != "simulation" || entries[0].Fields["plan_id"] != "plan-1" {
		t.Errorf("child fields = %v", entries[0].Fields)
	}
	if entries[1].Fields != nil {
		t.Errorf("parent must not inherit child fields, got %v", entries[1].Fields)
	}
}

func TestErrorFieldNil(t *testing.T) {
	f := Error(nil)
	if f.Key != "error" || f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
}

func TestNopLogger(t *testing.T) {
	var l Logger = NewNopLogger()
	l.Info("ignored")
	if l.With(Count(1)) == nil {
		t.Error("With() returned nil")
	}
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) returned nil")
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	StartTimer(logger, "simulate", PlanID("p")).End(Count(2))
	StartTimer(logger, "simulate").EndError(errors.New("bad plan"))

	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0].Fields["latency"]; !ok {
		t.Error("expected latency field")
	}
	if entries[1].Level != "ERROR" || entries[1].Fields["error"] != "bad plan" {
		t.Errorf("unexpected error entry: %+v", entries[1])
	}
}
