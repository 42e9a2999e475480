package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "trace", JSON: true, Writer: buf})

	WithFields(logger, map[string]any{"field_id": "fld_1"}).Info("field %s updated", "Name")

	logged := buf.String()
	if strings.TrimSpace(logged) == "" {
		t.Fatalf("expected go-logger output")
	}
	if !strings.Contains(logged, "field Name updated") {
		t.Fatalf("expected formatted message, got %q", logged)
	}
	if !strings.Contains(logged, "field_id") {
		t.Fatalf("expected structured fields, got %q", logged)
	}
}

func TestFmtLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	var logger Logger = NewFmtLogger(buf)
	logger = logger.WithContext(context.Background())
	logger = WithFields(logger, map[string]any{"b": 2, "a": 1})

	logger.Warn("store %q unavailable", "sqlite")

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, `WARN  store "sqlite" unavailable a=1 b=2`) {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestNopAndNormalize(t *testing.T) {
	Nop().Error("ignored %d", 1)
	if Normalize(nil) == nil {
		t.Fatalf("expected fallback logger")
	}
	logger := NewFmtLogger(&bytes.Buffer{})
	if Normalize(logger) != Logger(logger) {
		t.Fatalf("expected logger returned unchanged")
	}
}
