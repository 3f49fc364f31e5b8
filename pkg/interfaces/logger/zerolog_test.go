package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestZerologLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(Options{Level: "debug", Output: &buf})

	lgr.With(F("component", "registry")).Warn("publish failed", Err(errors.New("boom")), F("group", "alice"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["level"] != "warn" {
		t.Fatalf("expected warn level, got %v", line["level"])
	}
	if line["component"] != "registry" || line["group"] != "alice" {
		t.Fatalf("missing fields: %v", line)
	}
	if line["error"] != "boom" {
		t.Fatalf("expected error field, got %v", line["error"])
	}
	if line["message"] != "publish failed" {
		t.Fatalf("unexpected message %v", line["message"])
	}
}

func TestZerologLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(Options{Level: "warn", Output: &buf})
	lgr.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
}
