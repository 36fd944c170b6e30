package helpers

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerStampsAppFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("svc", "production")
	logger.SetOutput(&buf)

	LogInfo(logger, "hello", nil)
	LogWarn(logger, "override", map[string]interface{}{"app": "other"})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var first, second map[string]any
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["app"] != "svc" || first["env"] != "production" || first["message"] != "hello" {
		t.Fatalf("unexpected entry: %v", first)
	}
	if second["app"] != "other" {
		t.Fatalf("explicit field must win, got %v", second["app"])
	}
}

func TestLogHelpersTolerateNilLogger(t *testing.T) {
	LogInfo(nil, "x", nil)
	LogWarn(nil, "x", nil)
	LogError(nil, "x", nil, nil)
}
