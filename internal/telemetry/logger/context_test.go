package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("from context")
	if buf.Len() == 0 {
		t.Error("logger stored in context was not used")
	}

	if FromContext(context.Background()) != Default() {
		t.Error("FromContext() without logger should return Default()")
	}
}

func TestL_WithRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithRequestID(ctx, "01HZX")
	if got := RequestIDFromContext(ctx); got != "01HZX" {
		t.Errorf("RequestIDFromContext() = %q, want %q", got, "01HZX")
	}

	L(ctx).Info("handled")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry["request_id"] != "01HZX" {
		t.Errorf("request_id = %v, want %q", entry["request_id"], "01HZX")
	}
}

func TestL_NoRequestID(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	L(WithLogger(context.Background(), l)).Info("plain")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("request_id should be absent")
	}
}
