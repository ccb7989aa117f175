package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestFromContext_AddsIDs(t *testing.T) {
	var buf bytes.Buffer
	base := Build(Config{Level: "info", Component: "quote"}, &buf)

	ctx := WithQuoteID(WithRequestID(context.Background(), "req-1"), "q-1")
	FromContext(ctx, &base).Info().Msg("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	for k, want := range map[string]string{"request_id": "req-1", "quote_id": "q-1", "component": "quote", "msg": "hello"} {
		if line[k] != want {
			t.Errorf("%s = %v, want %s", k, line[k], want)
		}
	}
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if id := RequestID(ctx); len(id) != 16 {
		t.Fatalf("expected generated 16-char id, got %q", id)
	}
}

func TestFromContext_NilParentDiscards(t *testing.T) {
	l := FromContext(context.Background(), nil)
	l.Info().Msg("dropped")
}
