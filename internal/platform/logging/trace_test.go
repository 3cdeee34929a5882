package logging

import (
	"testing"

	"go.uber.org/zap"
)

const validTraceparent = "00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01"

func TestParseTraceparent(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		ok      bool
		sampled bool
	}{
		{name: "sampled", header: validTraceparent, ok: true, sampled: true},
		{name: "not sampled", header: "00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-00", ok: true},
		{name: "empty", header: ""},
		{name: "short trace id", header: "00-ab42-d21f7bc17caa5aba-01"},
		{name: "garbage", header: "not-a-trace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc, ok := parseTraceparent(tt.header)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if !ok {
				return
			}
			if tc.traceID != "ab42124a3c573678d4d8b21ba52df3bf" || tc.spanID != "d21f7bc17caa5aba" {
				t.Fatalf("unexpected parse result: %+v", tc)
			}
			if tc.sampled != tt.sampled {
				t.Fatalf("expected sampled=%v", tt.sampled)
			}
		})
	}
}

func fieldMap(fields []zap.Field) map[string]zap.Field {
	m := make(map[string]zap.Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}

func TestRequestFields(t *testing.T) {
	fields := fieldMap(requestFields(validTraceparent, "demo", "req-1"))
	if got := fields["logging.googleapis.com/trace"].String; got != "projects/demo/traces/ab42124a3c573678d4d8b21ba52df3bf" {
		t.Fatalf("unexpected trace resource %q", got)
	}
	if got := fields["logging.googleapis.com/spanId"].String; got != "d21f7bc17caa5aba" {
		t.Fatalf("unexpected span %q", got)
	}
	if fields["requestId"].String != "req-1" {
		t.Fatal("expected requestId field")
	}

	noProject := fieldMap(requestFields(validTraceparent, "", "req-1"))
	if _, ok := noProject["logging.googleapis.com/trace"]; ok {
		t.Fatal("trace fields require a project ID")
	}
	if len(requestFields("", "", "")) != 0 {
		t.Fatal("expected no fields")
	}
}

func TestCorrelationID(t *testing.T) {
	if got := correlationID(validTraceparent, "demo", "req-1"); got != "projects/demo/traces/ab42124a3c573678d4d8b21ba52df3bf" {
		t.Fatalf("unexpected correlation ID %q", got)
	}
	if got := correlationID(validTraceparent, "", "req-1"); got != "req-1" {
		t.Fatalf("expected request ID fallback, got %q", got)
	}
	if got := correlationID("bogus", "demo", ""); got != "" {
		t.Fatalf("expected empty correlation ID, got %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "b", "c"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
