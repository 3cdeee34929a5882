package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerStoresLoggerAndCorrelationID(t *testing.T) {
	var (
		gotLogger *zap.Logger
		gotTrace  *string
	)
	handler := chimiddleware.RequestID(RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLogger = LoggerFromContext(r.Context())
		gotTrace = TraceIDFromContext(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotLogger == nil || gotLogger == Logger() {
		t.Fatal("expected request-scoped logger")
	}
	if gotTrace == nil || *gotTrace != "req-abc" {
		t.Fatalf("expected request ID as correlation ID, got %v", gotTrace)
	}
}

func TestRequestLoggerWithoutRequestID(t *testing.T) {
	var gotLogger *zap.Logger
	handler := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLogger = LoggerFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if gotLogger != Logger() {
		t.Fatal("expected shared logger when no correlation fields exist")
	}
}

func TestAccessLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		write     bool
		wantLevel zapcore.Level
		wantCode  int64
	}{
		{name: "explicit status", status: http.StatusCreated, write: true, wantLevel: zapcore.InfoLevel, wantCode: 201},
		{name: "implicit ok", wantLevel: zapcore.InfoLevel, wantCode: 200},
		{name: "server error", status: http.StatusInternalServerError, write: true, wantLevel: zapcore.WarnLevel, wantCode: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)
			handler := AccessLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.write {
					w.WriteHeader(tt.status)
				}
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/tags", nil)
			req = req.WithContext(ContextWithLogger(req.Context(), zap.New(core)))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			entries := recorded.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			e := entries[0]
			if e.Message != "request completed" || e.Level != tt.wantLevel {
				t.Fatalf("unexpected entry %q at %v", e.Message, e.Level)
			}
			fields := e.ContextMap()
			if fields["status"] != tt.wantCode {
				t.Fatalf("expected status %d, got %v", tt.wantCode, fields["status"])
			}
			if fields["method"] != http.MethodPost || fields["path"] != "/api/tags" {
				t.Fatalf("unexpected fields %v", fields)
			}
			if _, ok := fields["duration"]; !ok {
				t.Fatal("expected duration field")
			}
		})
	}
}
