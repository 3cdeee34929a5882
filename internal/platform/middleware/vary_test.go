package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVaryAddsAccept(t *testing.T) {
	h := Vary()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("body"))
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/tasks", nil))

	if resp.Code != http.StatusCreated || resp.Body.String() != "body" {
		t.Fatalf("downstream response not preserved: %d %q", resp.Code, resp.Body.String())
	}
	vary := resp.Header().Values("Vary")
	if len(vary) != 2 || vary[0] != "Accept" || vary[1] != "Origin" {
		t.Fatalf("unexpected Vary values %v", vary)
	}
}
