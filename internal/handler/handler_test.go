package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORS_SetsHeaders(t *testing.T) {
	h := New(&mockDB{}, "http://localhost:3000")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/test", nil)
	rec := httptest.NewRecorder()
	h.CORS(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected origin http://localhost:3000, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials=true, got %q", got)
	}
}

func TestCORS_OptionsPreflight(t *testing.T) {
	h := New(&mockDB{}, "http://localhost:3000")

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	req := httptest.NewRequest("OPTIONS", "/api/test", nil)
	rec := httptest.NewRecorder()
	h.CORS(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for OPTIONS, got %d", rec.Code)
	}
	if called {
		t.Error("inner handler should not be called for OPTIONS preflight")
	}
}

func TestCORS_AllowsAuthorizationHeader(t *testing.T) {
	h := New(&mockDB{}, "https://morvin-quernel.com")

	req := httptest.NewRequest("OPTIONS", "/api/me", nil)
	rec := httptest.NewRecorder()
	h.CORS(http.NotFoundHandler()).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Authorization") {
		t.Errorf("expected Authorization in allowed headers, got %q", got)
	}
}
