package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSMiddleware_SetsHeaders(t *testing.T) {
	mw := NewCORSMiddleware("http://localhost:5173")

	r := httptest.NewRequest("GET", "/api/feed", nil)
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q, want configured origin", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestCORSMiddleware_PreflightReturns204(t *testing.T) {
	mw := NewCORSMiddleware("http://localhost:5173")

	r := httptest.NewRequest("OPTIONS", "/api/posts", nil)
	w := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if called {
		t.Error("next handler was called for preflight request")
	}
}

func TestCORSMiddleware_AllowsAdminPasswordHeader(t *testing.T) {
	mw := NewCORSMiddleware("http://localhost:5173")

	r := httptest.NewRequest("OPTIONS", "/api/survey/send", nil)
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, r)

	allowed := w.Header().Get("Access-Control-Allow-Headers")
	if allowed != "Content-Type, X-Admin-Password" {
		t.Errorf("Allow-Headers = %q, want Content-Type and X-Admin-Password", allowed)
	}
}
