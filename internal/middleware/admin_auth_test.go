package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/engagepod/internal/model"
)

type mockVerifier struct {
	verifyFunc func(clientKey, provided string) error
	gotKey     string
	gotSecret  string
}

func (m *mockVerifier) Verify(clientKey, provided string) error {
	m.gotKey = clientKey
	m.gotSecret = provided
	return m.verifyFunc(clientKey, provided)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuthMiddleware_Success(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(clientKey, provided string) error { return nil },
	}
	mw := NewAdminAuthMiddleware(verifier, testLogger())

	r := httptest.NewRequest("POST", "/api/survey/send", nil)
	r.RemoteAddr = "203.0.113.5:51234"
	r.Header.Set("X-Admin-Password", "s3cret")
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if verifier.gotKey != "203.0.113.5" {
		t.Errorf("client key = %q, want remote IP", verifier.gotKey)
	}
	if verifier.gotSecret != "s3cret" {
		t.Errorf("provided secret = %q, want header value", verifier.gotSecret)
	}
}

func TestAdminAuthMiddleware_Unauthorized(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(clientKey, provided string) error { return model.NewUnauthorizedError() },
	}
	mw := NewAdminAuthMiddleware(verifier, testLogger())

	r := httptest.NewRequest("POST", "/api/survey/send", nil)
	r.RemoteAddr = "203.0.113.5:51234"
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAdminAuthMiddleware_RateLimited(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(clientKey, provided string) error { return model.NewRateLimitedError() },
	}
	mw := NewAdminAuthMiddleware(verifier, testLogger())

	r := httptest.NewRequest("POST", "/api/survey/send", nil)
	r.RemoteAddr = "203.0.113.5:51234"
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, r)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

// シークレット未設定は認証失敗ではなくサーバー設定エラーとして返す
func TestAdminAuthMiddleware_NotConfigured(t *testing.T) {
	verifier := &mockVerifier{
		verifyFunc: func(clientKey, provided string) error { return model.NewAdminNotConfiguredError() },
	}
	mw := NewAdminAuthMiddleware(verifier, testLogger())

	r := httptest.NewRequest("POST", "/api/survey/send", nil)
	r.RemoteAddr = "203.0.113.5:51234"
	w := httptest.NewRecorder()

	mw(okHandler()).ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
