package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordingStatusRecorder struct {
	statuses []int
}

func (r *recordingStatusRecorder) RecordHTTPStatus(statusCode int) {
	r.statuses = append(r.statuses, statusCode)
}

func TestMetricsMiddleware_RecordsStatusCode(t *testing.T) {
	recorder := &recordingStatusRecorder{}
	mw := NewMetricsMiddleware(recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	r := httptest.NewRequest("GET", "/api/members/none", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusNotFound {
		t.Errorf("recorded statuses = %v, want [404]", recorder.statuses)
	}
}

// WriteHeaderを呼ばないハンドラーは200として記録される
func TestMetricsMiddleware_ImplicitOK(t *testing.T) {
	recorder := &recordingStatusRecorder{}
	mw := NewMetricsMiddleware(recorder)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	r := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusOK {
		t.Errorf("recorded statuses = %v, want [200]", recorder.statuses)
	}
}
