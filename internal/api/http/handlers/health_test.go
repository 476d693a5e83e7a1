package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type readyFunc func() bool

func (f readyFunc) Ready() bool { return f() }

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	HealthCheck(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name    string
		checker ReadyChecker
		code    int
		status  string
	}{
		{"ready", readyFunc(func() bool { return true }), http.StatusOK, `"ready"`},
		{"not ready", readyFunc(func() bool { return false }), http.StatusServiceUnavailable, `"not ready"`},
		{"nil", nil, http.StatusServiceUnavailable, `"not ready"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ReadinessCheck(tt.checker)(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Contains(t, w.Body.String(), tt.status)
		})
	}
}
