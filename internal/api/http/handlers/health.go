package handlers

import (
	"encoding/json"
	"net/http"
)

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ReadyChecker reports whether a component is serving
type ReadyChecker interface {
	Ready() bool
}

// HealthCheck handles health check requests
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// ReadinessCheck returns a handler that checks if the storage is ready
func ReadinessCheck(checker ReadyChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil || !checker.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not ready",
				Message: "storage is not running",
			})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
