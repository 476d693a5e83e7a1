package client

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the server has no value for the key
var ErrNotFound = errors.New("key not found")

// APIError is a non-success response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tidekv: HTTP %d: %s", e.StatusCode, e.Message)
}

// Is allows errors.Is(err, ErrNotFound) for 404 responses
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
