package kv

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches any NotFoundError
	ErrNotFound = errors.New("key not found")
	// ErrAlreadyPresent matches any AlreadyPresentError
	ErrAlreadyPresent = errors.New("key already present")
)

// NotFoundError indicates the operation requires a live key but none exists
type NotFoundError struct {
	Key string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("key %s not found", e.Key)
}

// Is allows errors.Is(err, ErrNotFound)
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyPresentError indicates an insert found a live value for the key
type AlreadyPresentError struct {
	Key string
}

func (e AlreadyPresentError) Error() string {
	return fmt.Sprintf("key %s is already present in the data set", e.Key)
}

// Is allows errors.Is(err, ErrAlreadyPresent)
func (e AlreadyPresentError) Is(target error) bool {
	return target == ErrAlreadyPresent
}
