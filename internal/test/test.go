// Package test holds helpers shared by package tests.
package test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempDir creates a temporary directory for testing and returns its path.
// The directory is automatically cleaned up after the test.
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "tidekv-test-*")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.RemoveAll(dir) // Ignore cleanup errors in tests
	})
	return dir
}

// WriteFile writes content to name inside a fresh temporary directory and
// returns the file path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(TempDir(t), name)
	//nolint:gosec // Acceptable: test file permissions
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// MissingFile returns a path inside a temporary directory that does not exist.
func MissingFile(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(TempDir(t), name)
}

// AssertFileExists checks if a file exists and fails the test if it doesn't.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.NoError(t, err, "file should exist: %s", path)
}

// AssertFileNotExists checks if a file doesn't exist and fails the test if it does.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.Error(t, err, "file should not exist: %s", path)
	require.True(t, os.IsNotExist(err), "expected file not to exist: %s", path)
}
