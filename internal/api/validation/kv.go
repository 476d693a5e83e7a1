package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

const (
	// MaxKeyLength is the maximum length of a key (1KB)
	MaxKeyLength = 1024
	// MaxValueSize is the default maximum size of a request body (1MB)
	MaxValueSize = 1024 * 1024
	// MaxTTLMillis is the maximum TTL in milliseconds (1 year)
	MaxTTLMillis = 365 * 24 * 60 * 60 * 1000
)

// ValidateKey validates a key
func ValidateKey(key string) error {
	if key == "" {
		return ValidationError{Field: "key", Reason: "cannot be empty"}
	}

	if len(key) > MaxKeyLength {
		return ValidationError{
			Field:  "key",
			Reason: fmt.Sprintf("length (%d) exceeds maximum (%d)", len(key), MaxKeyLength),
		}
	}

	return nil
}

// ParseTTL parses a TTL path segment in milliseconds
func ParseTTL(raw string) (int64, error) {
	ttl, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ValidationError{Field: "ttl", Reason: fmt.Sprintf("%q is not an integer", raw)}
	}

	if ttl < 0 {
		return 0, ValidationError{Field: "ttl", Reason: "cannot be negative"}
	}

	if ttl > MaxTTLMillis {
		return 0, ValidationError{Field: "ttl", Reason: fmt.Sprintf("cannot exceed %d ms (1 year)", int64(MaxTTLMillis))}
	}

	return ttl, nil
}

// DecodeValue parses body as a single JSON document. The document is returned
// both decoded (for schema validation) and in canonical compact form: object
// keys sorted, no insignificant whitespace, numbers kept verbatim.
func DecodeValue(body []byte) (any, []byte, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, ValidationError{Field: "body", Reason: "invalid JSON: " + err.Error()}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, ValidationError{Field: "body", Reason: "invalid JSON: trailing data after document"}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, nil, fmt.Errorf("failed to encode value: %w", err)
	}

	return doc, bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
