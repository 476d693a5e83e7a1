// Package client is a Go client for the tidekv HTTP API.
//
// Writes are eventually visible: a successful Insert or Delete means the
// mutation was queued, and a Get issued right after may not observe it yet.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidekv/engine/internal/tracing"
	"github.com/tidekv/engine/internal/version"
)

// Client is a tidekv HTTP client
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080"
func New(baseURL string, opts ...Option) (*Client, error) {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL:   u,
		timeout:   DefaultTimeout,
		userAgent: "tidekv-go/" + version.Get().Version,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

// Get returns the JSON document stored under key. It returns ErrNotFound if
// the key holds no published value.
func (c *Client) Get(ctx context.Context, key string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, keyPath(key), nil)
	if err != nil {
		return nil, err
	}

	// The server wraps the stored document in a JSON string
	var stored string
	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return json.RawMessage(stored), nil
}

// Insert queues value (any JSON-encodable value) under key without TTL
func (c *Client) Insert(ctx context.Context, key string, value any) error {
	return c.insert(ctx, keyPath(key), value)
}

// InsertWithTTL queues value under key, expiring ttl after the server
// receives it. ttl is sent with millisecond precision.
func (c *Client) InsertWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl < 0 {
		return fmt.Errorf("ttl cannot be negative")
	}
	return c.insert(ctx, keyPath(key)+"/"+strconv.FormatInt(ttl.Milliseconds(), 10), value)
}

// Delete queues removal of key. It returns ErrNotFound if the key holds no
// value.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.do(ctx, http.MethodDelete, keyPath(key), nil)
	return err
}

// Health checks server liveness
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil)
	return err
}

// Ready checks server readiness
func (c *Client) Ready(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/ready", nil)
	return err
}

func (c *Client) insert(ctx context.Context, path string, value any) error {
	var payload []byte
	switch v := value.(type) {
	case json.RawMessage:
		payload = v
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode value: %w", err)
		}
		payload = encoded
	}

	_, err := c.do(ctx, http.MethodPost, path, payload)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	tracing.InjectHTTP(ctx, req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	return respBody, nil
}

func keyPath(key string) string {
	return "/" + url.PathEscape(key)
}
