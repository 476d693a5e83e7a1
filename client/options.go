package client

import (
	"net/http"
	"time"
)

// DefaultTimeout is the per-request timeout of the default HTTP client
const DefaultTimeout = 10 * time.Second

// Option is a functional option for client configuration
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the request timeout of the HTTP client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}
