package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a gem or resource doesn't exist in the registry.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when the registry answers 429.
	ErrRateLimited = errors.New("rate limited")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// NormalizeGemName trims surrounding whitespace from a gem name.
// RubyGems names are case-sensitive, so case is preserved.
func NormalizeGemName(name string) string {
	return strings.TrimSpace(name)
}

// URLEncode percent-encodes a string for use in URL query values.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// PathEscape percent-encodes a string for use as a URL path segment.
func PathEscape(s string) string { return url.PathEscape(s) }
