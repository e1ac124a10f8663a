package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/gemindex/pkg/cache"
	"github.com/matzehuels/gemindex/pkg/httputil"
	"github.com/matzehuels/gemindex/pkg/observability"
)

// Client provides shared HTTP functionality for registry API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client backed by c. Cache entries are stored under
// namespace with the given ttl. Headers are applied to all requests; pass nil
// if no default headers are needed. A nil cache disables caching.
func NewClient(c cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// WithKeyer replaces the key builder, e.g. with a [cache.ScopedKeyer] when
// the client talks to a mirror. It returns c for chaining.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keyer = k
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client. It returns c for chaining.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.http = h
	}
	return c
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is JSON-encoded and
// stored in the cache. Cache failures never fail the call.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	k := c.keyer.HTTPKey(c.namespace, key)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, k); err == nil && ok {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, c.namespace)
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, c.namespace)
	}
	if err := httputil.RetryWithBackoff(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, k, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, c.namespace, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a
// string. The compact index endpoints are plain text.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, resp.Header); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int, header http.Header) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{
			Err:   fmt.Errorf("%w: status %d", ErrRateLimited, code),
			After: parseRetryAfter(header.Get("Retry-After")),
		}
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// parseRetryAfter reads the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
