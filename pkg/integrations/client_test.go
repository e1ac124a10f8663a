package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/gemindex/pkg/cache"
	"github.com/matzehuels/gemindex/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"User-Agent": "gemindex"}
	client := NewClient(c, "test", time.Hour, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != cache.Cache(c) {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["User-Agent"] != "gemindex" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "test", time.Hour, nil)
	if client.cache == nil {
		t.Fatal("NewClient(nil) should fall back to a null cache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(cache.NewNullCache(), "test", time.Hour, nil).WithHTTPClient(server.Client())

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var override, custom string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		override = r.Header.Get("X-Override")
		custom = r.Header.Get("X-Custom")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(nil, "test", time.Hour, map[string]string{"X-Override": "default"})
	client.http = server.Client()

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL,
		map[string]string{"X-Override": "overridden", "X-Custom": "custom"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if override != "overridden" {
		t.Errorf("override header = %q, want %q", override, "overridden")
	}
	if custom != "custom" {
		t.Errorf("custom header = %q, want %q", custom, "custom")
	}
}

func TestClientGetText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("---\n1.0.0 |checksum:abc\n"))
	}))
	defer server.Close()

	client := NewClient(nil, "test", time.Hour, nil)
	client.http = server.Client()

	text, err := client.GetText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetText() error: %v", err)
	}
	if text != "---\n1.0.0 |checksum:abc\n" {
		t.Errorf("GetText() = %q", text)
	}
}

func TestClientGet404(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient(nil, "test", time.Hour, nil)
	client.http = server.Client()

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClientGet500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(nil, "test", time.Hour, nil)
	client.http = server.Client()

	var resp map[string]string
	err := client.Get(context.Background(), server.URL, &resp)
	if err == nil {
		t.Fatal("Get() should return error for 500")
	}
	if !httputil.IsRetryable(err) {
		t.Errorf("Get() error should be RetryableError, got %T", err)
	}
}

func TestClientCachedHit(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "test", time.Hour, nil)
	ctx := context.Background()

	var fetches int
	fetch := func(v *[]string) func() error {
		return func() error {
			fetches++
			*v = []string{"rack", "rails"}
			return nil
		}
	}

	var first []string
	if err := client.Cached(ctx, "names", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	var second []string
	if err := client.Cached(ctx, "names", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	if fetches != 1 {
		t.Errorf("fetch count = %d, want 1", fetches)
	}
	if len(second) != 2 || second[1] != "rails" {
		t.Errorf("cached value = %v", second)
	}
}

func TestClientCachedRefresh(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(c, "test", time.Hour, nil)

	var fetches int
	var value string
	fetch := func() error {
		fetches++
		value = "fetched"
		return nil
	}

	for range 2 {
		if err := client.Cached(context.Background(), "key", true, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetches != 2 {
		t.Errorf("fetch count = %d, want 2", fetches)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(nil, "test", time.Hour, nil)

	var fetches int
	var value string
	err := client.Cached(context.Background(), "key", false, &value, func() error {
		fetches++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
	if fetches != 1 {
		t.Errorf("non-retryable error fetched %d times, want 1", fetches)
	}
}

func TestClientScopedKeyer(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	ctx := context.Background()

	upstream := NewClient(c, "rubygems", time.Hour, nil)
	mirror := NewClient(c, "rubygems", time.Hour, nil).
		WithKeyer(cache.NewScopedKeyer(nil, "mirror:"))

	var v string
	_ = upstream.Cached(ctx, "rails", false, &v, func() error { v = "upstream"; return nil })

	var calls atomic.Int32
	var m string
	_ = mirror.Cached(ctx, "rails", false, &m, func() error { calls.Add(1); m = "mirror"; return nil })

	if calls.Load() != 1 || m != "mirror" {
		t.Errorf("mirror client read upstream entry: calls=%d value=%q", calls.Load(), m)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		header     http.Header
		wantErr    error
		retryable  bool
		wantAfter  time.Duration
	}{
		{name: "200 OK", code: 200},
		{name: "404 Not Found", code: 404, wantErr: ErrNotFound},
		{name: "429 with Retry-After", code: 429, header: http.Header{"Retry-After": {"7"}},
			wantErr: ErrRateLimited, retryable: true, wantAfter: 7 * time.Second},
		{name: "429 without Retry-After", code: 429, wantErr: ErrRateLimited, retryable: true},
		{name: "500", code: 500, wantErr: ErrNetwork, retryable: true},
		{name: "503", code: 503, wantErr: ErrNetwork, retryable: true},
		{name: "400", code: 400, wantErr: ErrNetwork},
		{name: "403", code: 403, wantErr: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := tt.header
			if header == nil {
				header = http.Header{}
			}
			err := checkStatus(tt.code, header)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("checkStatus() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("checkStatus() error = %v, want %v", err, tt.wantErr)
			}
			if httputil.IsRetryable(err) != tt.retryable {
				t.Errorf("checkStatus() retryable = %v, want %v", !tt.retryable, tt.retryable)
			}
			var re *httputil.RetryableError
			if errors.As(err, &re) && re.After != tt.wantAfter {
				t.Errorf("checkStatus() After = %v, want %v", re.After, tt.wantAfter)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":       0,
		"3":      3 * time.Second,
		"-1":     0,
		"soon":   0,
		"120":    2 * time.Minute,
	}
	for in, want := range tests {
		if got := parseRetryAfter(in); got != want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}
