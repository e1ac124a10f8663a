package rubygems

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
	"github.com/matzehuels/gemindex/pkg/integrations"
)

func TestClient_FetchReleasesBatch(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/dependencies.json" {
			http.NotFound(w, r)
			return
		}
		query = r.URL.Query().Get("gems")
		json.NewEncoder(w).Encode([]dependencyRecord{
			{Name: "a", Number: "1.0", Platform: "ruby", Dependencies: [][]string{{"b", ">= 1.0"}}},
			{Name: "b", Number: "1.0.0", Platform: "ruby", Dependencies: [][]string{}},
			{Name: "b", Number: "1.0.0", Platform: "java"},
		})
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	releases, err := c.FetchReleasesBatch(context.Background(), []string{"b", "a"}, true)
	if err != nil {
		t.Fatalf("FetchReleasesBatch failed: %v", err)
	}
	if query != "a,b" {
		t.Errorf("gems query = %q, want sorted %q", query, "a,b")
	}
	if len(releases) != 3 {
		t.Fatalf("expected 3 releases, got %d", len(releases))
	}

	a := releases[0]
	if a.Name != "a" || a.Number != "1.0" || a.Platform != "ruby" {
		t.Errorf("unexpected first release %+v", a)
	}
	if len(a.Dependencies) != 1 || a.Dependencies[0].Name != "b" || a.Dependencies[0].Requirements[0] != ">= 1.0" {
		t.Errorf("unexpected dependencies %+v", a.Dependencies)
	}
	if releases[2].Platform != "java" {
		t.Errorf("platform = %q, want java", releases[2].Platform)
	}
}

func TestClient_FetchReleasesBatch_Empty(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:0")
	releases, err := c.FetchReleasesBatch(context.Background(), nil, false)
	if err != nil || releases != nil {
		t.Errorf("FetchReleasesBatch(nil) = %v, %v", releases, err)
	}
}

func TestClient_FetchReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info/rack-test" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("---\n" +
			"0.6.3 rack:>= 1.0|checksum:aaa\n" +
			"1.0.0 rack:>= 1.0&< 3|checksum:bbb,ruby:>= 2.0\n"))
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	releases, err := c.FetchReleases(context.Background(), "rack-test", true)
	if err != nil {
		t.Fatalf("FetchReleases failed: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("expected 2 releases, got %d", len(releases))
	}
	last := releases[1]
	if last.Number != "1.0.0" || last.Platform != "ruby" {
		t.Errorf("unexpected release %+v", last)
	}
	if got := last.Dependencies[0].Requirements; len(got) != 2 || got[1] != "< 3" {
		t.Errorf("requirements = %v", got)
	}
}

func TestClient_FetchReleases_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL)

	releases, err := c.FetchReleases(context.Background(), "missing-gem", true)
	if err != nil {
		t.Fatalf("unexpected error for unknown gem: %v", err)
	}
	if len(releases) != 0 {
		t.Errorf("expected no releases, got %d", len(releases))
	}
}

func TestClient_FetchReleases_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.FetchReleases(context.Background(), "rails", true)
	if !errors.Is(err, integrations.ErrNetwork) {
		t.Errorf("expected ErrNetwork, got %v", err)
	}
}

func TestClient_FetchReleases_Cached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("---\n1.0.0 |checksum:x\n"))
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(backend, time.Hour).WithIndexURL(server.URL)

	for range 3 {
		if _, err := c.FetchReleases(context.Background(), "rake", false); err != nil {
			t.Fatalf("FetchReleases failed: %v", err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestClient_MetadataDependencies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("---\n2.0.0 |checksum:x,ruby:>= 2.7.0,rubygems:>= 3.0\n"))
	}))
	defer server.Close()

	c := testClient(t, server.URL).WithMetadataDependencies(map[string]string{"ruby": "Ruby\x00"})

	releases, err := c.FetchReleases(context.Background(), "gem", true)
	if err != nil {
		t.Fatalf("FetchReleases failed: %v", err)
	}
	deps := releases[0].Dependencies
	if len(deps) != 1 || deps[0].Name != "Ruby\x00" || deps[0].Requirements[0] != ">= 2.7.0" {
		t.Errorf("metadata dependencies = %+v", deps)
	}
}

func TestClient_WithBaseURLTrimsSlash(t *testing.T) {
	c := NewClient(nil, time.Hour).WithBaseURL("https://gems.example.com/")
	if c.baseURL != "https://gems.example.com" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.indexURL != DefaultIndexURL {
		t.Errorf("indexURL changed to %q", c.indexURL)
	}
}

func testClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return &Client{
		Client:   integrations.NewClient(cache.NewNullCache(), "rubygems", time.Hour, nil),
		baseURL:  serverURL,
		indexURL: serverURL,
	}
}
