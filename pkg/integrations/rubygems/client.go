package rubygems

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/gemindex/pkg/cache"
	"github.com/matzehuels/gemindex/pkg/integrations"
)

const (
	// DefaultBaseURL serves the Bundler dependency API.
	DefaultBaseURL = "https://rubygems.org"
	// DefaultIndexURL serves the compact index.
	DefaultIndexURL = "https://index.rubygems.org"
)

// Release is one published (name, version, platform) record of a gem.
//
// Platform is "ruby" for pure-Ruby releases; records from the dependency API
// without a platform keep it empty.
type Release struct {
	Name         string       `json:"name"`
	Number       string       `json:"number"`
	Platform     string       `json:"platform,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// Dependency is a runtime dependency of a release. Requirements holds the
// raw clauses as published, e.g. ["~> 1.1", ">= 1.1.4"].
type Dependency struct {
	Name         string   `json:"name"`
	Requirements []string `json:"requirements"`
}

// Client provides access to the RubyGems dependency API and compact index.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL  string
	indexURL string
	metadata map[string]string
}

// NewClient creates a RubyGems client with the given cache backend.
//
// Parameters:
//   - backend: cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: how long responses are cached (typical: 1-24 hours)
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client: integrations.NewClient(backend, "rubygems", cacheTTL, map[string]string{
			"Accept": "application/json, text/plain",
		}),
		baseURL:  DefaultBaseURL,
		indexURL: DefaultIndexURL,
	}
}

// WithBaseURL points the dependency API at a mirror. Cache keys are scoped to
// the mirror host so responses from different sources never mix.
func (c *Client) WithBaseURL(u string) *Client {
	u = strings.TrimSuffix(u, "/")
	if u != "" && u != c.baseURL {
		c.baseURL = u
		c.rescope()
	}
	return c
}

// WithIndexURL points the compact index at a mirror.
func (c *Client) WithIndexURL(u string) *Client {
	u = strings.TrimSuffix(u, "/")
	if u != "" && u != c.indexURL {
		c.indexURL = u
		c.rescope()
	}
	return c
}

func (c *Client) rescope() {
	c.WithKeyer(cache.NewScopedKeyer(nil, "mirror:"+c.baseURL+"|"+c.indexURL+":"))
}

// WithMetadataDependencies surfaces compact-index metadata requirements as
// dependencies. The map goes from metadata key ("ruby", "rubygems") to the
// dependency name to emit.
func (c *Client) WithMetadataDependencies(m map[string]string) *Client {
	c.metadata = m
	return c
}

// FetchReleases retrieves every release of gem from the compact index
// (/info/<gem>). A gem the index does not know yields no releases.
//
// If refresh is true, the cache is bypassed and a fresh request is made.
func (c *Client) FetchReleases(ctx context.Context, gem string, refresh bool) ([]Release, error) {
	gem = integrations.NormalizeGemName(gem)
	if gem == "" {
		return nil, fmt.Errorf("empty gem name")
	}

	var body string
	err := c.Cached(ctx, "info:"+gem, refresh, &body, func() error {
		text, err := c.GetText(ctx, c.indexURL+"/info/"+integrations.PathEscape(gem))
		if err != nil {
			return err
		}
		body = text
		return nil
	})
	if errors.Is(err, integrations.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", gem, err)
	}
	return ParseInfo(gem, body, c.metadata)
}

// FetchReleasesBatch retrieves the releases of all names with one request to
// the Bundler dependency API (/api/v1/dependencies.json?gems=a,b). Unknown
// names are silently absent from the result. Callers are expected to keep
// batches small; RubyGems caps them at a few hundred names.
func (c *Client) FetchReleasesBatch(ctx context.Context, names []string, refresh bool) ([]Release, error) {
	if len(names) == 0 {
		return nil, nil
	}
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	joined := strings.Join(sorted, ",")

	var records []dependencyRecord
	err := c.Cached(ctx, "deps:"+joined, refresh, &records, func() error {
		url := c.baseURL + "/api/v1/dependencies.json?gems=" + integrations.URLEncode(joined)
		return c.Get(ctx, url, &records)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch dependencies for %d gems: %w", len(names), err)
	}

	releases := make([]Release, 0, len(records))
	for _, r := range records {
		releases = append(releases, r.release())
	}
	return releases, nil
}

type dependencyRecord struct {
	Name         string     `json:"name"`
	Number       string     `json:"number"`
	Platform     string     `json:"platform"`
	Dependencies [][]string `json:"dependencies"`
}

func (r dependencyRecord) release() Release {
	rel := Release{Name: r.Name, Number: r.Number, Platform: r.Platform}
	for _, d := range r.Dependencies {
		if len(d) == 0 {
			continue
		}
		dep := Dependency{Name: d[0], Requirements: []string{}}
		if len(d) > 1 {
			dep.Requirements = append(dep.Requirements, d[1])
		}
		rel.Dependencies = append(rel.Dependencies, dep)
	}
	return rel
}
