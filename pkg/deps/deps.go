package deps

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

const (
	DefaultConcurrency = 8      // Default number of concurrent registry requests per pass
	DefaultBatchSize   = 200    // Default names per batch request
	UniversalPlatform  = "ruby" // Platform marker of architecture-independent releases
)

// Dependency is a dependency edge of a release: a target gem name and the
// raw requirement clauses published for it.
type Dependency struct {
	Name         string   // Target gem name
	Requirements []string // Raw requirement clauses, e.g. ["~> 1.1", ">= 1.1.4"]
}

// Release is one raw record returned by a Registry.
type Release struct {
	Name         string       // Owning gem name
	Version      string       // Raw version string as published
	Platform     string       // Platform tag; empty counts as universal
	Dependencies []Dependency // Runtime dependencies in published order
}

// Spec is one retained release after crawl filtering. It is the unit the
// crawler hands to index aggregation.
type Spec struct {
	Name         string       // Gem name
	Version      string       // Raw version string
	Dependencies []Dependency // Dependencies with denied targets removed
}

// Registry fetches every published release of a gem.
type Registry interface {
	// FetchReleases returns all release records for name. If refresh is
	// true, cached data is bypassed.
	FetchReleases(ctx context.Context, name string, refresh bool) ([]Release, error)
}

// BatchRegistry is a Registry that can answer for many names in one request.
// Each returned Release carries its owning name.
type BatchRegistry interface {
	Registry
	FetchReleasesBatch(ctx context.Context, names []string, refresh bool) ([]Release, error)
}

// VersionFunc reports the version of a pseudo-package such as the running
// Ruby interpreter.
type VersionFunc func(ctx context.Context) (string, error)

// Options configures a crawl.
type Options struct {
	Seeds        []string               // Names the closure starts from
	Deny         []string               // Names never queried nor followed
	DenyVersions map[string][]string    // Raw versions discarded per name
	Pseudo       map[string]VersionFunc // Names synthesized without the registry
	Platform     string                 // Universal platform marker (default: "ruby")
	Concurrency  int                    // Concurrent requests per pass (default: 8)
	BatchSize    int                    // Names per batch request (default: 200)
	Batch        bool                   // Use BatchRegistry when available
	Refresh      bool                   // Bypass registry caches
	Logger       *log.Logger            // Progress logger (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Platform == "" {
		opts.Platform = UniversalPlatform
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}
