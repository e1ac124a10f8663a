package ruby

import (
	"context"

	"github.com/matzehuels/gemindex/pkg/deps"
	"github.com/matzehuels/gemindex/pkg/integrations/rubygems"
)

// Registry adapts a RubyGems client to [deps.BatchRegistry].
type Registry struct {
	client *rubygems.Client
}

// NewRegistry wraps client for use by a [deps.Crawler].
func NewRegistry(client *rubygems.Client) *Registry {
	return &Registry{client: client}
}

// FetchReleases reads one gem from the compact index.
func (r *Registry) FetchReleases(ctx context.Context, name string, refresh bool) ([]deps.Release, error) {
	releases, err := r.client.FetchReleases(ctx, name, refresh)
	if err != nil {
		return nil, err
	}
	return convert(releases), nil
}

// FetchReleasesBatch reads many gems through the dependency API.
func (r *Registry) FetchReleasesBatch(ctx context.Context, names []string, refresh bool) ([]deps.Release, error) {
	releases, err := r.client.FetchReleasesBatch(ctx, names, refresh)
	if err != nil {
		return nil, err
	}
	return convert(releases), nil
}

func convert(in []rubygems.Release) []deps.Release {
	out := make([]deps.Release, len(in))
	for i, r := range in {
		rel := deps.Release{
			Name:         r.Name,
			Version:      r.Number,
			Platform:     r.Platform,
			Dependencies: make([]deps.Dependency, len(r.Dependencies)),
		}
		for j, d := range r.Dependencies {
			rel.Dependencies[j] = deps.Dependency{Name: d.Name, Requirements: d.Requirements}
		}
		out[i] = rel
	}
	return out
}

var _ deps.BatchRegistry = (*Registry)(nil)
