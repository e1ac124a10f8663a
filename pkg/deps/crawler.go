package deps

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gemindex/pkg/observability"
)

// Crawler discovers the transitive dependency closure of a seed set by
// querying a Registry pass by pass until no new names appear.
//
// A Crawler holds no crawl state; every call to Crawl starts from scratch,
// so one Crawler may serve concurrent crawls.
type Crawler struct {
	registry Registry
}

// NewCrawler creates a Crawler that reads releases from r.
func NewCrawler(r Registry) *Crawler {
	return &Crawler{registry: r}
}

// Crawl runs the closure and returns the retained specs.
//
// Each pass queries every known but unvisited name once. Denied names are
// marked visited without being queried. Releases for a foreign platform or a
// denied version are discarded, denied dependency targets are removed from
// the rest, and the remaining targets join the known set. The crawl ends when
// a pass discovers nothing new.
//
// Fetches within a pass run concurrently, but results are merged in sorted
// name order after the pass, so the returned slice does not depend on network
// timing. The first registry error aborts the crawl.
func (c *Crawler) Crawl(ctx context.Context, opts Options) ([]Spec, error) {
	opts = opts.WithDefaults()
	st := newCrawlState(opts)
	hooks := observability.Crawl()

	for pass := 1; ; pass++ {
		frontier := st.frontier()
		if len(frontier) == 0 {
			break
		}
		start := time.Now()
		hooks.OnPassStart(ctx, pass, len(frontier))

		var query []string
		for _, name := range frontier {
			st.visited[name] = true
			if st.deny[name] {
				opts.Logger.Debug("skipping denied gem", "gem", name)
				continue
			}
			query = append(query, name)
		}

		results, err := c.fetchPass(ctx, query, opts)
		if err != nil {
			return nil, err
		}

		before, fetched := len(st.known), 0
		for _, releases := range results {
			fetched += len(releases)
			for _, rel := range releases {
				st.retain(rel)
			}
		}

		hooks.OnPassComplete(ctx, pass, fetched, time.Since(start))
		opts.Logger.Info("crawl pass",
			"pass", pass,
			"queried", len(query),
			"releases", fetched,
			"discovered", len(st.known)-before,
			"duration", time.Since(start).Round(time.Millisecond))
	}

	return st.specs, nil
}

// fetchUnit is one independent registry call within a pass.
type fetchUnit struct {
	names  []string
	pseudo VersionFunc
}

// fetchPass queries the registry for names and returns one result slot per
// unit, in unit order.
func (c *Crawler) fetchPass(ctx context.Context, names []string, opts Options) ([][]Release, error) {
	units := c.plan(names, opts)
	results := make([][]Release, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, u := range units {
		g.Go(func() error {
			start := time.Now()
			releases, err := c.fetchUnit(gctx, u, opts)
			observability.Crawl().OnFetch(gctx, u.names, len(releases), time.Since(start), err)
			if err != nil {
				return err
			}
			opts.Logger.Debug("fetched", "gems", u.names, "releases", len(releases))
			results[i] = releases
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// plan splits names into fetch units: one per pseudo-package, then either
// one per name or one per batch of names.
func (c *Crawler) plan(names []string, opts Options) []fetchUnit {
	var units []fetchUnit
	var remote []string
	for _, name := range names {
		if fn, ok := opts.Pseudo[name]; ok && fn != nil {
			units = append(units, fetchUnit{names: []string{name}, pseudo: fn})
			continue
		}
		remote = append(remote, name)
	}

	if _, ok := c.registry.(BatchRegistry); ok && opts.Batch {
		for chunk := range slices.Chunk(remote, opts.BatchSize) {
			units = append(units, fetchUnit{names: chunk})
		}
		return units
	}
	for _, name := range remote {
		units = append(units, fetchUnit{names: []string{name}})
	}
	return units
}

func (c *Crawler) fetchUnit(ctx context.Context, u fetchUnit, opts Options) ([]Release, error) {
	if u.pseudo != nil {
		name := u.names[0]
		v, err := u.pseudo(ctx)
		if err != nil {
			return nil, fmt.Errorf("host version for %q: %w", name, err)
		}
		return []Release{{Name: name, Version: v}}, nil
	}

	if opts.Batch {
		if br, ok := c.registry.(BatchRegistry); ok {
			releases, err := br.FetchReleasesBatch(ctx, u.names, opts.Refresh)
			if err != nil {
				return nil, fmt.Errorf("fetch %d gems starting at %q: %w", len(u.names), u.names[0], err)
			}
			return releases, nil
		}
	}

	name := u.names[0]
	releases, err := c.registry.FetchReleases(ctx, name, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", name, err)
	}
	for i := range releases {
		if releases[i].Name == "" {
			releases[i].Name = name
		}
	}
	return releases, nil
}

// crawlState is owned by a single Crawl call.
type crawlState struct {
	opts         Options
	known        map[string]bool
	visited      map[string]bool
	deny         map[string]bool
	denyVersions map[string]map[string]bool
	specs        []Spec
}

func newCrawlState(opts Options) *crawlState {
	st := &crawlState{
		opts:         opts,
		known:        make(map[string]bool, len(opts.Seeds)),
		visited:      make(map[string]bool),
		deny:         make(map[string]bool, len(opts.Deny)),
		denyVersions: make(map[string]map[string]bool, len(opts.DenyVersions)),
	}
	for _, s := range opts.Seeds {
		st.known[s] = true
	}
	for _, d := range opts.Deny {
		st.deny[d] = true
	}
	for name, versions := range opts.DenyVersions {
		set := make(map[string]bool, len(versions))
		for _, v := range versions {
			set[v] = true
		}
		st.denyVersions[name] = set
	}
	return st
}

// frontier returns known but unvisited names in sorted order.
func (st *crawlState) frontier() []string {
	var out []string
	for name := range st.known {
		if !st.visited[name] {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// retain applies the platform, version and deny filters to rel and records
// the resulting spec and its dependency targets.
func (st *crawlState) retain(rel Release) {
	if rel.Platform != "" && rel.Platform != st.opts.Platform {
		return
	}
	if st.denyVersions[rel.Name][rel.Version] {
		return
	}

	deps := make([]Dependency, 0, len(rel.Dependencies))
	for _, d := range rel.Dependencies {
		if st.deny[d.Name] {
			continue
		}
		deps = append(deps, d)
		st.known[d.Name] = true
	}
	st.specs = append(st.specs, Spec{Name: rel.Name, Version: rel.Version, Dependencies: deps})
}
