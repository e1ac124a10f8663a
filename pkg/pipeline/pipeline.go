// Package pipeline runs a complete gemindex build.
//
// A build has three stages:
//
//  1. Crawl: discover the dependency closure of the seeds (see [deps.Crawler])
//  2. Aggregate: coerce and group the crawled specs (see [index.Aggregate])
//  3. Write: hand the index to a sink, a JSON file or MongoDB
//
// The CLI and the HTTP API share one [Runner], so caching, logging and
// defaults behave the same regardless of the entry point.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.FromConfig(cfg)
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Location, result.Stats.Gems)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gemindex/pkg/config"
	"github.com/matzehuels/gemindex/pkg/deps"
	"github.com/matzehuels/gemindex/pkg/deps/ruby"
	gemerrors "github.com/matzehuels/gemindex/pkg/errors"
	"github.com/matzehuels/gemindex/pkg/index"
	gemio "github.com/matzehuels/gemindex/pkg/io"
)

// Options configures one build. Zero values are replaced by the defaults of
// [config.Default] where it has one.
type Options struct {
	Seeds        []string
	Deny         []string
	DenyVersions map[string][]string

	// Output is a file path or a MongoDB URI. Empty skips the write stage.
	Output    string
	Pretty    bool
	DateStamp bool

	Concurrency int
	BatchSize   int
	Refresh     bool

	Mode                 string // config.ModeBatch or config.ModeCompact
	BaseURL              string
	IndexURL             string
	Platform             string
	MetadataDependencies bool
	CacheTTL             time.Duration

	Host            ruby.HostVersions
	RubyPackage     string
	RubyGemsPackage string

	// Registry overrides the RubyGems client built from the fields above.
	Registry deps.Registry
	// Sink overrides the sink built from Output.
	Sink gemio.Sink

	Logger *log.Logger
}

// FromConfig translates a loaded configuration into build options.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Seeds:                cfg.Seeds,
		Deny:                 cfg.Deny,
		DenyVersions:         cfg.DenyVersionMap(),
		Output:               cfg.Output,
		Pretty:               cfg.Pretty,
		DateStamp:            cfg.DateStamp,
		Concurrency:          cfg.Concurrency,
		BatchSize:            cfg.BatchSize,
		Mode:                 cfg.Registry.Mode,
		BaseURL:              cfg.Registry.BaseURL,
		IndexURL:             cfg.Registry.IndexURL,
		Platform:             cfg.Registry.Platform,
		MetadataDependencies: cfg.Registry.MetadataDependencies,
		CacheTTL:             cfg.Cache.TTL.Std(),
		Host: ruby.HostVersions{
			RuntimeVersion:        cfg.Host.RubyVersion,
			PackageManagerVersion: cfg.Host.RubyGemsVersion,
			RubyBin:               cfg.Host.RubyBin,
		},
		RubyPackage:     cfg.Host.RubyPackage,
		RubyGemsPackage: cfg.Host.RubyGemsPackage,
	}
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Seeds) == 0 {
		return gemerrors.New(gemerrors.ErrCodeInvalidInput, "no seed gems given")
	}
	for _, name := range o.Seeds {
		if err := gemerrors.ValidatePackageName(name); err != nil {
			return err
		}
	}
	if o.Mode == "" {
		o.Mode = config.ModeBatch
	}
	if o.Mode != config.ModeBatch && o.Mode != config.ModeCompact {
		return gemerrors.New(gemerrors.ErrCodeInvalidInput, "unknown registry mode %q", o.Mode)
	}
	if o.Concurrency <= 0 {
		o.Concurrency = deps.DefaultConcurrency
	}
	if o.BatchSize <= 0 {
		o.BatchSize = deps.DefaultBatchSize
	}
	if o.Platform == "" {
		o.Platform = deps.UniversalPlatform
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = config.Default().Cache.TTL.Std()
	}
	if o.RubyPackage == "" {
		o.RubyPackage = ruby.RubyPackage
	}
	if o.RubyGemsPackage == "" {
		o.RubyGemsPackage = ruby.RubyGemsPackage
	}
	return nil
}

// crawlOptions derives the crawler settings.
func (o Options) crawlOptions() deps.Options {
	return deps.Options{
		Seeds:        o.Seeds,
		Deny:         o.Deny,
		DenyVersions: o.DenyVersions,
		Pseudo:       o.Host.Pseudo(o.RubyPackage, o.RubyGemsPackage),
		Platform:     o.Platform,
		Concurrency:  o.Concurrency,
		BatchSize:    o.BatchSize,
		Batch:        o.Mode == config.ModeBatch,
		Refresh:      o.Refresh,
		Logger:       o.Logger,
	}
}

// Stats holds stage timings and counts of a build.
type Stats struct {
	Specs         int // Releases retained by the crawl
	Gems          int // Gems in the index
	Entries       int // Entries across all gems
	CrawlTime     time.Duration
	AggregateTime time.Duration
	WriteTime     time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.CrawlTime + s.AggregateTime + s.WriteTime
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	RunID     string
	StartedAt time.Time
	Index     *index.Index
	Location  string // Where the index was written; empty when not written
	Stats     Stats
}
