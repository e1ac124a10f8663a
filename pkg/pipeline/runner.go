package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/gemindex/pkg/cache"
	"github.com/matzehuels/gemindex/pkg/deps"
	"github.com/matzehuels/gemindex/pkg/deps/ruby"
	gemerrors "github.com/matzehuels/gemindex/pkg/errors"
	"github.com/matzehuels/gemindex/pkg/index"
	"github.com/matzehuels/gemindex/pkg/integrations"
	"github.com/matzehuels/gemindex/pkg/integrations/rubygems"
	gemio "github.com/matzehuels/gemindex/pkg/io"
	"github.com/matzehuels/gemindex/pkg/observability"
)

// Runner executes builds against a shared registry cache.
//
// The Runner keeps no build state; multiple goroutines can use one Runner
// with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// falls back to log.Default().
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs crawl, aggregate and write.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	result, err := r.execute(ctx, opts)

	gems, entries := 0, 0
	if result != nil {
		gems, entries = result.Stats.Gems, result.Stats.Entries
	}
	observability.Crawl().OnBuildComplete(ctx, gems, entries, time.Since(start), err)
	return result, err
}

func (r *Runner) execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}

	result := &Result{RunID: uuid.NewString(), StartedAt: time.Now()}
	logger := opts.Logger.With("run", result.RunID)
	opts.Logger = logger

	// Stage 1: Crawl
	crawlStart := time.Now()
	specs, err := r.Crawl(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.Specs = len(specs)
	result.Stats.CrawlTime = time.Since(crawlStart)
	logger.Info("crawled registry",
		"specs", len(specs),
		"duration", result.Stats.CrawlTime)

	// Stage 2: Aggregate
	aggStart := time.Now()
	idx := index.Aggregate(specs)
	result.Index = idx
	result.Stats.Gems = idx.Len()
	result.Stats.Entries = idx.EntryCount()
	result.Stats.AggregateTime = time.Since(aggStart)
	logger.Info("aggregated index",
		"gems", result.Stats.Gems,
		"entries", result.Stats.Entries,
		"duration", result.Stats.AggregateTime)

	// Stage 3: Write
	if opts.Output == "" && opts.Sink == nil {
		return result, nil
	}
	writeStart := time.Now()
	loc, err := r.Write(ctx, idx, opts, gemio.RunInfo{ID: result.RunID, StartedAt: result.StartedAt})
	if err != nil {
		return nil, err
	}
	result.Location = loc
	result.Stats.WriteTime = time.Since(writeStart)
	logger.Info("wrote index",
		"location", loc,
		"duration", result.Stats.WriteTime)

	return result, nil
}

// Crawl runs only the crawl stage. opts must already carry defaults.
func (r *Runner) Crawl(ctx context.Context, opts Options) ([]deps.Spec, error) {
	registry := opts.Registry
	if registry == nil {
		registry = r.newRegistry(opts)
	}
	specs, err := deps.NewCrawler(registry).Crawl(ctx, opts.crawlOptions())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		switch {
		case gemerrors.GetCode(err) != "":
			return nil, err
		case errors.Is(err, integrations.ErrRateLimited):
			return nil, gemerrors.Wrap(gemerrors.ErrCodeRateLimited, err, "crawl")
		}
		return nil, gemerrors.Wrap(gemerrors.ErrCodeNetwork, err, "crawl")
	}
	return specs, nil
}

// Write hands idx to opts.Sink, or to a sink opened for opts.Output.
func (r *Runner) Write(ctx context.Context, idx *index.Index, opts Options, run gemio.RunInfo) (string, error) {
	sink := opts.Sink
	if sink == nil {
		s, err := gemio.NewSink(ctx, opts.Output, gemio.SinkOptions{Pretty: opts.Pretty, DateStamp: opts.DateStamp})
		if err != nil {
			return "", gemerrors.Wrap(gemerrors.ErrCodeInternal, err, "open sink")
		}
		defer s.Close(context.WithoutCancel(ctx))
		sink = s
	}
	loc, err := sink.Write(ctx, idx, run)
	if err != nil {
		return "", gemerrors.Wrap(gemerrors.ErrCodeInternal, err, "write index")
	}
	return loc, nil
}

func (r *Runner) newRegistry(opts Options) deps.Registry {
	client := rubygems.NewClient(r.Cache, opts.CacheTTL).
		WithBaseURL(opts.BaseURL).
		WithIndexURL(opts.IndexURL)
	if opts.MetadataDependencies {
		client.WithMetadataDependencies(map[string]string{
			"ruby":     opts.RubyPackage,
			"rubygems": opts.RubyGemsPackage,
		})
	}
	return ruby.NewRegistry(client)
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
