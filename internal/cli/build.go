package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gemindex/pkg/config"
	"github.com/matzehuels/gemindex/pkg/deps/ruby"
	"github.com/matzehuels/gemindex/pkg/pipeline"
)

// buildOpts holds the command-line flags for the build command. Flags that
// were set override the config file.
type buildOpts struct {
	seeds           []string
	deny            []string
	gemfile         string
	output          string
	compact         bool
	dateStamp       bool
	concurrency     int
	batchSize       int
	mode            string
	cacheBackend    string
	refresh         bool
	metadataDeps    bool
	rubyVersion     string
	rubygemsVersion string
}

// buildCommand creates the build command, which runs a full index build.
func (c *CLI) buildCommand() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [seed...]",
		Short: "Crawl RubyGems and write the index",
		Long: `Crawl the RubyGems registry from the seed gems, follow every dependency until
no new gems appear, and write the coerced index.

Seeds given as arguments or with --seed replace the configured seeds. The gem
declarations of a Gemfile (--gemfile or gemfile in the config) are added to
seeds given on the command line and otherwise replace the configured seeds.
The output is a JSON file or a MongoDB URI.

Examples:
  gemindex build                                  # seeds and output from config
  gemindex build rack sinatra -o index/small.json
  gemindex build --gemfile Gemfile --mode compact
  gemindex build -o mongodb://localhost:27017/gemindex`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.seeds = append(opts.seeds, args...)
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), cfg, opts.refresh)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.seeds, "seed", "s", nil, "seed gem (repeatable, replaces configured seeds)")
	cmd.Flags().StringSliceVar(&opts.deny, "deny", nil, "gem never queried nor followed (repeatable, added to configured list)")
	cmd.Flags().StringVar(&opts.gemfile, "gemfile", "", "read seeds from the gem declarations of a Gemfile")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or MongoDB URI")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "write compact JSON instead of indented")
	cmd.Flags().BoolVar(&opts.dateStamp, "date-stamp", false, "insert the build date into the output file name")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "concurrent registry requests per pass")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "gems per dependency API request")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "registry mode: batch (dependency API) or compact (compact index)")
	cmd.Flags().StringVar(&opts.cacheBackend, "cache", "", "cache backend: file, redis, none")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached registry responses")
	cmd.Flags().BoolVar(&opts.metadataDeps, "metadata-deps", false, "follow required Ruby/RubyGems versions as dependencies (compact mode)")
	cmd.Flags().StringVar(&opts.rubyVersion, "ruby-version", "", "version reported for the Ruby pseudo-gem (default: detect)")
	cmd.Flags().StringVar(&opts.rubygemsVersion, "rubygems-version", "", "version reported for the RubyGems pseudo-gem (default: detect)")
	completeValues(cmd, "mode", modeValues...)
	completeValues(cmd, "cache", cacheValues...)

	return cmd
}

// apply merges the flags that were set on cmd into cfg and validates it.
func (o *buildOpts) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if len(o.seeds) > 0 {
		cfg.Seeds = o.seeds
	}
	if o.gemfile != "" {
		cfg.Gemfile = o.gemfile
	}
	if cfg.Gemfile != "" {
		seeds, err := ruby.GemfileSeeds(cfg.Gemfile)
		if err != nil {
			return err
		}
		if len(o.seeds) > 0 {
			cfg.Seeds = append(cfg.Seeds, seeds...)
		} else {
			cfg.Seeds = seeds
		}
		slices.Sort(cfg.Seeds)
		cfg.Seeds = slices.Compact(cfg.Seeds)
	}
	cfg.Deny = append(cfg.Deny, o.deny...)

	if changed("output") {
		cfg.Output = o.output
	}
	if changed("compact") {
		cfg.Pretty = !o.compact
	}
	if changed("date-stamp") {
		cfg.DateStamp = o.dateStamp
	}
	if changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if changed("batch-size") {
		cfg.BatchSize = o.batchSize
	}
	if changed("mode") {
		cfg.Registry.Mode = o.mode
	}
	if changed("cache") {
		cfg.Cache.Backend = o.cacheBackend
	}
	if changed("metadata-deps") {
		cfg.Registry.MetadataDependencies = o.metadataDeps
	}
	if o.rubyVersion != "" {
		cfg.Host.RubyVersion = o.rubyVersion
	}
	if o.rubygemsVersion != "" {
		cfg.Host.RubyGemsVersion = o.rubygemsVersion
	}
	return cfg.Validate()
}

func (c *CLI) runBuild(ctx context.Context, cfg *config.Config, refresh bool) error {
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := pipeline.FromConfig(cfg)
	opts.Refresh = refresh

	c.Logger.Info("building index",
		"seeds", len(cfg.Seeds),
		"mode", cfg.Registry.Mode,
		"cache", cfg.Cache.Backend)

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	printSuccess("Indexed %s gems, %s entries",
		StyleNumber.Render(fmt.Sprint(result.Stats.Gems)),
		StyleNumber.Render(fmt.Sprint(result.Stats.Entries)))
	printFile(result.Location)
	printStats(result.Stats)
	printDetail("run %s", result.RunID)
	printNextStep("Browse it", "gemindex browse "+result.Location)
	return nil
}
