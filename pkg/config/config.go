// Package config loads gemindex build settings from TOML or YAML files.
//
// Files are decoded on top of [Default], so a file only needs the keys it
// changes:
//
//	seeds = ["rails", "capybara", "bundler"]
//	deny = ["rails-assets-jquery"]
//	output = "index/rubygems.json"
//
//	[deny_versions]
//	nokogiri = ["1.5.0.beta.1"]
//
//	[registry]
//	mode = "batch"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "6h"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gemindex/pkg/deps"
	gemerrors "github.com/matzehuels/gemindex/pkg/errors"
	"github.com/matzehuels/gemindex/pkg/integrations/rubygems"
)

// AppName is used for the cache directory and the default database name.
const AppName = "gemindex"

// Registry modes.
const (
	ModeBatch   = "batch"   // Bundler dependency API, many gems per request
	ModeCompact = "compact" // compact index, one request per gem
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds every setting of an index build.
type Config struct {
	Seeds        []string             `toml:"seeds" yaml:"seeds"`
	Gemfile      string               `toml:"gemfile" yaml:"gemfile"`
	Deny         []string             `toml:"deny" yaml:"deny"`
	DenyVersions map[string][]Version `toml:"deny_versions" yaml:"deny_versions"`
	Output       string               `toml:"output" yaml:"output"`
	Pretty       bool                 `toml:"pretty" yaml:"pretty"`
	DateStamp    bool                 `toml:"date_stamp" yaml:"date_stamp"`
	Concurrency  int                  `toml:"concurrency" yaml:"concurrency"`
	BatchSize    int                  `toml:"batch_size" yaml:"batch_size"`

	Registry Registry `toml:"registry" yaml:"registry"`
	Cache    Cache    `toml:"cache" yaml:"cache"`
	Host     Host     `toml:"host" yaml:"host"`
}

// Registry selects and locates the RubyGems endpoints.
type Registry struct {
	Mode                 string `toml:"mode" yaml:"mode"`
	BaseURL              string `toml:"base_url" yaml:"base_url"`
	IndexURL             string `toml:"index_url" yaml:"index_url"`
	Platform             string `toml:"platform" yaml:"platform"`
	MetadataDependencies bool   `toml:"metadata_dependencies" yaml:"metadata_dependencies"`
}

// Cache configures registry response caching.
type Cache struct {
	Backend   string   `toml:"backend" yaml:"backend"`
	Dir       string   `toml:"dir" yaml:"dir"`
	RedisAddr string   `toml:"redis_addr" yaml:"redis_addr"`
	TTL       Duration `toml:"ttl" yaml:"ttl"`
}

// Host pins or locates the versions of the Ruby and RubyGems pseudo-packages.
type Host struct {
	RubyVersion     string `toml:"ruby_version" yaml:"ruby_version"`
	RubyGemsVersion string `toml:"rubygems_version" yaml:"rubygems_version"`
	RubyBin         string `toml:"ruby_bin" yaml:"ruby_bin"`
	RubyPackage     string `toml:"ruby_package" yaml:"ruby_package"`
	RubyGemsPackage string `toml:"rubygems_package" yaml:"rubygems_package"`
}

// Default returns the settings of the original rubygems.org index build.
func Default() *Config {
	return &Config{
		Seeds:       []string{"rails", "capybara", "bundler"},
		Output:      "index/rubygems.json",
		Pretty:      true,
		Concurrency: deps.DefaultConcurrency,
		BatchSize:   deps.DefaultBatchSize,
		Registry: Registry{
			Mode:     ModeBatch,
			BaseURL:  rubygems.DefaultBaseURL,
			IndexURL: rubygems.DefaultIndexURL,
			Platform: deps.UniversalPlatform,
		},
		Cache: Cache{
			Backend: CacheFile,
			TTL:     Duration(24 * time.Hour),
		},
		Host: Host{
			RubyPackage:     "Ruby\x00",
			RubyGemsPackage: "RubyGems\x00",
		},
	}
}

// Load reads the file at path, choosing the decoder by extension
// (.toml, .yaml, .yml), and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gemerrors.Wrap(gemerrors.ErrCodeInvalidConfig, err, "read config")
	}
	cfg, err := Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, gemerrors.Wrap(gemerrors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Parse decodes data in the given format ("toml", "yaml" or "yml") on top of
// Default and validates the result.
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(format) {
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks names, modes and limits.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 && c.Gemfile == "" {
		return gemerrors.New(gemerrors.ErrCodeInvalidConfig, "no seeds and no gemfile configured")
	}
	for _, name := range c.Seeds {
		if err := gemerrors.ValidateGemName(name); err != nil {
			return err
		}
	}
	for _, name := range c.Deny {
		if err := c.validateDenied(name); err != nil {
			return err
		}
	}
	for name := range c.DenyVersions {
		if err := c.validateDenied(name); err != nil {
			return err
		}
	}
	if c.Output == "" {
		return gemerrors.New(gemerrors.ErrCodeInvalidConfig, "output must not be empty")
	}
	if c.Concurrency < 1 {
		return gemerrors.New(gemerrors.ErrCodeInvalidConfig, "concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.BatchSize < 1 {
		return gemerrors.New(gemerrors.ErrCodeInvalidConfig, "batch_size must be at least 1, got %d", c.BatchSize)
	}

	switch c.Registry.Mode {
	case ModeBatch, ModeCompact:
	default:
		return gemerrors.New(gemerrors.ErrCodeInvalidConfig, "registry mode must be %q or %q, got %q", ModeBatch, ModeCompact, c.Registry.Mode)
	}
	for _, u := range []string{c.Registry.BaseURL, c.Registry.IndexURL} {
		if err := gemerrors.ValidateURL(u); err != nil {
			return err
		}
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return gemerrors.New(gemerrors.ErrCodeInvalidConfig, "redis cache requires redis_addr")
		}
	default:
		return gemerrors.New(gemerrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return gemerrors.New(gemerrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return nil
}

// validateDenied accepts gem names and the configured pseudo-package names,
// which carry a trailing NUL.
func (c *Config) validateDenied(name string) error {
	if name == c.Host.RubyPackage || name == c.Host.RubyGemsPackage {
		return nil
	}
	return gemerrors.ValidatePackageName(name)
}

// DenyVersionMap returns DenyVersions as plain strings.
func (c *Config) DenyVersionMap() map[string][]string {
	out := make(map[string][]string, len(c.DenyVersions))
	for name, versions := range c.DenyVersions {
		vs := make([]string, len(versions))
		for i, v := range versions {
			vs[i] = string(v)
		}
		out[name] = vs
	}
	return out
}

// CacheDir returns the configured cache directory, or the XDG default
// (~/.cache/gemindex).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultCacheDir returns $XDG_CACHE_HOME/gemindex or ~/.cache/gemindex.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
