// Package cli implements the gemindex command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gemindex/pkg/cache"
	"github.com/matzehuels/gemindex/pkg/config"
	"github.com/matzehuels/gemindex/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const appName = config.AppName

// defaultConfigFiles are tried in order when --config is not given.
var defaultConfigFiles = []string{"gemindex.toml", "gemindex.yaml", "gemindex.yml"}

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config, else the first default config file present in
// the working directory, else the built-in defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		for _, name := range defaultConfigFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path == "" {
		return config.Default(), nil
	}
	c.Logger.Debug("loading config", "path", path)
	return config.Load(path)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, c.Logger), nil
}

// newCache opens the registry cache selected by cfg.Cache.Backend. A file
// cache whose directory cannot be determined degrades to no caching.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		c.Logger.Debug("using redis cache", "addr", cfg.Cache.RedisAddr)
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.Cache.RedisAddr, Prefix: appName + ":"})
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		c.Logger.Debug("using file cache", "dir", dir)
		return cache.NewFileCache(dir)
	}
}
