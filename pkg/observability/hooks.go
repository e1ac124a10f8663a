// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about crawl passes,
// registry fetches, cache operations and outgoing HTTP calls. Every hook
// category has a no-op default, so libraries can emit events unconditionally
// and no metrics backend becomes a hard dependency.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCrawlHooks(&myCrawlHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Crawl().OnPassStart(ctx, pass, len(frontier))
//	// ... query the registry ...
//	observability.Crawl().OnPassComplete(ctx, pass, fetched, time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Crawl Hooks
// =============================================================================

// CrawlHooks receives events from the dependency closure crawler and the
// index build that follows it.
type CrawlHooks interface {
	// Pass events. A pass queries every gem name in the frontier once.
	OnPassStart(ctx context.Context, pass, frontier int)
	OnPassComplete(ctx context.Context, pass, releases int, duration time.Duration)

	// OnFetch records a single registry lookup for one or more gem names.
	OnFetch(ctx context.Context, names []string, releases int, duration time.Duration, err error)

	// OnBuildComplete records the end of a full index build.
	OnBuildComplete(ctx context.Context, gems, entries int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, namespace string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, namespace string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, namespace string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCrawlHooks is a no-op implementation of CrawlHooks.
type NoopCrawlHooks struct{}

func (NoopCrawlHooks) OnPassStart(context.Context, int, int)                           {}
func (NoopCrawlHooks) OnPassComplete(context.Context, int, int, time.Duration)         {}
func (NoopCrawlHooks) OnFetch(context.Context, []string, int, time.Duration, error)    {}
func (NoopCrawlHooks) OnBuildComplete(context.Context, int, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	crawlHooks CrawlHooks = NoopCrawlHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetCrawlHooks registers custom crawl hooks. Nil is ignored.
func SetCrawlHooks(h CrawlHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		crawlHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Crawl returns the registered crawl hooks.
func Crawl() CrawlHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return crawlHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	crawlHooks = NoopCrawlHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
