// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// The registry-specific client lives in a subpackage:
//
//   - [rubygems]: the RubyGems.org dependency API and compact index
//
// # Client Pattern
//
//	client := rubygems.NewClient(backend, 24*time.Hour)
//	releases, err := client.FetchReleases(ctx, "rails", false) // false = use cache
//
// Clients handle:
//   - HTTP requests with retry, including 429 responses honouring Retry-After
//   - Response caching through any [cache.Cache] backend
//   - API-specific parsing into plain Go structs
//
// # Shared Infrastructure
//
// The [Client] type provides the shared HTTP functionality: default headers,
// JSON and plain-text GETs, status mapping to [ErrNotFound], [ErrNetwork] and
// [ErrRateLimited], and the [Client.Cached] read-through helper. Requests and
// cache traffic are reported through the observability hooks.
//
// [rubygems]: github.com/matzehuels/gemindex/pkg/integrations/rubygems
// [cache.Cache]: github.com/matzehuels/gemindex/pkg/cache.Cache
package integrations
