// Package deps discovers the dependency closure of a set of gems.
//
// # Overview
//
// A [Crawler] starts from seed names and repeatedly asks a [Registry] for
// every release of each newly discovered name, until a pass discovers
// nothing new. The result is a flat list of [Spec] values that
// [github.com/matzehuels/gemindex/pkg/index] turns into the final index.
//
//	crawler := deps.NewCrawler(ruby.NewRegistry(client))
//	specs, err := crawler.Crawl(ctx, deps.Options{
//	    Seeds: []string{"rails", "capybara", "bundler"},
//	})
//
// # Filtering
//
// [Options] bounds and shapes the crawl:
//
//   - Deny: names that are never queried and never followed as dependencies
//   - DenyVersions: raw versions discarded per gem
//   - Platform: only releases for this platform (or with no platform) are kept
//   - Pseudo: names answered locally, such as the running Ruby version
//
// # Concurrency
//
// Requests within a pass run concurrently, bounded by Options.Concurrency.
// When the registry implements [BatchRegistry] and Options.Batch is set, a
// pass is split into requests of Options.BatchSize names. Results are merged
// in sorted name order after each pass, so output never depends on which
// response arrived first.
//
// # Errors
//
// The crawler does not retry. Any registry or host lookup error aborts the
// crawl and is returned wrapped with the name that failed; retries belong to
// the registry client.
package deps
