// Package rubygems provides an HTTP client for the RubyGems.org registry.
//
// # Overview
//
// Two endpoints expose the release records a dependency crawl needs:
//
//   - the Bundler dependency API, /api/v1/dependencies.json?gems=a,b, which
//     answers for many gems at once ([Client.FetchReleasesBatch])
//   - the compact index, /info/<gem>, one plain-text file per gem
//     ([Client.FetchReleases], parsed by [ParseInfo])
//
// # Usage
//
//	client := rubygems.NewClient(cache.NewNullCache(), 24*time.Hour)
//	releases, err := client.FetchReleases(ctx, "rails", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range releases {
//	    fmt.Println(r.Number, r.Platform, len(r.Dependencies))
//	}
//
// # Caching
//
// Responses are cached through the backend passed to [NewClient]. Mirrors
// configured with [Client.WithBaseURL] or [Client.WithIndexURL] get their own
// key scope. Pass refresh=true to bypass the cache.
//
// # Metadata
//
// Compact index lines carry the required Ruby and RubyGems versions as
// metadata. [Client.WithMetadataDependencies] turns them into ordinary
// dependencies so a crawl can treat the host runtime like any other gem.
package rubygems
