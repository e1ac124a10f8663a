// Package index aggregates crawled gem specs into a normalized index.
//
// An [Index] maps each gem name to its releases ([Entry] values), with every
// version and requirement coerced to semver form. Gem names are ordered
// case-insensitively and each gem's entries by semver precedence; no two
// entries of a gem share a version.
//
//	specs, _ := crawler.Crawl(ctx, opts)
//	idx := index.Aggregate(specs)
//	data, _ := json.Marshal(idx)
//
// The JSON form is an object of gem name to an array of
// {"name", "version", "dependencies"} objects, keys in index order.
package index
