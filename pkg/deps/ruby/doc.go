// Package ruby connects the crawler to the Ruby ecosystem.
//
// [Registry] adapts a [rubygems.Client] to [deps.BatchRegistry].
// [HostVersions] supplies the versions of the Ruby and RubyGems
// pseudo-packages, and [GemfileSeeds] turns a Gemfile into crawl seeds.
//
//	client := rubygems.NewClient(backend, 24*time.Hour)
//	host := &ruby.HostVersions{}
//	specs, err := deps.NewCrawler(ruby.NewRegistry(client)).Crawl(ctx, deps.Options{
//	    Seeds:  []string{"rails"},
//	    Pseudo: host.Pseudo("", ""),
//	})
//
// [rubygems.Client]: github.com/matzehuels/gemindex/pkg/integrations/rubygems.Client
// [deps.BatchRegistry]: github.com/matzehuels/gemindex/pkg/deps.BatchRegistry
package ruby
