package deps_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/gemindex/pkg/deps"
)

type staticRegistry map[string][]deps.Release

func (r staticRegistry) FetchReleases(_ context.Context, name string, _ bool) ([]deps.Release, error) {
	return r[name], nil
}

func ExampleCrawler_Crawl() {
	registry := staticRegistry{
		"a": {{Name: "a", Version: "1.0.0", Platform: "ruby",
			Dependencies: []deps.Dependency{{Name: "b", Requirements: []string{">= 1.0"}}}}},
		"b": {{Name: "b", Version: "2.0", Platform: "ruby"}},
	}

	specs, err := deps.NewCrawler(registry).Crawl(context.Background(), deps.Options{
		Seeds: []string{"a"},
	})
	if err != nil {
		panic(err)
	}
	for _, s := range specs {
		fmt.Println(s.Name, s.Version, len(s.Dependencies))
	}
	// Output:
	// a 1.0.0 1
	// b 2.0 0
}

func ExampleOptions_WithDefaults() {
	opts := deps.Options{Concurrency: 4}.WithDefaults()

	fmt.Println("Concurrency:", opts.Concurrency)
	fmt.Println("BatchSize:", opts.BatchSize)
	fmt.Println("Platform:", opts.Platform)
	// Output:
	// Concurrency: 4
	// BatchSize: 200
	// Platform: ruby
}
