package index

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/gemindex/pkg/deps"
	"github.com/matzehuels/gemindex/pkg/semver"
)

// Aggregate turns crawled specs into an Index.
//
// Specs are deduplicated by (name, raw version), keeping the first. Gems are
// ordered by lower-cased name, with the exact name breaking ties, and each
// gem gets one entry per coerced version. When two raw versions coerce to the
// same semver string the first one wins. Entries are sorted by semver
// precedence.
func Aggregate(specs []deps.Spec) *Index {
	type key struct{ name, version string }
	seen := make(map[key]bool, len(specs))
	unique := make([]deps.Spec, 0, len(specs))
	for _, s := range specs {
		k := key{s.Name, s.Version}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, s)
	}

	slices.SortStableFunc(unique, func(a, b deps.Spec) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			strings.Compare(a.Name, b.Name),
		)
	})

	idx := &Index{byName: make(map[string]int)}
	for start := 0; start < len(unique); {
		end := start + 1
		for end < len(unique) && unique[end].Name == unique[start].Name {
			end++
		}
		idx.add(Gem{Name: unique[start].Name, Entries: entries(unique[start:end])})
		start = end
	}
	return idx
}

func entries(group []deps.Spec) []Entry {
	seen := make(map[string]bool, len(group))
	out := make([]Entry, 0, len(group))
	for _, s := range group {
		v := semver.Coerce(s.Version)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, Entry{
			Name:         s.Name,
			Version:      v,
			Dependencies: CoerceDependencies(s.Dependencies),
		})
	}
	slices.SortStableFunc(out, func(a, b Entry) int {
		return semver.Compare(a.Version, b.Version)
	})
	return out
}

// CoerceDependencies maps each dependency name to its coerced requirement.
// A dependency's requirement clauses are joined with ", " before coercion,
// and a repeated name keeps its last occurrence. The result is never nil.
func CoerceDependencies(ds []deps.Dependency) map[string]string {
	out := make(map[string]string, len(ds))
	for _, d := range ds {
		out[d.Name] = semver.CoerceRequirements(d.Requirements)
	}
	return out
}
