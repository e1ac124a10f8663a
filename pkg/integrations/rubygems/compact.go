package rubygems

import (
	"bufio"
	"fmt"
	"strings"
)

// DefaultPlatform is the platform of pure-Ruby releases.
const DefaultPlatform = "ruby"

// ParseInfo parses a compact index /info/<gem> body. Each line after the
// "---" header has the form
//
//	VERSION[-PLATFORM] [DEP:REQ&REQ,DEP:REQ]|KEY:VALUE,KEY:VALUE
//
// metadata maps metadata keys such as "ruby" to a dependency name; matching
// requirements are appended to the release's dependencies. Pass nil to
// ignore metadata.
func ParseInfo(gem, body string, metadata map[string]string) ([]Release, error) {
	var releases []Release
	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line == "---" {
			continue
		}
		rel, err := parseInfoLine(gem, line, metadata)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", gem, lineNo, err)
		}
		releases = append(releases, rel)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return releases, nil
}

func parseInfoLine(gem, line string, metadata map[string]string) (Release, error) {
	head, meta, _ := strings.Cut(line, "|")
	head = strings.TrimSpace(head)

	ident, depList, _ := strings.Cut(head, " ")
	if ident == "" {
		return Release{}, fmt.Errorf("missing version")
	}
	number, platform, _ := strings.Cut(ident, "-")
	if platform == "" {
		platform = DefaultPlatform
	}

	rel := Release{Name: gem, Number: number, Platform: platform}
	for _, d := range splitList(depList, ",") {
		name, reqs, ok := strings.Cut(d, ":")
		if !ok || name == "" {
			return Release{}, fmt.Errorf("malformed dependency %q", d)
		}
		rel.Dependencies = append(rel.Dependencies, Dependency{
			Name:         name,
			Requirements: splitList(reqs, "&"),
		})
	}

	if len(metadata) == 0 {
		return rel, nil
	}
	for _, kv := range splitList(meta, ",") {
		key, val, ok := strings.Cut(kv, ":")
		if !ok {
			continue
		}
		if dep, wanted := metadata[key]; wanted {
			rel.Dependencies = append(rel.Dependencies, Dependency{
				Name:         dep,
				Requirements: splitList(val, "&"),
			})
		}
	}
	return rel, nil
}

// splitList splits s on sep, trimming items and dropping empty ones.
// It never returns nil.
func splitList(s, sep string) []string {
	out := []string{}
	for _, item := range strings.Split(s, sep) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
