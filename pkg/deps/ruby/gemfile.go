package ruby

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"
)

var gemPattern = regexp.MustCompile(`^\s*gem\s+['"]([^'"]+)['"]`)

// GemfileSeeds reads the gem names declared in the Gemfile at path, in
// declaration order, for use as crawl seeds.
func GemfileSeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseGemfile(f)
}

// ParseGemfile extracts `gem "name"` declarations. Comments and duplicate
// names are skipped.
func ParseGemfile(r io.Reader) ([]string, error) {
	var gems []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		if match := gemPattern.FindStringSubmatch(line); len(match) > 1 {
			name := match[1]
			if !seen[name] {
				seen[name] = true
				gems = append(gems, name)
			}
		}
	}

	return gems, scanner.Err()
}
