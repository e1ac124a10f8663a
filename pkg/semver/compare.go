package semver

import (
	"strings"

	modsemver "golang.org/x/mod/semver"
)

// Compare orders two coerced versions by semver precedence, returning -1, 0
// or +1. Versions that do not parse sort before every valid version. Versions
// of equal precedence (or two unparseable ones) fall back to a plain string
// comparison, so Compare is a total order and sorting with it is stable
// across runs.
func Compare(a, b string) int {
	if c := modsemver.Compare(canonical(a), canonical(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// canonical rewrites v into the "v"-prefixed form expected by x/mod/semver,
// dropping leading zeros from numeric identifiers, which registries publish
// but strict semver rejects.
func canonical(v string) string {
	core, build, hasBuild := strings.Cut(v, "+")
	core, pre, hasPre := strings.Cut(core, "-")

	var b strings.Builder
	b.WriteString("v")
	b.WriteString(trimNumeric(core))
	if hasPre {
		b.WriteString("-")
		b.WriteString(trimNumeric(pre))
	}
	if hasBuild {
		b.WriteString("+")
		b.WriteString(build)
	}
	return b.String()
}

func trimNumeric(dotted string) string {
	ids := strings.Split(dotted, ".")
	for i, id := range ids {
		if id != "" && isDigits(id) {
			if id = strings.TrimLeft(id, "0"); id == "" {
				id = "0"
			}
			ids[i] = id
		}
	}
	return strings.Join(ids, ".")
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
