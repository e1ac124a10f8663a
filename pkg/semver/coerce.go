package semver

import (
	"regexp"
	"strings"
)

// Form identifies which coercion rule produced a version.
type Form int

const (
	// FormValid means the input already matched the semver grammar and was
	// returned unchanged.
	FormValid Form = iota
	// FormCollapsed means an all-numeric version was cut to three components.
	FormCollapsed
	// FormFallback means the version was rebuilt segment by segment.
	FormFallback
)

func (f Form) String() string {
	switch f {
	case FormValid:
		return "valid"
	case FormCollapsed:
		return "collapsed"
	case FormFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Coercion is the outcome of coercing one raw version.
type Coercion struct {
	Raw     string // Input as supplied by the registry
	Version string // Coerced semver string
	Form    Form   // Rule that produced Version
}

var (
	leadingTokenRe = regexp.MustCompile(`^\S+\s+`)
	strictRe       = regexp.MustCompile(`(?i)^[0-9]+\.[0-9]+\.[0-9]+(-[0-9a-z-]+(\.[0-9a-z-]+)*)?(\+[0-9a-z-]+(\.[0-9a-z-]+)*)?$`)
	overlongRe     = regexp.MustCompile(`^(\S+\s+)?(\d+\.\d+\.\d+)(?:\.\d+)*$`)
	separatorRe    = regexp.MustCompile(`[.-]`)
	letterRe       = regexp.MustCompile(`[a-zA-Z]`)
	letterRunRe    = regexp.MustCompile(`-?([a-zA-Z]+)`)
)

// rule is one coercion attempt. It reports ok=false when it does not apply.
type rule struct {
	form  Form
	apply func(raw string) (version string, ok bool)
}

// rules are tried in order; the last one always applies.
var rules = []rule{
	{FormValid, matchValid},
	{FormCollapsed, collapseOverlong},
	{FormFallback, func(raw string) (string, bool) { return rebuild(raw), true }},
}

// Coerce converts a raw version string to semver form. It never fails:
// inputs without any usable structure produce a best-effort string.
func Coerce(raw string) string {
	return Classify(raw).Version
}

// Classify coerces raw and reports which rule was used.
func Classify(raw string) Coercion {
	for _, r := range rules {
		if v, ok := r.apply(raw); ok {
			return Coercion{Raw: raw, Version: v, Form: r.form}
		}
	}
	// unreachable: the fallback rule always applies
	return Coercion{Raw: raw, Version: raw, Form: FormFallback}
}

// Valid reports whether v matches the strict semver grammar.
func Valid(v string) bool {
	return strictRe.MatchString(v)
}

// matchValid tests the input with one leading token removed but returns the
// input itself, so "foo 1.2.3" is kept as-is.
func matchValid(raw string) (string, bool) {
	if strictRe.MatchString(leadingTokenRe.ReplaceAllString(raw, "")) {
		return raw, true
	}
	return "", false
}

func collapseOverlong(raw string) (string, bool) {
	m := overlongRe.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// rebuild moves letter-bearing segments into a prerelease tail and pads the
// numeric core to three components.
func rebuild(raw string) string {
	var parts []string
	if raw != "" {
		parts = separatorRe.Split(raw, 4)
	}

	for i := 0; i < 4; i++ {
		if i >= len(parts) || !letterRe.MatchString(parts[i]) {
			continue
		}
		parts = pad(parts)

		loc := letterRunRe.FindStringSubmatchIndex(parts[i])
		letters := parts[i][loc[2]:loc[3]]
		stripped := parts[i][:loc[0]] + parts[i][loc[1]:]
		if stripped == "" {
			stripped = "0"
		}
		parts[i] = stripped

		tail := letters + strings.Join(parts[i:], "")
		if len(parts) > 3 {
			parts[3] = tail
		} else {
			parts = append(parts, tail)
		}
	}

	parts = pad(parts)
	core := strings.Join(parts[:3], ".")
	if loc := letterRe.FindStringIndex(core); loc != nil {
		core = core[:loc[0]] + "-" + core[loc[0]:]
	}
	if len(parts) > 3 {
		core += "-" + parts[3]
	}
	return strings.TrimRight(core, ".")
}

func pad(parts []string) []string {
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return parts
}
