package semver

import (
	"regexp"
	"strings"
)

// clauseRe splits a requirement clause into leading space, operator, space,
// version token and trailing space.
var clauseRe = regexp.MustCompile(`^(\s*)([<>=!~]*)(\s*)(.*?)(\s*)$`)

// CoerceRequirement coerces every version token of a comma-separated
// requirement string. Clauses keep their order, operators and whitespace;
// trailing empty clauses are dropped.
func CoerceRequirement(raw string) string {
	clauses := strings.Split(raw, ",")
	for len(clauses) > 0 && clauses[len(clauses)-1] == "" {
		clauses = clauses[:len(clauses)-1]
	}
	for i, c := range clauses {
		clauses[i] = coerceClause(c)
	}
	return strings.Join(clauses, ",")
}

// CoerceRequirements joins a requirement list with ", " and coerces it as a
// single requirement string.
func CoerceRequirements(reqs []string) string {
	return CoerceRequirement(strings.Join(reqs, ", "))
}

func coerceClause(clause string) string {
	m := clauseRe.FindStringSubmatch(clause)
	if m == nil || m[4] == "" {
		return clause
	}
	return m[1] + m[2] + m[3] + Coerce(m[4]) + m[5]
}
