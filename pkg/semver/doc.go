// Package semver coerces free-form gem version strings and requirements into
// semantic-versioning form and orders the results by semver precedence.
//
// # Version Coercion
//
// [Coerce] maps any raw version onto MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
// The rules are tried in order and the first match wins:
//
//   - Valid: the string (ignoring one leading token such as an operator)
//     already matches the semver grammar and is returned unchanged.
//   - Collapsed: an all-numeric version with more than three components
//     keeps only the first three ("1.2.3.4" → "1.2.3").
//   - Fallback: the string is split into segments, letter-bearing segments
//     are moved into a prerelease tail, and the numeric core is padded to
//     three components ("1.2.3.beta.1" → "1.2.3-beta.1", "2.0" → "2.0.0").
//
// [Classify] exposes which rule produced a result.
//
// # Requirements
//
// [CoerceRequirement] rewrites every version token of a comma-separated
// requirement (">= 1.0, < 2" → ">= 1.0.0, < 2.0.0") while leaving the
// comparison operators and surrounding whitespace untouched.
//
// # Ordering
//
// [Compare] implements semver precedence with a deterministic tie-break, so
// it can sort any coerced output, including degenerate ones.
package semver
