// Package match provides name normalization, Levenshtein distance calculation,
// and candidate ranking used to find bundle resources by item name and to
// suggest near misses for unresolved artifact paths.
//
// Key functions:
//   - ResourceKey: derives the bundle resource key from a job or pipeline name
//   - NormalizeIdent: normalizes names for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Rank / Closest: rank candidate names against a target
package match
