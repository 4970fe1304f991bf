package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ResourceKey derives the bundle resource key that `bundle generate` assigns
// to a job or pipeline name: every character that is not a letter, digit or
// underscore becomes "_", the result is lowercased, runs of "_" collapse and
// leading/trailing "_" are trimmed. Names are NFC-normalized first so composed
// and decomposed accents produce the same key.
func ResourceKey(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder

	b.Grow(len(name))

	lastUnderscore := false

	for _, r := range strings.ToLower(name) {
		if !isWordRune(r) {
			r = '_'
		}

		if r == '_' {
			if lastUnderscore {
				continue
			}

			lastUnderscore = true
		} else {
			lastUnderscore = false
		}

		b.WriteRune(r)
	}

	return strings.Trim(b.String(), "_")
}

// NormalizeIdent normalizes a name for fuzzy matching.
// The normalization pipeline:
// 1. NFC-normalize.
// 2. Tokenize CamelCase.
// 3. Case-fold to lower.
// 4. Strip separators (_, -, ., spaces).
func NormalizeIdent(s string) string {
	tokens := tokenizeCamelCase(norm.NFC.String(s))

	joined := strings.ToLower(strings.Join(tokens, ""))

	return stripSeparators(joined)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "IngestOrders" -> ["Ingest", "Orders"]
//   - "load_SQLTables" -> ["load", "SQL", "Tables"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator returns true if the rune is a common separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)

	// "orderID" -> split before 'I'
	if isUpper && !isPrevUpper && !isSeparator(prevRune) {
		return true
	}

	// "SQLTables" -> "SQL" + "Tables", split before 'T'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}

// stripSeparators removes common separators from a string.
func stripSeparators(s string) string {
	var result strings.Builder

	result.Grow(len(s))

	for _, r := range s {
		if !isSeparator(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}
