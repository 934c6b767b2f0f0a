// Package naming converts OpenAPI identifiers into TypeScript-friendly names.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits s at separators (anything that is not a letter or digit) and at
// lower-to-upper case boundaries.
// Example: "findPetsByStatus" -> [find Pets By Status]
// Example: "x-request_id" -> [x request id]
func Words(s string) []string {
	var (
		words []string
		cur   []rune
		prev  rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			prev = 0
			continue
		}
		if unicode.IsUpper(r) && prev != 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			flush()
		}
		cur = append(cur, r)
		prev = r
	}
	flush()
	return words
}

// Pascal converts s to PascalCase.
// Example: "list-pets" -> "ListPets"
func Pascal(s string) string {
	// Casers are stateful, so each call gets its own.
	titleCaser := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(titleCaser.String(w))
	}
	return b.String()
}

// Camel converts s to camelCase.
// Example: "ListPets" -> "listPets"
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return ""
	}
	r := []rune(p)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// IsIdentifier reports whether s can be used as a bare TypeScript property name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// PropertyKey quotes s when it is not a valid identifier.
func PropertyKey(s string) string {
	if IsIdentifier(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
