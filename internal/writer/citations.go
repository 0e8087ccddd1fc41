// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package writer

import (
	"regexp"
	"strings"
)

// citationPattern matches inline citations: [Key] or [Key1; Key2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// ExtractCitations finds all citation markers in draft text, in
// first-appearance order, deduplicated. It handles both single citations
// [Key] and multi-citations [Key1; Key2].
func ExtractCitations(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	var keys []string
	seen := make(map[string]bool)
	for _, m := range matches {
		// Split on semicolons for multi-citations.
		for _, p := range strings.Split(m[1], ";") {
			key := strings.TrimSpace(p)
			if key == "" || !IsCitationKey(key) || seen[key] {
				continue
			}
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// IsCitationKey checks whether a string looks like a citation key
// (AuthorYear format). It rejects strings that look like Markdown links,
// image references, or other bracket content.
func IsCitationKey(s string) bool {
	// Citation keys are alphanumeric, possibly with hyphens or underscores.
	// They must contain at least one letter and one digit.
	hasLetter := false
	hasDigit := false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '-', c == '_':
			// allowed
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}
