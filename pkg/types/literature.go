// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"unicode"
)

// LiteratureEntry is one citation entry from an imported library.
// Entries are owned by the literature index and shared read-only across
// sections once the index is built.
type LiteratureEntry struct {
	// ID is the stable identifier assigned at import.
	ID string `json:"id" yaml:"id"`

	// Title is the cited work's title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`

	// Abstract is the cited work's abstract, used for relevance ranking.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Library names the source library the entry was imported from.
	Library string `json:"library,omitempty" yaml:"library,omitempty"`
}

// NormalizedKey returns the deduplication key for the entry: the title
// lowercased with punctuation stripped and whitespace collapsed, joined
// with the year. Entries from different libraries with the same key are
// folded into one canonical entry.
func (e LiteratureEntry) NormalizedKey() string {
	return fmt.Sprintf("%s|%d", NormalizeTitle(e.Title), e.Year)
}

// Citekey derives the inline citation label: last name of the first author
// followed by the year (e.g. "Vaswani2017").
func (e LiteratureEntry) Citekey() string {
	surname := "Unknown"
	if len(e.Authors) > 0 {
		parts := strings.Fields(strings.TrimSpace(e.Authors[0]))
		if len(parts) > 0 {
			surname = parts[len(parts)-1]
		}
	}
	surname = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, surname)
	if e.Year > 0 {
		return fmt.Sprintf("%s%d", surname, e.Year)
	}
	return surname
}

// NormalizeTitle lowercases a title, drops punctuation, and collapses
// whitespace so that trivially different copies of the same work compare
// equal.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
