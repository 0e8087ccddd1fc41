// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package literature

import (
	"sort"
	"strings"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// Index is the deduplicated, merged citation set for one run. It is built
// once before generation starts and read concurrently without
// synchronization afterwards.
type Index struct {
	entries []types.LiteratureEntry
	byKey   map[string]types.LiteratureEntry // citekey (lowercased) -> entry
}

// BuildIndex merges entries from one or more libraries, folding entries
// whose normalized (title, year) keys match into one canonical entry. The
// first occurrence in input order wins; later copies only contribute an
// abstract if the canonical entry lacks one.
func BuildIndex(entries []types.LiteratureEntry) *Index {
	seen := make(map[string]int)
	var merged []types.LiteratureEntry

	for _, e := range entries {
		key := e.NormalizedKey()
		if i, ok := seen[key]; ok {
			if merged[i].Abstract == "" && e.Abstract != "" {
				merged[i].Abstract = e.Abstract
			}
			continue
		}
		seen[key] = len(merged)
		merged = append(merged, e)
	}

	byKey := make(map[string]types.LiteratureEntry, len(merged))
	for _, e := range merged {
		ck := strings.ToLower(e.Citekey())
		if _, ok := byKey[ck]; !ok {
			byKey[ck] = e
		}
	}

	return &Index{entries: merged, byKey: byKey}
}

// Entries returns the canonical entries in merge order.
func (idx *Index) Entries() []types.LiteratureEntry {
	return idx.entries
}

// Len returns the number of canonical entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Resolve looks up a citation marker (a citekey as written in a draft) and
// returns the matching canonical entry. Matching is case-insensitive.
func (idx *Index) Resolve(marker string) (types.LiteratureEntry, bool) {
	e, ok := idx.byKey[strings.ToLower(strings.TrimSpace(marker))]
	return e, ok
}

// Rank orders entries by keyword overlap between each entry's abstract and
// title and the given section text, and returns at most limit entries.
// Entries with zero overlap are dropped. Ties break by merge order so the
// ranking is deterministic.
func (idx *Index) Rank(sectionText string, limit int) []types.LiteratureEntry {
	if limit <= 0 || len(idx.entries) == 0 {
		return nil
	}

	keywords := keywordSet(sectionText)
	type scored struct {
		entry types.LiteratureEntry
		score int
		order int
	}

	var candidates []scored
	for i, e := range idx.entries {
		s := overlap(keywords, e.Abstract+" "+e.Title)
		if s == 0 {
			continue
		}
		candidates = append(candidates, scored{entry: e, score: s, order: i})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	ranked := make([]types.LiteratureEntry, len(candidates))
	for i, c := range candidates {
		ranked[i] = c.entry
	}
	return ranked
}

// stopwords excluded from keyword overlap. Short function words dominate
// raw token overlap and drown the signal.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "were": true, "was": true, "are": true,
	"have": true, "has": true, "been": true, "which": true, "their": true,
	"these": true, "into": true, "using": true, "used": true, "our": true,
}

// keywordSet tokenizes text into a lowercase set of words longer than three
// characters, minus stopwords.
func keywordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:()[]{}\"'")
		if len(w) <= 3 || stopwords[w] {
			continue
		}
		set[w] = true
	}
	return set
}

// overlap counts how many keywords appear in the candidate text.
func overlap(keywords map[string]bool, text string) int {
	count := 0
	for w := range keywordSet(text) {
		if keywords[w] {
			count++
		}
	}
	return count
}
