// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package integrate assembles terminal section drafts into the final
// manuscript: sections in canonical reading order, inline citation markers
// replaced by stable numbers, and a references list deduplicated by
// normalized title and year. Advisory cross-section consistency and flow
// checks land on the assembly report; they never block integration.
package integrate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/manuscript-engine/internal/writer"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// CanonicalOrder is the fixed reading order of the manuscript, distinct
// from generation order.
var CanonicalOrder = []string{"abstract", "introduction", "methods", "results", "discussion", "conclusion"}

// mandatory sections abort integration when absent. Abstract and conclusion
// are expected but their absence is tolerated.
var mandatory = map[string]bool{
	"introduction": true,
	"methods":      true,
	"results":      true,
	"discussion":   true,
}

var markerPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// Resolver maps a citation marker to its canonical literature entry.
type Resolver interface {
	Resolve(marker string) (types.LiteratureEntry, bool)
}

// Assemble builds the terminal PaperDraft from the run's terminal drafts.
// It fails only when the canonical order cannot be established; unresolved
// citation markers are recorded in the report and left in place.
func Assemble(title string, drafts map[string]types.SectionDraft, resolver Resolver) (types.PaperDraft, error) {
	for name := range mandatory {
		d, ok := drafts[name]
		if !ok {
			return types.PaperDraft{}, fmt.Errorf("integrate: mandatory section %q missing", name)
		}
		if !d.Status.Terminal() {
			return types.PaperDraft{}, fmt.Errorf("integrate: mandatory section %q not terminal (status %s)", name, d.Status)
		}
	}

	num := newNumbering(resolver)

	var paper types.PaperDraft
	var body strings.Builder
	fmt.Fprintf(&body, "# %s\n", title)

	totalWords := 0
	for _, name := range CanonicalOrder {
		d, ok := drafts[name]
		if !ok || !d.Status.Terminal() {
			continue
		}
		paper.Sections = append(paper.Sections, d)
		if d.Status == types.StatusDegraded {
			paper.Report.Degraded = append(paper.Report.Degraded, name)
		}

		text := num.rewrite(name, d.Content)
		totalWords += len(strings.Fields(text))

		fmt.Fprintf(&body, "\n## %s\n\n", headingFor(name))
		if d.Status == types.StatusDegraded {
			body.WriteString("*This section did not meet quality thresholds and is included as generated.*\n\n")
		}
		body.WriteString(text)
		body.WriteString("\n")
	}

	paper.Report.Unresolved = num.unresolved
	paper.Report.References = num.references
	paper.Report.TotalWords = totalWords

	paper.Report.Issues = checkConsistency(paper.Sections)
	paper.Report.Transitions = analyzeTransitions(paper.Sections)
	paper.Report.QualityScore = integrationScore(len(paper.Sections), totalWords, paper.Report.Issues, paper.Report.Transitions)
	paper.Report.Recommendations = buildRecommendations(paper.Report.QualityScore, paper.Report.Transitions, paper.Report.Issues, totalWords)

	if len(num.references) > 0 {
		body.WriteString("\n## References\n\n")
		for _, ref := range num.references {
			fmt.Fprintf(&body, "%d. %s\n", ref.Number, formatReference(ref.Entry))
		}
	}

	paper.Manuscript = body.String()
	return paper, nil
}

// numbering assigns citation numbers at first appearance and folds
// duplicates through the resolver's canonical entries.
type numbering struct {
	resolver   Resolver
	byKey      map[string]int
	references []types.Reference
	unresolved []types.UnresolvedCitation
}

func newNumbering(resolver Resolver) *numbering {
	return &numbering{resolver: resolver, byKey: make(map[string]int)}
}

// rewrite replaces citation markers in one section's text with their
// assigned numbers. Markers that resolve to the same canonical entry share
// a number; markers that resolve to nothing stay as written and are
// recorded per occurrence.
func (n *numbering) rewrite(section, text string) string {
	return markerPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[1 : len(match)-1]
		parts := strings.Split(inner, ";")

		out := make([]string, 0, len(parts))
		changed := false
		for _, p := range parts {
			key := strings.TrimSpace(p)
			if key == "" || !writer.IsCitationKey(key) {
				out = append(out, strings.TrimSpace(p))
				continue
			}
			entry, ok := n.resolver.Resolve(key)
			if !ok {
				n.unresolved = append(n.unresolved, types.UnresolvedCitation{Section: section, Marker: key})
				out = append(out, key)
				continue
			}
			out = append(out, fmt.Sprintf("%d", n.assign(key, entry)))
			changed = true
		}
		if !changed {
			return match
		}
		return "[" + strings.Join(out, "; ") + "]"
	})
}

func (n *numbering) assign(citekey string, entry types.LiteratureEntry) int {
	key := entry.NormalizedKey()
	if num, ok := n.byKey[key]; ok {
		return num
	}
	num := len(n.references) + 1
	n.byKey[key] = num
	n.references = append(n.references, types.Reference{Number: num, Citekey: citekey, Entry: entry})
	return num
}

func headingFor(section string) string {
	if section == "" {
		return section
	}
	return strings.ToUpper(section[:1]) + section[1:]
}

// formatReference renders one references-list line.
func formatReference(e types.LiteratureEntry) string {
	var b strings.Builder
	if len(e.Authors) > 0 {
		b.WriteString(strings.TrimSuffix(strings.Join(e.Authors, ", "), "."))
	} else {
		b.WriteString("Unknown authors")
	}
	b.WriteString(". ")
	b.WriteString(strings.TrimSuffix(e.Title, "."))
	if e.Year > 0 {
		fmt.Fprintf(&b, " (%d)", e.Year)
	}
	b.WriteString(".")
	return b.String()
}
