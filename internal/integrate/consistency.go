// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package integrate

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// samplePattern matches sample-size mentions such as "n = 120" or "n: 120".
var samplePattern = regexp.MustCompile(`\bn\s*[=:]\s*(\d+)`)

// termVariants groups spellings that should not be mixed within one
// manuscript, keyed by the preferred form.
var termVariants = map[string][]string{
	"cross-validation": {"cross-validation", "cross validation"},
	"dataset":          {"dataset", "data set"},
	"healthcare":       {"healthcare", "health care"},
	"preprocessing":    {"preprocessing", "pre-processing"},
}

// transitionWords by rhetorical category.
var transitionWords = map[string][]string{
	"sequential":   {"first", "second", "third", "next", "then", "finally", "subsequently"},
	"contrastive":  {"however", "nevertheless", "conversely", "in contrast", "on the other hand"},
	"additive":     {"furthermore", "moreover", "additionally", "in addition", "also"},
	"causal":       {"therefore", "thus", "consequently", "as a result", "hence"},
	"exemplifying": {"for example", "for instance", "specifically", "in particular"},
}

var termPatterns = compileTerms()

func compileTerms() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	add := func(term string) {
		if _, ok := m[term]; !ok {
			m[term] = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		}
	}
	for _, variants := range termVariants {
		for _, v := range variants {
			add(v)
		}
	}
	for _, words := range transitionWords {
		for _, w := range words {
			add(w)
		}
	}
	return m
}

// checkConsistency runs the cross-section checks on the assembled section
// drafts and returns advisory issues in deterministic order: numerical
// first, then terminology by preferred form.
func checkConsistency(sections []types.SectionDraft) []types.ConsistencyIssue {
	issues := sampleSizeIssues(sections)
	return append(issues, terminologyIssues(sections)...)
}

// sampleSizeIssues flags manuscripts whose sections report different sample
// sizes. The most frequent value is suggested; ties go to the value seen
// first in reading order.
func sampleSizeIssues(sections []types.SectionDraft) []types.ConsistencyIssue {
	counts := make(map[string]int)
	var order, locations []string
	for _, d := range sections {
		matches := samplePattern.FindAllStringSubmatch(strings.ToLower(d.Content), -1)
		if len(matches) == 0 {
			continue
		}
		locations = append(locations, d.Section)
		for _, m := range matches {
			if counts[m[1]] == 0 {
				order = append(order, m[1])
			}
			counts[m[1]]++
		}
	}
	if len(order) < 2 {
		return nil
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return []types.ConsistencyIssue{{
		Type:        "numerical",
		Severity:    "warning",
		Location:    strings.Join(locations, ", "),
		Description: "sample size reported inconsistently across sections",
		Found:       strings.Join(order, ", "),
		Suggested:   "n = " + best,
	}}
}

// terminologyIssues flags mixed spellings of the same term anywhere in the
// manuscript.
func terminologyIssues(sections []types.SectionDraft) []types.ConsistencyIssue {
	var b strings.Builder
	for _, d := range sections {
		b.WriteString(strings.ToLower(d.Content))
		b.WriteString("\n")
	}
	text := b.String()

	preferred := make([]string, 0, len(termVariants))
	for k := range termVariants {
		preferred = append(preferred, k)
	}
	sort.Strings(preferred)

	var issues []types.ConsistencyIssue
	for _, canon := range preferred {
		var present []string
		for _, v := range termVariants[canon] {
			if termPatterns[v].MatchString(text) {
				present = append(present, v)
			}
		}
		if len(present) < 2 {
			continue
		}
		issues = append(issues, types.ConsistencyIssue{
			Type:        "terminology",
			Severity:    "warning",
			Location:    "manuscript",
			Description: fmt.Sprintf("mixed spellings for %q", canon),
			Found:       strings.Join(present, ", "),
			Suggested:   canon,
		})
	}
	return issues
}

// analyzeTransitions counts transition words across the assembled sections
// and maps their raw density onto a [0, 1] score, saturating at one
// transition per fifty words.
func analyzeTransitions(sections []types.SectionDraft) types.TransitionAnalysis {
	var b strings.Builder
	words := 0
	for _, d := range sections {
		b.WriteString(strings.ToLower(d.Content))
		b.WriteString("\n")
		words += len(strings.Fields(d.Content))
	}
	text := b.String()

	counts := make(map[string]int, len(transitionWords))
	total := 0
	for cat, list := range transitionWords {
		n := 0
		for _, w := range list {
			n += len(termPatterns[w].FindAllStringIndex(text, -1))
		}
		counts[cat] = n
		total += n
	}

	ta := types.TransitionAnalysis{Counts: counts}
	if words > 0 {
		density := float64(total) / float64(words)
		ta.Density = math.Round(density*100*100) / 100
		ta.Score = math.Min(density*50, 1)
	}
	return ta
}

// integrationScore folds structure, transition flow, consistency, and
// length into one [0, 1] estimate, weighted toward consistency.
func integrationScore(sectionCount, totalWords int, issues []types.ConsistencyIssue, transitions types.TransitionAnalysis) float64 {
	structure := 0.5
	if sectionCount >= 4 {
		structure = 1.0
	}
	consistency := math.Max(0, 1.0-float64(len(issues))*0.05-float64(criticalCount(issues))*0.1)
	length := 0.5
	switch {
	case totalWords > 3000 && totalWords < 8000:
		length = 1.0
	case totalWords > 2000 && totalWords < 10000:
		length = 0.7
	}
	score := structure*0.2 + transitions.Score*0.25 + consistency*0.30 + length*0.25
	return math.Round(score*100) / 100
}

// buildRecommendations derives author-facing follow-ups from the analysis.
func buildRecommendations(score float64, transitions types.TransitionAnalysis, issues []types.ConsistencyIssue, totalWords int) []string {
	var recs []string
	if score < 0.8 {
		recs = append(recs, "integration quality is low; review section flow and consistency before submission")
	}
	if transitions.Density < 1.5 {
		recs = append(recs, "add transition words between ideas to improve flow")
	}
	if critical := criticalCount(issues); critical > 0 {
		recs = append(recs, fmt.Sprintf("%d critical consistency issues need review", critical))
	}
	if totalWords < 3000 {
		recs = append(recs, "manuscript is short for a full paper; consider expanding key sections")
	} else if totalWords > 10000 {
		recs = append(recs, "manuscript is long; consider trimming secondary material")
	}
	return recs
}

func criticalCount(issues []types.ConsistencyIssue) int {
	n := 0
	for _, is := range issues {
		if is.Severity == "critical" {
			n++
		}
	}
	return n
}
