// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quality scores section drafts. Evaluation is a pure function of
// the draft text, the reference data, and the configured thresholds:
// identical inputs always produce an identical score.
package quality

import (
	"math"
	"regexp"
	"strings"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// Resolver answers whether a citation marker matches a literature entry.
// literature.Index satisfies it.
type Resolver interface {
	Resolve(marker string) (types.LiteratureEntry, bool)
}

// numberPattern matches the quantitative values treated as key facts:
// decimals, percentages, and integers of two or more digits. Single digits
// are too common in prose to carry signal.
var numberPattern = regexp.MustCompile(`\d+\.\d+%?|\d{2,}%?`)

// hedgingWords approximate the hedging register of academic prose.
var hedgingWords = []string{
	"may", "might", "could", "suggest", "suggests", "appear", "appears",
	"likely", "possibly", "potentially", "seem", "seems", "indicate",
	"indicates", "approximately",
}

// wordBands holds the acceptable word-count range per section.
var wordBands = map[string][2]int{
	"abstract":     {150, 350},
	"introduction": {300, 800},
	"methods":      {300, 700},
	"results":      {300, 800},
	"discussion":   {400, 1000},
	"conclusion":   {150, 400},
}

// Input bundles everything one evaluation reads.
type Input struct {
	// Section is the section name, used for word-count bands.
	Section string

	// Draft is the attempt's text.
	Draft string

	// Citations are the markers extracted from the draft.
	Citations []string

	// Blocks are the content blocks selected for this section; their
	// quantitative values are the facts the draft must cover.
	Blocks []types.ContentBlock

	// StyleGuide is the per-section style guide text, possibly empty.
	StyleGuide string
}

// Evaluate scores a draft along the three sub-dimensions, combines them
// with the configured weights, and applies the thresholds.
func Evaluate(in Input, resolver Resolver, cfg types.QualityConfig) types.QualityScore {
	cfg = cfg.Defaulted()

	completeness := completenessScore(in.Draft, in.Blocks)
	style := styleScore(in.Section, in.Draft, in.StyleGuide)
	citations := citationScore(in.Citations, resolver)

	weightSum := cfg.CompletenessWeight + cfg.StyleWeight + cfg.CitationWeight
	overall := (completeness*cfg.CompletenessWeight + style*cfg.StyleWeight + citations*cfg.CitationWeight) / weightSum

	return types.QualityScore{
		Completeness:     round3(completeness),
		StyleMatch:       round3(style),
		CitationAccuracy: round3(citations),
		Overall:          round3(overall),
		Pass: completeness >= cfg.CompletenessThreshold &&
			style >= cfg.StyleThreshold &&
			citations >= cfg.CitationThreshold &&
			overall >= cfg.OverallThreshold,
	}
}

// completenessScore is the fraction of key quantitative values from the
// section's source blocks that reappear in the draft. A section whose
// blocks carry no quantitative values scores 1.0.
func completenessScore(draft string, blocks []types.ContentBlock) float64 {
	facts := make(map[string]bool)
	for _, b := range blocks {
		for _, n := range numberPattern.FindAllString(b.Body(), -1) {
			facts[strings.TrimSuffix(n, "%")] = true
		}
	}
	if len(facts) == 0 {
		return 1.0
	}

	covered := 0
	draftNums := make(map[string]bool)
	for _, n := range numberPattern.FindAllString(draft, -1) {
		draftNums[strings.TrimSuffix(n, "%")] = true
	}
	for fact := range facts {
		if draftNums[fact] {
			covered++
		}
	}
	return float64(covered) / float64(len(facts))
}

// styleScore blends three components: the section's word-count band, the
// sentence-length profile, and hedging-density similarity to the style
// guide. Each component is in [0, 1]; the blend is their mean.
func styleScore(section, draft, guide string) float64 {
	if strings.TrimSpace(draft) == "" {
		return 0
	}
	band := bandScore(section, wordCount(draft))
	length := sentenceLengthScore(draft)
	hedging := hedgingScore(draft, guide)
	return (band + length + hedging) / 3
}

// bandScore is 1.0 inside the section's word band and decays linearly to 0
// at half the lower bound or double the upper bound.
func bandScore(section string, words int) float64 {
	band, ok := wordBands[strings.ToLower(section)]
	if !ok {
		return 1.0
	}
	lo, hi := band[0], band[1]
	switch {
	case words >= lo && words <= hi:
		return 1.0
	case words < lo:
		floor := lo / 2
		if words <= floor {
			return 0
		}
		return float64(words-floor) / float64(lo-floor)
	default:
		ceil := hi * 2
		if words >= ceil {
			return 0
		}
		return float64(ceil-words) / float64(ceil-hi)
	}
}

// sentenceLengthScore rewards a mean sentence length in the 12–35 word
// range typical of journal prose, decaying linearly outside it.
func sentenceLengthScore(draft string) float64 {
	sentences := splitSentences(draft)
	if len(sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range sentences {
		total += wordCount(s)
	}
	mean := float64(total) / float64(len(sentences))

	const lo, hi = 12.0, 35.0
	switch {
	case mean >= lo && mean <= hi:
		return 1.0
	case mean < lo:
		return math.Max(0, mean/lo)
	default:
		return math.Max(0, 1-(mean-hi)/hi)
	}
}

// hedgingScore compares the draft's hedging density to the style guide's.
// Without a guide the component is neutral (1.0). Densities are per word;
// the score decays with the absolute difference scaled so a 3-percentage-
// point gap zeroes it.
func hedgingScore(draft, guide string) float64 {
	if strings.TrimSpace(guide) == "" {
		return 1.0
	}
	diff := math.Abs(hedgingDensity(draft) - hedgingDensity(guide))
	return math.Max(0, 1-diff/0.03)
}

func hedgingDensity(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	count := 0
	for _, w := range words {
		w = strings.Trim(w, ".,;:()")
		for _, h := range hedgingWords {
			if w == h {
				count++
				break
			}
		}
	}
	return float64(count) / float64(len(words))
}

// citationScore is the fraction of markers resolving to a literature entry.
// A draft with no markers scores 1.0.
func citationScore(markers []string, resolver Resolver) float64 {
	if len(markers) == 0 {
		return 1.0
	}
	resolved := 0
	for _, m := range markers {
		if _, ok := resolver.Resolve(m); ok {
			resolved++
		}
	}
	return float64(resolved) / float64(len(markers))
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// splitSentences breaks text on terminal punctuation. Good enough for
// length statistics; not a linguistic segmenter.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); wordCount(s) > 0 {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); wordCount(s) > 2 {
		sentences = append(sentences, s)
	}
	return sentences
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
