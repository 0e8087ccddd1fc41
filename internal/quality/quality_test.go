// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quality

import (
	"strings"
	"testing"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// mapResolver resolves markers from a fixed set.
type mapResolver map[string]bool

func (m mapResolver) Resolve(marker string) (types.LiteratureEntry, bool) {
	return types.LiteratureEntry{}, m[marker]
}

func statBlocks() []types.ContentBlock {
	return []types.ContentBlock{
		{Kind: types.BlockTable, Description: "The cohort included 1200 patients with an AUC of 0.94."},
		{Kind: types.BlockText, Text: "Sensitivity was 89% overall."},
	}
}

func TestEvaluatePure(t *testing.T) {
	in := Input{
		Section:   "results",
		Draft:     "We observed an AUC of 0.94 across 1200 patients [Diaz2020]. Sensitivity reached 89%.",
		Citations: []string{"Diaz2020"},
		Blocks:    statBlocks(),
	}
	resolver := mapResolver{"Diaz2020": true}
	cfg := types.QualityConfig{}

	first := Evaluate(in, resolver, cfg)
	for i := 0; i < 5; i++ {
		if Evaluate(in, resolver, cfg) != first {
			t.Fatal("Evaluate must be pure: identical inputs gave different scores")
		}
	}
}

func TestCompletenessCoverage(t *testing.T) {
	tests := []struct {
		name  string
		draft string
		want  float64
	}{
		{"all facts", "AUC 0.94, n = 1200, sensitivity 89%.", 1.0},
		{"two of three", "AUC was 0.94 in 1200 patients.", 2.0 / 3.0},
		{"none", "The model performed well.", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := completenessScore(tt.draft, statBlocks())
			if got != tt.want {
				t.Errorf("completeness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompletenessNoFacts(t *testing.T) {
	blocks := []types.ContentBlock{{Kind: types.BlockText, Text: "Purely qualitative background."}}
	if got := completenessScore("Anything.", blocks); got != 1.0 {
		t.Errorf("completeness with no key facts = %v, want 1.0", got)
	}
}

func TestCitationAccuracy(t *testing.T) {
	resolver := mapResolver{"Good2020": true}

	tests := []struct {
		name    string
		markers []string
		want    float64
	}{
		{"no markers", nil, 1.0},
		{"all resolve", []string{"Good2020"}, 1.0},
		{"half resolve", []string{"Good2020", "Ghost2019"}, 0.5},
		{"none resolve", []string{"Ghost2019"}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := citationScore(tt.markers, resolver); got != tt.want {
				t.Errorf("citation accuracy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBandScore(t *testing.T) {
	tests := []struct {
		name    string
		section string
		words   int
		want    float64
	}{
		{"inside band", "methods", 500, 1.0},
		{"at lower bound", "methods", 300, 1.0},
		{"at floor", "methods", 150, 0.0},
		{"way over", "methods", 1400, 0.0},
		{"unknown section neutral", "appendix", 10, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bandScore(tt.section, tt.words); got != tt.want {
				t.Errorf("bandScore(%q, %d) = %v, want %v", tt.section, tt.words, got, tt.want)
			}
		})
	}
}

func TestFailingCompletenessFailsPass(t *testing.T) {
	// Draft covers none of the quantitative facts: completeness 0 < 0.80,
	// so the draft must not pass even with perfect citations.
	in := Input{
		Section:   "unknown",
		Draft:     strings.Repeat("The findings were interesting and relevant to this work. ", 10),
		Citations: nil,
		Blocks:    statBlocks(),
	}
	score := Evaluate(in, mapResolver{}, types.QualityConfig{})
	if score.Completeness >= 0.80 {
		t.Fatalf("test setup: completeness = %v", score.Completeness)
	}
	if score.Pass {
		t.Error("draft below completeness threshold must not pass")
	}
}

func TestPassingDraft(t *testing.T) {
	// Section outside the band map with full fact coverage and resolving
	// citations passes under default thresholds.
	sentence := "The cohort of 1200 patients reached an AUC of 0.94 with a sensitivity of 89% across both participating clinical sites [Diaz2020]. "
	in := Input{
		Section:   "unknown",
		Draft:     strings.Repeat(sentence, 4),
		Citations: []string{"Diaz2020"},
		Blocks:    statBlocks(),
	}
	score := Evaluate(in, mapResolver{"Diaz2020": true}, types.QualityConfig{})
	if !score.Pass {
		t.Errorf("expected pass, got %+v", score)
	}
	if score.Overall < 0.85 {
		t.Errorf("overall = %v, want >= 0.85", score.Overall)
	}
}

func TestScoresBounded(t *testing.T) {
	in := Input{
		Section:   "abstract",
		Draft:     "Tiny.",
		Citations: []string{"Ghost1999"},
		Blocks:    statBlocks(),
	}
	score := Evaluate(in, mapResolver{}, types.QualityConfig{})
	for name, v := range map[string]float64{
		"completeness": score.Completeness,
		"style":        score.StyleMatch,
		"citations":    score.CitationAccuracy,
		"overall":      score.Overall,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v outside [0,1]", name, v)
		}
	}
}

func TestHedgingScoreNeutralWithoutGuide(t *testing.T) {
	if got := hedgingScore("This may suggest something.", ""); got != 1.0 {
		t.Errorf("hedging without guide = %v, want 1.0", got)
	}
}

func TestHedgingScoreMatchesGuide(t *testing.T) {
	filler := strings.Repeat("The cohort was assessed under the standard protocol. ", 10)
	guide := filler + "Results may suggest a trend."
	similar := filler + "These data may suggest an effect."
	flat := filler + "These data prove an effect."

	if s, f := hedgingScore(similar, guide), hedgingScore(flat, guide); s <= f {
		t.Errorf("hedged draft (%v) should score above flat draft (%v)", s, f)
	}
}
