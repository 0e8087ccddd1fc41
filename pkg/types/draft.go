// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SectionStatus tracks a section through the generation state machine.
type SectionStatus string

const (
	StatusPending    SectionStatus = "pending"
	StatusGenerating SectionStatus = "generating"
	StatusScored     SectionStatus = "scored"
	StatusAccepted   SectionStatus = "accepted"
	StatusRetrying   SectionStatus = "retrying"
	StatusDegraded   SectionStatus = "degraded"
)

// Terminal reports whether the status resolves the section for dependency
// purposes. Downstream sections may start once every dependency is terminal.
func (s SectionStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusDegraded
}

// SectionSpec defines one section of the manuscript: its name, the sections
// whose drafts must be terminal before it may generate, and its model chain.
// The spec set is fixed per run.
type SectionSpec struct {
	// Name is the section identifier (e.g. "methods", "discussion").
	Name string `json:"name" yaml:"name"`

	// DependsOn names the sections that must reach a terminal status before
	// this section is eligible to generate.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Models is the model chain assigned to this section.
	Models ModelChain `json:"models" yaml:"models"`
}

// QualityScore holds one attempt's evaluation. Scores are in [0, 1].
// A score is never mutated after creation; each attempt produces a new one.
type QualityScore struct {
	// Completeness is the coverage ratio of required content facts.
	Completeness float64 `json:"completeness" yaml:"completeness"`

	// StyleMatch measures similarity to the section's style guide.
	StyleMatch float64 `json:"style_match" yaml:"style_match"`

	// CitationAccuracy is the fraction of citation markers that resolve to a
	// literature index entry.
	CitationAccuracy float64 `json:"citation_accuracy" yaml:"citation_accuracy"`

	// Overall is the configured weighted combination of the three.
	Overall float64 `json:"overall" yaml:"overall"`

	// Pass reports whether every sub-score met its threshold.
	Pass bool `json:"pass" yaml:"pass"`
}

// SectionDraft is the mutable record for one section's generation. It is
// owned exclusively by the section's controller until the status turns
// terminal; afterwards it is read-only.
type SectionDraft struct {
	// Section is the section name.
	Section string `json:"section" yaml:"section"`

	// Content is the latest draft text.
	Content string `json:"content" yaml:"content"`

	// WordCount is the whitespace-separated word count of Content.
	WordCount int `json:"word_count" yaml:"word_count"`

	// Citations lists the citekeys detected in the draft, in first-appearance
	// order.
	Citations []string `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Score is the latest quality score.
	Score QualityScore `json:"score" yaml:"score"`

	// Status is the section's state-machine position.
	Status SectionStatus `json:"status" yaml:"status"`

	// Model identifies which model produced Content.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Attempts counts generation attempts performed.
	Attempts int `json:"attempts" yaml:"attempts"`

	// Duration is the accumulated backend latency for this section.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}
