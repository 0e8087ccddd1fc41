// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Reference is one numbered entry in the final citation list. Numbers are
// assigned at first appearance while scanning sections in canonical order.
type Reference struct {
	// Number is the 1-based citation number.
	Number int `json:"number" yaml:"number"`

	// Citekey is the inline label the number replaces.
	Citekey string `json:"citekey" yaml:"citekey"`

	// Entry is the canonical literature entry after duplicate folding.
	Entry LiteratureEntry `json:"entry" yaml:"entry"`
}

// UnresolvedCitation records a citation marker that matched no literature
// entry. Recorded per occurrence; never fatal.
type UnresolvedCitation struct {
	// Section is the section the marker appeared in.
	Section string `json:"section" yaml:"section"`

	// Marker is the citekey as written in the draft.
	Marker string `json:"marker" yaml:"marker"`
}

// ConsistencyIssue records a cross-section inconsistency noticed during
// assembly. Issues are advisory: they go on the report for review and
// never block integration.
type ConsistencyIssue struct {
	// Type classifies the issue: "numerical" or "terminology".
	Type string `json:"type" yaml:"type"`

	// Severity is "critical", "warning", or "info".
	Severity string `json:"severity" yaml:"severity"`

	// Location names the sections the inconsistent values appeared in.
	Location string `json:"location" yaml:"location"`

	// Description explains the inconsistency.
	Description string `json:"description" yaml:"description"`

	// Found lists the conflicting values as written.
	Found string `json:"found,omitempty" yaml:"found,omitempty"`

	// Suggested is the value the manuscript should settle on.
	Suggested string `json:"suggested,omitempty" yaml:"suggested,omitempty"`
}

// TransitionAnalysis summarizes transition-word usage across the assembled
// manuscript. Sparse transitions read as disconnected sections.
type TransitionAnalysis struct {
	// Counts is the number of transition words found per rhetorical
	// category.
	Counts map[string]int `json:"counts" yaml:"counts"`

	// Density is transition words per hundred words, rounded to two
	// decimals.
	Density float64 `json:"density" yaml:"density"`

	// Score maps the raw density onto [0, 1].
	Score float64 `json:"score" yaml:"score"`
}

// AssemblyReport summarizes the integration outcome.
type AssemblyReport struct {
	// Degraded names the sections included below quality thresholds.
	Degraded []string `json:"degraded,omitempty" yaml:"degraded,omitempty"`

	// Unresolved lists citation markers that matched no literature entry.
	Unresolved []UnresolvedCitation `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`

	// References is the final deduplicated, renumbered citation list.
	References []Reference `json:"references" yaml:"references"`

	// TotalWords is the assembled manuscript's word count.
	TotalWords int `json:"total_words" yaml:"total_words"`

	// Issues lists cross-section consistency problems found during
	// assembly. Advisory only.
	Issues []ConsistencyIssue `json:"issues,omitempty" yaml:"issues,omitempty"`

	// Transitions summarizes transition-word usage.
	Transitions TransitionAnalysis `json:"transitions" yaml:"transitions"`

	// QualityScore is the integration quality estimate in [0, 1],
	// weighting structure, transitions, consistency, and length.
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`

	// Recommendations lists follow-up advice derived from the analysis.
	Recommendations []string `json:"recommendations,omitempty" yaml:"recommendations,omitempty"`
}

// PaperDraft is the terminal pipeline artifact: the assembled manuscript
// sections in canonical reading order plus the assembly report. Created once
// by the integrator after every section is terminal.
type PaperDraft struct {
	// Sections holds the final section drafts in canonical reading order.
	Sections []SectionDraft `json:"sections" yaml:"sections"`

	// Manuscript is the assembled manuscript text including the references
	// section.
	Manuscript string `json:"manuscript" yaml:"manuscript"`

	// Report is the structured assembly report.
	Report AssemblyReport `json:"report" yaml:"report"`
}
