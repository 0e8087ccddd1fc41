package types

import "time"

// BackendConfig holds shared settings for the text-completion backend.
type BackendConfig struct {
	// BaseURL is the OpenAI-compatible API root (e.g. "https://api.openai.com/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey is the authentication key for the backend API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout is the per-call request timeout. A completion call is the only
	// suspension point in the pipeline, so the timeout is mandatory.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with API requests
	// (e.g. "manuscript-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxTokens is the completion token budget per call (default 4000).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// ModelChain is the ordered model preference for one section: the primary
// model first, then fallbacks. The router appends the template fallback
// after the last configured entry.
type ModelChain struct {
	// Primary is the model identifier tried first.
	Primary string `json:"primary" yaml:"primary"`

	// Fallbacks are tried in order after the primary fails.
	Fallbacks []string `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`

	// Temperature is the sampling temperature for this section's calls.
	// Zero means the per-section default.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// ModelsConfig maps sections to model chains.
type ModelsConfig struct {
	// Sections maps a section name to its model chain. Sections absent from
	// the map use Default.
	Sections map[string]ModelChain `json:"sections,omitempty" yaml:"sections,omitempty"`

	// Default is the chain used for sections without an explicit entry.
	Default ModelChain `json:"default" yaml:"default"`
}

// QualityConfig holds the per-dimension thresholds and the weights used to
// combine them into the overall score.
type QualityConfig struct {
	// CompletenessThreshold is the minimum completeness sub-score (default 0.80).
	CompletenessThreshold float64 `json:"completeness_threshold" yaml:"completeness_threshold"`

	// StyleThreshold is the minimum style-match sub-score (default 0.75).
	StyleThreshold float64 `json:"style_threshold" yaml:"style_threshold"`

	// CitationThreshold is the minimum citation-accuracy sub-score (default 0.95).
	CitationThreshold float64 `json:"citation_threshold" yaml:"citation_threshold"`

	// OverallThreshold is the minimum weighted overall score (default 0.85).
	OverallThreshold float64 `json:"overall_threshold" yaml:"overall_threshold"`

	// CompletenessWeight, StyleWeight, and CitationWeight combine the three
	// sub-scores into the overall score (defaults 0.4, 0.3, 0.3).
	CompletenessWeight float64 `json:"completeness_weight" yaml:"completeness_weight"`
	StyleWeight        float64 `json:"style_weight" yaml:"style_weight"`
	CitationWeight     float64 `json:"citation_weight" yaml:"citation_weight"`
}

// Defaulted returns a copy with zero fields replaced by defaults.
func (c QualityConfig) Defaulted() QualityConfig {
	if c.CompletenessThreshold <= 0 {
		c.CompletenessThreshold = 0.80
	}
	if c.StyleThreshold <= 0 {
		c.StyleThreshold = 0.75
	}
	if c.CitationThreshold <= 0 {
		c.CitationThreshold = 0.95
	}
	if c.OverallThreshold <= 0 {
		c.OverallThreshold = 0.85
	}
	if c.CompletenessWeight <= 0 && c.StyleWeight <= 0 && c.CitationWeight <= 0 {
		c.CompletenessWeight = 0.4
		c.StyleWeight = 0.3
		c.CitationWeight = 0.3
	}
	return c
}

// LiteratureConfig holds settings for the literature database.
type LiteratureConfig struct {
	// DBPath is the SQLite database path (default "literature.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxPerSection caps the number of literature entries included in one
	// section's generation context (default 10).
	MaxPerSection int `json:"max_per_section" yaml:"max_per_section"`
}

// PipelineConfig holds settings for the section-generation pipeline.
type PipelineConfig struct {
	// MaxRetries bounds backend generation attempts per section; the
	// template fallback is outside the budget (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Concurrency bounds the worker pool processing ready sections (default 2).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// UpstreamExcerptRunes bounds how much of each accepted upstream section
	// is included in a dependent section's context (default 1200).
	UpstreamExcerptRunes int `json:"upstream_excerpt_runes" yaml:"upstream_excerpt_runes"`

	// ContentPath is the extraction YAML produced by the document collaborator.
	ContentPath string `json:"content_path" yaml:"content_path"`

	// StyleGuidePath is an optional Markdown style guide with per-section
	// "## Heading" subsections.
	StyleGuidePath string `json:"style_guide_path,omitempty" yaml:"style_guide_path,omitempty"`

	// OutputDir is the directory for produced artifacts: per-section drafts
	// under sections/, manuscript.md, and report.yaml (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// Config groups all configuration for the engine.
type Config struct {
	Backend    BackendConfig    `json:"backend" yaml:"backend"`
	Models     ModelsConfig     `json:"models" yaml:"models"`
	Quality    QualityConfig    `json:"quality" yaml:"quality"`
	Literature LiteratureConfig `json:"literature" yaml:"literature"`
	Pipeline   PipelineConfig   `json:"pipeline" yaml:"pipeline"`
}
