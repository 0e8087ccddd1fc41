// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BlockKind categorizes a content block extracted from the source document.
type BlockKind string

const (
	BlockText   BlockKind = "text"
	BlockTable  BlockKind = "table"
	BlockFigure BlockKind = "figure"
)

// ContentBlock is one extracted unit of research material. Table and figure
// blocks carry a generated natural-language description alongside the raw
// content; text blocks use Text directly.
type ContentBlock struct {
	// Kind categorizes the block: text, table, or figure.
	Kind BlockKind `json:"kind" yaml:"kind"`

	// Tags are lowercase topic labels used to select blocks for a section
	// (e.g. "dataset", "procedure", "statistics", "background").
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Text is the extracted text for text blocks, or the raw cell/caption
	// content for tables and figures.
	Text string `json:"text" yaml:"text"`

	// Description is the generated natural-language summary for table and
	// figure blocks. Empty for text blocks.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Body returns the block text used for prompt assembly: the generated
// description for tables and figures, the raw text otherwise.
func (b ContentBlock) Body() string {
	if b.Kind != BlockText && b.Description != "" {
		return b.Description
	}
	return b.Text
}

// HasTag reports whether the block carries the given tag.
func (b ContentBlock) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ResearchContent is the ordered, immutable bag of extracted content blocks
// for the current paper. It is built once per run and read concurrently
// without synchronization afterwards.
type ResearchContent struct {
	// Title is the working title of the paper, if the extractor found one.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Blocks lists the extracted content in document order.
	Blocks []ContentBlock `json:"blocks" yaml:"blocks"`
}
