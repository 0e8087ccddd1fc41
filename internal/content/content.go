// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package content loads and serves the extracted research material for one
// pipeline run. The store is immutable after Load and safe for concurrent
// reads.
package content

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// sectionTags maps section names to the block tags relevant for their
// generation context. Blocks matching any listed tag are selected; results
// additionally pulls every table and figure description.
var sectionTags = map[string][]string{
	"introduction": {"background", "objective", "motivation"},
	"methods":      {"dataset", "procedure", "materials", "analysis"},
	"results":      {"findings", "statistics"},
	"discussion":   {"findings", "statistics", "background"},
	"conclusion":   {"findings", "objective"},
	"abstract":     {"objective", "findings"},
}

// Store is the immutable research content bag for the current paper.
type Store struct {
	content types.ResearchContent
}

// Load reads the extraction YAML produced by the document collaborator and
// builds the store. An empty block list is a configuration error: the
// pipeline has nothing to ground generation on.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading research content: %w", err)
	}
	var rc types.ResearchContent
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("parsing research content: %w", err)
	}
	if len(rc.Blocks) == 0 {
		return nil, fmt.Errorf("research content %s has no blocks", path)
	}
	return &Store{content: rc}, nil
}

// New builds a store directly from research content. Used by tests and by
// callers that construct content in memory.
func New(rc types.ResearchContent) *Store {
	return &Store{content: rc}
}

// Title returns the working paper title, if any.
func (s *Store) Title() string {
	return s.content.Title
}

// Blocks returns all content blocks in document order.
func (s *Store) Blocks() []types.ContentBlock {
	return s.content.Blocks
}

// ForSection selects the blocks relevant to one section. Selection is
// deterministic: blocks appear in document order, tag matches first, then
// (for results and discussion) table and figure blocks that were not already
// selected.
func (s *Store) ForSection(section string) []types.ContentBlock {
	tags := sectionTags[strings.ToLower(section)]
	var selected []types.ContentBlock
	taken := make(map[int]bool)

	for i, b := range s.content.Blocks {
		for _, tag := range tags {
			if b.HasTag(tag) {
				selected = append(selected, b)
				taken[i] = true
				break
			}
		}
	}

	if wantsVisuals(section) {
		for i, b := range s.content.Blocks {
			if taken[i] || b.Kind == types.BlockText {
				continue
			}
			selected = append(selected, b)
		}
	}

	return selected
}

// wantsVisuals reports whether a section's context includes all table and
// figure descriptions regardless of tags.
func wantsVisuals(section string) bool {
	switch strings.ToLower(section) {
	case "results", "discussion":
		return true
	}
	return false
}
