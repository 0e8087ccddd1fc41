// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manuscript-engine/internal/integrate"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// sectionMeta is the YAML front matter of a per-section artifact file. The
// draft text follows the closing delimiter.
type sectionMeta struct {
	Section   string              `yaml:"section"`
	Status    types.SectionStatus `yaml:"status"`
	Model     string              `yaml:"model,omitempty"`
	Attempts  int                 `yaml:"attempts"`
	WordCount int                 `yaml:"word_count"`
	Citations []string            `yaml:"citations,omitempty"`
	Score     types.QualityScore  `yaml:"score"`
	Duration  time.Duration       `yaml:"duration,omitempty"`
}

const frontMatterDelim = "---\n"

// saveSection writes one section's artifact: YAML front matter with the
// bookkeeping, then the draft text.
func saveSection(dir string, d types.SectionDraft) error {
	meta, err := yaml.Marshal(sectionMeta{
		Section:   d.Section,
		Status:    d.Status,
		Model:     d.Model,
		Attempts:  d.Attempts,
		WordCount: d.WordCount,
		Citations: d.Citations,
		Score:     d.Score,
		Duration:  d.Duration,
	})
	if err != nil {
		return fmt.Errorf("marshaling %s metadata: %w", d.Section, err)
	}

	var b bytes.Buffer
	b.WriteString(frontMatterDelim)
	b.Write(meta)
	b.WriteString(frontMatterDelim)
	b.WriteString("\n")
	b.WriteString(d.Content)
	b.WriteString("\n")

	path := filepath.Join(dir, d.Section+".md")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s artifact: %w", d.Section, err)
	}
	return nil
}

// loadSection reads a section artifact back into a draft. Missing or
// malformed files report false; a previous run's partial output is never
// fatal.
func loadSection(dir, name string) (types.SectionDraft, bool) {
	data, err := os.ReadFile(filepath.Join(dir, name+".md"))
	if err != nil {
		return types.SectionDraft{}, false
	}

	text := string(data)
	if !strings.HasPrefix(text, frontMatterDelim) {
		return types.SectionDraft{}, false
	}
	rest := text[len(frontMatterDelim):]
	end := strings.Index(rest, frontMatterDelim)
	if end < 0 {
		return types.SectionDraft{}, false
	}

	var meta sectionMeta
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return types.SectionDraft{}, false
	}
	if meta.Section != name {
		return types.SectionDraft{}, false
	}

	return types.SectionDraft{
		Section:   meta.Section,
		Content:   strings.TrimSpace(rest[end+len(frontMatterDelim):]),
		WordCount: meta.WordCount,
		Citations: meta.Citations,
		Score:     meta.Score,
		Status:    meta.Status,
		Model:     meta.Model,
		Attempts:  meta.Attempts,
		Duration:  meta.Duration,
	}, true
}

// LoadSections reads whatever section artifacts a previous run left under
// outputDir, in canonical reading order. Used for run inspection.
func LoadSections(outputDir string) []types.SectionDraft {
	dir := filepath.Join(outputDir, "sections")
	var drafts []types.SectionDraft
	for _, name := range integrate.CanonicalOrder {
		if d, ok := loadSection(dir, name); ok {
			drafts = append(drafts, d)
		}
	}
	return drafts
}

// writeArtifacts persists the assembled manuscript and the YAML report.
func (p *Pipeline) writeArtifacts(paper types.PaperDraft) error {
	dir := p.outputDir()
	if err := os.WriteFile(filepath.Join(dir, "manuscript.md"), []byte(paper.Manuscript), 0o644); err != nil {
		return fmt.Errorf("writing manuscript: %w", err)
	}
	report, err := yaml.Marshal(paper.Report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.yaml"), report, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
