// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package writer assembles the generation context for one section and
// obtains one draft attempt from a backend. Context assembly is
// deterministic; all non-determinism lives in the backend.
package writer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/manuscript-engine/internal/backend"
	"github.com/pdiddy/manuscript-engine/internal/content"
	"github.com/pdiddy/manuscript-engine/internal/literature"
	"github.com/pdiddy/manuscript-engine/internal/router"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// literatureCaps bounds how many ranked literature entries each section's
// prompt carries. Sections absent from the map use the configured default.
var literatureCaps = map[string]int{
	"methods":    5,
	"results":    5,
	"discussion": 10,
	"conclusion": 3,
}

// Agent builds per-section generation contexts over the run's shared
// read-only inputs.
type Agent struct {
	store      *content.Store
	index      *literature.Index
	styleGuide string
	cfg        types.Config
}

// NewAgent builds a writer agent. styleGuide may be empty.
func NewAgent(store *content.Store, index *literature.Index, styleGuide string, cfg types.Config) *Agent {
	return &Agent{store: store, index: index, styleGuide: styleGuide, cfg: cfg}
}

// Attempt is the outcome of one generation exchange.
type Attempt struct {
	// Text is the draft text returned by the backend.
	Text string

	// Citations lists the citation markers detected in Text, in
	// first-appearance order, deduplicated.
	Citations []string

	// Model identifies the backend model used.
	Model string

	// Latency is the backend exchange duration.
	Latency time.Duration
}

// Write performs one draft attempt for a section: assemble the context,
// call the backend once, and extract citation markers. upstream maps
// accepted dependency sections to their content; feedback carries the
// corrective note from a previous failed attempt, empty on the first.
func (a *Agent) Write(ctx context.Context, client backend.Client, section string, choice router.Choice, upstream map[string]string, feedback string) (Attempt, error) {
	prompt := a.BuildPrompt(section, upstream, feedback)

	maxTokens := a.cfg.Backend.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	resp, err := client.Complete(ctx, backend.Request{
		Model:       choice.Model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: choice.Temperature,
	})
	if err != nil {
		return Attempt{Model: choice.Model, Latency: resp.Latency}, err
	}

	text := strings.TrimSpace(resp.Text)
	return Attempt{
		Text:      text,
		Citations: ExtractCitations(text),
		Model:     choice.Model,
		Latency:   resp.Latency,
	}, nil
}

// BuildPrompt assembles the deterministic generation context: section
// instructions, source material blocks, bounded upstream excerpts, the
// section style guide, the ranked literature subset, and any corrective
// feedback.
func (a *Agent) BuildPrompt(section string, upstream map[string]string, feedback string) string {
	blocks := a.store.ForSection(section)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an academic writing expert. Write the %s section of a research manuscript.\n\n", section)
	b.WriteString("Requirements:\n")
	b.WriteString("- Formal academic English, Markdown formatting.\n")
	b.WriteString("- Cite literature inline as [Citekey]; multiple works as [Key1; Key2].\n")
	fmt.Fprintf(&b, "- %s\n", citationRule(section))
	b.WriteString("- Output only the section text, no explanations.\n\n")

	b.WriteString(backend.SourceMaterialHeading + "\n")
	if len(blocks) == 0 {
		b.WriteString("No extracted material applies to this section.\n")
	}
	for _, blk := range blocks {
		fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(blk.Body(), "\n", " "))
	}
	b.WriteString("\n")

	if len(upstream) > 0 {
		b.WriteString("## Accepted Upstream Sections\n")
		for _, name := range orderedUpstream(upstream) {
			fmt.Fprintf(&b, "### %s\n%s\n\n", name, a.excerpt(upstream[name]))
		}
	}

	if guide := StyleFor(a.styleGuide, section); guide != "" {
		b.WriteString("## Style Guide\n")
		b.WriteString(guide)
		b.WriteString("\n\n")
	}

	refs := a.index.Rank(blockText(blocks), a.capFor(section))
	b.WriteString("## Available Literature\n")
	if len(refs) == 0 {
		b.WriteString("No literature available - write without citations.\n")
	}
	for _, e := range refs {
		fmt.Fprintf(&b, "- [%s] %s (%d). %s\n", e.Citekey(), e.Title, e.Year, e.Abstract)
	}

	if feedback != "" {
		b.WriteString("\n## Revision Feedback\n")
		b.WriteString(feedback)
		b.WriteString("\n")
	}

	return b.String()
}

// Blocks returns the content blocks selected for a section, for evaluating
// the resulting draft against the same material the prompt carried.
func (a *Agent) Blocks(section string) []types.ContentBlock {
	return a.store.ForSection(section)
}

// Style returns the section's style guide chunk.
func (a *Agent) Style(section string) string {
	return StyleFor(a.styleGuide, section)
}

// capFor returns the literature cap for a section.
func (a *Agent) capFor(section string) int {
	if cap, ok := literatureCaps[strings.ToLower(section)]; ok {
		return cap
	}
	if a.cfg.Literature.MaxPerSection > 0 {
		return a.cfg.Literature.MaxPerSection
	}
	return 10
}

// excerpt bounds an upstream section to the configured rune budget, cutting
// at a word boundary.
func (a *Agent) excerpt(text string) string {
	limit := a.cfg.Pipeline.UpstreamExcerptRunes
	if limit <= 0 {
		limit = 1200
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + " …"
}

// orderedUpstream fixes the upstream iteration order so prompts are
// byte-identical across runs with identical inputs.
func orderedUpstream(upstream map[string]string) []string {
	canonical := []string{"abstract", "introduction", "methods", "results", "discussion", "conclusion"}
	var names []string
	for _, name := range canonical {
		if _, ok := upstream[name]; ok {
			names = append(names, name)
		}
	}
	for name := range upstream {
		if !containsString(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func blockText(blocks []types.ContentBlock) string {
	var parts []string
	for _, b := range blocks {
		parts = append(parts, b.Body())
	}
	return strings.Join(parts, " ")
}

// citationRule returns the per-section citation instruction.
func citationRule(section string) string {
	switch strings.ToLower(section) {
	case "introduction":
		return "Every factual claim about previous research or background must carry a citation."
	case "discussion":
		return "Every comparison with existing literature or discussion of implications must carry a citation."
	case "conclusion":
		return "Cite only when discussing broader implications or future directions that build on existing work."
	case "abstract":
		return "Avoid citations unless a specific finding strictly requires one."
	case "methods":
		return "Cite only established protocols or non-standard methods; never cite common procedures."
	case "results":
		return "Cite only non-standard statistical methods or comparative benchmarks, not your own findings."
	default:
		return "Cite relevant literature where appropriate."
	}
}

// StyleFor extracts the "## <Section>" chunk from a full style guide
// document. Matching is case-insensitive on the heading text. Returns the
// empty string when the guide has no matching section.
func StyleFor(guide, section string) string {
	if strings.TrimSpace(guide) == "" {
		return ""
	}
	var (
		capturing bool
		lines     []string
	)
	for _, line := range strings.Split(guide, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			heading := strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			if strings.EqualFold(heading, section) {
				capturing = true
				continue
			}
			if capturing {
				break
			}
			continue
		}
		if capturing {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
