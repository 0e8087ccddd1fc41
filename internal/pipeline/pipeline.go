// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one manuscript composition end to end: schedule
// sections over the dependency graph, drive each through its controller on
// a bounded worker pool, persist per-section artifacts, and integrate the
// terminal drafts into the final manuscript.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/manuscript-engine/internal/backend"
	"github.com/pdiddy/manuscript-engine/internal/content"
	"github.com/pdiddy/manuscript-engine/internal/controller"
	"github.com/pdiddy/manuscript-engine/internal/integrate"
	"github.com/pdiddy/manuscript-engine/internal/literature"
	"github.com/pdiddy/manuscript-engine/internal/scheduler"
	"github.com/pdiddy/manuscript-engine/internal/writer"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// DefaultConcurrency bounds parallel section generation when the
// configuration does not set one.
const DefaultConcurrency = 2

// Options carries the run-scoped inputs for one composition.
type Options struct {
	// Store is the immutable research content for the paper.
	Store *content.Store

	// Index is the merged literature index. Nil means no literature.
	Index *literature.Index

	// Client is the generation backend.
	Client backend.Client

	// StyleGuide is the optional style guide text.
	StyleGuide string

	// Config is the run configuration.
	Config types.Config

	// Out receives progress lines. Nil silences them.
	Out io.Writer
}

// Pipeline holds the shared state of one composition run. The drafts map is
// mutated only under the run's lock; each section's draft is owned by its
// controller until terminal.
type Pipeline struct {
	store *content.Store
	index *literature.Index
	sched *scheduler.Scheduler
	ctrl  *controller.Controller
	cfg   types.Config
	out   io.Writer
}

// New validates the section graph and wires the run's components.
func New(opts Options) (*Pipeline, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline: research content is required")
	}
	if opts.Client == nil {
		return nil, errors.New("pipeline: backend client is required")
	}
	if opts.Index == nil {
		opts.Index = literature.BuildIndex(nil)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	sched, err := scheduler.New(scheduler.DefaultSpecs(opts.Config.Models))
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	agent := writer.NewAgent(opts.Store, opts.Index, opts.StyleGuide, opts.Config)
	ctrl := controller.New(agent, opts.Client, opts.Index, opts.Config, opts.Out)

	return &Pipeline{
		store: opts.Store,
		index: opts.Index,
		sched: sched,
		ctrl:  ctrl,
		cfg:   opts.Config,
		out:   opts.Out,
	}, nil
}

// Run drives every section to a terminal status and assembles the
// manuscript. Terminal sections found on disk from a previous run are
// reused. On cancellation the already-terminal sections and their artifacts
// are preserved and the context error is returned.
func (p *Pipeline) Run(ctx context.Context) (types.PaperDraft, error) {
	sectionsDir := filepath.Join(p.outputDir(), "sections")
	if err := os.MkdirAll(sectionsDir, 0o755); err != nil {
		return types.PaperDraft{}, fmt.Errorf("pipeline: %w", err)
	}

	drafts := make(map[string]types.SectionDraft)
	statuses := make(map[string]types.SectionStatus)
	for _, name := range p.sched.Order() {
		if d, ok := loadSection(sectionsDir, name); ok && d.Status.Terminal() {
			drafts[name] = d
			statuses[name] = d.Status
			fmt.Fprintf(p.out, "  %s: reusing %s draft from previous run\n", name, d.Status)
		}
	}

	limit := p.cfg.Pipeline.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var mu sync.Mutex
	for {
		ready := p.sched.Ready(statuses)
		if len(ready) == 0 {
			break
		}

		for _, name := range ready {
			statuses[name] = types.StatusGenerating
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for _, name := range ready {
			name := name
			g.Go(func() error {
				mu.Lock()
				upstream := p.upstreamFor(name, drafts)
				mu.Unlock()

				d, err := p.ctrl.RunSection(gctx, name, upstream)
				mu.Lock()
				defer mu.Unlock()
				statuses[name] = d.Status
				if err != nil {
					return err
				}
				drafts[name] = d
				return saveSection(sectionsDir, d)
			})
		}
		if err := g.Wait(); err != nil {
			return types.PaperDraft{}, err
		}
	}

	if blocked := p.sched.Blocked(statuses); len(blocked) > 0 {
		return types.PaperDraft{}, fmt.Errorf("pipeline: sections %s never became ready", strings.Join(blocked, ", "))
	}
	for _, name := range p.sched.Order() {
		if !statuses[name].Terminal() {
			return types.PaperDraft{}, fmt.Errorf("pipeline: section %q never resolved (status %q)", name, statuses[name])
		}
	}

	paper, err := integrate.Assemble(p.store.Title(), drafts, p.index)
	if err != nil {
		return types.PaperDraft{}, err
	}
	if err := p.writeArtifacts(paper); err != nil {
		return types.PaperDraft{}, err
	}

	fmt.Fprintf(p.out, "  manuscript assembled: %d sections, %d references, %d words\n",
		len(paper.Sections), len(paper.Report.References), paper.Report.TotalWords)
	return paper, nil
}

// upstreamFor collects the terminal dependency drafts a section may read.
func (p *Pipeline) upstreamFor(section string, drafts map[string]types.SectionDraft) map[string]string {
	spec, ok := p.sched.Specs()[section]
	if !ok {
		return nil
	}
	upstream := make(map[string]string, len(spec.DependsOn))
	for _, dep := range spec.DependsOn {
		if d, ok := drafts[dep]; ok && d.Status.Terminal() {
			upstream[dep] = d.Content
		}
	}
	return upstream
}

func (p *Pipeline) outputDir() string {
	if p.cfg.Pipeline.OutputDir != "" {
		return p.cfg.Pipeline.OutputDir
	}
	return "output"
}
