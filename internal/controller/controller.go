// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package controller drives one section through the generation state
// machine: pending, generating, scored, and finally accepted, retrying, or
// degraded. Retry policy is a pure transition function over attempt
// outcomes; the controller owns its section's draft until the status turns
// terminal.
package controller

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/manuscript-engine/internal/backend"
	"github.com/pdiddy/manuscript-engine/internal/quality"
	"github.com/pdiddy/manuscript-engine/internal/router"
	"github.com/pdiddy/manuscript-engine/internal/writer"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// DefaultMaxRetries bounds backend generation attempts per section when the
// configuration does not set one.
const DefaultMaxRetries = 3

// Action is the retry-policy outcome for one evaluated attempt.
type Action int

const (
	// ActionAccept resolves the section with the current draft.
	ActionAccept Action = iota

	// ActionRetry re-enters generating with corrective feedback on the
	// next model in the chain.
	ActionRetry

	// ActionDegrade resolves the section with the current draft flagged
	// below threshold.
	ActionDegrade
)

// Decide maps one scored attempt to the next action. It is a pure function:
// template marks the deterministic fallback (always terminal), attempts is
// the number of backend attempts already spent, and remaining counts the
// non-template models left in the chain after this one.
func Decide(score types.QualityScore, template bool, attempts, maxRetries, remaining int) Action {
	switch {
	case template:
		return ActionDegrade
	case score.Pass:
		return ActionAccept
	case attempts >= maxRetries:
		return ActionDegrade
	case remaining == 0:
		return ActionDegrade
	default:
		return ActionRetry
	}
}

// Feedback names the sub-scores that failed their thresholds so the next
// attempt's prompt can steer the revision.
func Feedback(score types.QualityScore, cfg types.QualityConfig) string {
	cfg = cfg.Defaulted()

	var notes []string
	if score.Completeness < cfg.CompletenessThreshold {
		notes = append(notes, fmt.Sprintf(
			"completeness %.2f below %.2f: include the key quantitative findings from the source material",
			score.Completeness, cfg.CompletenessThreshold))
	}
	if score.StyleMatch < cfg.StyleThreshold {
		notes = append(notes, fmt.Sprintf(
			"style match %.2f below %.2f: adjust section length and register to the style guide",
			score.StyleMatch, cfg.StyleThreshold))
	}
	if score.CitationAccuracy < cfg.CitationThreshold {
		notes = append(notes, fmt.Sprintf(
			"citation accuracy %.2f below %.2f: cite only entries from the available literature list",
			score.CitationAccuracy, cfg.CitationThreshold))
	}
	if len(notes) == 0 && score.Overall < cfg.OverallThreshold {
		notes = append(notes, fmt.Sprintf(
			"overall score %.2f below %.2f: tighten the draft along all three dimensions",
			score.Overall, cfg.OverallThreshold))
	}
	return strings.Join(notes, "\n")
}

// Controller runs the retry/escalation loop for sections of one pipeline
// invocation.
type Controller struct {
	agent    *writer.Agent
	client   backend.Client
	template backend.Client
	resolver quality.Resolver
	cfg      types.Config
	out      io.Writer
}

// New builds a controller. out receives progress lines; pass io.Discard to
// silence them.
func New(agent *writer.Agent, client backend.Client, resolver quality.Resolver, cfg types.Config, out io.Writer) *Controller {
	if out == nil {
		out = io.Discard
	}
	return &Controller{
		agent:    agent,
		client:   client,
		template: backend.NewTemplate(),
		resolver: resolver,
		cfg:      cfg,
		out:      out,
	}
}

// RunSection drives one section to a terminal status. upstream maps the
// section's resolved dependencies to their draft text. The returned draft is
// terminal unless the context was cancelled, which is the only error case;
// backend and quality failures resolve to a degraded draft instead.
func (c *Controller) RunSection(ctx context.Context, section string, upstream map[string]string) (types.SectionDraft, error) {
	draft := types.SectionDraft{Section: section, Status: types.StatusPending}

	chain := router.Chain(section, c.cfg.Models)
	maxRetries := c.cfg.Pipeline.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	feedback := ""
	for i, choice := range chain {
		if err := ctx.Err(); err != nil {
			return draft, err
		}
		// Budget bounds real backend attempts. The template fallback is
		// free: it is the floor under every section.
		if !choice.Template && draft.Attempts >= maxRetries {
			continue
		}

		draft.Status = types.StatusGenerating
		client := c.client
		if choice.Template {
			client = c.template
		}

		attempt, err := c.agent.Write(ctx, client, section, choice, upstream, feedback)
		if !choice.Template {
			draft.Attempts++
		}
		draft.Duration += attempt.Latency
		if err != nil {
			if ctx.Err() != nil {
				return draft, ctx.Err()
			}
			fmt.Fprintf(c.out, "  %s: %s failed (%v), advancing chain\n", section, choice.Model, err)
			continue
		}

		draft.Content = attempt.Text
		draft.WordCount = len(strings.Fields(attempt.Text))
		draft.Citations = attempt.Citations
		draft.Model = attempt.Model

		score := quality.Evaluate(quality.Input{
			Section:    section,
			Draft:      attempt.Text,
			Citations:  attempt.Citations,
			Blocks:     c.agent.Blocks(section),
			StyleGuide: c.agent.Style(section),
		}, c.resolver, c.cfg.Quality)
		draft.Score = score
		draft.Status = types.StatusScored

		switch Decide(score, choice.Template, draft.Attempts, maxRetries, remainingModels(chain, i)) {
		case ActionAccept:
			draft.Status = types.StatusAccepted
			fmt.Fprintf(c.out, "  %s: accepted (%s, overall %.2f, attempt %d)\n", section, draft.Model, score.Overall, draft.Attempts)
			return draft, nil
		case ActionDegrade:
			draft.Status = types.StatusDegraded
			fmt.Fprintf(c.out, "  %s: degraded (%s, overall %.2f, attempt %d)\n", section, draft.Model, score.Overall, draft.Attempts)
			return draft, nil
		case ActionRetry:
			draft.Status = types.StatusRetrying
			feedback = Feedback(score, c.cfg.Quality)
			fmt.Fprintf(c.out, "  %s: retrying (overall %.2f)\n", section, score.Overall)
		}
	}

	// The chain ends with the template fallback, which never fails, so the
	// loop resolves every section. Reaching here means the context died
	// between iterations.
	if err := ctx.Err(); err != nil {
		return draft, err
	}
	draft.Status = types.StatusDegraded
	return draft, nil
}

// remainingModels counts the non-template choices after position i.
func remainingModels(chain []router.Choice, i int) int {
	n := 0
	for _, c := range chain[i+1:] {
		if !c.Template {
			n++
		}
	}
	return n
}
