// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pdiddy/manuscript-engine/internal/backend"
	"github.com/pdiddy/manuscript-engine/internal/content"
	"github.com/pdiddy/manuscript-engine/internal/literature"
	"github.com/pdiddy/manuscript-engine/internal/writer"
	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// scriptStep is one scripted backend exchange.
type scriptStep struct {
	text string
	err  error
}

// scriptClient replays a fixed script and records what it was asked. When
// the script runs out it repeats the last step.
type scriptClient struct {
	steps   []scriptStep
	calls   int
	models  []string
	prompts []string
}

func (c *scriptClient) Complete(_ context.Context, req backend.Request) (backend.Response, error) {
	c.calls++
	c.models = append(c.models, req.Model)
	c.prompts = append(c.prompts, req.Prompt)
	step := c.steps[len(c.steps)-1]
	if c.calls <= len(c.steps) {
		step = c.steps[c.calls-1]
	}
	if step.err != nil {
		return backend.Response{}, step.err
	}
	return backend.Response{Text: step.text}, nil
}

func testConfig() types.Config {
	return types.Config{
		Models: types.ModelsConfig{Sections: map[string]types.ModelChain{
			"methods": {Primary: "m1", Fallbacks: []string{"m2"}},
		}},
	}
}

func testController(client backend.Client, cfg types.Config) *Controller {
	store := content.New(types.ResearchContent{Title: "Test Paper"})
	index := literature.BuildIndex(nil)
	agent := writer.NewAgent(store, index, "", cfg)
	return New(agent, client, index, cfg, io.Discard)
}

// goodDraft lands inside the methods word band with journal-length
// sentences, so it passes under default thresholds.
func goodDraft() string {
	sentence := "The experimental procedure followed the approved protocol and every measurement was recorded twice for verification. "
	return strings.TrimSpace(strings.Repeat(sentence, 25))
}

func TestDecide(t *testing.T) {
	pass := types.QualityScore{Pass: true}
	fail := types.QualityScore{Completeness: 0.70}

	tests := []struct {
		name       string
		score      types.QualityScore
		template   bool
		attempts   int
		maxRetries int
		remaining  int
		want       Action
	}{
		{"pass accepts", pass, false, 1, 3, 1, ActionAccept},
		{"template always degrades", fail, true, 3, 3, 0, ActionDegrade},
		{"fail with budget retries", fail, false, 1, 3, 1, ActionRetry},
		{"budget exhausted degrades", fail, false, 3, 3, 1, ActionDegrade},
		{"chain exhausted degrades", fail, false, 1, 3, 0, ActionDegrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.score, tt.template, tt.attempts, tt.maxRetries, tt.remaining)
			if got != tt.want {
				t.Errorf("Decide = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailingCompletenessRetriesNotAccepts(t *testing.T) {
	score := types.QualityScore{Completeness: 0.70, StyleMatch: 0.9, CitationAccuracy: 1.0, Overall: 0.86}
	if got := Decide(score, false, 1, 3, 1); got != ActionRetry {
		t.Errorf("completeness 0.70 against threshold 0.80 must retry, got %v", got)
	}
}

func TestFeedbackNamesFailingScores(t *testing.T) {
	score := types.QualityScore{Completeness: 0.70, StyleMatch: 0.90, CitationAccuracy: 0.50}
	fb := Feedback(score, types.QualityConfig{})

	if !strings.Contains(fb, "completeness 0.70") {
		t.Errorf("feedback missing completeness note: %q", fb)
	}
	if !strings.Contains(fb, "citation accuracy 0.50") {
		t.Errorf("feedback missing citation note: %q", fb)
	}
	if strings.Contains(fb, "style match") {
		t.Errorf("feedback names a passing sub-score: %q", fb)
	}
}

func TestRunSectionAccepts(t *testing.T) {
	client := &scriptClient{steps: []scriptStep{{text: goodDraft()}}}
	c := testController(client, testConfig())

	draft, err := c.RunSection(context.Background(), "methods", nil)
	if err != nil {
		t.Fatalf("RunSection: %v", err)
	}
	if draft.Status != types.StatusAccepted {
		t.Fatalf("status = %s, want accepted", draft.Status)
	}
	if draft.Model != "m1" {
		t.Errorf("model = %q, want m1", draft.Model)
	}
	if draft.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", draft.Attempts)
	}
	if draft.WordCount == 0 {
		t.Error("accepted draft has zero word count")
	}
}

func TestRunSectionRetriesWithFeedback(t *testing.T) {
	client := &scriptClient{steps: []scriptStep{
		{text: "Too short."},
		{text: goodDraft()},
	}}
	c := testController(client, testConfig())

	draft, err := c.RunSection(context.Background(), "methods", nil)
	if err != nil {
		t.Fatalf("RunSection: %v", err)
	}
	if draft.Status != types.StatusAccepted {
		t.Fatalf("status = %s, want accepted", draft.Status)
	}
	if draft.Model != "m2" {
		t.Errorf("model = %q, want m2 after one retry", draft.Model)
	}
	if draft.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", draft.Attempts)
	}
	if len(client.prompts) != 2 {
		t.Fatalf("backend calls = %d, want 2", len(client.prompts))
	}
	if strings.Contains(client.prompts[0], "## Revision Feedback") {
		t.Error("first prompt must not carry feedback")
	}
	if !strings.Contains(client.prompts[1], "## Revision Feedback") {
		t.Error("retry prompt missing revision feedback")
	}
}

func TestRunSectionRateLimitedDegradesToTemplate(t *testing.T) {
	client := &scriptClient{steps: []scriptStep{{err: backend.ErrRateLimited}}}
	c := testController(client, testConfig())

	draft, err := c.RunSection(context.Background(), "methods", nil)
	if err != nil {
		t.Fatalf("RunSection: %v", err)
	}
	if draft.Status != types.StatusDegraded {
		t.Fatalf("status = %s, want degraded", draft.Status)
	}
	if draft.Content == "" {
		t.Error("degraded section must still carry template content")
	}
	if draft.Attempts != 2 {
		t.Errorf("attempts = %d, want 2 (m1 and m2 both rate limited)", draft.Attempts)
	}
	if client.calls != 2 {
		t.Errorf("backend calls = %d, want 2", client.calls)
	}
}

func TestRunSectionBudgetKeepsLastDraft(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.MaxRetries = 1
	client := &scriptClient{steps: []scriptStep{{text: "Too short."}}}
	c := testController(client, cfg)

	draft, err := c.RunSection(context.Background(), "methods", nil)
	if err != nil {
		t.Fatalf("RunSection: %v", err)
	}
	if draft.Status != types.StatusDegraded {
		t.Fatalf("status = %s, want degraded", draft.Status)
	}
	if draft.Attempts != 1 {
		t.Errorf("attempts = %d, want 1 with max_retries=1", draft.Attempts)
	}
	if draft.Model != "m1" {
		t.Errorf("model = %q, want m1 (last real draft kept, not template)", draft.Model)
	}
	if draft.Content != "Too short." {
		t.Errorf("content = %q, want the last produced draft", draft.Content)
	}
}

func TestRunSectionAdvancesForwardOnly(t *testing.T) {
	client := &scriptClient{steps: []scriptStep{
		{err: backend.ErrProvider},
		{err: backend.ErrTimeout},
	}}
	c := testController(client, testConfig())

	if _, err := c.RunSection(context.Background(), "methods", nil); err != nil {
		t.Fatalf("RunSection: %v", err)
	}
	want := []string{"m1", "m2"}
	if len(client.models) != len(want) {
		t.Fatalf("models called = %v, want %v", client.models, want)
	}
	for i, m := range want {
		if client.models[i] != m {
			t.Fatalf("models called = %v, want %v", client.models, want)
		}
	}
}

func TestRunSectionContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &scriptClient{steps: []scriptStep{{text: goodDraft()}}}
	c := testController(client, testConfig())

	draft, err := c.RunSection(ctx, "methods", nil)
	if err == nil {
		t.Fatal("expected context error")
	}
	if draft.Status.Terminal() {
		t.Errorf("cancelled section must not be terminal, got %s", draft.Status)
	}
	if client.calls != 0 {
		t.Errorf("backend calls = %d, want 0 after cancellation", client.calls)
	}
}
