// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package router

import (
	"reflect"
	"testing"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

func TestChainConfigured(t *testing.T) {
	cfg := types.ModelsConfig{
		Sections: map[string]types.ModelChain{
			"methods": {Primary: "gpt-4o", Fallbacks: []string{"claude-sonnet-4", "deepseek-chat"}},
		},
	}

	got := Chain("methods", cfg)
	want := []string{"gpt-4o", "claude-sonnet-4", "deepseek-chat", TemplateModel}
	var models []string
	for _, c := range got {
		models = append(models, c.Model)
	}
	if !reflect.DeepEqual(models, want) {
		t.Errorf("Chain models = %v, want %v", models, want)
	}
	if !got[len(got)-1].Template {
		t.Error("last choice must be the template fallback")
	}
}

func TestChainDefaultSection(t *testing.T) {
	cfg := types.ModelsConfig{
		Default: types.ModelChain{Primary: "gpt-4o-mini"},
	}
	got := Chain("results", cfg)
	if got[0].Model != "gpt-4o-mini" {
		t.Errorf("first choice = %q, want the configured default primary", got[0].Model)
	}
}

func TestChainBuiltinDefaults(t *testing.T) {
	var cfg types.ModelsConfig

	tests := []struct {
		section string
		primary string
	}{
		{"discussion", "claude-sonnet-4"},
		{"methods", "gpt-4o"},
		{"conclusion", "claude-sonnet-4"},
	}
	for _, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			got := Chain(tt.section, cfg)
			if got[0].Model != tt.primary {
				t.Errorf("Chain(%q)[0] = %q, want %q", tt.section, got[0].Model, tt.primary)
			}
		})
	}
}

func TestChainTemperatures(t *testing.T) {
	var cfg types.ModelsConfig
	if got := Chain("abstract", cfg)[0].Temperature; got != 0.5 {
		t.Errorf("abstract temperature = %v, want 0.5", got)
	}
	if got := Chain("discussion", cfg)[0].Temperature; got != 0.7 {
		t.Errorf("discussion temperature = %v, want 0.7", got)
	}
}

func TestChainAlwaysEndsWithTemplate(t *testing.T) {
	// Even a fully empty configuration yields the template fallback.
	got := Chain("unknown-section", types.ModelsConfig{})
	if len(got) == 0 {
		t.Fatal("chain must never be empty")
	}
	last := got[len(got)-1]
	if !last.Template || last.Model != TemplateModel {
		t.Errorf("last choice = %+v, want template fallback", last)
	}
}

func TestChainPure(t *testing.T) {
	cfg := types.ModelsConfig{
		Sections: map[string]types.ModelChain{
			"methods": {Primary: "gpt-4o", Fallbacks: []string{"claude-sonnet-4"}},
		},
	}
	first := Chain("methods", cfg)
	for i := 0; i < 3; i++ {
		if !reflect.DeepEqual(Chain("methods", cfg), first) {
			t.Fatal("Chain must be deterministic for identical inputs")
		}
	}
}
