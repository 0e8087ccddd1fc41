// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package router derives the ordered model candidate list for a section.
// Routing is a pure function of (section name, models configuration); it
// holds no state and performs no retries.
package router

import (
	"strings"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// TemplateModel is the sentinel model identifier for the final degraded
// fallback. The backend layer renders it deterministically without calling
// any provider.
const TemplateModel = "template"

// defaultTemperature applies when neither the chain nor the per-section
// default sets one. The abstract uses a lower temperature for a tighter
// summary.
func defaultTemperature(section string) float64 {
	if strings.ToLower(section) == "abstract" {
		return 0.5
	}
	return 0.7
}

// defaultChains assigns models per section when the configuration has no
// entry: precise structured sections go to gpt-4o, interpretive sections to
// claude-sonnet-4.
var defaultChains = map[string]types.ModelChain{
	"introduction": {Primary: "gpt-4o", Fallbacks: []string{"deepseek-chat"}},
	"methods":      {Primary: "gpt-4o", Fallbacks: []string{"claude-sonnet-4"}},
	"results":      {Primary: "gpt-4o", Fallbacks: []string{"claude-sonnet-4"}},
	"discussion":   {Primary: "claude-sonnet-4", Fallbacks: []string{"gpt-4o"}},
	"conclusion":   {Primary: "claude-sonnet-4", Fallbacks: []string{"gpt-4o"}},
	"abstract":     {Primary: "gpt-4o", Fallbacks: []string{"deepseek-chat"}},
}

// Choice is one candidate model for a section's generation attempt.
type Choice struct {
	// Model is the backend model identifier, or TemplateModel for the
	// degraded fallback.
	Model string

	// Temperature is the sampling temperature for the call.
	Temperature float64

	// Template marks the deterministic degraded fallback.
	Template bool
}

// Chain returns the ordered candidate list for a section: the configured
// primary, then configured fallbacks, then the template fallback. The result
// is re-derivable from configuration alone and always non-empty.
func Chain(section string, cfg types.ModelsConfig) []Choice {
	chain, ok := cfg.Sections[strings.ToLower(section)]
	if !ok {
		chain = cfg.Default
	}
	if chain.Primary == "" {
		if dc, ok := defaultChains[strings.ToLower(section)]; ok {
			dc.Temperature = chain.Temperature
			chain = dc
		}
	}

	temp := chain.Temperature
	if temp <= 0 {
		temp = defaultTemperature(section)
	}

	var choices []Choice
	if chain.Primary != "" {
		choices = append(choices, Choice{Model: chain.Primary, Temperature: temp})
	}
	for _, fb := range chain.Fallbacks {
		if fb == "" {
			continue
		}
		choices = append(choices, Choice{Model: fb, Temperature: temp})
	}
	choices = append(choices, Choice{Model: TemplateModel, Temperature: 0, Template: true})
	return choices
}
