// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/spf13/viper"
)

func TestBuildConfigReadsQualitySettings(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("quality.completeness_threshold", 0.9)
	viper.Set("quality.completeness_weight", 0.5)
	viper.Set("quality.style_weight", 0.3)
	viper.Set("quality.citation_weight", 0.2)
	viper.Set("backend.user_agent", "lab-runner/1.0")

	cfg := buildConfig(composeCmd)

	if cfg.Quality.CompletenessThreshold != 0.9 {
		t.Errorf("CompletenessThreshold = %v, want 0.9", cfg.Quality.CompletenessThreshold)
	}
	if cfg.Quality.CompletenessWeight != 0.5 {
		t.Errorf("CompletenessWeight = %v, want 0.5", cfg.Quality.CompletenessWeight)
	}
	if cfg.Quality.StyleWeight != 0.3 {
		t.Errorf("StyleWeight = %v, want 0.3", cfg.Quality.StyleWeight)
	}
	if cfg.Quality.CitationWeight != 0.2 {
		t.Errorf("CitationWeight = %v, want 0.2", cfg.Quality.CitationWeight)
	}
	if cfg.Backend.UserAgent != "lab-runner/1.0" {
		t.Errorf("UserAgent = %q, want lab-runner/1.0", cfg.Backend.UserAgent)
	}
}
