// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SourceMaterialHeading marks the prompt section listing the content facts a
// draft must cover. The writer emits it; the template fallback renders from
// it.
const SourceMaterialHeading = "## Source Material"

// Template is the terminal fallback backend. It renders a deterministic
// skeleton section from the source-material lines embedded in the prompt,
// without contacting any provider. Output quality is expected to score below
// thresholds; the controller tags the section degraded.
type Template struct{}

// NewTemplate returns the template fallback backend.
func NewTemplate() *Template {
	return &Template{}
}

// Complete renders the skeleton. It never fails and ignores the model,
// token, and temperature fields.
func (t *Template) Complete(_ context.Context, req Request) (Response, error) {
	start := time.Now()
	facts := extractSourceMaterial(req.Prompt)

	var b strings.Builder
	if len(facts) == 0 {
		b.WriteString("This section could not be generated from the available material.\n")
	} else {
		b.WriteString("This section summarizes the source material directly.\n\n")
		for _, f := range facts {
			fmt.Fprintf(&b, "%s\n\n", f)
		}
	}
	return Response{Text: strings.TrimSpace(b.String()), Latency: time.Since(start)}, nil
}

// extractSourceMaterial returns the non-empty lines under the
// source-material heading, up to the next "## " heading.
func extractSourceMaterial(prompt string) []string {
	var facts []string
	capturing := false
	for _, line := range strings.Split(prompt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == SourceMaterialHeading {
			capturing = true
			continue
		}
		if capturing && strings.HasPrefix(trimmed, "## ") {
			break
		}
		if capturing && trimmed != "" {
			facts = append(facts, strings.TrimPrefix(trimmed, "- "))
		}
	}
	return facts
}
