// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend abstracts the text-completion service consumed by the
// section writer. Backends are opaque: the pipeline owns retries and quality,
// the backend owns only one request/response exchange.
package backend

import (
	"context"
	"errors"
	"time"
)

// Failure classes for a completion call. The retry controller treats rate
// limiting, timeouts, and provider errors as transient; auth errors are not
// transient but still only consume the section's budget rather than aborting
// the run.
var (
	ErrRateLimited = errors.New("backend: rate limited")
	ErrAuth        = errors.New("backend: authentication failed")
	ErrTimeout     = errors.New("backend: request timed out")
	ErrProvider    = errors.New("backend: provider error")
)

// Request is one completion call.
type Request struct {
	// Model is the backend model identifier.
	Model string

	// Prompt is the full generation prompt.
	Prompt string

	// MaxTokens is the completion token budget.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64
}

// Response is the result of a completion call.
type Response struct {
	// Text is the completion text.
	Text string

	// Latency is the wall-clock duration of the exchange.
	Latency time.Duration
}

// Client is the backend capability. Implementations must honor ctx
// cancellation and classify failures using the package error values so the
// controller can tell transient faults from configuration faults.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
