// Package oracle abstracts the code-generation capability behind a small
// interface. The pipeline only ever sees Generate; any text-generation
// backend can be substituted without touching the retry state machines.
package oracle

import (
	"context"
	"time"
)

// Request contains all parameters for one generation call.
type Request struct {
	// Prompt is the main input text.
	Prompt string

	// SystemPrompt sets system-level instructions.
	SystemPrompt string

	// Temperature controls randomness. Zero means the configured default.
	Temperature float64

	// MaxTokens limits the response length. Zero means the configured default.
	MaxTokens int
}

// Response contains the oracle's reply.
type Response struct {
	// Content is the generated text, possibly wrapped in formatting the
	// caller must strip.
	Content string

	// Model is the model that produced the response.
	Model string

	// InputTokens and OutputTokens report usage when the backend exposes it.
	InputTokens  int
	OutputTokens int

	// Latency is how long the call took.
	Latency time.Duration
}

// Client is the generation oracle. Implementations are nondeterministic
// and may fail; unavailability is fatal for the pipeline, there is no
// fallback generation path.
type Client interface {
	// Generate sends a prompt and returns a complete response.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name identifies the backend ("anthropic", "stub").
	Name() string
}
