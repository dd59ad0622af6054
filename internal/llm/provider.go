package llm

import (
	"context"
	"time"
)

// Provider is the uniform calling contract over heterogeneous LLM
// backends. Consumers build a Request with the target model id and a fully
// substituted prompt and receive the raw text response.
type Provider interface {
	// Generate sends the prompt to the backend and returns its text output.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Family returns the provider family this implementation serves.
	Family() Family
}

// StreamProvider is implemented by providers that can emit incremental
// tokens. onToken is called in arrival order from a single goroutine; the
// returned Response carries the full accumulated text.
type StreamProvider interface {
	GenerateStream(ctx context.Context, req Request, onToken func(string)) (*Response, error)
}

// Request describes a single model invocation.
type Request struct {
	// Model is the backend model identifier, e.g.
	// "claude-sonnet-4-5-20250929" or "gemini-2.5-flash". The provider
	// family is resolved from it once, before any provider is constructed.
	Model string

	// Prompt is the complete, fully substituted prompt text. Single-turn:
	// the pipeline never sends conversation history.
	Prompt string

	// MaxTokens is the response token budget.
	MaxTokens int

	// Temperature and TopP are optional sampling overrides in [0,1].
	// nil means the backend default; an explicit 0 is honored, which is
	// how the formatter retry can be pinned to deterministic sampling.
	Temperature *float64
	TopP        *float64
}

// Response holds a backend's output.
type Response struct {
	// Text is the raw model output, untouched.
	Text string

	// Model is the identifier of the model that actually served the
	// request, as reported by the backend.
	Model string

	// Usage reports token consumption when the backend provides it.
	Usage Usage

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string

	// Latency is the wall-clock duration of the invocation, set by the
	// registry around the full (retried) call.
	Latency time.Duration
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Float returns a pointer to v, for inline sampling overrides.
func Float(v float64) *float64 { return &v }
