package llm

import (
	"fmt"
	"time"
)

// ErrMissingCredentials indicates the API key for the selected provider
// family is not configured. This is a configuration error: it fails fast
// and is never retried.
type ErrMissingCredentials struct {
	Family Family
	EnvVar string
}

func (e *ErrMissingCredentials) Error() string {
	if e.EnvVar != "" {
		return fmt.Sprintf("%s not set", e.EnvVar)
	}
	return fmt.Sprintf("no credentials configured for %s provider", e.Family)
}

// ErrUnknownModel indicates the model id resolves to no known provider
// family. Reported before any network call.
type ErrUnknownModel struct {
	Model string
}

func (e *ErrUnknownModel) Error() string {
	return fmt.Sprintf("unknown model: %s", e.Model)
}

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrEmptyResponse indicates the backend returned no usable text content.
type ErrEmptyResponse struct {
	Model string
}

func (e *ErrEmptyResponse) Error() string {
	return fmt.Sprintf("empty response from model %s", e.Model)
}

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Text string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}
