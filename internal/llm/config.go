package llm

import (
	"os"
	"time"
)

// Config holds credentials and tuning for all provider families. A family
// with an empty API key is simply unavailable; selecting a model from it
// fails fast with ErrMissingCredentials.
type Config struct {
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single invocation including its transient retries.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
}

// GeminiConfig holds Gemini-specific configuration. The key env var is
// GOOGLE_API_KEY, matching the Google SDK convention.
type GeminiConfig struct {
	APIKey string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional override for compatible APIs.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults and no credentials.
func DefaultConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 120 * time.Second,
	}
}

// Env var names for provider credentials.
const (
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvGoogleKey     = "GOOGLE_API_KEY"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenRouterKey = "OPENROUTER_API_KEY"
)

// ConfigFromEnv builds a Config from environment variables. Unset keys
// leave their family unavailable rather than failing here.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Anthropic.APIKey = os.Getenv(EnvAnthropicKey)
	cfg.Gemini.APIKey = os.Getenv(EnvGoogleKey)
	cfg.OpenAI.APIKey = os.Getenv(EnvOpenAIKey)
	cfg.OpenAI.BaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.OpenRouter.APIKey = os.Getenv(EnvOpenRouterKey)
	return cfg
}

// keyFor returns the configured API key and its env var name for a family.
func (c Config) keyFor(f Family) (string, string) {
	switch f {
	case FamilyAnthropic:
		return c.Anthropic.APIKey, EnvAnthropicKey
	case FamilyGemini:
		return c.Gemini.APIKey, EnvGoogleKey
	case FamilyOpenAI:
		return c.OpenAI.APIKey, EnvOpenAIKey
	case FamilyOpenRouter:
		return c.OpenRouter.APIKey, EnvOpenRouterKey
	}
	return "", ""
}

// HasCredentials reports whether the family's API key is configured.
// The mock family never needs one.
func (c Config) HasCredentials(f Family) bool {
	if f == FamilyMock {
		return true
	}
	key, _ := c.keyFor(f)
	return key != ""
}
