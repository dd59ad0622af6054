package pipeline

// Config controls the orchestrator's retry policy and stage parameters.
type Config struct {
	// MaxFormatterRetries bounds how many times the formatter is re-run
	// on the original draft after a failed validation. The formatter is
	// therefore invoked at most 1+MaxFormatterRetries times per run.
	MaxFormatterRetries int

	// MaxInputChars is the source text ceiling, checked before any model
	// call.
	MaxInputChars int

	// MaxTokens is the response token budget for both stages.
	MaxTokens int

	// FormatterModel is the model id used for the formatter stage.
	FormatterModel string

	// RetryTemperature, when set, replaces the formatter temperature on
	// retries so the second formatting pass is more deterministic.
	RetryTemperature *float64
}

// DefaultConfig returns the production defaults: a single formatter retry
// against a fast formatter model.
func DefaultConfig() Config {
	return Config{
		MaxFormatterRetries: 1,
		MaxInputChars:       500000,
		MaxTokens:           8000,
		FormatterModel:      "gemini-2.5-flash",
	}
}
