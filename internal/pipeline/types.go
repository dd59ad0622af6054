// Package pipeline drives the two-stage generate→format→validate→retry
// flow that turns source text into structurally valid study content. Each
// run is an independent sequential computation: state is owned by the run,
// so any number of runs may execute concurrently without locking.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/medbyte/medbyte/internal/prompts"
	"github.com/medbyte/medbyte/internal/validate"
)

// Request is the caller's input for one pipeline run. Immutable once
// constructed.
type Request struct {
	// ContentType is "MCQ", "NMCQ", or "SUMMARY" (case-insensitive).
	ContentType string

	// GeneratorModel is the backend model id for the generator stage.
	// The formatter model is pipeline configuration, not caller input.
	GeneratorModel string

	// InputText is the source material, bounded by Config.MaxInputChars.
	InputText string

	// NumQuestions is how many questions/blocks to request.
	NumQuestions int

	// FocusAreas optionally steers generation toward named topics.
	FocusAreas string

	// Optional per-stage sampling overrides, each in [0,1].
	GeneratorTemperature *float64
	GeneratorTopP        *float64
	FormatterTemperature *float64
	FormatterTopP        *float64
}

// Stage labels used in metadata, events, and the operational log.
const (
	StageGenerator = "generator"
	StageFormatter = "formatter"
)

// Result is the terminal output of a run. Its JSON shape is a wire
// contract consumed by an existing front end and must not drift.
type Result struct {
	Success bool `json:"success"`

	// Output is the accepted text, nil unless Success.
	Output *string `json:"output"`

	// Error is the stage failure reason, empty for validation-only failures.
	Error string `json:"error,omitempty"`

	ValidationErrors []validate.Error `json:"validation_errors"`

	// PartialOutput carries the last formatter attempt when validation
	// ultimately failed, for user inspection.
	PartialOutput *string `json:"partial_output,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// Metadata carries per-run provenance and timing.
type Metadata struct {
	ContentType      string             `json:"content_type"`
	GeneratorModel   string             `json:"generator_model"`
	NumQuestions     int                `json:"num_questions"`
	FormatterRetries int                `json:"formatter_retries"`
	ModelIDs         map[string]string  `json:"model_ids"`
	Latencies        map[string]float64 `json:"latencies"`
	TotalTime        float64            `json:"total_time"`
}

// state is threaded through the state machine for the lifetime of one run.
// draft is assigned exactly once, by the generator stage; formatter
// retries mutate only formatted, validationErrors, and retries.
type state struct {
	req   Request
	ct    validate.ContentType
	runID string

	prompts prompts.Pair

	draft            string
	draftSet         bool
	formatted        string
	validationErrors []validate.Error
	retries          int

	modelIDs  map[string]string
	latencies map[string]float64

	succeeded     bool
	failureReason string
	start         time.Time
}

func newState(req Request, ct validate.ContentType) *state {
	return &state{
		req:       req,
		ct:        ct,
		runID:     uuid.NewString(),
		modelIDs:  make(map[string]string),
		latencies: make(map[string]float64),
		start:     time.Now(),
	}
}

// setDraft records the generator output. The draft is the single source of
// truth for every formatter invocation and is never overwritten.
func (s *state) setDraft(text string) {
	if s.draftSet {
		panic("pipeline: draft assigned twice in one run")
	}
	s.draft = text
	s.draftSet = true
}
