package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medbyte/medbyte/internal/llm"
	"github.com/medbyte/medbyte/internal/prompts"
	"github.com/medbyte/medbyte/internal/store"
	"github.com/medbyte/medbyte/internal/validate"
)

// Options configures a Runner.
type Options struct {
	// Models dispatches stage invocations to LLM backends. Required.
	Models llm.Invoker

	// Prompts is the external template store. Required.
	Prompts prompts.Store

	// Events receives run records for the operational log. Optional.
	Events store.EventRepo

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	Config Config
}

// Runner executes pipeline runs. It is stateless across runs and safe for
// concurrent use.
type Runner struct {
	models llm.Invoker
	store  prompts.Store
	events store.EventRepo
	log    *slog.Logger
	cfg    Config
}

// New creates a Runner from Options.
func New(opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		models: opts.Models,
		store:  opts.Prompts,
		events: opts.Events,
		log:    log,
		cfg:    opts.Config,
	}
}

// Run executes the full state machine: LoadPrompts → Generate → Format →
// Validate → {RetryFormat → Validate}? → Done|Fail.
//
// Expected failure modes (missing credentials, transient exhaustion,
// oversized input, unknown content type or model, validation failure) are
// reported inside the Result, never as a returned error. The returned
// error is reserved for programming-contract violations in the Request.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	ct, err := checkRequest(req)
	if err != nil {
		return nil, err
	}

	st := newState(req, ct)
	ctx = llm.WithRunID(ctx, st.runID)

	r.execute(ctx, st, nil)
	return r.finish(ctx, st), nil
}

// execute drives the stages on st. emit, when non-nil, receives
// stage-tagged tokens as they arrive (the streaming variant); the
// acceptance logic is identical either way.
func (r *Runner) execute(ctx context.Context, st *state, emit func(stage, token string)) {
	// Unknown content type is fatal before any network call.
	if _, ok := validate.ParseContentType(st.req.ContentType); !ok {
		st.failureReason = fmt.Sprintf("Unknown content type: %s", st.req.ContentType)
		return
	}

	r.loadPrompts(ctx, st)

	if !r.generate(ctx, st, emit) {
		return
	}
	for {
		if !r.format(ctx, st, emit) {
			return
		}
		r.runValidator(st)
		if st.succeeded {
			return
		}
		if st.retries < r.cfg.MaxFormatterRetries {
			st.retries++
			r.log.Info("formatter_retry", "run_id", st.runID, "attempt", st.retries)
			continue
		}
		return
	}
}

// loadPrompts captures the template pair once for the whole run. A missing
// template degrades to an empty prompt rather than stopping the run;
// validation rejects whatever the models make of it.
func (r *Runner) loadPrompts(ctx context.Context, st *state) {
	r.log.Info("load_prompts_started",
		"run_id", st.runID,
		"content_type", string(st.ct),
		"generator_model", st.req.GeneratorModel,
	)
	st.prompts = prompts.Resolve(ctx, r.store, st.ct)
}

// generate invokes the generator model and assigns the immutable draft.
func (r *Runner) generate(ctx context.Context, st *state, emit func(stage, token string)) bool {
	if len(st.req.InputText) > r.cfg.MaxInputChars {
		st.failureReason = fmt.Sprintf("Input text exceeds %d character limit", r.cfg.MaxInputChars)
		return false
	}
	if llm.ResolveFamily(st.req.GeneratorModel) == llm.FamilyUnknown {
		st.failureReason = fmt.Sprintf("Generation failed: unknown model: %s", st.req.GeneratorModel)
		return false
	}

	prompt := prompts.Render(st.prompts.Generator, prompts.Vars{
		InputText:    st.req.InputText,
		NumQuestions: st.req.NumQuestions,
		FocusAreas:   st.req.FocusAreas,
	})

	resp, err := r.invoke(llm.WithPurpose(ctx, StageGenerator), llm.Request{
		Model:       st.req.GeneratorModel,
		Prompt:      prompt,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: st.req.GeneratorTemperature,
		TopP:        st.req.GeneratorTopP,
	}, StageGenerator, emit)
	if err != nil {
		st.failureReason = failureMessage("Generation", err)
		r.log.Error("generator_failed", "run_id", st.runID, "error", err)
		return false
	}

	st.setDraft(resp.Text)
	st.modelIDs[StageGenerator] = resp.Model
	st.latencies[StageGenerator] = resp.Latency.Seconds()

	r.log.Info("generator_completed",
		"run_id", st.runID,
		"model", resp.Model,
		"latency", resp.Latency.Seconds(),
		"content_length", len(resp.Text),
	)
	return true
}

// format invokes the formatter model against the original draft. Every
// retry reformats that same draft with the same formatter prompt; only the
// structural presentation may change between attempts.
func (r *Runner) format(ctx context.Context, st *state, emit func(stage, token string)) bool {
	fullPrompt := fmt.Sprintf("%s\n\nContent to format:\n\n%s", st.prompts.Formatter, st.draft)

	temperature := st.req.FormatterTemperature
	if st.retries > 0 && r.cfg.RetryTemperature != nil {
		temperature = r.cfg.RetryTemperature
	}

	resp, err := r.invoke(llm.WithPurpose(ctx, StageFormatter), llm.Request{
		Model:       r.cfg.FormatterModel,
		Prompt:      fullPrompt,
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: temperature,
		TopP:        st.req.FormatterTopP,
	}, StageFormatter, emit)
	if err != nil {
		st.failureReason = failureMessage("Formatting", err)
		r.log.Error("formatter_failed", "run_id", st.runID, "error", err)
		return false
	}

	st.formatted = resp.Text
	st.modelIDs[StageFormatter] = resp.Model
	st.latencies[StageFormatter] = resp.Latency.Seconds()

	r.log.Info("formatter_completed",
		"run_id", st.runID,
		"model", resp.Model,
		"latency", resp.Latency.Seconds(),
		"retry_count", st.retries,
	)
	return true
}

// runValidator applies the deterministic structural validator. Validation
// failure is a normal outcome handled by the retry branch, never an error.
func (r *Runner) runValidator(st *state) {
	ok, errs := validate.Content(st.formatted, st.ct)
	st.validationErrors = errs
	st.succeeded = ok

	if ok {
		r.log.Info("validator_passed", "run_id", st.runID)
	} else {
		r.log.Warn("validator_failed",
			"run_id", st.runID,
			"error_count", len(errs),
			"retry_count", st.retries,
		)
	}
}

func (r *Runner) invoke(ctx context.Context, req llm.Request, stage string, emit func(stage, token string)) (*llm.Response, error) {
	if emit == nil {
		return r.models.Invoke(ctx, req)
	}
	return r.models.InvokeStream(ctx, req, func(tok string) {
		emit(stage, tok)
	})
}

// finish assembles the terminal Result. Done and Fail produce the same
// shape, differing only in success, output vs partial output, and the
// failure reason.
func (r *Runner) finish(ctx context.Context, st *state) *Result {
	elapsed := time.Since(st.start)

	ctLabel := string(st.ct)
	if ctLabel == "" {
		ctLabel = st.req.ContentType
	}

	res := &Result{
		Success:          st.succeeded,
		Error:            st.failureReason,
		ValidationErrors: st.validationErrors,
		Metadata: Metadata{
			ContentType:      ctLabel,
			GeneratorModel:   st.req.GeneratorModel,
			NumQuestions:     st.req.NumQuestions,
			FormatterRetries: st.retries,
			ModelIDs:         st.modelIDs,
			Latencies:        st.latencies,
			TotalTime:        elapsed.Seconds(),
		},
	}
	if res.ValidationErrors == nil {
		res.ValidationErrors = []validate.Error{}
	}
	if st.succeeded {
		out := st.formatted
		res.Output = &out
	} else if st.formatted != "" {
		partial := st.formatted
		res.PartialOutput = &partial
	}

	if st.succeeded {
		r.log.Info("pipeline_completed",
			"run_id", st.runID,
			"total_time", elapsed.Seconds(),
			"formatter_retries", st.retries,
		)
	} else {
		r.log.Error("pipeline_failed",
			"run_id", st.runID,
			"total_time", elapsed.Seconds(),
			"formatter_retries", st.retries,
			"validation_errors", len(st.validationErrors),
		)
	}

	if r.events != nil {
		err := r.events.AppendRun(ctx, store.RunData{
			ID:               st.runID,
			ContentType:      ctLabel,
			GeneratorModel:   st.req.GeneratorModel,
			NumQuestions:     st.req.NumQuestions,
			Success:          st.succeeded,
			FormatterRetries: st.retries,
			ValidationErrors: len(st.validationErrors),
			ErrorMessage:     st.failureReason,
			TotalMs:          elapsed.Milliseconds(),
		})
		if err != nil {
			r.log.Warn("run_event_append_failed", "run_id", st.runID, "error", err)
		}
	}

	return res
}

// checkRequest rejects programming-contract violations. These are the only
// conditions Run reports as a Go error.
func checkRequest(req Request) (validate.ContentType, error) {
	if req.InputText == "" {
		return "", errors.New("pipeline: input text must not be empty")
	}
	if req.GeneratorModel == "" {
		return "", errors.New("pipeline: generator model must not be empty")
	}
	if req.NumQuestions < 1 || req.NumQuestions > 50 {
		return "", fmt.Errorf("pipeline: num questions must be in [1,50], got %d", req.NumQuestions)
	}
	for _, p := range []*float64{req.GeneratorTemperature, req.GeneratorTopP, req.FormatterTemperature, req.FormatterTopP} {
		if p != nil && (*p < 0 || *p > 1) {
			return "", fmt.Errorf("pipeline: sampling parameters must be in [0,1], got %g", *p)
		}
	}

	ct, _ := validate.ParseContentType(req.ContentType)
	return ct, nil
}

// failureMessage classifies a stage error, distinguishing caller-initiated
// timeouts and cancellation from provider failures.
func failureMessage(stage string, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("%s timed out: %v", stage, err)
	case errors.Is(err, context.Canceled):
		return fmt.Sprintf("%s canceled: %v", stage, err)
	default:
		return fmt.Sprintf("%s failed: %v", stage, err)
	}
}
