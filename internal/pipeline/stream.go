package pipeline

import (
	"context"

	"github.com/medbyte/medbyte/internal/llm"
)

// EventKind discriminates stream events.
type EventKind string

const (
	// EventToken carries one incremental model token.
	EventToken EventKind = "token"

	// EventStage marks a stage transition.
	EventStage EventKind = "stage"

	// EventResult is the single terminal event; the channel closes after
	// it is delivered.
	EventResult EventKind = "result"
)

// Event is one element of a streaming run.
type Event struct {
	Kind EventKind `json:"kind"`

	// Stage is set for token and stage events: "generator" or "formatter".
	Stage string `json:"stage,omitempty"`

	// Token is the incremental text for token events.
	Token string `json:"token,omitempty"`

	// Result is set for the terminal event.
	Result *Result `json:"result,omitempty"`
}

// RunStream executes the same state machine as Run but emits model tokens
// as they arrive. The returned channel always delivers exactly one
// terminal result event and is then closed, even when the caller's context
// is canceled mid-run.
//
// Tokens from a formatter attempt that subsequently fails validation have
// already been emitted; consumers that render incrementally should replace
// the streamed text with the terminal result's output.
func (r *Runner) RunStream(ctx context.Context, req Request) (<-chan Event, error) {
	ct, err := checkRequest(req)
	if err != nil {
		return nil, err
	}

	ch := make(chan Event, 16)
	go func() {
		defer close(ch)

		st := newState(req, ct)
		runCtx := llm.WithRunID(ctx, st.runID)

		lastStage := ""
		emit := func(stage, token string) {
			if stage != lastStage {
				lastStage = stage
				send(ctx, ch, Event{Kind: EventStage, Stage: stage})
			}
			send(ctx, ch, Event{Kind: EventToken, Stage: stage, Token: token})
		}

		r.execute(runCtx, st, emit)
		res := r.finish(runCtx, st)

		// Terminal result is delivered even after cancellation; the
		// buffered slot holds it for a late drain if the reader left.
		select {
		case ch <- Event{Kind: EventResult, Result: res}:
		case <-ctx.Done():
			select {
			case ch <- Event{Kind: EventResult, Result: res}:
			default:
			}
		}
	}()
	return ch, nil
}

// send delivers intermediate events, dropping them once the context ends
// so a departed consumer cannot wedge the run.
func send(ctx context.Context, ch chan<- Event, ev Event) {
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}
