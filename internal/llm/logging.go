package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/medbyte/medbyte/internal/store"
)

// LoggingProvider is a decorator that records every model request as an
// event. Logging failures never fail the request.
type LoggingProvider struct {
	inner Provider
	repo  store.EventRepo
}

// WithLogging wraps a Provider with event logging. A nil repo returns the
// provider unchanged.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	if repo == nil {
		return p
	}
	return &LoggingProvider{inner: p, repo: repo}
}

func (l *LoggingProvider) Family() Family { return l.inner.Family() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	l.record(ctx, req, resp, err, time.Since(start))
	return resp, err
}

func (l *LoggingProvider) GenerateStream(ctx context.Context, req Request, onToken func(string)) (*Response, error) {
	start := time.Now()
	var resp *Response
	var err error
	if sp, ok := l.inner.(StreamProvider); ok {
		resp, err = sp.GenerateStream(ctx, req, onToken)
	} else {
		resp, err = l.inner.Generate(ctx, req)
		if err == nil {
			onToken(resp.Text)
		}
	}
	l.record(ctx, req, resp, err, time.Since(start))
	return resp, err
}

func (l *LoggingProvider) record(ctx context.Context, req Request, resp *Response, err error, elapsed time.Duration) {
	data := store.LLMEventData{
		RunID:       RunIDFrom(ctx),
		Purpose:     PurposeFrom(ctx),
		Family:      l.inner.Family().String(),
		Model:       req.Model,
		PromptChars: len(req.Prompt),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.ResponseChars = len(resp.Text)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	if logErr := l.repo.AppendLLMEvent(ctx, data); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request event: %v\n", logErr)
	}
}
