package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LLMEventData describes one model request for the append-only log.
type LLMEventData struct {
	RunID         string
	Purpose       string
	Family        string
	Model         string
	PromptChars   int
	ResponseChars int
	InputTokens   int
	OutputTokens  int
	LatencyMs     int64
	Success       bool
	ErrorMessage  string
}

// LLMEvent is a stored model request event.
type LLMEvent struct {
	ID        int64
	CreatedAt time.Time
	LLMEventData
}

// RunData describes one completed pipeline run.
type RunData struct {
	ID               string
	ContentType      string
	GeneratorModel   string
	NumQuestions     int
	Success          bool
	FormatterRetries int
	ValidationErrors int
	ErrorMessage     string
	TotalMs          int64
}

// Run is a stored pipeline run record.
type Run struct {
	CreatedAt time.Time
	RunData
}

// EventRepo appends and queries run and model request events.
type EventRepo interface {
	AppendLLMEvent(ctx context.Context, data LLMEventData) error
	AppendRun(ctx context.Context, data RunData) error
	ListLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMEvent(ctx context.Context, data LLMEventData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_events
			(run_id, purpose, family, model, prompt_chars, response_chars,
			 input_tokens, output_tokens, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.RunID, data.Purpose, data.Family, data.Model,
		data.PromptChars, data.ResponseChars,
		data.InputTokens, data.OutputTokens,
		data.LatencyMs, boolToInt(data.Success), data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("append llm event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendRun(ctx context.Context, data RunData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs
			(id, content_type, generator_model, num_questions, success,
			 formatter_retries, validation_errors, error_message, total_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.ID, data.ContentType, data.GeneratorModel, data.NumQuestions,
		boolToInt(data.Success), data.FormatterRetries, data.ValidationErrors,
		data.ErrorMessage, data.TotalMs,
	)
	if err != nil {
		return fmt.Errorf("append run: %w", err)
	}
	return nil
}

func (r *eventRepo) ListLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, purpose, family, model, prompt_chars, response_chars,
		       input_tokens, output_tokens, latency_ms, success, error_message, created_at
		FROM llm_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		var e LLMEvent
		var success int
		var createdAt string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Purpose, &e.Family, &e.Model,
			&e.PromptChars, &e.ResponseChars, &e.InputTokens, &e.OutputTokens,
			&e.LatencyMs, &success, &e.ErrorMessage, &createdAt); err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		e.Success = success != 0
		e.CreatedAt = parseTimestamp(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content_type, generator_model, num_questions, success,
		       formatter_retries, validation_errors, error_message, total_ms, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var success int
		var createdAt string
		if err := rows.Scan(&run.ID, &run.ContentType, &run.GeneratorModel,
			&run.NumQuestions, &success, &run.FormatterRetries,
			&run.ValidationErrors, &run.ErrorMessage, &run.TotalMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Success = success != 0
		run.CreatedAt = parseTimestamp(createdAt)
		out = append(out, run)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05.999Z", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
