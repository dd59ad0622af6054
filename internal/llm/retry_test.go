package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "Question 1"},
	)
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "Question 1" {
		t.Fatalf("unexpected text: %s", resp.Text)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Text: "ok"},
	)
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("unexpected text: %s", resp.Text)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_MissingCredentialsNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrMissingCredentials{Family: FamilyAnthropic, EnvVar: EnvAnthropicKey}},
	)
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var missing *ErrMissingCredentials
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingCredentials, got: %T", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.CallCount())
	}
}

func TestRetry_UnknownModelNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrUnknownModel{Model: "quantum-9000"}},
	)
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.CallCount())
	}
}

func TestRetry_MaxTokensNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrMaxTokensExceeded{Text: "truncated"}},
	)
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.CallCount())
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Text: "ok"},
	)
	p := WithRetry(mock, retryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately.

	_, err := p.Generate(ctx, Request{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRetry_RateLimitRespectsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 1 * time.Millisecond, Err: errors.New("429")}},
		MockResponse{Text: "ok"},
	)
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("unexpected text: %s", resp.Text)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_StreamRetriesBeforeFirstToken(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Text: "line one\nline two\n"},
	)
	p := WithRetry(mock, retryConfig()).(*RetryProvider)

	var tokens []string
	resp, err := p.GenerateStream(context.Background(), Request{}, func(tok string) {
		tokens = append(tokens, tok)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "line one\nline two\n" {
		t.Fatalf("unexpected text: %s", resp.Text)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d: %v", len(tokens), tokens)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

// midStreamFailer emits one token and then fails.
type midStreamFailer struct {
	calls int
}

func (m *midStreamFailer) Family() Family { return FamilyMock }

func (m *midStreamFailer) Generate(_ context.Context, _ Request) (*Response, error) {
	m.calls++
	return nil, &ErrProviderUnavailable{Err: errors.New("down")}
}

func (m *midStreamFailer) GenerateStream(_ context.Context, _ Request, onToken func(string)) (*Response, error) {
	m.calls++
	onToken("partial")
	return nil, &ErrProviderUnavailable{Err: errors.New("connection reset")}
}

func TestRetry_StreamDoesNotRetryAfterEmission(t *testing.T) {
	inner := &midStreamFailer{}
	p := WithRetry(inner, retryConfig()).(*RetryProvider)

	_, err := p.GenerateStream(context.Background(), Request{}, func(string) {})
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 call (no retry after a token was emitted), got %d", inner.calls)
	}
}

func TestRetry_BackoffHonorsRetryAfterAndCap(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig()).(*RetryProvider)

	if got := p.backoff(0, &ErrRateLimit{RetryAfter: 42 * time.Millisecond}); got != 42*time.Millisecond {
		t.Errorf("backoff with RetryAfter = %v, want 42ms", got)
	}

	// With multiplier 2 and cap 10ms, attempt 10 would be 1024ms uncapped;
	// jitter is at most ±20% of the capped wait.
	got := p.backoff(10, errors.New("transient"))
	if got > 12*time.Millisecond {
		t.Errorf("backoff exceeded cap with jitter: %v", got)
	}
}

func TestRetry_FamilyDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig())
	if p.Family() != FamilyMock {
		t.Fatalf("expected mock family, got %v", p.Family())
	}
}
