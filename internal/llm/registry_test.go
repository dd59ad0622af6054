package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func registryConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry = retryConfig()
	return cfg
}

func TestRegistry_UnknownModel(t *testing.T) {
	r := NewRegistry(registryConfig(), nil)

	_, err := r.Invoke(context.Background(), Request{Model: "quantum-9000"})
	if err == nil {
		t.Fatal("expected error")
	}
	var unknown *ErrUnknownModel
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownModel, got %T: %v", err, err)
	}
}

func TestRegistry_MissingCredentialsFailFast(t *testing.T) {
	// No API keys configured: building the anthropic provider must fail
	// with a credentials error, not a network error.
	r := NewRegistry(registryConfig(), nil)

	_, err := r.Invoke(context.Background(), Request{Model: "claude-sonnet-4-5-20250929"})
	if err == nil {
		t.Fatal("expected error")
	}
	var missing *ErrMissingCredentials
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingCredentials, got %T: %v", err, err)
	}
	if missing.EnvVar != EnvAnthropicKey {
		t.Errorf("env var = %q, want %q", missing.EnvVar, EnvAnthropicKey)
	}
}

func TestRegistry_RegisteredProviderServesRequests(t *testing.T) {
	r := NewRegistry(registryConfig(), nil)
	mock := NewMockProvider(MockResponse{Text: "draft text"})
	r.Register(FamilyMock, mock)

	resp, err := r.Invoke(context.Background(), Request{Model: "mock-generator", Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "draft text" {
		t.Fatalf("unexpected text: %s", resp.Text)
	}
	if resp.Latency <= 0 {
		t.Error("latency not measured")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].Prompt != "p" {
		t.Errorf("prompt not forwarded: %q", mock.Calls[0].Prompt)
	}
}

func TestRegistry_RegisteredProviderRetriesTransient(t *testing.T) {
	r := NewRegistry(registryConfig(), nil)
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Text: "ok"},
	)
	r.Register(FamilyMock, mock)

	resp, err := r.Invoke(context.Background(), Request{Model: "mock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("unexpected text: %s", resp.Text)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls through the retry middleware, got %d", mock.CallCount())
	}
}

func TestRegistry_InvokeStream(t *testing.T) {
	r := NewRegistry(registryConfig(), nil)
	r.Register(FamilyMock, NewMockProvider(MockResponse{Text: "one\ntwo\nthree\n"}))

	var sb strings.Builder
	count := 0
	resp, err := r.InvokeStream(context.Background(), Request{Model: "mock"}, func(tok string) {
		sb.WriteString(tok)
		count++
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count < 2 {
		t.Errorf("expected multiple token events, got %d", count)
	}
	if sb.String() != resp.Text {
		t.Errorf("tokens %q do not reassemble response %q", sb.String(), resp.Text)
	}
}

func TestRegistry_ProviderCached(t *testing.T) {
	r := NewRegistry(registryConfig(), nil)
	mock := NewMockProvider(
		MockResponse{Text: "a"},
		MockResponse{Text: "b"},
	)
	r.Register(FamilyMock, mock)

	if _, err := r.Invoke(context.Background(), Request{Model: "mock"}); err != nil {
		t.Fatalf("first invoke: %v", err)
	}
	if _, err := r.Invoke(context.Background(), Request{Model: "mock-other"}); err != nil {
		t.Fatalf("second invoke: %v", err)
	}
	// Both model ids resolve to the mock family and hit the same instance.
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls on the cached provider, got %d", mock.CallCount())
	}
}
