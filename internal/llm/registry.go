package llm

import (
	"context"
	"sync"
	"time"

	"github.com/medbyte/medbyte/internal/store"
)

// Invoker is the narrow contract the pipeline consumes: one uniform call
// shape over every backend, dispatched by model id.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
	InvokeStream(ctx context.Context, req Request, onToken func(string)) (*Response, error)
}

// Registry constructs one provider per family on demand, wraps it with the
// logging and retry middleware, and dispatches requests by the family
// resolved from the model id. Providers are cached; a family whose
// credentials are absent fails fast on every request.
type Registry struct {
	cfg  Config
	repo store.EventRepo

	mu        sync.Mutex
	providers map[Family]Provider
}

// NewRegistry creates a Registry. repo may be nil to disable event logging.
func NewRegistry(cfg Config, repo store.EventRepo) *Registry {
	return &Registry{
		cfg:       cfg,
		repo:      repo,
		providers: make(map[Family]Provider),
	}
}

// Register installs a pre-built provider for a family, replacing lazy
// construction. Used for the mock family and by tests.
func (r *Registry) Register(f Family, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[f] = WithRetry(WithLogging(p, r.repo), r.cfg.Retry)
}

// Invoke resolves the model's family, obtains its provider, and measures
// wall-clock latency around the full (retried) call.
func (r *Registry) Invoke(ctx context.Context, req Request) (*Response, error) {
	p, err := r.providerFor(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Latency = time.Since(start)
	return resp, nil
}

// InvokeStream is Invoke's streaming sibling. Providers that cannot stream
// degrade to a buffered call whose text arrives as a single token.
func (r *Registry) InvokeStream(ctx context.Context, req Request, onToken func(string)) (*Response, error) {
	p, err := r.providerFor(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var resp *Response
	if sp, ok := p.(StreamProvider); ok {
		resp, err = sp.GenerateStream(ctx, req, onToken)
	} else {
		resp, err = p.Generate(ctx, req)
		if err == nil {
			onToken(resp.Text)
		}
	}
	if err != nil {
		return nil, err
	}
	resp.Latency = time.Since(start)
	return resp, nil
}

func (r *Registry) providerFor(ctx context.Context, modelID string) (Provider, error) {
	family := ResolveFamily(modelID)
	if family == FamilyUnknown {
		return nil, &ErrUnknownModel{Model: modelID}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[family]; ok {
		return p, nil
	}

	base, err := r.build(ctx, family)
	if err != nil {
		return nil, err
	}

	// Middleware order follows the call path: caller → retry → logging → base.
	p := WithRetry(WithLogging(base, r.repo), r.cfg.Retry)
	r.providers[family] = p
	return p, nil
}

func (r *Registry) build(ctx context.Context, family Family) (Provider, error) {
	switch family {
	case FamilyAnthropic:
		return NewAnthropicProvider(r.cfg.Anthropic)
	case FamilyGemini:
		return NewGeminiProvider(ctx, r.cfg.Gemini)
	case FamilyOpenAI:
		return NewOpenAIProvider(r.cfg.OpenAI)
	case FamilyOpenRouter:
		return NewOpenRouterProvider(r.cfg.OpenRouter)
	case FamilyMock:
		return NewMockProvider(), nil
	}
	return nil, &ErrUnknownModel{Model: family.String()}
}
