package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider using the Google Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ErrMissingCredentials{Family: FamilyGemini, EnvVar: EnvGoogleKey}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ErrProviderUnavailable{Err: err}
	}

	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Family() Family { return FamilyGemini }

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	contents := genai.Text(req.Prompt)
	config := buildGeminiConfig(req)

	result, err := p.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	text := result.Text()
	if text == "" {
		return nil, &ErrEmptyResponse{Model: req.Model}
	}

	resp := &Response{
		Text:       text,
		Model:      req.Model,
		StopReason: mapGeminiStopReason(result),
	}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

// GenerateStream emits each chunk's text as it arrives.
func (p *GeminiProvider) GenerateStream(ctx context.Context, req Request, onToken func(string)) (*Response, error) {
	contents := genai.Text(req.Prompt)
	config := buildGeminiConfig(req)

	var b strings.Builder
	var last *genai.GenerateContentResponse
	for chunk, err := range p.client.Models.GenerateContentStream(ctx, req.Model, contents, config) {
		if err != nil {
			return nil, mapGeminiError(err)
		}
		if t := chunk.Text(); t != "" {
			b.WriteString(t)
			onToken(t)
		}
		last = chunk
	}

	text := b.String()
	if text == "" {
		return nil, &ErrEmptyResponse{Model: req.Model}
	}

	resp := &Response{
		Text:       text,
		Model:      req.Model,
		StopReason: "end",
	}
	if last != nil {
		resp.StopReason = mapGeminiStopReason(last)
		if last.UsageMetadata != nil {
			resp.Usage = Usage{
				InputTokens:  int(last.UsageMetadata.PromptTokenCount),
				OutputTokens: int(last.UsageMetadata.CandidatesTokenCount),
				TotalTokens:  int(last.UsageMetadata.TotalTokenCount),
			}
		}
	}
	return resp, nil
}

func buildGeminiConfig(req Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}
	if req.TopP != nil {
		topP := float32(*req.TopP)
		config.TopP = &topP
	}
	return config
}

func mapGeminiStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == "MAX_TOKENS" {
		return "max_tokens"
	}
	return "end"
}

func mapGeminiError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.Code >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}
