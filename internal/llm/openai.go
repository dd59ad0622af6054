package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenAIProvider implements Provider using the OpenAI SDK. OpenRouter and
// other OpenAI-compatible backends reuse it via BaseURL; the family tag
// distinguishes them for dispatch and event logging.
type OpenAIProvider struct {
	client *openai.Client
	family Family
}

// NewOpenAIProvider creates a provider for the OpenAI API.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ErrMissingCredentials{Family: FamilyOpenAI, EnvVar: EnvOpenAIKey}
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{client: openai.NewClientWithConfig(config), family: FamilyOpenAI}, nil
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API,
// which is OpenAI-compatible on the wire.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ErrMissingCredentials{Family: FamilyOpenRouter, EnvVar: EnvOpenRouterKey}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = baseURL

	return &OpenAIProvider{client: openai.NewClientWithConfig(config), family: FamilyOpenRouter}, nil
}

func (p *OpenAIProvider) Family() Family { return p.family }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.client.CreateChatCompletion(ctx, buildOpenAIRequest(req))
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &ErrEmptyResponse{Model: req.Model}
	}

	return &Response{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		StopReason: mapOpenAIStopReason(resp.Choices[0].FinishReason),
	}, nil
}

// GenerateStream emits each delta's content as it arrives. The streaming
// API does not report token usage, so Usage stays zero here.
func (p *OpenAIProvider) GenerateStream(ctx context.Context, req Request, onToken func(string)) (*Response, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, buildOpenAIRequest(req))
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	defer stream.Close()

	var b strings.Builder
	model := req.Model
	stopReason := "end"
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, mapOpenAIError(err)
		}
		if chunk.Model != "" {
			model = chunk.Model
		}
		if len(chunk.Choices) > 0 {
			if t := chunk.Choices[0].Delta.Content; t != "" {
				b.WriteString(t)
				onToken(t)
			}
			if chunk.Choices[0].FinishReason != "" {
				stopReason = mapOpenAIStopReason(chunk.Choices[0].FinishReason)
			}
		}
	}

	text := b.String()
	if text == "" {
		return nil, &ErrEmptyResponse{Model: req.Model}
	}

	return &Response{Text: text, Model: model, StopReason: stopReason}, nil
}

func buildOpenAIRequest(req Request) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxCompletionTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	if req.TopP != nil {
		out.TopP = float32(*req.TopP)
	}
	return out
}

func mapOpenAIStopReason(reason openai.FinishReason) string {
	if reason == openai.FinishReasonLength {
		return "max_tokens"
	}
	return "end"
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}
