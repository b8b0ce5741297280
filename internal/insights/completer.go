package insights

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/wonny/ainavigator/backend/pkg/config"
)

// Completer turns a system and user prompt into a model answer
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}

// Errors surfaced by completers
var (
	ErrDisabled      = errors.New("llm insights are not configured")
	ErrRateLimited   = errors.New("llm provider rate limit exceeded")
	ErrEmptyResponse = errors.New("llm returned no choices")
)

// OpenAICompleter calls the chat completions API.
// Requests are throttled process-wide; the SDK retries transient failures.
type OpenAICompleter struct {
	client      openai.Client
	limiter     *rate.Limiter
	model       string
	maxTokens   int64
	temperature float64
}

// NewOpenAICompleter creates a completer from configuration. httpClient may
// be nil. Returns ErrDisabled when no API key is set.
func NewOpenAICompleter(cfg config.OpenAIConfig, httpClient *http.Client) (*OpenAICompleter, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(2),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &OpenAICompleter{
		client:      openai.NewClient(opts...),
		limiter:     rate.NewLimiter(limit, 1),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}, nil
}

// Model returns the configured model name
func (c *OpenAICompleter) Model() string {
	return c.model
}

// Complete sends one chat completion request
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
