package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"
)

// ErrMissingAPIKey marks the fatal configuration case: without credentials
// the pipeline skips annotation for the whole run instead of failing on
// every article.
var ErrMissingAPIKey = errors.New("openai api key is not set")

// ChatCompleter is the single-shot, stateless completion call the annotator
// consumes. No streaming, no conversation context.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAICompleter implements ChatCompleter via the OpenAI chat completions
// API, throttled by a client-side rate limiter.
type OpenAICompleter struct {
	client  *openai.Client
	model   openai.ChatModel
	limiter *rate.Limiter
}

var _ ChatCompleter = (*OpenAICompleter)(nil)

// NewOpenAICompleter builds a completer from configuration. RPM governs the
// sustained request rate; burst defaults to 1.
func NewOpenAICompleter(apiKey, model string, rpm, burst int) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if rpm <= 0 {
		rpm = 60
	}
	if burst <= 0 {
		burst = 1
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAICompleter{
		client:  &client,
		model:   openai.ChatModel(model),
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}, nil
}

// Complete performs one chat completion and returns the raw message content.
func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}

// cleanJSONResponse strips markdown code fences models wrap around JSON.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
