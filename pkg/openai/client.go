// Package openai wraps the OpenAI chat completions API.
package openai

import (
	"context"

	"github.com/rotisserie/eris"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client defines the OpenAI operations used by enrichment.
type Client interface {
	CreateJSONCompletion(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is a chat completion constrained to a JSON object reply.
type CompletionRequest struct {
	Model       string
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// CompletionResponse carries the first choice and token usage.
type CompletionResponse struct {
	Content      string
	FinishReason string
	Usage        TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
}

// Log writes usage with structured zap fields.
func (u TokenUsage) Log(model, phase string) {
	zap.L().Info("token usage",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int("prompt_tokens", u.PromptTokens),
		zap.Int("completion_tokens", u.CompletionTokens),
	)
}

// Option configures the client.
type Option func(*goopenai.ClientConfig)

// WithBaseURL overrides the API base URL (including the /v1 suffix).
func WithBaseURL(url string) Option {
	return func(c *goopenai.ClientConfig) {
		c.BaseURL = url
	}
}

type sdkClient struct {
	client *goopenai.Client
}

// NewClient creates an OpenAI client.
func NewClient(apiKey string, opts ...Option) Client {
	cfg := goopenai.DefaultConfig(apiKey)
	for _, o := range opts {
		o(&cfg)
	}
	return &sdkClient{client: goopenai.NewClientWithConfig(cfg)}
}

func (c *sdkClient) CreateJSONCompletion(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var msgs []goopenai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.User})

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "openai: create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("openai: no choices in response")
	}

	return &CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
