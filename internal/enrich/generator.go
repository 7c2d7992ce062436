package enrich

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/vilniuscoffee/coffee-finder/internal/config"
	"github.com/vilniuscoffee/coffee-finder/pkg/anthropic"
	"github.com/vilniuscoffee/coffee-finder/pkg/openai"
)

// Generator turns a prompt into raw model output.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// OpenAIGenerator asks an OpenAI chat model for a JSON object reply.
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIGenerator creates an OpenAIGenerator.
func NewOpenAIGenerator(client openai.Client, cfg *config.AIConfig) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	resp, err := g.client.CreateJSONCompletion(ctx, openai.CompletionRequest{
		Model:       g.model,
		System:      p.System,
		User:        p.User,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: openai completion")
	}
	resp.Usage.Log(g.model, "enrich")
	if strings.TrimSpace(resp.Content) == "" {
		return "", eris.Errorf("enrich: openai returned empty content (finish reason %q)", resp.FinishReason)
	}
	return resp.Content, nil
}

// AnthropicGenerator asks a Claude model for the JSON object.
type AnthropicGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicGenerator creates an AnthropicGenerator.
func NewAnthropicGenerator(client anthropic.Client, cfg *config.AIConfig) *AnthropicGenerator {
	return &AnthropicGenerator{
		client:      client,
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

// Generate implements Generator.
func (g *AnthropicGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	resp, err := g.client.Complete(ctx, anthropic.CompletionRequest{
		Model:       g.model,
		System:      p.System,
		User:        p.User,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: anthropic message")
	}
	resp.Usage.Log(g.model, "enrich")
	if strings.TrimSpace(resp.Text) == "" {
		return "", eris.Errorf("enrich: anthropic returned empty content (stop reason %q)", resp.StopReason)
	}
	return resp.Text, nil
}

// NewGenerator builds the Generator for the configured provider.
func NewGenerator(cfg *config.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(openai.NewClient(cfg.OpenAIKey), cfg), nil
	case config.ProviderAnthropic:
		return NewAnthropicGenerator(anthropic.NewClient(cfg.AnthropicKey), cfg), nil
	default:
		return nil, eris.Errorf("enrich: unsupported ai provider %q", cfg.Provider)
	}
}
