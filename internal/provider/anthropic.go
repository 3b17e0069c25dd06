package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// DefaultAnthropicModel is used when neither the experiment nor the prompt names a model.
const DefaultAnthropicModel = "claude-3-opus-20240229"

// AnthropicProvider implements Provider using the official Anthropic SDK.
type AnthropicProvider struct {
	client       anthropic.Client
	defaultModel string
	pricing      PriceTable
}

// Compile-time check that AnthropicProvider satisfies the Provider interface.
var _ Provider = (*AnthropicProvider)(nil)

// NewAnthropicProvider creates an Anthropic provider. An empty API key is an error.
// The SDK's automatic retries are disabled; failures reach the caller on the first attempt.
func NewAnthropicProvider(apiKey string, opts ...Option) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key not set (ANTHROPIC_API_KEY)")
	}
	cfg := newOptions(DefaultAnthropicModel, opts)

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &AnthropicProvider{
		client:       anthropic.NewClient(clientOpts...),
		defaultModel: cfg.defaultModel,
		pricing:      AnthropicPricing,
	}, nil
}

// Type returns model.ProviderAnthropic.
func (p *AnthropicProvider) Type() model.ProviderType {
	return model.ProviderAnthropic
}

// DefaultModel returns the model used when params carry none.
func (p *AnthropicProvider) DefaultModel() string {
	return p.defaultModel
}

// Pricing returns the price table used for cost calculation.
func (p *AnthropicProvider) Pricing() PriceTable {
	return p.pricing
}

// Generate sends one request to the Messages API.
func (p *AnthropicProvider) Generate(ctx context.Context, prompt model.Prompt, testCase model.TestCase, params Params) (*Generation, error) {
	modelName := params.Model(p.defaultModel)

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelName),
		MaxTokens: int64(params.MaxTokens()),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(prompt, testCase))),
		},
		Temperature: anthropic.Float(params.Temperature()),
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("anthropic: generate failed: %w", err)
	}

	// Extract text from content blocks.
	var content string
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += variant.Text
		}
	}

	usage := Usage{
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}

	return &Generation{
		Output:  content,
		Cost:    p.pricing.Cost(usage.InputTokens, usage.OutputTokens, modelName),
		Latency: latency,
		Usage:   usage,
		Model:   modelName,
	}, nil
}
