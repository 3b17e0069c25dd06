package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// DefaultOpenAIModel is used when neither the experiment nor the prompt names a model.
const DefaultOpenAIModel = "gpt-4o"

// OpenAIProvider implements Provider on the OpenAI chat completions API.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
	pricing      PriceTable
}

// Compile-time check that OpenAIProvider satisfies the Provider interface.
var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates an OpenAI provider. An empty API key is an error.
func NewOpenAIProvider(apiKey string, opts ...Option) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: API key not set (OPENAI_API_KEY)")
	}
	cfg := newOptions(DefaultOpenAIModel, opts)

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientConfig.BaseURL = cfg.baseURL
	}

	return &OpenAIProvider{
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: cfg.defaultModel,
		pricing:      OpenAIPricing,
	}, nil
}

// Type returns model.ProviderOpenAI.
func (p *OpenAIProvider) Type() model.ProviderType {
	return model.ProviderOpenAI
}

// DefaultModel returns the model used when params carry none.
func (p *OpenAIProvider) DefaultModel() string {
	return p.defaultModel
}

// Pricing returns the price table used for cost calculation.
func (p *OpenAIProvider) Pricing() PriceTable {
	return p.pricing
}

// Generate sends one chat completion request.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt model.Prompt, testCase model.TestCase, params Params) (*Generation, error) {
	modelName := params.Model(p.defaultModel)

	req := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(prompt, testCase)},
		},
		Temperature: openAITemperature(params.Temperature()),
		MaxTokens:   params.MaxTokens(),
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("openai: generate failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: response contained no choices")
	}

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}

	return &Generation{
		Output:  resp.Choices[0].Message.Content,
		Cost:    p.pricing.Cost(usage.InputTokens, usage.OutputTokens, modelName),
		Latency: latency,
		Usage:   usage,
		Model:   modelName,
	}, nil
}

// openAITemperature converts t for go-openai, whose Temperature field is
// omitempty: a literal 0 would be dropped and the API would apply its own
// default of 1.0.
func openAITemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
