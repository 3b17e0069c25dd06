// Package provider adapts vendor LLM APIs to a single Generate call that
// reports output, cost, latency and token usage.
package provider

import (
	"context"
	"time"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// Provider is a vendor-specific adapter translating prompt + test case into
// one model call.
type Provider interface {
	// Type returns the selector this provider is registered under.
	Type() model.ProviderType

	// Generate sends one request built from prompt and testCase. Errors from
	// the vendor are returned wrapped but otherwise untouched.
	Generate(ctx context.Context, prompt model.Prompt, testCase model.TestCase, params Params) (*Generation, error)
}

// Generation holds the outcome of a single provider call.
type Generation struct {
	Output  string
	Cost    float64 // USD
	Latency time.Duration
	Usage   Usage
	// Model is the resolved model name the request was sent with.
	Model string
}

// Usage tracks input and output token counts for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Metadata returns the free-form metadata recorded on a Result.
func (g *Generation) Metadata() map[string]any {
	return map[string]any{
		model.MetaInputTokens:  g.Usage.InputTokens,
		model.MetaOutputTokens: g.Usage.OutputTokens,
		model.MetaModel:        g.Model,
	}
}

// BuildPrompt concatenates prompt content and test-case input into the single
// user message sent to every vendor. No templating is applied.
func BuildPrompt(prompt model.Prompt, testCase model.TestCase) string {
	return prompt.Content + "\n\nInput: " + testCase.InputText
}

// Priced is implemented by providers that expose their default model and
// price table.
type Priced interface {
	DefaultModel() string
	Pricing() PriceTable
}
