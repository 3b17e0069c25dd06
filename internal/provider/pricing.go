package provider

import (
	"sort"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// Price is the cost in USD per 1000 tokens.
type Price struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
}

// PriceTable maps model names to prices and names the tier used for
// unrecognized models.
type PriceTable struct {
	Prices   map[string]Price
	Fallback string
}

// Lookup returns the price for model, or the fallback tier when the model is
// unknown. The second return value reports whether the model was recognized.
func (t PriceTable) Lookup(model string) (Price, bool) {
	if p, ok := t.Prices[model]; ok {
		return p, true
	}
	return t.Prices[t.Fallback], false
}

// Cost computes the USD cost of a call. Negative token counts count as zero.
func (t PriceTable) Cost(inputTokens, outputTokens int, model string) float64 {
	p, _ := t.Lookup(model)
	in := float64(max(inputTokens, 0))
	out := float64(max(outputTokens, 0))
	return in/1000*p.Input + out/1000*p.Output
}

// Models returns the priced model names in sorted order.
func (t PriceTable) Models() []string {
	names := make([]string, 0, len(t.Prices))
	for name := range t.Prices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpenAIPricing is the static OpenAI price table.
var OpenAIPricing = PriceTable{
	Prices: map[string]Price{
		"gpt-4":               {Input: 0.03, Output: 0.06},
		"gpt-4-turbo-preview": {Input: 0.01, Output: 0.03},
		"gpt-4o":              {Input: 0.005, Output: 0.015},
		"gpt-3.5-turbo":       {Input: 0.0015, Output: 0.002},
		"gpt-3.5-turbo-16k":   {Input: 0.003, Output: 0.004},
	},
	Fallback: "gpt-3.5-turbo",
}

// AnthropicPricing is the static Anthropic price table.
var AnthropicPricing = PriceTable{
	Prices: map[string]Price{
		"claude-3-opus-20240229":     {Input: 0.015, Output: 0.075},
		"claude-3-sonnet-20240229":   {Input: 0.003, Output: 0.015},
		"claude-3-5-sonnet-20241022": {Input: 0.003, Output: 0.015},
		"claude-3-haiku-20240307":    {Input: 0.00025, Output: 0.00125},
	},
	Fallback: "claude-3-haiku-20240307",
}

// DefaultsFor returns the built-in default model and price table for t,
// whether or not a provider of that type is registered.
func DefaultsFor(t model.ProviderType) (string, PriceTable, bool) {
	switch t {
	case model.ProviderOpenAI:
		return DefaultOpenAIModel, OpenAIPricing, true
	case model.ProviderAnthropic:
		return DefaultAnthropicModel, AnthropicPricing, true
	}
	return "", PriceTable{}, false
}
