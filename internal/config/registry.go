package config

import (
	"github.com/daryltucker/prompt-tuner/internal/output"
	"github.com/daryltucker/prompt-tuner/internal/provider"
)

// BuildRegistry constructs a provider for every vendor with an API key and
// registers it. Vendors without a key are skipped with a warning, so
// experiments selecting them fail lookup instead of reaching the network.
func (c *Config) BuildRegistry() (*provider.Registry, error) {
	var providers []provider.Provider

	if c.OpenAI.APIKey != "" {
		p, err := provider.NewOpenAIProvider(c.OpenAI.APIKey,
			provider.WithBaseURL(c.OpenAI.BaseURL),
			provider.WithDefaultModel(c.OpenAI.DefaultModel),
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	} else {
		output.Logger.Warn("OpenAI provider disabled", "reason", EnvOpenAIKey+" not set")
	}

	if c.Anthropic.APIKey != "" {
		p, err := provider.NewAnthropicProvider(c.Anthropic.APIKey,
			provider.WithBaseURL(c.Anthropic.BaseURL),
			provider.WithDefaultModel(c.Anthropic.DefaultModel),
		)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	} else {
		output.Logger.Warn("Anthropic provider disabled", "reason", EnvAnthropicKey+" not set")
	}

	return provider.NewRegistry(providers...), nil
}
