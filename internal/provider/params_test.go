package provider_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daryltucker/prompt-tuner/internal/model"
	"github.com/daryltucker/prompt-tuner/internal/provider"
)

func TestParams_Defaults(t *testing.T) {
	var p provider.Params
	assert.Equal(t, "gpt-4o", p.Model("gpt-4o"))
	assert.Equal(t, provider.DefaultTemperature, p.Temperature())
	assert.Equal(t, provider.DefaultMaxTokens, p.MaxTokens())
}

func TestParams_NumericShapes(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want int
	}{
		{"int", 256, 256},
		{"int64", int64(300), 300},
		{"float64", float64(512), 512},
		{"json.Number", json.Number("128"), 128},
		{"string", "64", 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := provider.Params{provider.ParamMaxTokens: tt.v}
			assert.Equal(t, tt.want, p.MaxTokens())
		})
	}
}

func TestParams_InvalidValuesUseDefaults(t *testing.T) {
	p := provider.Params{
		provider.ParamModel:       42,
		provider.ParamTemperature: "warm",
		provider.ParamMaxTokens:   0,
	}
	assert.Equal(t, "fallback", p.Model("fallback"))
	assert.Equal(t, provider.DefaultTemperature, p.Temperature())
	assert.Equal(t, provider.DefaultMaxTokens, p.MaxTokens())
}

func TestParams_ZeroTemperatureKept(t *testing.T) {
	p := provider.Params{provider.ParamTemperature: 0.0}
	assert.Equal(t, 0.0, p.Temperature())
}

func TestMerge_LaterLayersWin(t *testing.T) {
	base := map[string]any{"model": "gpt-4", "temperature": 0.2}
	override := map[string]any{"temperature": 0.9, "max_tokens": 50}

	got := provider.Merge(base, nil, override)

	assert.Equal(t, provider.Params{"model": "gpt-4", "temperature": 0.9, "max_tokens": 50}, got)
	assert.Equal(t, 0.2, base["temperature"], "inputs must not be mutated")
}

func TestBuildPrompt(t *testing.T) {
	got := provider.BuildPrompt(
		model.Prompt{Content: "Answer briefly:"},
		model.TestCase{InputText: "What is 2+2?"},
	)
	assert.Equal(t, "Answer briefly:\n\nInput: What is 2+2?", got)
}
