/*
PURPOSE:
  Defines the core data structures used throughout Prompt Tuner.
  These models describe experiments (prompts × test cases) and their results.

REQUIREMENTS:
  User-specified:
  - Prompt, TestCase, Experiment and Result records.
  - Record output, cost (USD), latency (seconds), token counts and model name.

  Implementation-discovered:
  - Need JSON tags for the REST surface and YAML tags for experiment files.
  - test_case_id is a truncated input tag and is NOT unique. test_case_index is.

ARCHITECTURE INTEGRATION:
  - Used by: internal/provider, internal/engine, internal/api, internal/output, internal/config
  - Shared across boundaries.

ERROR HANDLING:
  - Validate() returns a *ValidationError listing every problem found.

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Entities are passed by value; nothing mutates them after construction.

USAGE:
  exp := model.Experiment{Name: "greeting", Provider: model.ProviderOpenAI, ...}
  if err := exp.Validate(); err != nil { ... }

RELATED FILES:
  - internal/model/validate.go
  - internal/output/csv.go

MAINTENANCE:
  - When adding Result fields, update the CSV writer header and record mapping.
*/

package model

import (
	"time"
)

// ProviderType selects which vendor adapter serves an experiment.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
)

// ProviderTypes lists every known provider selector.
func ProviderTypes() []ProviderType {
	return []ProviderType{ProviderAnthropic, ProviderOpenAI}
}

// Valid reports whether p is one of the known selectors.
func (p ProviderType) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic:
		return true
	}
	return false
}

// Prompt is a reusable instruction template compared across an experiment.
type Prompt struct {
	Name        string         `json:"name" yaml:"name"`
	Content     string         `json:"content" yaml:"content"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// TestCase is one input exercised against every prompt.
// ExpectedOutput is informational and never compared.
type TestCase struct {
	InputText      string         `json:"input_text" yaml:"input_text"`
	ExpectedOutput string         `json:"expected_output,omitempty" yaml:"expected_output,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Experiment is the cross-product job of prompts × test cases against one provider.
type Experiment struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Prompts     []Prompt     `json:"prompts" yaml:"prompts"`
	TestCases   []TestCase   `json:"test_cases" yaml:"test_cases"`
	Provider    ProviderType `json:"provider" yaml:"provider"`
	// Model is the default model for every call. Empty means the provider default.
	Model      string         `json:"model,omitempty" yaml:"model,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Result is the outcome of running one prompt against one test case.
type Result struct {
	ID            string       `json:"id"`
	RunID         string       `json:"run_id"`
	ExperimentID  string       `json:"experiment_id"`
	PromptName    string       `json:"prompt_name"`
	TestCaseID    string       `json:"test_case_id"`
	TestCaseIndex int          `json:"test_case_index"`
	Provider      ProviderType `json:"provider"`
	InputText     string       `json:"input_text"`
	Output        string       `json:"output"`
	Cost          float64      `json:"cost"`    // USD
	Latency       float64      `json:"latency"` // seconds
	AccuracyScore *float64     `json:"accuracy_score"`
	Timestamp     time.Time    `json:"timestamp"`

	// Metadata holds input_tokens, output_tokens and model.
	Metadata map[string]any `json:"metadata"`
}

// Metadata keys set on every Result.
const (
	MetaInputTokens  = "input_tokens"
	MetaOutputTokens = "output_tokens"
	MetaModel        = "model"
)

// InputTokens returns the input token count recorded in the metadata.
func (r Result) InputTokens() int {
	return metaInt(r.Metadata, MetaInputTokens)
}

// OutputTokens returns the output token count recorded in the metadata.
func (r Result) OutputTokens() int {
	return metaInt(r.Metadata, MetaOutputTokens)
}

// Model returns the model that served the result, if recorded.
func (r Result) Model() string {
	s, _ := r.Metadata[MetaModel].(string)
	return s
}

func metaInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
