package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

func validExperiment() model.Experiment {
	return model.Experiment{
		Name:     "comparison",
		Provider: model.ProviderOpenAI,
		Prompts: []model.Prompt{
			{Name: "simple", Content: "Answer the question:"},
		},
		TestCases: []model.TestCase{
			{InputText: "What is the capital of France?", ExpectedOutput: "Paris"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validExperiment().Validate())
}

func TestValidate_EmptyListsAllowed(t *testing.T) {
	exp := validExperiment()
	exp.Prompts = nil
	exp.TestCases = nil
	assert.NoError(t, exp.Validate())
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	exp := model.Experiment{
		Provider:  "cohere",
		Prompts:   []model.Prompt{{Name: "", Content: ""}},
		TestCases: []model.TestCase{{InputText: ""}},
	}

	err := exp.Validate()
	require.Error(t, err)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Problems, 5)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), `unknown provider type "cohere"`)
	assert.Contains(t, err.Error(), "test_cases[0]: input_text is required")
}

func TestValidate_MissingProvider(t *testing.T) {
	exp := validExperiment()
	exp.Provider = ""
	err := exp.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider is required")
}

func TestParseProviderType(t *testing.T) {
	p, err := model.ParseProviderType(" OpenAI ")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderOpenAI, p)

	p, err = model.ParseProviderType("anthropic")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderAnthropic, p)

	_, err = model.ParseProviderType("gemini")
	assert.Error(t, err)
}

func TestResultMetadataAccessors(t *testing.T) {
	r := model.Result{Metadata: map[string]any{
		model.MetaInputTokens:  12,
		model.MetaOutputTokens: float64(7),
		model.MetaModel:        "gpt-4o",
	}}
	assert.Equal(t, 12, r.InputTokens())
	assert.Equal(t, 7, r.OutputTokens())
	assert.Equal(t, "gpt-4o", r.Model())

	var empty model.Result
	assert.Zero(t, empty.InputTokens())
	assert.Empty(t, empty.Model())
}
