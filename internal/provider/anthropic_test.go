package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/prompt-tuner/internal/model"
	"github.com/daryltucker/prompt-tuner/internal/provider"
)

// anthropicResponse is the JSON shape returned by the Messages API.
type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// newAnthropicServer returns an httptest server that responds with the given
// anthropicResponse, and captures the request body for assertions.
func newAnthropicServer(t *testing.T, resp anthropicResponse, statusCode int, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				*captured = body
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func textResponse(model string, in, out int, texts ...string) anthropicResponse {
	content := make([]anthropicContent, 0, len(texts))
	for _, s := range texts {
		content = append(content, anthropicContent{Type: "text", Text: s})
	}
	return anthropicResponse{
		ID:         "msg_test",
		Type:       "message",
		Role:       "assistant",
		Content:    content,
		Model:      model,
		StopReason: "end_turn",
		Usage:      anthropicUsage{InputTokens: in, OutputTokens: out},
	}
}

func TestNewAnthropicProvider_NoKeyError(t *testing.T) {
	p, err := provider.NewAnthropicProvider("")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}

func TestAnthropicProvider_Defaults(t *testing.T) {
	p, err := provider.NewAnthropicProvider("test-key")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderAnthropic, p.Type())
	assert.Equal(t, "claude-3-opus-20240229", p.DefaultModel())
}

func TestAnthropicGenerate_DefaultRequest(t *testing.T) {
	var captured map[string]any
	srv := newAnthropicServer(t, textResponse("claude-3-opus-20240229", 1000, 1000, "Paris"), http.StatusOK, &captured)
	defer srv.Close()

	p, err := provider.NewAnthropicProvider("test-key", provider.WithBaseURL(srv.URL))
	require.NoError(t, err)

	gen, err := p.Generate(context.Background(),
		model.Prompt{Content: "Answer the question:"},
		model.TestCase{InputText: "What is the capital of France?"},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, "Paris", gen.Output)
	assert.Equal(t, "claude-3-opus-20240229", gen.Model)
	assert.InDelta(t, 0.09, gen.Cost, 1e-12)

	assert.Equal(t, "claude-3-opus-20240229", captured["model"])
	assert.Equal(t, float64(1000), captured["max_tokens"])
	assert.Equal(t, 0.7, captured["temperature"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	msg := messages[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	blocks := msg["content"].([]any)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Answer the question:\n\nInput: What is the capital of France?", blocks[0].(map[string]any)["text"])
}

func TestAnthropicGenerate_ModelOverrideAndPricing(t *testing.T) {
	var captured map[string]any
	srv := newAnthropicServer(t, textResponse("claude-3-haiku-20240307", 1000, 1000, "ok"), http.StatusOK, &captured)
	defer srv.Close()

	p, err := provider.NewAnthropicProvider("test-key", provider.WithBaseURL(srv.URL))
	require.NoError(t, err)

	gen, err := p.Generate(context.Background(), model.Prompt{Content: "p"}, model.TestCase{InputText: "i"},
		provider.Params{"model": "claude-3-haiku-20240307", "max_tokens": 64, "temperature": 0.0})
	require.NoError(t, err)

	assert.Equal(t, "claude-3-haiku-20240307", captured["model"])
	assert.Equal(t, float64(64), captured["max_tokens"])
	assert.Equal(t, 0.0, captured["temperature"])
	assert.InDelta(t, 0.0015, gen.Cost, 1e-12)
}

func TestAnthropicGenerate_MultipleTextBlocks(t *testing.T) {
	srv := newAnthropicServer(t, textResponse("claude-3-opus-20240229", 5, 4, "hello ", "world"), http.StatusOK, nil)
	defer srv.Close()

	p, err := provider.NewAnthropicProvider("test-key", provider.WithBaseURL(srv.URL))
	require.NoError(t, err)

	gen, err := p.Generate(context.Background(), model.Prompt{Content: "p"}, model.TestCase{InputText: "i"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello world", gen.Output)
	assert.Equal(t, provider.Usage{InputTokens: 5, OutputTokens: 4}, gen.Usage)
}

func TestAnthropicGenerate_APIErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer srv.Close()

	p, err := provider.NewAnthropicProvider("test-key", provider.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), model.Prompt{Content: "p"}, model.TestCase{InputText: "i"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: generate failed")
	assert.Equal(t, 1, calls)
}
