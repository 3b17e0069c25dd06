package provider

import (
	"context"
	"sync"
	"time"

	"github.com/daryltucker/prompt-tuner/internal/model"
)

// MockResponse defines a canned response for the mock provider.
type MockResponse struct {
	Output string
	Usage  Usage
	Err    error
}

// MockCall records one Generate invocation.
type MockCall struct {
	Prompt   model.Prompt
	TestCase model.TestCase
	Params   Params
}

// MockProvider is a test double that returns pre-configured responses in
// sequence. After all responses are exhausted, it keeps returning the last one.
// It records every call for later assertion.
type MockProvider struct {
	mu        sync.Mutex
	typ       model.ProviderType
	responses []MockResponse
	calls     []MockCall
	idx       int
	pricing   PriceTable
}

// Compile-time check that MockProvider satisfies the Provider interface.
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock registered under typ that returns the given
// responses in order. With no responses it echoes the built prompt.
func NewMockProvider(typ model.ProviderType, responses ...MockResponse) *MockProvider {
	pricing := OpenAIPricing
	if typ == model.ProviderAnthropic {
		pricing = AnthropicPricing
	}
	return &MockProvider{
		typ:       typ,
		responses: responses,
		pricing:   pricing,
	}
}

// Type returns the selector the mock was created with.
func (m *MockProvider) Type() model.ProviderType {
	return m.typ
}

// Generate returns the next canned response and records the call.
// It respects context cancellation.
func (m *MockProvider) Generate(ctx context.Context, prompt model.Prompt, testCase model.TestCase, params Params) (*Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Prompt: prompt, TestCase: testCase, Params: params})

	r := MockResponse{
		Output: BuildPrompt(prompt, testCase),
		Usage:  Usage{InputTokens: 10, OutputTokens: 5},
	}
	if len(m.responses) > 0 {
		r = m.responses[m.idx]
		if m.idx < len(m.responses)-1 {
			m.idx++
		}
	}
	if r.Err != nil {
		return nil, r.Err
	}

	modelName := params.Model("mock")
	return &Generation{
		Output:  r.Output,
		Cost:    m.pricing.Cost(r.Usage.InputTokens, r.Usage.OutputTokens, modelName),
		Latency: time.Millisecond,
		Usage:   r.Usage,
		Model:   modelName,
	}, nil
}

// Calls returns a copy of all calls received by this mock.
func (m *MockProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears call history and resets the response index to zero.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
	m.idx = 0
}
