/*
PURPOSE:
  Experiment runner. Iterates Prompts -> TestCases for each experiment and
  dispatches every pair to the provider selected by the experiment.

REQUIREMENTS:
  User-specified:
  - Exactly P×T results per experiment, prompt-major, test-case-minor.
  - Run independent experiments concurrently and join results by name.

  Implementation-discovered:
  - Provider lookup happens before the first call so an unregistered
    selector never reaches the network.
  - test_case_id is a human-readable tag (first 50 characters of the input).
    It is not unique; test_case_index and the result ID are.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/api
  - Uses: internal/provider, internal/metrics, internal/output

ERROR HANDLING:
  - The first provider error aborts the experiment. No partial results, no retries.
  - In a batch, any experiment error fails the whole batch.

IMPLEMENTATION RULES:
  - A single experiment runs sequentially.
  - One goroutine per experiment in a batch, joined with errgroup.
  - No shared mutable state between experiments.

USAGE:
  r := engine.New(registry, engine.WithMetrics(m))
  results, err := r.RunExperiment(ctx, exp)
  byName, err := r.RunExperiments(ctx, exps)

RELATED FILES:
  - internal/provider/registry.go
  - internal/model/types.go

MAINTENANCE:
  - Update parameter merge order here if new parameter layers are introduced.
*/

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/prompt-tuner/internal/metrics"
	"github.com/daryltucker/prompt-tuner/internal/model"
	"github.com/daryltucker/prompt-tuner/internal/output"
	"github.com/daryltucker/prompt-tuner/internal/provider"
)

// TestCaseIDLength is the number of characters of input text kept in a Result's TestCaseID.
const TestCaseIDLength = 50

// Runner executes experiments against a provider registry.
type Runner struct {
	registry *provider.Registry
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
	// forced is merged last, above prompt parameters.
	forced map[string]any
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics records every provider call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLogger overrides output.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithModelOverride sends every call to name, regardless of the model named by
// experiments or prompts. An empty name is ignored.
func WithModelOverride(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.forced = map[string]any{provider.ParamModel: name}
		}
	}
}

// New creates a Runner.
func New(registry *provider.Registry, opts ...Option) *Runner {
	r := &Runner{
		registry: registry,
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Runner) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return output.Logger
}

// RunExperiment runs every prompt against every test case of exp and returns
// the results in prompt-major order.
func (r *Runner) RunExperiment(ctx context.Context, exp model.Experiment) ([]model.Result, error) {
	p, err := r.registry.Lookup(exp.Provider)
	if err != nil {
		return nil, fmt.Errorf("experiment %q: %w", exp.Name, err)
	}

	runID := uuid.NewString()
	logger := r.log().With("experiment", exp.Name, "provider", exp.Provider, "run_id", runID)
	logger.Info("Running experiment", "prompts", len(exp.Prompts), "test_cases", len(exp.TestCases))

	var base map[string]any
	if exp.Model != "" {
		base = map[string]any{provider.ParamModel: exp.Model}
	}

	start := r.now()
	results := make([]model.Result, 0, len(exp.Prompts)*len(exp.TestCases))
	for _, prompt := range exp.Prompts {
		for i, tc := range exp.TestCases {
			params := provider.Merge(base, exp.Parameters, prompt.Parameters, r.forced)

			gen, err := p.Generate(ctx, prompt, tc, params)
			if err != nil {
				r.metrics.ObserveGeneration(string(exp.Provider), requestedModel(p, params), 0, 0, 0, 0, err)
				logger.Error("Generation failed", "prompt", prompt.Name, "test_case_index", i, "error", err)
				return nil, fmt.Errorf("experiment %q: prompt %q: %w", exp.Name, prompt.Name, err)
			}
			r.metrics.ObserveGeneration(string(exp.Provider), gen.Model, gen.Latency, gen.Usage.InputTokens, gen.Usage.OutputTokens, gen.Cost, nil)

			logger.Debug("Generation complete",
				"prompt", prompt.Name,
				"test_case_index", i,
				"model", gen.Model,
				"input_tokens", gen.Usage.InputTokens,
				"output_tokens", gen.Usage.OutputTokens,
				"cost", gen.Cost,
				"latency", gen.Latency,
			)

			results = append(results, model.Result{
				ID:            uuid.NewString(),
				RunID:         runID,
				ExperimentID:  exp.Name,
				PromptName:    prompt.Name,
				TestCaseID:    TestCaseID(tc.InputText),
				TestCaseIndex: i,
				Provider:      exp.Provider,
				InputText:     tc.InputText,
				Output:        gen.Output,
				Cost:          gen.Cost,
				Latency:       gen.Latency.Seconds(),
				Timestamp:     r.now(),
				Metadata:      gen.Metadata(),
			})
		}
	}

	logger.Info("Experiment complete", "results", len(results), "duration", r.now().Sub(start))
	return results, nil
}

// RunExperiments runs each experiment concurrently and returns the results
// keyed by experiment name. When names repeat, the later experiment in
// input order wins. Any error fails the whole batch.
func (r *Runner) RunExperiments(ctx context.Context, exps []model.Experiment) (map[string][]model.Result, error) {
	perExp := make([][]model.Result, len(exps))

	var g errgroup.Group
	for i, exp := range exps {
		g.Go(func() error {
			res, err := r.RunExperiment(ctx, exp)
			if err != nil {
				return err
			}
			perExp[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]model.Result, len(exps))
	for i, exp := range exps {
		if _, dup := out[exp.Name]; dup {
			r.log().Warn("Duplicate experiment name, earlier results overwritten", "experiment", exp.Name)
		}
		out[exp.Name] = perExp[i]
	}
	return out, nil
}

// requestedModel names the model a failed call was sent with.
func requestedModel(p provider.Provider, params provider.Params) string {
	def := "unknown"
	if priced, ok := p.(provider.Priced); ok {
		def = priced.DefaultModel()
	}
	return params.Model(def)
}

// TestCaseID returns the human-readable tag for a test case: the first
// TestCaseIDLength characters of its input.
func TestCaseID(input string) string {
	n := 0
	for i := range input {
		if n == TestCaseIDLength {
			return input[:i]
		}
		n++
	}
	return input
}
