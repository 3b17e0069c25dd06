/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes experiments from files and saves their results.

REQUIREMENTS:
  User-specified:
  - Run every prompt against every test case.
  - Record cost, latency and token usage per call.

  Implementation-discovered:
  - Need to load config first, then apply flag overrides.
  - One file may hold several experiments; several files are run as a batch.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Returns error if config, experiment files or any provider call fail.
  - Nothing is written when the run fails.

IMPLEMENTATION RULES:
  - Logic: Load Config -> Override -> Load Experiments -> Run -> Save -> Summarize.

USAGE:
  prompt-tuner run experiments.yaml

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go
  - internal/output/csv.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daryltucker/prompt-tuner/internal/config"
	"github.com/daryltucker/prompt-tuner/internal/engine"
	"github.com/daryltucker/prompt-tuner/internal/model"
	"github.com/daryltucker/prompt-tuner/internal/output"
)

type runOptions struct {
	outputDir  string
	outputFile string
	model      string
	noSummary  bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <experiment-file>...",
		Short: "Run experiments and save the results",
		Long: `Runs every prompt of each experiment against every test case and records
output, cost, latency and token usage.

Experiment files are YAML or JSON and may hold a single experiment, a list of
experiments, or a mapping with an "experiments" list. When more than one
experiment is given they run concurrently.

Results are written to a CSV file and a JSON-lines file sharing its base name
(e.g. results.csv and results.jsonl) in the output directory.`,
		Example: `  # Run one experiment file (uses prompt_tuner.yaml if present)
  prompt-tuner run experiments/basic.yaml

  # Run several files, saving into ./runs
  prompt-tuner run a.yaml b.yaml -o ./runs

  # Force a model for every experiment
  prompt-tuner run basic.yaml --model gpt-4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. Load Config
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			// 2. Overrides
			if opts.outputDir != "" {
				cfg.OutputDir = opts.outputDir
			}
			if opts.outputFile != "" {
				cfg.OutputFile = opts.outputFile
			}

			// 3. Experiments
			var exps []model.Experiment
			for _, path := range args {
				loaded, err := config.LoadExperiments(path)
				if err != nil {
					return err
				}
				output.Logger.Debug("Loaded experiments", "path", path, "count", len(loaded))
				exps = append(exps, loaded...)
			}

			// 4. Execution
			registry, err := cfg.BuildRegistry()
			if err != nil {
				return err
			}
			runner := engine.New(registry, engine.WithModelOverride(opts.model))
			results, err := runAll(cmd.Context(), runner, exps)
			if err != nil {
				return err
			}

			// 5. Save
			csvPath, jsonPath, err := saveResults(cfg, exps, results)
			if err != nil {
				return err
			}
			output.Logger.Info("Results saved", "csv", csvPath, "json", jsonPath)

			if opts.noSummary {
				return nil
			}
			return output.PrintSummary(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Output directory for results (CSV/JSON)")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "", "CSV file name; the JSON-lines file shares its base name")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model to use for every experiment (overrides experiment files)")
	cmd.Flags().BoolVar(&opts.noSummary, "no-summary", false, "Skip the comparison summary")
	return cmd
}

func runAll(ctx context.Context, runner *engine.Runner, exps []model.Experiment) (map[string][]model.Result, error) {
	if len(exps) == 1 {
		results, err := runner.RunExperiment(ctx, exps[0])
		if err != nil {
			return nil, err
		}
		return map[string][]model.Result{exps[0].Name: results}, nil
	}
	return runner.RunExperiments(ctx, exps)
}

// saveResults writes results in experiment input order. Duplicate names were
// already collapsed by the runner, so each name is written once.
func saveResults(cfg *config.Config, exps []model.Experiment, results map[string][]model.Result) (string, string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	csvPath := filepath.Join(cfg.OutputDir, cfg.OutputFile)
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	jsonPath := filepath.Join(cfg.OutputDir, strings.TrimSuffix(cfg.OutputFile, filepath.Ext(cfg.OutputFile))+".jsonl")
	jsonWriter, err := output.NewJSONWriter(jsonPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
	}
	defer jsonWriter.Close()

	written := make(map[string]bool, len(results))
	for _, exp := range exps {
		if written[exp.Name] {
			continue
		}
		written[exp.Name] = true
		if err := csvWriter.WriteAll(results[exp.Name]); err != nil {
			return "", "", fmt.Errorf("failed to write CSV results: %w", err)
		}
		if err := jsonWriter.WriteAll(results[exp.Name]); err != nil {
			return "", "", fmt.Errorf("failed to write JSON results: %w", err)
		}
	}

	if err := csvWriter.Close(); err != nil {
		return "", "", err
	}
	if err := jsonWriter.Close(); err != nil {
		return "", "", err
	}
	return csvPath, jsonPath, nil
}
