/*
PURPOSE:
  Defines the root Cobra command for the Prompt Tuner CLI.
  Handles global flags, logger setup and command wiring.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Logging format and level must be set before any subcommand logs.
  - Commands are built by constructors so tests get fresh flag state.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/prompt-tuner/main.go
  - Calls: Child commands (run, serve, providers, init, version)
  - Uses: internal/config, internal/output

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root only prepares shared state.

USAGE:
  Called by main.go.

SELF-HEALING INSTRUCTIONS:
  - If adding new global flags, add them to rootOptions and NewRootCmd.

RELATED FILES:
  - cmd/prompt-tuner/main.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/daryltucker/prompt-tuner/internal/config"
	"github.com/daryltucker/prompt-tuner/internal/output"
)

// rootOptions holds global flag values shared by subcommands.
type rootOptions struct {
	cfgFile   string
	verbose   bool
	logFormat string
	noColor   bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "prompt-tuner",
		Short: "Compare prompt variants across LLM providers",
		Long: `Prompt Tuner runs every prompt of an experiment against every test case on
OpenAI or Anthropic models and records output, cost, latency and token usage.

Use 'run' for one-off comparisons from experiment files, or 'serve' to expose
the same runner over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := output.Setup(cmd.ErrOrStderr(), opts.logFormat, opts.verbose); err != nil {
				return err
			}
			if opts.noColor {
				color.NoColor = true
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./prompt_tuner.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newProvidersCmd(opts),
		newInitCmd(),
		newVersionCmd(),
	)
	return cmd
}

// Execute executes the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig reads the config file and applies environment overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if cfg.Source != "" {
		output.Logger.Debug("Loaded config", "path", cfg.Source)
	}
	return cfg, nil
}
