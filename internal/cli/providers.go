/*
PURPOSE:
  Defines the 'providers' subcommand.
  Shows which vendors are usable and what they cost.

REQUIREMENTS:
  User-specified:
  - List providers.

  Implementation-discovered:
  - Useful validation step before a paid run: a missing API key shows here
    instead of failing mid-batch.

ARCHITECTURE INTEGRATION:
  - Calls: config.BuildRegistry, provider.DefaultsFor

ERROR HANDLING:
  - Returns error only if config loading fails.

IMPLEMENTATION RULES:
  - Simple output to stdout.
*/

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/daryltucker/prompt-tuner/internal/config"
	"github.com/daryltucker/prompt-tuner/internal/model"
	"github.com/daryltucker/prompt-tuner/internal/provider"
)

func newProvidersCmd(root *rootOptions) *cobra.Command {
	var showPricing bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List providers, default models and price tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			registry, err := cfg.BuildRegistry()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PROVIDER\tSTATUS\tDEFAULT MODEL\t")
			for _, t := range model.ProviderTypes() {
				defaultModel, _, _ := provider.DefaultsFor(t)
				status := color.RedString("disabled (%s not set)", keyEnv(t))
				if p, err := registry.Lookup(t); err == nil {
					status = color.GreenString("enabled")
					if priced, ok := p.(provider.Priced); ok {
						defaultModel = priced.DefaultModel()
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t\n", t, status, defaultModel)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if !showPricing {
				return nil
			}
			for _, t := range model.ProviderTypes() {
				_, table, _ := provider.DefaultsFor(t)
				fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprintf("%s pricing (USD per 1K tokens)", t))
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "  MODEL\tINPUT\tOUTPUT\t")
				for _, name := range table.Models() {
					price, _ := table.Lookup(name)
					mark := ""
					if name == table.Fallback {
						mark = " (fallback)"
					}
					fmt.Fprintf(tw, "  %s%s\t%.5f\t%.5f\t\n", name, mark, price.Input, price.Output)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showPricing, "pricing", "p", false, "also print price tables")
	return cmd
}

func keyEnv(t model.ProviderType) string {
	if t == model.ProviderAnthropic {
		return config.EnvAnthropicKey
	}
	return config.EnvOpenAIKey
}
