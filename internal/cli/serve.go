package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/daryltucker/prompt-tuner/internal/api"
	"github.com/daryltucker/prompt-tuner/internal/engine"
	"github.com/daryltucker/prompt-tuner/internal/metrics"
	"github.com/daryltucker/prompt-tuner/internal/output"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the experiment API over HTTP",
		Long: `Starts the REST API:

  POST /experiments/run        run one experiment
  POST /experiments/run-batch  run a list of experiments concurrently
  GET  /health                 liveness
  GET  /metrics                Prometheus metrics

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  prompt-tuner serve --addr 127.0.0.1:8000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}

			registry, err := cfg.BuildRegistry()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m := metrics.New(reg)

			runner := engine.New(registry, engine.WithMetrics(m))
			output.Logger.Info("Starting Prompt Tuner API", "addr", cfg.ListenAddr, "providers", registry.Types())
			return api.NewServer(runner, m, reg).ListenAndServe(cmd.Context(), cfg.ListenAddr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	return cmd
}
