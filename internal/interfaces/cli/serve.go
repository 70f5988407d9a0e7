package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhyland87/chem-crawler/internal/config"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/logging"
	"github.com/jhyland87/chem-crawler/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/jhyland87/chem-crawler/internal/interfaces/http"
)

// newServeCommand builds `chemcrawl serve`, which runs the streaming API
// until SIGINT/SIGTERM.
func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the streaming search API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config
			if port != 0 {
				cfg.Server.Port = port
			}

			collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
				Namespace:            cfg.Metrics.Namespace,
				EnableProcessMetrics: cfg.Metrics.Enabled,
				EnableGoMetrics:      cfg.Metrics.Enabled,
			}, cliCtx.Logger)
			if err != nil {
				return err
			}
			metrics := prometheus.NewPipelineMetrics(collector)

			svc, sessions, _ := buildSearchService(cfg, cliCtx.Logger, metrics)

			server := httpapi.NewServer(cfg.Server, httpapi.ServerDeps{
				Search:        svc,
				Sessions:      sessions,
				Collector:     collector,
				Metrics:       metrics,
				Logger:        cliCtx.Logger,
				SearchTimeout: cfg.Search.Timeout,
				DefaultLimit:  cfg.Search.DefaultLimit,
			})

			// Hot-reload safe tunables while serving.  Server, cache
			// backend, and logging changes still need a restart.
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				config.Watch(path, func(next *config.Config) {
					svc.ApplyTunables(next.Search.FuzzyCutoff, next.Search.DetailBatch, next.Suppliers.RequestCeiling)
					cliCtx.Logger.Info("configuration reloaded",
						logging.Float64("fuzzy_cutoff", next.Search.FuzzyCutoff),
						logging.Int("detail_batch", next.Search.DetailBatch),
						logging.Int("request_ceiling", next.Suppliers.RequestCeiling))
				})
			}

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				cliCtx.Logger.Info("shutting down on signal", logging.String("signal", sig.String()))
				return server.Shutdown(context.Background())
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default: config server.port)")
	return cmd
}
