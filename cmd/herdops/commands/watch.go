package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slok/herdops/pkg/lib"
)

// WatchCommand runs herdops as a daemon: it refreshes the due operation gauges,
// reconciles failed side effects periodically and serves Prometheus metrics.
type WatchCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddr  string
	metricsPath string
	interval    time.Duration
	noReconcile bool
}

// NewWatchCommand returns the watch command.
func NewWatchCommand(rootCmd *RootCommand, app *kingpin.Application) *WatchCommand {
	c := &WatchCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("watch", "Refresh operation metrics and reconcile side effects periodically, serving Prometheus metrics.")
	c.Cmd.Flag("listen-address", "Address the metrics server listens on.").Default(":8081").StringVar(&c.listenAddr)
	c.Cmd.Flag("metrics-path", "Path the metrics are served on.").Default("/metrics").StringVar(&c.metricsPath)
	c.Cmd.Flag("interval", "Interval between refreshes.").Default("1m").DurationVar(&c.interval)
	c.Cmd.Flag("no-reconcile", "Don't retry failed side effects, only refresh metrics.").BoolVar(&c.noReconcile)

	return c
}

func (c WatchCommand) Name() string { return c.Cmd.FullCommand() }

func (c WatchCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if c.interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cfg, err := c.rootCmd.libConfig()
	if err != nil {
		return err
	}
	cfg.MetricsRegisterer = reg

	client, err := lib.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("could not create client: %w", err)
	}
	defer client.Close()

	var g run.Group

	// Metrics server.
	{
		mux := http.NewServeMux()
		mux.Handle(c.metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{
			Addr:              c.listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Add(
			func() error {
				logger.Infof("Metrics listening on %s%s", c.listenAddr, c.metricsPath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("metrics server error: %w", err)
				}
				return nil
			},
			func(_ error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Could not shut down metrics server: %s", err)
				}
			},
		)
	}

	// Refresh loop.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				ticker := time.NewTicker(c.interval)
				defer ticker.Stop()
				for {
					c.tick(ctx, client)
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
					}
				}
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// tick runs one refresh. Errors are logged so a flaky backend doesn't stop the daemon.
func (c WatchCommand) tick(ctx context.Context, client *lib.Client) {
	logger := c.rootCmd.Logger

	if !c.noReconcile {
		res, err := client.RetrySideEffects(ctx)
		if err != nil {
			logger.Errorf("Could not reconcile side effects: %s", err)
		} else if len(res.Resolved)+len(res.Failed) > 0 {
			logger.Infof("Reconciled %d side effects, %d still pending", len(res.Resolved), len(res.Failed))
		}
	}

	if err := client.RefreshMetrics(ctx); err != nil {
		logger.Errorf("Could not refresh metrics: %s", err)
		return
	}
	logger.Debugf("Metrics refreshed")
}
