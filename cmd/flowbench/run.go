package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ygrebnov/flow"
	"github.com/ygrebnov/flow/internal/config"
	"github.com/ygrebnov/flow/internal/logging"
	"github.com/ygrebnov/flow/metrics"
	"github.com/ygrebnov/flow/scheduler"
)

func runCommand(env *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run one or more scenarios",
		ArgsUsage: "[scenario...]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "items", Aliases: []string{"n"}, Value: 10000, Usage: "items produced by each source"},
			&cli.UintFlag{Name: "workers", Aliases: []string{"w"}, Value: env.Workers, Usage: "worker goroutines, 0 for GOMAXPROCS"},
			&cli.IntFlag{Name: "queue-capacity", Aliases: []string{"q"}, Value: env.QueueCapacity, Usage: "capacity of each inter-stage queue"},
			&cli.IntFlag{Name: "step-budget", Value: env.StepBudget, Usage: "items a task moves per step"},
			&cli.IntFlag{Name: "repeat", Value: 1, Usage: "launch every scenario this many times, concurrently"},
			&cli.DurationFlag{Name: "slow-sink", Usage: "delay applied by the sink to every 100th item"},
			&cli.StringFlag{Name: "format", Value: "text", Usage: "report format: text or yaml"},
			&cli.StringFlag{Name: "log-level", Value: env.LogLevel, Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "log-dev", Value: env.LogDev || isatty.IsTerminal(os.Stderr.Fd()), Usage: "human readable logs"},
			&cli.StringFlag{Name: "metrics-addr", Value: env.MetricsAddr, Usage: "serve /metrics on this address while running"},
		},
		Action: func(c *cli.Context) error {
			names := c.Args().Slice()
			if len(names) == 0 {
				names = []string{"chain"}
			}
			selected := make([]scenario, 0, len(names))
			for _, n := range names {
				s, ok := lookupScenario(n)
				if !ok {
					return fmt.Errorf("unknown scenario %q", n)
				}
				selected = append(selected, s)
			}
			if c.Int("repeat") < 1 {
				return fmt.Errorf("repeat must be at least 1")
			}

			cfg := *env
			cfg.Workers = c.Uint("workers")
			cfg.QueueCapacity = c.Int("queue-capacity")
			cfg.StepBudget = c.Int("step-budget")
			cfg.LogLevel = c.String("log-level")
			cfg.LogDev = c.Bool("log-dev")
			cfg.MetricsAddr = c.String("metrics-addr")
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(cfg.Logging())
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			provider := metrics.NewPrometheusProvider(reg, "")

			if addr := cfg.MetricsAddr; addr != "" {
				stop := serveMetrics(addr, reg, logger)
				defer stop()
			}

			poolOpts := append(cfg.PoolOptions(), scheduler.WithLogger(logger), scheduler.WithMetrics(provider))
			pool, err := scheduler.New(poolOpts...)
			if err != nil {
				return err
			}
			defer pool.Shutdown()

			b := bench{
				pool:  pool,
				items: c.Int("items"),
				slow:  c.Duration("slow-sink"),
				opts:  append(cfg.RunOptions(), flow.WithLogger(logger), flow.WithMetrics(provider)),
			}
			reports, err := b.run(c.Context, selected, c.Int("repeat"))
			if err != nil {
				return err
			}
			return writeReports(c.App.Writer, c.String("format"), reports)
		},
	}
}

// serveMetrics exposes reg on addr until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
