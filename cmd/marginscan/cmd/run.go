package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/marginscan/broker"
	"github.com/rustyeddy/marginscan/internal/metrics"
	"github.com/rustyeddy/marginscan/monitor"
	"github.com/rustyeddy/marginscan/risk"
	"github.com/rustyeddy/marginscan/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the live risk loop",
	Long: `Poll the position store, mark the portfolio against the simulated feed,
compute scenario margin and compare it to equity. When margin exceeds equity
every position is closed through the paper broker.

The loop runs until interrupted (Ctrl-C).

Example:
  marginscan run -c marginscan.yaml --seed`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runSeedFirst bool

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runSeedFirst, "seed", false, "reset the store and load the demo portfolio before starting")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if runSeedFirst || cfg.Store.Type == "memory" {
		if _, err := seedPortfolio(ctx, s, cfg.Risk.InitialEquity); err != nil {
			return err
		}
		logger.Info("seeded demo portfolio", zap.String("store", cfg.Store.Type))
	}

	feed, err := sim.NewSource(cfg.Feed)
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	rec := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, rec, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	engine := risk.NewEngine(cfg.Margin, risk.WithWorkers(cfg.Risk.Workers))
	liq := broker.NewLiquidator(broker.NewPaper(logger), s, logger)

	color := !noColor && isTerminal(cmd.OutOrStdout())
	m := monitor.New(s, feed, engine, liq,
		monitor.WithPolicy(cfg.Risk.Policy()),
		monitor.WithTiming(monitor.Timing{
			Interval:            cfg.Risk.Interval,
			IdleInterval:        cfg.Risk.IdleInterval,
			ErrorBackoff:        cfg.Risk.ErrorBackoff,
			LiquidationCooldown: cfg.Risk.LiquidationCooldown,
		}),
		monitor.WithJournal(j),
		monitor.WithMetrics(rec),
		monitor.WithLogger(logger),
		monitor.WithDashboard(cmd.OutOrStdout(), color),
	)
	return m.Run(ctx)
}

func serveMetrics(addr string, rec *metrics.Recorder, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
