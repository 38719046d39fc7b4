// Package monitor runs the risk loop: read the portfolio, mark it against a
// fresh snapshot, compare scenario margin to equity and liquidate on breach.
package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/marginscan/broker"
	"github.com/rustyeddy/marginscan/internal/dashboard"
	"github.com/rustyeddy/marginscan/internal/id"
	"github.com/rustyeddy/marginscan/internal/metrics"
	"github.com/rustyeddy/marginscan/journal"
	"github.com/rustyeddy/marginscan/market"
	"github.com/rustyeddy/marginscan/risk"
	"github.com/rustyeddy/marginscan/store"
)

const LiquidationReason = "Margin Utilization > 100%"

type Timing struct {
	Interval            time.Duration
	IdleInterval        time.Duration
	ErrorBackoff        time.Duration
	LiquidationCooldown time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Interval:            time.Second,
		IdleInterval:        2 * time.Second,
		ErrorBackoff:        time.Second,
		LiquidationCooldown: 5 * time.Second,
	}
}

// Cycle is the outcome of one pass of the loop. Idle cycles carry only ID,
// Time and Snapshot.
type Cycle struct {
	ID        string
	Time      time.Time
	Snapshot  market.Snapshot
	Positions []market.Position
	Account   risk.AccountSnapshot
	Result    risk.MarginResult
	Decision  risk.Decision
	Fills     []broker.Fill
	Idle      bool
}

type Monitor struct {
	store      store.Store
	feed       market.TickSource
	engine     *risk.Engine
	liquidator *broker.Liquidator

	policy  risk.Policy
	timing  Timing
	journal journal.Journal
	metrics *metrics.Recorder
	logger  *zap.Logger
	out     io.Writer
	color   bool
	now     func() time.Time
}

type Option func(*Monitor)

func WithPolicy(p risk.Policy) Option { return func(m *Monitor) { m.policy = p } }
func WithTiming(t Timing) Option { return func(m *Monitor) { m.timing = t } }
func WithJournal(j journal.Journal) Option { return func(m *Monitor) { m.journal = j } }
func WithMetrics(r *metrics.Recorder) Option { return func(m *Monitor) { m.metrics = r } }
func WithLogger(l *zap.Logger) Option { return func(m *Monitor) { m.logger = l } }

// WithDashboard renders every cycle to w.
func WithDashboard(w io.Writer, color bool) Option {
	return func(m *Monitor) {
		m.out = w
		m.color = color
	}
}

func New(s store.Store, feed market.TickSource, engine *risk.Engine, liq *broker.Liquidator, opts ...Option) *Monitor {
	m := &Monitor{
		store:      s,
		feed:       feed,
		engine:     engine,
		liquidator: liq,
		policy:     risk.DefaultPolicy(),
		timing:     DefaultTiming(),
		journal:    journal.Nop{},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Run repeats RunCycle until ctx is cancelled. A failed cycle is logged and
// retried after ErrorBackoff.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("starting risk loop",
		zap.Duration("interval", m.timing.Interval),
		zap.Float64("price_scan_range_pct", m.engine.Config().PriceScanRangePct),
		zap.Float64("vol_scan_range_pct", m.engine.Config().VolScanRangePct),
	)

	for {
		wait := m.timing.Interval

		c, err := m.RunCycle(ctx)
		switch {
		case ctx.Err() != nil:
			m.logger.Info("stopping risk loop")
			return nil
		case err != nil:
			m.logger.Error("risk cycle failed", zap.String("cycle_id", c.ID), zap.Error(err))
			wait = m.timing.ErrorBackoff
		case c.Idle:
			wait = m.timing.IdleInterval
		case c.Decision.Breached():
			wait += m.timing.LiquidationCooldown
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			m.logger.Info("stopping risk loop")
			return nil
		case <-t.C:
		}
	}
}

// RunCycle performs one evaluation and, on breach, flattens the portfolio.
func (m *Monitor) RunCycle(ctx context.Context) (Cycle, error) {
	c := Cycle{ID: id.New(), Time: m.now()}

	snap, err := m.feed.Snapshot(ctx)
	if err != nil {
		return c, m.fail("feed", fmt.Errorf("snapshot: %w", err))
	}
	c.Snapshot = snap

	positions, err := m.store.Positions(ctx)
	if err != nil {
		return c, m.fail("store", fmt.Errorf("load positions: %w", err))
	}
	if len(positions) == 0 {
		c.Idle = true
		m.logger.Debug("no positions", zap.String("cycle_id", c.ID))
		if m.out != nil {
			_ = dashboard.RenderIdle(m.out, m.color)
		}
		return c, nil
	}
	c.Positions = positions

	balance, err := m.store.Equity(ctx)
	if err != nil {
		return c, m.fail("store", fmt.Errorf("load equity: %w", err))
	}

	rate := m.engine.Config().RiskFreeRate
	unrealized, err := risk.UnrealizedPnL(positions, snap, rate)
	if err != nil {
		return c, m.fail("valuation", fmt.Errorf("unrealized p/l: %w", err))
	}

	res, err := m.engine.CalculateMargin(positions, snap)
	if err != nil {
		return c, m.fail("margin", fmt.Errorf("margin: %w", err))
	}
	c.Result = res
	c.Account = risk.NewAccountSnapshot(balance, unrealized, res.Total)
	c.Decision = risk.Assess(m.policy, c.Account)

	m.logger.Debug("cycle evaluated",
		zap.String("cycle_id", c.ID),
		zap.Float64("equity", c.Account.Equity),
		zap.Float64("margin", c.Account.Margin),
		zap.Float64("utilization", c.Decision.Utilization),
		zap.Stringer("status", c.Decision.Status),
	)

	if m.out != nil {
		v := dashboard.View{
			CycleID:   c.ID,
			Time:      c.Time,
			Ticks:     snap.Ticks(),
			Account:   c.Account,
			Decision:  c.Decision,
			Positions: len(positions),
		}
		if err := dashboard.Render(m.out, v, m.color); err != nil {
			m.logger.Warn("dashboard render failed", zap.Error(err))
		}
	}

	m.record(c)

	if !c.Decision.Breached() {
		return c, nil
	}

	m.logger.Warn("margin breach detected",
		zap.String("cycle_id", c.ID),
		zap.Float64("equity", c.Account.Equity),
		zap.Float64("margin", c.Account.Margin),
	)
	if m.metrics != nil {
		m.metrics.Breaches.Inc()
	}

	fills, err := m.liquidator.Liquidate(ctx, positions, LiquidationReason)
	c.Fills = fills
	for _, f := range fills {
		m.recordFill(c.ID, f)
	}
	if err != nil {
		return c, m.fail("liquidation", err)
	}
	return c, nil
}

func (m *Monitor) fail(stage string, err error) error {
	if missing := risk.MissingTickers(err); len(missing) > 0 {
		m.logger.Warn("missing market data",
			zap.String("stage", stage),
			zap.Strings("missing_tickers", missing),
		)
	}
	if m.metrics != nil {
		m.metrics.CycleErrors.WithLabelValues(stage).Inc()
	}
	return err
}

func (m *Monitor) record(c Cycle) {
	if m.metrics != nil {
		m.metrics.Cycles.Inc()
		m.metrics.Margin.Set(c.Account.Margin)
		m.metrics.Equity.Set(c.Account.Equity)
		m.metrics.Utilization.Set(c.Decision.Utilization)
		m.metrics.Positions.Set(float64(len(c.Positions)))
		m.metrics.PositionRisk.Reset()
		for _, pc := range c.Result.Contributions {
			m.metrics.PositionRisk.WithLabelValues(pc.PositionID, pc.Ticker).Set(pc.Margin)
		}
	}

	rec := journal.CycleRecord{
		CycleID:       c.ID,
		Time:          c.Time,
		Balance:       c.Account.Balance,
		UnrealizedPnL: c.Account.UnrealizedPnL,
		Equity:        c.Account.Equity,
		Margin:        c.Account.Margin,
		Utilization:   c.Decision.Utilization,
		Status:        c.Decision.Status.String(),
		Positions:     len(c.Positions),
	}
	for _, pc := range c.Result.Contributions {
		rec.Contributions = append(rec.Contributions, journal.ContributionRecord{
			PositionID: pc.PositionID,
			Ticker:     pc.Ticker,
			Kind:       string(pc.Kind),
			WorstPnL:   pc.WorstPnL,
			Margin:     pc.Margin,
		})
	}
	if err := m.journal.RecordCycle(rec); err != nil {
		m.logger.Error("journal cycle failed", zap.String("cycle_id", c.ID), zap.Error(err))
		_ = m.fail("journal", err)
	}
}

func (m *Monitor) recordFill(cycleID string, f broker.Fill) {
	if m.metrics != nil {
		m.metrics.Liquidations.Inc()
	}
	err := m.journal.RecordLiquidation(journal.LiquidationRecord{
		OrderID:    f.OrderID,
		CycleID:    cycleID,
		Time:       f.Time,
		PositionID: f.PositionID,
		Ticker:     f.Ticker,
		Side:       string(f.Side),
		Quantity:   f.Quantity,
		Reason:     f.Reason,
	})
	if err != nil {
		m.logger.Error("journal liquidation failed", zap.String("order_id", f.OrderID), zap.Error(err))
		_ = m.fail("journal", err)
	}
}
