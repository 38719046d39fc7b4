package monitor

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rustyeddy/marginscan/broker"
	"github.com/rustyeddy/marginscan/internal/metrics"
	"github.com/rustyeddy/marginscan/journal"
	"github.com/rustyeddy/marginscan/market"
	"github.com/rustyeddy/marginscan/risk"
	"github.com/rustyeddy/marginscan/store"
)

type fixedFeed struct {
	snap  market.Snapshot
	err   error
	calls int
}

func (f *fixedFeed) Snapshot(ctx context.Context) (market.Snapshot, error) {
	f.calls++
	if f.err != nil {
		return market.Snapshot{}, f.err
	}
	return f.snap, nil
}

func btcFeed() *fixedFeed {
	return &fixedFeed{snap: market.NewSnapshot(
		market.Tick{Ticker: "BTC-FUT", Price: 95000, Volatility: 0.5},
		market.Tick{Ticker: "BTC-DEC-96k-C", Price: 95000, Volatility: 0.5},
	)}
}

type fixture struct {
	store   *store.MemoryStore
	broker  *broker.PaperBroker
	journal *journal.SQLite
	metrics *metrics.Recorder
	out     *bytes.Buffer
	logger  *zap.Logger
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T, equity float64, positions ...market.Position) fixture {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	f := fixture{
		store:   store.NewMemory(equity),
		broker:  broker.NewPaper(nil),
		metrics: metrics.New(),
		out:     &bytes.Buffer{},
		logger:  zap.New(core),
		logs:    logs,
	}
	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	f.journal = j

	for _, p := range positions {
		_, err := f.store.AddPosition(context.Background(), p)
		require.NoError(t, err)
	}
	return f
}

func (f fixture) monitor(feed market.TickSource) *Monitor {
	return New(f.store, feed, risk.NewEngine(risk.DefaultMarginConfig()),
		broker.NewLiquidator(f.broker, f.store, f.logger),
		WithJournal(f.journal),
		WithMetrics(f.metrics),
		WithLogger(f.logger),
		WithDashboard(f.out, false),
		WithTiming(Timing{
			Interval:            time.Millisecond,
			IdleInterval:        time.Millisecond,
			ErrorBackoff:        time.Millisecond,
			LiquidationCooldown: time.Millisecond,
		}),
	)
}

func longFuture(id string, qty int64) market.Position {
	return market.Position{ID: id, Instrument: market.Future{Ticker: "BTC-FUT"}, Quantity: qty, EntryPrice: 95000}
}

func TestRunCycle_Healthy(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1_000_000, longFuture("F1", 2))
	m := f.monitor(btcFeed())

	c, err := m.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, c.Idle)
	assert.InDelta(t, 19_000.0, c.Account.Margin, 1e-6)
	assert.InDelta(t, 1_000_000.0, c.Account.Equity, 1e-6)
	assert.Equal(t, risk.Healthy, c.Decision.Status)
	assert.Empty(t, c.Fills)

	assert.Contains(t, f.out.String(), "19000.00")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Cycles))
	assert.InDelta(t, 19_000.0, testutil.ToFloat64(f.metrics.Margin), 1e-6)
	assert.InDelta(t, 19_000.0, testutil.ToFloat64(f.metrics.PositionRisk.WithLabelValues("F1", "BTC-FUT")), 1e-6)

	rec, err := f.journal.GetCycle(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "healthy", rec.Status)
	require.Len(t, rec.Contributions, 1)
	assert.Equal(t, "F1", rec.Contributions[0].PositionID)

	left, err := f.store.Positions(context.Background())
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestRunCycle_BreachLiquidates(t *testing.T) {
	t.Parallel()

	short := market.Position{
		ID:         "O1",
		Instrument: market.Option{Ticker: "BTC-DEC-96k-C", Strike: 96000, Expiry: 0.1, Call: true},
		Quantity:   -5,
		EntryPrice: 2500,
	}
	f := newFixture(t, 10_000, longFuture("F1", 2), short)
	m := f.monitor(btcFeed())

	c, err := m.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, risk.Breach, c.Decision.Status)
	require.Len(t, c.Fills, 2)
	assert.Equal(t, broker.Sell, c.Fills[0].Side)
	assert.Equal(t, broker.BuyToCover, c.Fills[1].Side)
	assert.Equal(t, int64(5), c.Fills[1].Quantity)

	left, err := f.store.Positions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, left)

	liqs, err := f.journal.ListLiquidations(c.ID)
	require.NoError(t, err)
	require.Len(t, liqs, 2)
	assert.Equal(t, LiquidationReason, liqs[0].Reason)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Breaches))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Liquidations))
	assert.Contains(t, f.out.String(), "MARGIN BREACH")
	assert.Equal(t, 1, f.logs.FilterMessage("margin breach detected").Len())
}

func TestRunCycle_Idle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1_000_000)
	feed := btcFeed()
	m := f.monitor(feed)

	c, err := m.RunCycle(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Idle)
	assert.Equal(t, 1, feed.calls)
	assert.Contains(t, f.out.String(), "No positions")

	cycles, err := f.journal.ListCycles(0)
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestRunCycle_MissingMarketData(t *testing.T) {
	t.Parallel()

	eth := market.Position{ID: "E1", Instrument: market.Future{Ticker: "ETH-FUT"}, Quantity: 1, EntryPrice: 3000}
	f := newFixture(t, 1_000_000, longFuture("F1", 1), eth)
	m := f.monitor(btcFeed())

	_, err := m.RunCycle(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, risk.ErrMissingMarketData)
	assert.Equal(t, []string{"ETH-FUT"}, risk.MissingTickers(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CycleErrors.WithLabelValues("valuation")))
	assert.Empty(t, f.broker.Fills())

	entries := f.logs.FilterMessage("missing market data").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "valuation", fields["stage"])
	assert.Equal(t, []interface{}{"ETH-FUT"}, fields["missing_tickers"])
}

func TestRunCycle_FeedError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1_000_000, longFuture("F1", 1))
	m := f.monitor(&fixedFeed{err: errors.New("feed down")})

	_, err := m.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed down")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CycleErrors.WithLabelValues("feed")))
	assert.Zero(t, f.logs.FilterMessage("missing market data").Len())
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1_000_000, longFuture("F1", 1))
	feed := btcFeed()
	m := f.monitor(feed)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, m.Run(ctx))
	assert.Greater(t, feed.calls, 1)
	assert.Equal(t, 1, f.logs.FilterMessage("starting risk loop").Len())
	assert.Equal(t, 1, f.logs.FilterMessage("stopping risk loop").Len())
}

func TestRun_SurvivesCycleErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1_000_000, longFuture("F1", 1))
	feed := &fixedFeed{err: errors.New("feed down")}
	m := f.monitor(feed)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, m.Run(ctx))
	assert.Greater(t, feed.calls, 1)
	assert.GreaterOrEqual(t, testutil.ToFloat64(f.metrics.CycleErrors.WithLabelValues("feed")), 2.0)
	assert.GreaterOrEqual(t, f.logs.FilterMessage("risk cycle failed").Len(), 1)
}
