package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prices(t *testing.T, f *Feed, ticker string, n int) []float64 {
	t.Helper()
	out := make([]float64, n)
	for i := range out {
		snap, err := f.Snapshot(context.Background())
		require.NoError(t, err)
		tick, ok := snap.Lookup(ticker)
		require.True(t, ok)
		out[i] = tick.Price
	}
	return out
}

func TestFeedFirstSnapshotIsInitialPrice(t *testing.T) {
	t.Parallel()

	f, err := NewFeed(DefaultFeedConfig())
	require.NoError(t, err)

	snap, err := f.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-DEC-96k-C", "BTC-FUT"}, snap.Tickers())

	for _, tick := range snap.Ticks() {
		assert.Equal(t, 95000.0, tick.Price)
		assert.Equal(t, 0.5, tick.Volatility)
		assert.NoError(t, tick.Validate())
	}
}

func TestFeedIsReproducible(t *testing.T) {
	t.Parallel()

	a, err := NewFeed(DefaultFeedConfig())
	require.NoError(t, err)
	b, err := NewFeed(DefaultFeedConfig())
	require.NoError(t, err)

	assert.Equal(t, prices(t, a, "BTC-FUT", 50), prices(t, b, "BTC-FUT", 50))
}

func TestFeedSeriesTickersMoveTogether(t *testing.T) {
	t.Parallel()

	f, err := NewFeed(DefaultFeedConfig())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		snap, err := f.Snapshot(context.Background())
		require.NoError(t, err)
		fut, _ := snap.Lookup("BTC-FUT")
		opt, _ := snap.Lookup("BTC-DEC-96k-C")
		assert.Equal(t, fut.Price, opt.Price)
	}
}

func TestFeedShock(t *testing.T) {
	t.Parallel()

	cfg := DefaultFeedConfig()
	cfg.ShockProb = 1
	f, err := NewFeed(cfg)
	require.NoError(t, err)

	got := prices(t, f, "BTC-FUT", 3)
	assert.InDelta(t, 95000.0, got[0], 1e-9)
	assert.InDelta(t, 90250.0, got[1], 1e-9)
	assert.InDelta(t, 85737.5, got[2], 1e-9)
}

func TestFeedFlatWithoutNoise(t *testing.T) {
	t.Parallel()

	cfg := DefaultFeedConfig()
	cfg.ShockProb = 0
	cfg.Sigma = 0
	f, err := NewFeed(cfg)
	require.NoError(t, err)

	for _, p := range prices(t, f, "BTC-FUT", 5) {
		assert.Equal(t, 95000.0, p)
	}
}

func TestFeedCancelled(t *testing.T) {
	t.Parallel()

	f, err := NewFeed(DefaultFeedConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFeedConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*FeedConfig)
	}{
		{"no series", func(c *FeedConfig) { c.Series = nil }},
		{"bad price", func(c *FeedConfig) { c.Series[0].InitialPrice = 0 }},
		{"bad vol", func(c *FeedConfig) { c.Series[0].Volatility = -1 }},
		{"no tickers", func(c *FeedConfig) { c.Series[0].Tickers = nil }},
		{"duplicate ticker", func(c *FeedConfig) {
			c.Series = append(c.Series, Series{Name: "B", InitialPrice: 1, Volatility: 1, Tickers: []string{"BTC-FUT"}})
		}},
		{"shock prob", func(c *FeedConfig) { c.ShockProb = 2 }},
		{"shock pct", func(c *FeedConfig) { c.ShockPct = -1 }},
		{"sigma", func(c *FeedConfig) { c.Sigma = -0.1 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultFeedConfig()
			tt.mutate(&cfg)
			_, err := NewFeed(cfg)
			assert.Error(t, err)
		})
	}
}
