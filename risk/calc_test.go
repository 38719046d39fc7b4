package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marginscan/market"
	"github.com/rustyeddy/marginscan/pricing"
)

func TestMarkToMarket(t *testing.T) {
	t.Parallel()

	tick := market.Tick{Ticker: "BTC-FUT", Price: 96000, Volatility: 0.5}

	got, err := MarkToMarket(future("F1", 2), tick, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, got, 1e-9)

	got, err = MarkToMarket(future("F2", -2), tick, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, -2000.0, got, 1e-9)

	c := shortCall()
	tick.Ticker = c.Ticker()
	v, err := pricing.Price(96000, 96000, 0.1, 0.05, 0.5, true)
	require.NoError(t, err)
	got, err = MarkToMarket(c, tick, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, (v-2500)*-5, got, 1e-9)
}

func TestUnrealizedPnL(t *testing.T) {
	t.Parallel()

	positions := []market.Position{future("F1", 2), future("F2", -1)}
	snap := market.NewSnapshot(market.Tick{Ticker: "BTC-FUT", Price: 94000, Volatility: 0.5})

	got, err := UnrealizedPnL(positions, snap, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, -2000.0+1000.0, got, 1e-9)

	_, err = UnrealizedPnL([]market.Position{shortCall()}, snap, 0.05)
	assert.ErrorIs(t, err, ErrMissingMarketData)
}

func TestUtilization(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, Utilization(50, 100), 1e-12)
	assert.True(t, math.IsInf(Utilization(50, 0), 1))
	assert.True(t, math.IsInf(Utilization(50, -10), 1))
}
