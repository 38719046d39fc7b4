package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/marginscan/market"
)

// runStoreContract exercises behaviour every Store must share.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Reset(ctx))

	eq, err := s.Equity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1_000_000.0, eq, "unset equity falls back to the initial balance")

	require.NoError(t, s.SetEquity(ctx, 750_000.25))
	eq, err = s.Equity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 750_000.25, eq)

	fut, err := s.AddPosition(ctx, market.Position{
		Instrument: market.Future{Ticker: "BTC-FUT"},
		Quantity:   2,
		EntryPrice: 95000,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fut.ID)

	opt, err := s.AddPosition(ctx, market.Position{
		ID:         "ZZ-OPT",
		Instrument: market.Option{Ticker: "BTC-DEC-96k-C", Strike: 96000, Expiry: 0.1, Call: true},
		Quantity:   -5,
		EntryPrice: 2500,
	})
	require.NoError(t, err)
	assert.Equal(t, "ZZ-OPT", opt.ID)

	_, err = s.AddPosition(ctx, market.Position{
		Instrument: market.Option{Ticker: "BAD", Strike: 0, Expiry: 0.1},
	})
	assert.ErrorIs(t, err, market.ErrInvalidInstrument)

	got, err := s.Positions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, fut, got[0])
	assert.Equal(t, opt, got[1])

	require.NoError(t, s.RemovePosition(ctx, fut.Key()))
	assert.ErrorIs(t, s.RemovePosition(ctx, fut.Key()), ErrPositionNotFound)

	got, err = s.Positions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ZZ-OPT", got[0].ID)

	require.NoError(t, s.Reset(ctx))
	got, err = s.Positions(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	eq, err = s.Equity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1_000_000.0, eq)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	s := NewMemory(1_000_000)
	t.Cleanup(func() { _ = s.Close() })
	runStoreContract(t, s)
}
