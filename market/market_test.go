package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{"valid call", Option{Ticker: "BTC-C", Strike: 96000, Expiry: 0.1, Call: true}, false},
		{"zero expiry", Option{Ticker: "BTC-P", Strike: 96000, Expiry: 0}, false},
		{"zero strike", Option{Ticker: "BTC-C", Strike: 0, Expiry: 0.1}, true},
		{"negative strike", Option{Ticker: "BTC-C", Strike: -1, Expiry: 0.1}, true},
		{"negative expiry", Option{Ticker: "BTC-C", Strike: 100, Expiry: -0.1}, true},
		{"nan strike", Option{Ticker: "BTC-C", Strike: math.NaN(), Expiry: 0.1}, true},
		{"no ticker", Option{Strike: 100, Expiry: 0.1}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opt.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInstrument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPositionKeyAndSide(t *testing.T) {
	t.Parallel()

	p := Position{Instrument: Future{Ticker: "BTC-FUT"}, Quantity: -2}
	assert.Equal(t, "BTC-FUT", p.Key())
	assert.Equal(t, Short, p.Side())

	p.ID = "P1"
	p.Quantity = 3
	assert.Equal(t, "P1", p.Key())
	assert.Equal(t, Long, p.Side())

	p.Quantity = 0
	assert.Equal(t, Flat, p.Side())
	assert.Equal(t, "flat", p.Side().String())
}

func TestTickValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Tick{Ticker: "X", Price: 1, Volatility: 0.2}.Validate())
	assert.ErrorIs(t, Tick{Ticker: "X", Price: 0, Volatility: 0.2}.Validate(), ErrInvalidTick)
	assert.ErrorIs(t, Tick{Ticker: "X", Price: 1, Volatility: 0}.Validate(), ErrInvalidTick)
	assert.ErrorIs(t, Tick{Price: 1, Volatility: 0.2}.Validate(), ErrInvalidTick)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	var empty Snapshot
	_, ok := empty.Lookup("BTC-FUT")
	assert.False(t, ok)
	assert.Equal(t, 0, empty.Len())

	s := NewSnapshot(
		Tick{Ticker: "B", Price: 2, Volatility: 0.5},
		Tick{Ticker: "A", Price: 1, Volatility: 0.5},
		Tick{Ticker: "B", Price: 3, Volatility: 0.5},
	)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"A", "B"}, s.Tickers())

	b, ok := s.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, 3.0, b.Price)
}

func TestPositionRecordRoundTrip(t *testing.T) {
	t.Parallel()

	positions := []Position{
		{ID: "F1", Instrument: Future{Ticker: "BTC-FUT"}, Quantity: 2, EntryPrice: 95000},
		{ID: "O1", Instrument: Option{Ticker: "BTC-DEC-96k-C", Strike: 96000, Expiry: 0.1, Call: true}, Quantity: -5, EntryPrice: 2500},
	}

	for _, p := range positions {
		got, err := RecordOf(p).ToPosition()
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestPositionRecordRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  PositionRecord
		want error
	}{
		{"future with strike", PositionRecord{Ticker: "F", Type: KindFuture, Strike: 100}, ErrInvalidInstrument},
		{"future with expiry", PositionRecord{Ticker: "F", Type: KindFuture, Expiry: 0.5}, ErrInvalidInstrument},
		{"option without strike", PositionRecord{Ticker: "O", Type: KindOption, Expiry: 0.5}, ErrInvalidInstrument},
		{"unknown type", PositionRecord{Ticker: "S", Type: "swap"}, ErrUnknownInstrumentType},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.rec.ToPosition()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
