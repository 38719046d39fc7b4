package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/marginscan/market"
	"github.com/rustyeddy/marginscan/pricing"
)

// MarkToMarket returns the unrealized P/L of p at tick. Options are valued
// with Black-Scholes at the tick's price and volatility.
func MarkToMarket(p market.Position, tick market.Tick, rate float64) (float64, error) {
	if err := tick.Validate(); err != nil {
		return 0, err
	}
	qty := float64(p.Quantity)

	switch inst := p.Instrument.(type) {
	case market.Future:
		return (tick.Price - p.EntryPrice) * qty, nil
	case market.Option:
		v, err := pricing.Price(tick.Price, inst.Strike, inst.Expiry, rate, tick.Volatility, inst.Call)
		if err != nil {
			return 0, err
		}
		return (v - p.EntryPrice) * qty, nil
	default:
		return 0, fmt.Errorf("%w: %T", market.ErrUnknownInstrumentType, p.Instrument)
	}
}

// UnrealizedPnL sums MarkToMarket over positions. Missing ticks fail the same
// way CalculateMargin does.
func UnrealizedPnL(positions []market.Position, snap market.Snapshot, rate float64) (float64, error) {
	var (
		total float64
		errs  []error
	)
	for _, p := range positions {
		t, ok := snap.Lookup(p.Ticker())
		if !ok {
			errs = append(errs, &MissingMarketDataError{Ticker: p.Ticker(), PositionID: p.Key()})
			continue
		}
		v, err := MarkToMarket(p, t, rate)
		if err != nil {
			return 0, fmt.Errorf("position %s: %w", p.Key(), err)
		}
		total += v
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}
	return total, nil
}

// Utilization is margin as a fraction of equity. Non-positive equity is
// infinitely utilized.
func Utilization(margin, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return margin / equity
}
