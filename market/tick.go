package market

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var ErrInvalidTick = errors.New("invalid tick")

// TickSource produces a complete market snapshot per call.
type TickSource interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Tick is the latest observed mark for one ticker. Volatility is annualised.
type Tick struct {
	Ticker     string    `json:"ticker" yaml:"ticker"`
	Price      float64   `json:"price" yaml:"price"`
	Volatility float64   `json:"volatility" yaml:"volatility"`
	Time       time.Time `json:"time,omitempty" yaml:"time,omitempty"`
}

func (t Tick) Validate() error {
	if t.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidTick)
	}
	if !(t.Price > 0) || math.IsInf(t.Price, 0) {
		return fmt.Errorf("%w: %s price %v must be positive", ErrInvalidTick, t.Ticker, t.Price)
	}
	if !(t.Volatility > 0) || math.IsInf(t.Volatility, 0) {
		return fmt.Errorf("%w: %s volatility %v must be positive", ErrInvalidTick, t.Ticker, t.Volatility)
	}
	return nil
}

// Snapshot is an immutable ticker -> Tick view captured once per cycle.
// The zero value is an empty snapshot.
type Snapshot struct {
	ticks map[string]Tick
}

// NewSnapshot copies ticks into a new snapshot. A later tick for the same
// ticker replaces an earlier one.
func NewSnapshot(ticks ...Tick) Snapshot {
	m := make(map[string]Tick, len(ticks))
	for _, t := range ticks {
		m[t.Ticker] = t
	}
	return Snapshot{ticks: m}
}

func (s Snapshot) Lookup(ticker string) (Tick, bool) {
	t, ok := s.ticks[ticker]
	return t, ok
}

func (s Snapshot) Len() int { return len(s.ticks) }

// Tickers returns the tickers in sorted order.
func (s Snapshot) Tickers() []string {
	out := make([]string, 0, len(s.ticks))
	for k := range s.ticks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ticks returns the ticks sorted by ticker.
func (s Snapshot) Ticks() []Tick {
	out := make([]Tick, 0, len(s.ticks))
	for _, k := range s.Tickers() {
		out = append(out, s.ticks[k])
	}
	return out
}
