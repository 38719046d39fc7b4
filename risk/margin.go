package risk

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/marginscan/market"
	"github.com/rustyeddy/marginscan/pricing"
)

// Contribution is one position's share of the margin requirement.
type Contribution struct {
	PositionID string
	Ticker     string
	Kind       market.Kind
	WorstPnL   float64
	Margin     float64
}

// MarginResult is the outcome of one scan. Contributions keep the order of
// the input positions and Total is their sum in that order.
type MarginResult struct {
	Total         float64
	PerPosition   map[string]float64
	Contributions []Contribution
}

// Engine is a stateless scenario scanner. It is safe for concurrent use.
type Engine struct {
	cfg     MarginConfig
	workers int
}

type Option func(*Engine)

// WithWorkers scans up to n positions concurrently. n <= 1 scans in the
// calling goroutine.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func NewEngine(cfg MarginConfig, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, workers: 1}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Config() MarginConfig { return e.cfg }

// CalculateMargin scans positions against snap with a one-off engine.
func CalculateMargin(positions []market.Position, snap market.Snapshot, cfg MarginConfig) (MarginResult, error) {
	return NewEngine(cfg).CalculateMargin(positions, snap)
}

// CalculateMargin returns the sum of per-position worst-case losses. Every
// position must have a tick in snap; all missing tickers are reported
// together and no partial result is returned.
func (e *Engine) CalculateMargin(positions []market.Position, snap market.Snapshot) (MarginResult, error) {
	if err := e.cfg.Validate(); err != nil {
		return MarginResult{}, err
	}

	ticks, err := lookupAll(positions, snap)
	if err != nil {
		return MarginResult{}, err
	}

	contribs := make([]Contribution, len(positions))
	scan := func(i int) error {
		p := positions[i]
		worst, err := e.WorstCase(p, ticks[i])
		if err != nil {
			return fmt.Errorf("position %s: %w", p.Key(), err)
		}
		contribs[i] = Contribution{
			PositionID: p.Key(),
			Ticker:     p.Ticker(),
			Kind:       p.Instrument.Kind(),
			WorstPnL:   worst,
			Margin:     math.Max(0, -worst),
		}
		return nil
	}

	if e.workers > 1 && len(positions) > 1 {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for i := range positions {
			g.Go(func() error { return scan(i) })
		}
		if err := g.Wait(); err != nil {
			return MarginResult{}, err
		}
	} else {
		for i := range positions {
			if err := scan(i); err != nil {
				return MarginResult{}, err
			}
		}
	}

	res := MarginResult{
		PerPosition:   make(map[string]float64, len(positions)),
		Contributions: contribs,
	}
	for _, c := range contribs {
		res.Total += c.Margin
		res.PerPosition[c.PositionID] += c.Margin
	}
	return res, nil
}

func lookupAll(positions []market.Position, snap market.Snapshot) ([]market.Tick, error) {
	ticks := make([]market.Tick, len(positions))
	var errs []error
	for i, p := range positions {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("position %s: %w", p.Key(), err)
		}
		t, ok := snap.Lookup(p.Ticker())
		if !ok {
			errs = append(errs, &MissingMarketDataError{Ticker: p.Ticker(), PositionID: p.Key()})
			continue
		}
		ticks[i] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ticks, nil
}

// WorstCase returns the minimum P/L of p over the scenario grid built
// around tick. The result is <= 0 unless every scenario is a gain.
func (e *Engine) WorstCase(p market.Position, tick market.Tick) (float64, error) {
	if err := tick.Validate(); err != nil {
		return 0, err
	}
	spots := PriceScenarios(tick.Price, e.cfg.PriceScanRangePct)
	qty := float64(p.Quantity)

	switch inst := p.Instrument.(type) {
	case market.Future:
		worst := math.Inf(1)
		for _, s := range spots {
			worst = math.Min(worst, (s-tick.Price)*qty)
		}
		return worst, nil

	case market.Option:
		vols := VolScenarios(tick.Volatility, e.cfg.VolScanRangePct)
		grid, err := pricing.PriceGrid(spots, vols, inst.Strike, inst.Expiry, e.cfg.RiskFreeRate, inst.Call)
		if err != nil {
			return 0, err
		}
		mark, err := pricing.Price(tick.Price, inst.Strike, inst.Expiry, e.cfg.RiskFreeRate, tick.Volatility, inst.Call)
		if err != nil {
			return 0, err
		}
		// Reprice in place as P/L against today's mark.
		for _, row := range grid.Values {
			for j, v := range row {
				row[j] = (v - mark) * qty
			}
		}
		worst, _, _ := grid.Min()
		return worst, nil

	default:
		return 0, fmt.Errorf("%w: %T", market.ErrUnknownInstrumentType, p.Instrument)
	}
}
