// Package sim generates synthetic market snapshots for running the risk loop
// without a market data connection.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/marginscan/market"
)

// Series is one simulated underlying. Every ticker in Tickers is marked at
// the series price and volatility, so a future and the options written on it
// move together.
type Series struct {
	Name         string   `json:"name" yaml:"name"`
	InitialPrice float64  `json:"initial_price" yaml:"initial_price"`
	Volatility   float64  `json:"volatility" yaml:"volatility"`
	Tickers      []string `json:"tickers" yaml:"tickers"`
}

type FeedConfig struct {
	Series []Series `json:"series" yaml:"series"`

	// Each step either applies ShockPct (with probability ShockProb) or a
	// Normal(0, Sigma) return.
	ShockProb float64 `json:"shock_prob" yaml:"shock_prob"` // 0.05
	ShockPct  float64 `json:"shock_pct" yaml:"shock_pct"`   // -0.05
	Sigma     float64 `json:"sigma" yaml:"sigma"`           // 0.005
	Seed      uint64  `json:"seed" yaml:"seed"`

	// ReplayFile, when set, replaces the random walk with scripted
	// snapshots (see Replay).
	ReplayFile string `json:"replay_file,omitempty" yaml:"replay_file,omitempty" env:"FEED_REPLAY_FILE"`
}

func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		Series: []Series{{
			Name:         "BTC",
			InitialPrice: 95000,
			Volatility:   0.50,
			Tickers:      []string{"BTC-FUT", "BTC-DEC-96k-C"},
		}},
		ShockProb: 0.05,
		ShockPct:  -0.05,
		Sigma:     0.005,
		Seed:      1,
	}
}

func (c FeedConfig) Validate() error {
	if c.ReplayFile != "" {
		return nil
	}
	if len(c.Series) == 0 {
		return errors.New("feed: at least one series is required")
	}
	seen := map[string]string{}
	for _, s := range c.Series {
		if s.InitialPrice <= 0 {
			return fmt.Errorf("feed: series %s initial_price must be positive", s.Name)
		}
		if s.Volatility <= 0 {
			return fmt.Errorf("feed: series %s volatility must be positive", s.Name)
		}
		if len(s.Tickers) == 0 {
			return fmt.Errorf("feed: series %s has no tickers", s.Name)
		}
		for _, tk := range s.Tickers {
			if prev, ok := seen[tk]; ok {
				return fmt.Errorf("feed: ticker %s in both %s and %s", tk, prev, s.Name)
			}
			seen[tk] = s.Name
		}
	}
	if c.ShockProb < 0 || c.ShockProb > 1 {
		return errors.New("feed: shock_prob must be between 0 and 1")
	}
	if c.ShockPct <= -1 {
		return errors.New("feed: shock_pct must be greater than -1")
	}
	if c.Sigma < 0 {
		return errors.New("feed: sigma must be >= 0")
	}
	return nil
}

// Feed is a random-walk market.TickSource. It keeps the previous price per
// series; the snapshots it returns are independent values.
type Feed struct {
	mu      sync.Mutex
	cfg     FeedConfig
	rng     *rand.Rand
	noise   distuv.Normal
	prices  []float64
	started bool
	now     func() time.Time
}

// NewSource returns a Replay when cfg.ReplayFile is set and a Feed otherwise.
func NewSource(cfg FeedConfig) (market.TickSource, error) {
	if cfg.ReplayFile != "" {
		r, err := LoadReplay(cfg.ReplayFile)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	f, err := NewFeed(cfg)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func NewFeed(cfg FeedConfig) (*Feed, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	return &Feed{
		cfg:    cfg,
		rng:    rng,
		noise:  distuv.Normal{Mu: 0, Sigma: cfg.Sigma, Src: rng},
		prices: make([]float64, len(cfg.Series)),
		now:    time.Now,
	}, nil
}

// Snapshot advances every series one step and returns the new marks. The
// first call returns the initial prices.
func (f *Feed) Snapshot(ctx context.Context) (market.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return market.Snapshot{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, s := range f.cfg.Series {
		if !f.started {
			f.prices[i] = s.InitialPrice
			continue
		}
		f.prices[i] *= 1 + f.step()
	}
	f.started = true

	now := f.now()
	var ticks []market.Tick
	for i, s := range f.cfg.Series {
		for _, tk := range s.Tickers {
			ticks = append(ticks, market.Tick{
				Ticker:     tk,
				Price:      f.prices[i],
				Volatility: s.Volatility,
				Time:       now,
			})
		}
	}
	return market.NewSnapshot(ticks...), nil
}

func (f *Feed) step() float64 {
	if f.rng.Float64() < f.cfg.ShockProb {
		return f.cfg.ShockPct
	}
	return f.noise.Rand()
}
