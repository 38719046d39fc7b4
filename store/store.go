// Package store holds the positions and account balance the risk loop
// evaluates.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/rustyeddy/marginscan/market"
)

var ErrPositionNotFound = errors.New("position not found")

type Store interface {
	// Positions returns every open position sorted by key.
	Positions(ctx context.Context) ([]market.Position, error)
	// AddPosition stores p under p.Key(), assigning an ID when empty, and
	// returns the stored position.
	AddPosition(ctx context.Context, p market.Position) (market.Position, error)
	RemovePosition(ctx context.Context, key string) error
	Equity(ctx context.Context) (float64, error)
	SetEquity(ctx context.Context, amount float64) error
	// Reset removes all positions and the stored balance.
	Reset(ctx context.Context) error
	Close() error
}

func sortByKey(ps []market.Position) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Key() < ps[j].Key() })
}
