package broker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/marginscan/market"
)

// PositionRemover is the part of the position store the liquidator needs.
type PositionRemover interface {
	RemovePosition(ctx context.Context, key string) error
}

// Liquidator flattens a portfolio with market orders.
type Liquidator struct {
	broker Broker
	store  PositionRemover
	logger *zap.Logger
}

func NewLiquidator(b Broker, s PositionRemover, logger *zap.Logger) *Liquidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Liquidator{broker: b, store: s, logger: logger}
}

// CloseOrder returns the order that flattens p. ok is false for a flat
// position.
func CloseOrder(p market.Position, reason string) (o Order, ok bool) {
	if p.Quantity == 0 {
		return Order{}, false
	}
	o = Order{
		PositionID: p.Key(),
		Ticker:     p.Ticker(),
		Side:       Sell,
		Quantity:   p.Quantity,
		Reason:     reason,
	}
	if p.Quantity < 0 {
		o.Side = BuyToCover
		o.Quantity = -p.Quantity
	}
	return o, true
}

// Liquidate sends a closing order for every non-flat position and removes it
// from the store once filled. Flat positions are left untouched. It stops at
// the first failure and returns the fills sent so far.
func (l *Liquidator) Liquidate(ctx context.Context, positions []market.Position, reason string) ([]Fill, error) {
	if len(positions) == 0 {
		return nil, nil
	}

	l.logger.Warn("executing liquidation", zap.String("reason", reason), zap.Int("positions", len(positions)))

	var fills []Fill
	for _, p := range positions {
		o, ok := CloseOrder(p, reason)
		if !ok {
			continue
		}
		f, err := l.broker.SubmitMarketOrder(ctx, o)
		if err != nil {
			return fills, fmt.Errorf("liquidate %s: %w", p.Key(), err)
		}
		fills = append(fills, f)
		if err := l.store.RemovePosition(ctx, p.Key()); err != nil {
			return fills, fmt.Errorf("liquidate %s: %w", p.Key(), err)
		}
	}

	l.logger.Info("liquidation complete", zap.Int("orders", len(fills)))
	return fills, nil
}
