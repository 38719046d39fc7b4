package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/marginscan/internal/id"
)

// PaperBroker acknowledges every order without routing it anywhere. Each
// order is logged and kept for inspection.
type PaperBroker struct {
	mu     sync.Mutex
	logger *zap.Logger
	fills  []Fill
	now    func() time.Time
}

func NewPaper(logger *zap.Logger) *PaperBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaperBroker{logger: logger, now: time.Now}
}

func (b *PaperBroker) SubmitMarketOrder(ctx context.Context, o Order) (Fill, error) {
	if err := ctx.Err(); err != nil {
		return Fill{}, err
	}
	if o.Quantity <= 0 {
		return Fill{}, fmt.Errorf("submit order: quantity %d must be positive", o.Quantity)
	}
	if o.Side != Sell && o.Side != BuyToCover {
		return Fill{}, fmt.Errorf("submit order: unknown side %q", o.Side)
	}
	if o.Ticker == "" {
		return Fill{}, errors.New("submit order: ticker is required")
	}

	f := Fill{OrderID: id.New(), Order: o, Time: b.now()}

	b.mu.Lock()
	b.fills = append(b.fills, f)
	b.mu.Unlock()

	b.logger.Info("order sent",
		zap.String("order_id", f.OrderID),
		zap.String("side", string(o.Side)),
		zap.Int64("quantity", o.Quantity),
		zap.String("ticker", o.Ticker),
		zap.String("type", "MARKET"),
	)
	return f, nil
}

// Fills returns a copy of every acknowledged order.
func (b *PaperBroker) Fills() []Fill {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Fill(nil), b.fills...)
}
