package broker

import (
	"context"
	"time"
)

type Side string

const (
	Sell       Side = "SELL"
	BuyToCover Side = "BUY_TO_COVER"
)

type Broker interface {
	SubmitMarketOrder(ctx context.Context, o Order) (Fill, error)
}

// Order is a market order sized in whole contracts.
type Order struct {
	PositionID string
	Ticker     string
	Side       Side
	Quantity   int64 // always positive
	Reason     string
}

type Fill struct {
	OrderID string
	Order
	Time time.Time
}
