// journal/journal.go
package journal

import "time"

// CycleRecord is one evaluation of the risk loop.
type CycleRecord struct {
	CycleID       string
	Time          time.Time
	Balance       float64
	UnrealizedPnL float64
	Equity        float64
	Margin        float64
	Utilization   float64
	Status        string
	Positions     int
	Contributions []ContributionRecord
}

type ContributionRecord struct {
	PositionID string
	Ticker     string
	Kind       string
	WorstPnL   float64
	Margin     float64
}

// LiquidationRecord is one order sent to flatten a position.
type LiquidationRecord struct {
	OrderID    string
	CycleID    string
	Time       time.Time
	PositionID string
	Ticker     string
	Side       string
	Quantity   int64
	Reason     string
}

type Journal interface {
	RecordCycle(CycleRecord) error
	RecordLiquidation(LiquidationRecord) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordCycle(CycleRecord) error             { return nil }
func (Nop) RecordLiquidation(LiquidationRecord) error { return nil }
func (Nop) Close() error                              { return nil }
