package market

import "fmt"

type Side int

const (
	Flat  Side = 0
	Long  Side = 1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// Position is a signed holding of one instrument. Positive quantity is long,
// negative is short. Zero is allowed and carries no risk.
type Position struct {
	ID         string
	Instrument Instrument
	Quantity   int64
	EntryPrice float64
}

// Ticker returns the ticker the position is marked against.
func (p Position) Ticker() string {
	if p.Instrument == nil {
		return ""
	}
	return p.Instrument.Symbol()
}

// Key identifies the position in breakdowns and stores. It falls back to the
// ticker when no ID was assigned.
func (p Position) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Ticker()
}

func (p Position) Side() Side {
	switch {
	case p.Quantity > 0:
		return Long
	case p.Quantity < 0:
		return Short
	default:
		return Flat
	}
}

func (p Position) Validate() error {
	if p.Instrument == nil {
		return fmt.Errorf("%w: position %q has no instrument", ErrInvalidInstrument, p.ID)
	}
	return p.Instrument.Validate()
}
