package market

import "fmt"

// PositionRecord is the flat encoding of a Position used by stores and
// portfolio files.
type PositionRecord struct {
	ID         string  `json:"id,omitempty" yaml:"id,omitempty"`
	Ticker     string  `json:"ticker" yaml:"ticker"`
	Type       Kind    `json:"type" yaml:"type"`
	Strike     float64 `json:"strike,omitempty" yaml:"strike,omitempty"`
	Expiry     float64 `json:"expiry,omitempty" yaml:"expiry,omitempty"`
	IsCall     bool    `json:"is_call,omitempty" yaml:"is_call,omitempty"`
	Quantity   int64   `json:"quantity" yaml:"quantity"`
	EntryPrice float64 `json:"entry_price" yaml:"entry_price"`
}

// ToPosition decodes the record, rejecting combinations the tagged
// Instrument cannot represent.
func (r PositionRecord) ToPosition() (Position, error) {
	var inst Instrument
	switch r.Type {
	case KindFuture:
		if r.Strike != 0 || r.Expiry != 0 || r.IsCall {
			return Position{}, fmt.Errorf("%w: future %s must not carry option fields", ErrInvalidInstrument, r.Ticker)
		}
		inst = Future{Ticker: r.Ticker}
	case KindOption:
		inst = Option{Ticker: r.Ticker, Strike: r.Strike, Expiry: r.Expiry, Call: r.IsCall}
	default:
		return Position{}, fmt.Errorf("%w: %q", ErrUnknownInstrumentType, r.Type)
	}

	p := Position{
		ID:         r.ID,
		Instrument: inst,
		Quantity:   r.Quantity,
		EntryPrice: r.EntryPrice,
	}
	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	return p, nil
}

// RecordOf encodes p.
func RecordOf(p Position) PositionRecord {
	r := PositionRecord{
		ID:         p.ID,
		Ticker:     p.Ticker(),
		Quantity:   p.Quantity,
		EntryPrice: p.EntryPrice,
	}
	switch inst := p.Instrument.(type) {
	case Future:
		r.Type = KindFuture
	case Option:
		r.Type = KindOption
		r.Strike = inst.Strike
		r.Expiry = inst.Expiry
		r.IsCall = inst.Call
	}
	return r
}
