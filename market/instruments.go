// market/instruments.go
package market

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidInstrument     = errors.New("invalid instrument")
	ErrUnknownInstrumentType = errors.New("unknown instrument type")
)

type Kind string

const (
	KindFuture Kind = "future"
	KindOption Kind = "option"
)

// Instrument is either a Future or an Option. The unexported method keeps
// the set of variants closed to this package.
type Instrument interface {
	Symbol() string
	Kind() Kind
	Validate() error
	instrument()
}

// Future is a linear instrument. It has no strike or expiry.
type Future struct {
	Ticker string
}

func (f Future) Symbol() string { return f.Ticker }
func (f Future) Kind() Kind     { return KindFuture }
func (Future) instrument()      {}

func (f Future) Validate() error {
	if f.Ticker == "" {
		return fmt.Errorf("%w: future ticker is required", ErrInvalidInstrument)
	}
	return nil
}

// Option is a European option on the underlying quoted under Ticker.
// Expiry is in years.
type Option struct {
	Ticker string
	Strike float64
	Expiry float64
	Call   bool
}

func (o Option) Symbol() string { return o.Ticker }
func (o Option) Kind() Kind     { return KindOption }
func (Option) instrument()      {}

func (o Option) Validate() error {
	if o.Ticker == "" {
		return fmt.Errorf("%w: option ticker is required", ErrInvalidInstrument)
	}
	if !(o.Strike > 0) || math.IsInf(o.Strike, 0) {
		return fmt.Errorf("%w: %s strike %v must be positive", ErrInvalidInstrument, o.Ticker, o.Strike)
	}
	if !(o.Expiry >= 0) || math.IsInf(o.Expiry, 0) {
		return fmt.Errorf("%w: %s expiry %v must be >= 0", ErrInvalidInstrument, o.Ticker, o.Expiry)
	}
	return nil
}

// Right returns "C" or "P".
func (o Option) Right() string {
	if o.Call {
		return "C"
	}
	return "P"
}
