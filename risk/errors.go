package risk

import (
	"errors"
	"fmt"
)

var ErrMissingMarketData = errors.New("missing market data")

// MissingMarketDataError reports a held position whose ticker has no tick in
// the snapshot. It matches ErrMissingMarketData with errors.Is.
type MissingMarketDataError struct {
	Ticker     string
	PositionID string
}

func (e *MissingMarketDataError) Error() string {
	if e.PositionID != "" && e.PositionID != e.Ticker {
		return fmt.Sprintf("missing market data for %s (position %s)", e.Ticker, e.PositionID)
	}
	return fmt.Sprintf("missing market data for %s", e.Ticker)
}

func (e *MissingMarketDataError) Is(target error) bool {
	return target == ErrMissingMarketData
}

// MissingTickers returns every ticker reported by a MissingMarketDataError
// inside err, following both single and joined wrapping.
func MissingTickers(err error) []string {
	switch e := err.(type) {
	case nil:
		return nil
	case *MissingMarketDataError:
		return []string{e.Ticker}
	case interface{ Unwrap() []error }:
		var out []string
		for _, inner := range e.Unwrap() {
			out = append(out, MissingTickers(inner)...)
		}
		return out
	default:
		return MissingTickers(errors.Unwrap(err))
	}
}
