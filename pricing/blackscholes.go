// Package pricing implements the Black-Scholes closed form for European
// options and its first-order sensitivities. Every function is pure.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MinExpiry is the floor applied to time to expiry (in years) before pricing.
// Expiries in [0, MinExpiry) are priced as MinExpiry so d1 stays finite as an
// option approaches expiry. Negative expiries are rejected, not clamped.
const MinExpiry = 1e-5

var ErrInvalidInput = errors.New("invalid pricing input")

// Greeks are reported per unit of spot (Delta, Gamma) and per one
// volatility point (Vega).
type Greeks struct {
	Delta float64 `json:"delta" yaml:"delta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
	Vega  float64 `json:"vega" yaml:"vega"`
}

// Price returns the Black-Scholes value of a European call or put.
//
//	spot:   underlying price, > 0
//	strike: strike price, > 0
//	expiry: time to expiry in years, >= 0 (floored at MinExpiry)
//	rate:   continuously compounded risk-free rate
//	vol:    annualised volatility, >= 0
func Price(spot, strike, expiry, rate, vol float64, call bool) (float64, error) {
	if err := validate(spot, strike, expiry, rate, vol); err != nil {
		return 0, err
	}
	return price(spot, strike, clampExpiry(expiry), rate, vol, call), nil
}

// ComputeGreeks returns delta, gamma and vega for the same inputs as Price.
func ComputeGreeks(spot, strike, expiry, rate, vol float64, call bool) (Greeks, error) {
	if err := validate(spot, strike, expiry, rate, vol); err != nil {
		return Greeks{}, err
	}
	return greeks(spot, strike, clampExpiry(expiry), rate, vol, call), nil
}

func validate(spot, strike, expiry, rate, vol float64) error {
	switch {
	case !finite(spot) || spot <= 0:
		return fmt.Errorf("%w: spot %v must be positive", ErrInvalidInput, spot)
	case !finite(strike) || strike <= 0:
		return fmt.Errorf("%w: strike %v must be positive", ErrInvalidInput, strike)
	case !finite(expiry) || expiry < 0:
		return fmt.Errorf("%w: expiry %v must be >= 0", ErrInvalidInput, expiry)
	case !finite(vol) || vol < 0:
		return fmt.Errorf("%w: volatility %v must be >= 0", ErrInvalidInput, vol)
	case !finite(rate):
		return fmt.Errorf("%w: rate %v must be finite", ErrInvalidInput, rate)
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func clampExpiry(t float64) float64 {
	return math.Max(t, MinExpiry)
}

// d1 = [ln(S/K) + (r + sigma^2/2)T] / (sigma * sqrt(T))
func d1(spot, strike, expiry, rate, vol float64) float64 {
	return (math.Log(spot/strike) + (rate+0.5*vol*vol)*expiry) / (vol * math.Sqrt(expiry))
}

func price(spot, strike, expiry, rate, vol float64, call bool) float64 {
	disc := strike * math.Exp(-rate*expiry)

	// sigma == 0: the distribution collapses onto the forward.
	if vol == 0 {
		if call {
			return math.Max(spot-disc, 0)
		}
		return math.Max(disc-spot, 0)
	}

	a := d1(spot, strike, expiry, rate, vol)
	b := a - vol*math.Sqrt(expiry)
	if call {
		return spot*distuv.UnitNormal.CDF(a) - disc*distuv.UnitNormal.CDF(b)
	}
	return disc*distuv.UnitNormal.CDF(-b) - spot*distuv.UnitNormal.CDF(-a)
}

func greeks(spot, strike, expiry, rate, vol float64, call bool) Greeks {
	if vol == 0 {
		disc := strike * math.Exp(-rate*expiry)
		var delta float64
		switch {
		case spot > disc:
			delta = 1
		case spot == disc:
			delta = 0.5
		}
		if !call {
			delta--
		}
		return Greeks{Delta: delta}
	}

	a := d1(spot, strike, expiry, rate, vol)
	sqrtT := math.Sqrt(expiry)
	pdf := distuv.UnitNormal.Prob(a)

	delta := distuv.UnitNormal.CDF(a)
	if !call {
		delta--
	}
	return Greeks{
		Delta: delta,
		Gamma: pdf / (spot * vol * sqrtT),
		Vega:  spot * pdf * sqrtT / 100,
	}
}
