package risk

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid margin config")

// MarginConfig controls the scenario scan. Percentages are fractions
// (0.10 = 10%).
type MarginConfig struct {
	PriceScanRangePct float64 `json:"price_scan_range_pct" yaml:"price_scan_range_pct" env:"MARGIN_PRICE_SCAN_RANGE_PCT"`
	VolScanRangePct   float64 `json:"vol_scan_range_pct" yaml:"vol_scan_range_pct" env:"MARGIN_VOL_SCAN_RANGE_PCT"`
	RiskFreeRate      float64 `json:"risk_free_rate" yaml:"risk_free_rate" env:"MARGIN_RISK_FREE_RATE"`
}

func DefaultMarginConfig() MarginConfig {
	return MarginConfig{
		PriceScanRangePct: 0.10,
		VolScanRangePct:   0.15,
		RiskFreeRate:      0.05,
	}
}

func (c MarginConfig) Validate() error {
	// A range of 1 or more puts the lowest spot scenario at or below zero.
	if math.IsNaN(c.PriceScanRangePct) || c.PriceScanRangePct < 0 || c.PriceScanRangePct >= 1 {
		return fmt.Errorf("%w: price_scan_range_pct %v must be in [0, 1)", ErrInvalidConfig, c.PriceScanRangePct)
	}
	// A range above 1 would push the low vol scenario below zero.
	if math.IsNaN(c.VolScanRangePct) || c.VolScanRangePct < 0 || c.VolScanRangePct > 1 {
		return fmt.Errorf("%w: vol_scan_range_pct %v must be between 0 and 1", ErrInvalidConfig, c.VolScanRangePct)
	}
	if math.IsNaN(c.RiskFreeRate) || math.IsInf(c.RiskFreeRate, 0) {
		return fmt.Errorf("%w: risk_free_rate %v must be finite", ErrInvalidConfig, c.RiskFreeRate)
	}
	return nil
}
