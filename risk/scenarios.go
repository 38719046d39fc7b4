package risk

// PriceLadder is the ordered set of relative price shocks, as multiples of
// PriceScanRangePct. Interior points are kept because option convexity can
// put the worst loss inside the range.
var PriceLadder = [...]float64{-1.0, -0.67, -0.33, 0.0, 0.33, 0.67, 1.0}

// PriceScenarios returns price * (1 + offset*rangePct) for each ladder offset.
func PriceScenarios(price, rangePct float64) []float64 {
	out := make([]float64, len(PriceLadder))
	for i, off := range PriceLadder {
		out[i] = price + price*rangePct*off
	}
	return out
}

// VolScenarios returns the low and high volatility shocks.
func VolScenarios(vol, rangePct float64) []float64 {
	shift := vol * rangePct
	return []float64{vol - shift, vol + shift}
}
