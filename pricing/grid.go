package pricing

// Grid holds option values over a spots x vols cross product. Row i is
// vols[i], column j is spots[j].
type Grid struct {
	Spots  []float64
	Vols   []float64
	Values [][]float64
}

func (g Grid) Rows() int { return len(g.Vols) }
func (g Grid) Cols() int { return len(g.Spots) }

func (g Grid) At(i, j int) float64 { return g.Values[i][j] }

// Min returns the smallest value and its (vol, spot) coordinates. An empty
// grid returns (0, -1, -1).
func (g Grid) Min() (v float64, i, j int) {
	i, j = -1, -1
	for r, row := range g.Values {
		for c, x := range row {
			if i < 0 || x < v {
				v, i, j = x, r, c
			}
		}
	}
	return v, i, j
}

// PriceGrid prices the option at every (vol, spot) pair.
func PriceGrid(spots, vols []float64, strike, expiry, rate float64, call bool) (Grid, error) {
	g := Grid{
		Spots:  spots,
		Vols:   vols,
		Values: make([][]float64, len(vols)),
	}
	for i := range g.Values {
		g.Values[i] = make([]float64, len(spots))
	}
	err := eachPoint(spots, vols, strike, expiry, rate, func(i, j int, s, v, t float64) {
		g.Values[i][j] = price(s, strike, t, rate, v, call)
	})
	if err != nil {
		return Grid{}, err
	}
	return g, nil
}

// GreeksGrid is PriceGrid for sensitivities.
func GreeksGrid(spots, vols []float64, strike, expiry, rate float64, call bool) ([][]Greeks, error) {
	out := make([][]Greeks, len(vols))
	for i := range out {
		out[i] = make([]Greeks, len(spots))
	}
	err := eachPoint(spots, vols, strike, expiry, rate, func(i, j int, s, v, t float64) {
		out[i][j] = greeks(s, strike, t, rate, v, call)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// eachPoint validates every grid point before calling fn on any of them.
func eachPoint(spots, vols []float64, strike, expiry, rate float64, fn func(i, j int, spot, vol, expiry float64)) error {
	for _, v := range vols {
		for _, s := range spots {
			if err := validate(s, strike, expiry, rate, v); err != nil {
				return err
			}
		}
	}
	t := clampExpiry(expiry)
	for i, v := range vols {
		for j, s := range spots {
			fn(i, j, s, v, t)
		}
	}
	return nil
}
