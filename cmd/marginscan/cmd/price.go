package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marginscan/pricing"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price a European option with Black-Scholes",
	Long: `Print the Black-Scholes price, delta, gamma and vega of a single option.
Vega is per one volatility point.

Example:
  marginscan price --spot 95000 --strike 96000 --expiry 0.1 --vol 0.5`,
	Args: cobra.NoArgs,
	RunE: runPrice,
}

var (
	priceSpot   float64
	priceStrike float64
	priceExpiry float64
	priceRate   float64
	priceVol    float64
	pricePut    bool
)

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().Float64Var(&priceSpot, "spot", 0, "underlying price (required)")
	priceCmd.Flags().Float64Var(&priceStrike, "strike", 0, "strike price (required)")
	priceCmd.Flags().Float64Var(&priceExpiry, "expiry", 0, "time to expiry in years")
	priceCmd.Flags().Float64Var(&priceRate, "rate", 0.05, "continuously compounded risk-free rate")
	priceCmd.Flags().Float64Var(&priceVol, "vol", 0, "annualised volatility (required)")
	priceCmd.Flags().BoolVar(&pricePut, "put", false, "price a put instead of a call")
	priceCmd.MarkFlagRequired("spot")
	priceCmd.MarkFlagRequired("strike")
	priceCmd.MarkFlagRequired("vol")
}

func runPrice(cmd *cobra.Command, args []string) error {
	call := !pricePut
	p, err := pricing.Price(priceSpot, priceStrike, priceExpiry, priceRate, priceVol, call)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}
	g, err := pricing.ComputeGreeks(priceSpot, priceStrike, priceExpiry, priceRate, priceVol, call)
	if err != nil {
		return fmt.Errorf("greeks: %w", err)
	}

	right := "call"
	if pricePut {
		right = "put"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s S=%.2f K=%.2f T=%.4f r=%.4f vol=%.4f\n",
		right, priceSpot, priceStrike, priceExpiry, priceRate, priceVol)
	fmt.Fprintf(out, "  Price: %.4f\n", p)
	fmt.Fprintf(out, "  Delta: %.6f\n", g.Delta)
	fmt.Fprintf(out, "  Gamma: %.8f\n", g.Gamma)
	fmt.Fprintf(out, "  Vega:  %.6f\n", g.Vega)
	return nil
}
