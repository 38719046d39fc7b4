package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marginscan/market"
	"github.com/rustyeddy/marginscan/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reset the store and load the demo portfolio",
	Long: `Clear the configured position store and load a mock portfolio:

  BTC-FUT         long 2 @ 95000
  BTC-DEC-96k-C   short 5 calls (K=96000, T=0.1y) @ 2500

The account balance is set to risk.initial_equity.

Example:
  marginscan seed -c marginscan.yaml`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func demoPortfolio() []market.Position {
	return []market.Position{
		{
			Instrument: market.Future{Ticker: "BTC-FUT"},
			Quantity:   2,
			EntryPrice: 95000,
		},
		{
			Instrument: market.Option{Ticker: "BTC-DEC-96k-C", Strike: 96000, Expiry: 0.1, Call: true},
			Quantity:   -5,
			EntryPrice: 2500,
		},
	}
}

// seedPortfolio replaces whatever s holds with the demo portfolio.
func seedPortfolio(ctx context.Context, s store.Store, equity float64) ([]market.Position, error) {
	if err := s.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}
	var out []market.Position
	for _, p := range demoPortfolio() {
		added, err := s.AddPosition(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("add position %s: %w", p.Ticker(), err)
		}
		out = append(out, added)
	}
	if err := s.SetEquity(ctx, equity); err != nil {
		return nil, fmt.Errorf("set equity: %w", err)
	}
	return out, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	positions, err := seedPortfolio(ctx, s, cfg.Risk.InitialEquity)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Seeded %d positions into %s store\n", len(positions), cfg.Store.Type)
	for _, p := range positions {
		fmt.Fprintf(out, "  %-26s %-14s %+d @ %.2f\n", p.Key(), p.Ticker(), p.Quantity, p.EntryPrice)
	}
	fmt.Fprintf(out, "  Equity: $%.2f\n", cfg.Risk.InitialEquity)
	return nil
}
