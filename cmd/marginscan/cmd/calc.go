package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marginscan/internal/dashboard"
	"github.com/rustyeddy/marginscan/market"
	"github.com/rustyeddy/marginscan/risk"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute scenario margin for a portfolio file",
	Long: `Load positions and market ticks from a YAML or JSON file and print the
margin requirement with a per-position breakdown. When the file (or --equity)
provides an account balance the unrealized P/L, equity and utilization are
shown as well.

Example:
  marginscan calc -f portfolio.yaml`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

var (
	calcFile    string
	calcEquity  float64
	calcWorkers int
)

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().StringVarP(&calcFile, "file", "f", "", "portfolio file (required)")
	calcCmd.Flags().Float64Var(&calcEquity, "equity", 0, "account balance; overrides the portfolio file")
	calcCmd.Flags().IntVar(&calcWorkers, "workers", 1, "positions scanned concurrently")
	calcCmd.MarkFlagRequired("file")
}

func runCalc(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pf, err := market.LoadPortfolio(calcFile)
	if err != nil {
		return err
	}
	positions, snap, err := pf.Decode()
	if err != nil {
		return fmt.Errorf("decode portfolio: %w", err)
	}

	engine := risk.NewEngine(cfg.Margin, risk.WithWorkers(calcWorkers))
	res, err := engine.CalculateMargin(positions, snap)
	if err != nil {
		return fmt.Errorf("calculate margin: %w", err)
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "POSITION\tTICKER\tKIND\tQTY\tWORST P/L\tMARGIN\t")
	for i, c := range res.Contributions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t\n",
			c.PositionID, c.Ticker, c.Kind, positions[i].Quantity, c.WorstPnL, c.Margin)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal margin: $%.2f\n", res.Total)

	equity := pf.Equity
	if cmd.Flags().Changed("equity") {
		equity = calcEquity
	}
	if equity == 0 {
		return nil
	}

	unrealized, err := risk.UnrealizedPnL(positions, snap, cfg.Margin.RiskFreeRate)
	if err != nil {
		return fmt.Errorf("unrealized p/l: %w", err)
	}
	acct := risk.NewAccountSnapshot(equity, unrealized, res.Total)
	fmt.Fprintln(out)
	return dashboard.Render(out, dashboard.View{
		Ticks:     snap.Ticks(),
		Account:   acct,
		Decision:  risk.Assess(cfg.Risk.Policy(), acct),
		Positions: len(positions),
	}, !noColor && isTerminal(out))
}
