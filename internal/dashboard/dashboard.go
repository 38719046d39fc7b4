// Package dashboard renders one risk cycle as a short text block.
package dashboard

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/marginscan/market"
	"github.com/rustyeddy/marginscan/risk"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
)

// View is what the dashboard shows for one cycle.
type View struct {
	CycleID   string
	Time      time.Time
	Ticks     []market.Tick
	Account   risk.AccountSnapshot
	Decision  risk.Decision
	Positions int
}

// UtilizationColor picks green up to 80%, yellow up to 100% and red above.
func UtilizationColor(u float64) string {
	switch {
	case u > 1.0:
		return red
	case u > 0.8:
		return yellow
	default:
		return green
	}
}

func paint(s, code string, color bool) string {
	if !color {
		return s
	}
	return code + s + reset
}

func pct(u float64) string {
	if math.IsInf(u, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f%%", 100*u)
}

func Render(w io.Writer, v View, color bool) error {
	var b strings.Builder

	b.WriteString(paint("MARGINSCAN", bold, color))
	if v.CycleID != "" {
		fmt.Fprintf(&b, "  cycle %s  %s", v.CycleID, v.Time.UTC().Format(time.RFC3339))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 60) + "\n")

	for _, t := range v.Ticks {
		fmt.Fprintf(&b, "  %-16s %14.2f  vol %6.2f%%\n", t.Ticker, t.Price, 100*t.Volatility)
	}

	a := v.Account
	fmt.Fprintf(&b, "  %-16s %14.2f\n", "Balance", a.Balance)
	fmt.Fprintf(&b, "  %-16s %14.2f\n", "Unrealized P/L", a.UnrealizedPnL)
	fmt.Fprintf(&b, "  %-16s %14.2f\n", "Equity", a.Equity)
	fmt.Fprintf(&b, "  %-16s %14.2f\n", "Margin", a.Margin)
	fmt.Fprintf(&b, "  %-16s %14s\n", "Utilization",
		paint(pct(v.Decision.Utilization), UtilizationColor(v.Decision.Utilization), color))
	fmt.Fprintf(&b, "  %-16s %14d\n", "Positions", v.Positions)

	if v.Decision.Breached() {
		b.WriteString(paint("  !!! MARGIN BREACH: LIQUIDATING !!!", bold+red, color) + "\n")
	}
	for _, viol := range v.Decision.Violations {
		fmt.Fprintf(&b, "  [%s] %s\n", viol.Code, viol.Msg)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderIdle is shown when the store holds no positions.
func RenderIdle(w io.Writer, color bool) error {
	_, err := io.WriteString(w, paint("No positions. Waiting...", yellow, color)+"\n")
	return err
}
