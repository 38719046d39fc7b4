package journal

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatCycleOrg renders a cycle as an Org-mode block. Contributions and
// liquidations are listed under their own headings when present.
func FormatCycleOrg(c CycleRecord, liqs []LiquidationRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("** Cycle: %s (%s)\n", shortID(c.CycleID), c.Status))
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":CYCLE_ID: %s\n", c.CycleID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", c.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":BALANCE: %.2f\n", c.Balance))
	b.WriteString(fmt.Sprintf(":UNREALIZED_PL: %.2f\n", c.UnrealizedPnL))
	b.WriteString(fmt.Sprintf(":EQUITY: %.2f\n", c.Equity))
	b.WriteString(fmt.Sprintf(":MARGIN: %.2f\n", c.Margin))
	b.WriteString(fmt.Sprintf(":UTILIZATION: %s\n", utilization(c.Utilization)))
	b.WriteString(fmt.Sprintf(":POSITIONS: %d\n", c.Positions))
	b.WriteString(":END:\n")

	if len(c.Contributions) > 0 {
		b.WriteString("\n*** Contributions\n")
		b.WriteString("| position | ticker | kind | worst P/L | margin |\n")
		b.WriteString("|-\n")
		for _, pc := range c.Contributions {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f |\n",
				pc.PositionID, pc.Ticker, pc.Kind, pc.WorstPnL, pc.Margin))
		}
	}

	if len(liqs) > 0 {
		b.WriteString("\n*** Liquidations\n")
		for _, l := range liqs {
			b.WriteString(fmt.Sprintf("- %s %s %d %s (%s) order %s\n",
				l.Time.UTC().Format(time.RFC3339), l.Side, l.Quantity, l.Ticker, l.PositionID, shortID(l.OrderID)))
		}
	}

	return b.String()
}

// FormatCyclesOrg renders multiple cycles separated by blank lines.
func FormatCyclesOrg(cycles []CycleRecord) string {
	var b strings.Builder
	for i, c := range cycles {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatCycleOrg(c, nil))
	}
	return b.String()
}

func utilization(u float64) string {
	if math.IsInf(u, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f%%", 100*u)
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
