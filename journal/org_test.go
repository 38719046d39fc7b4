package journal

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCycleOrg(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := sampleCycle("01JABCDEFGHJKMNPQRSTVWXYZ0", at)
	liqs := []LiquidationRecord{{
		OrderID: "01JORDER000000000000000000", CycleID: c.CycleID, Time: at,
		PositionID: "p1", Ticker: "BTC-FUT", Side: "SELL", Quantity: 2,
	}}

	out := FormatCycleOrg(c, liqs)
	assert.True(t, strings.HasPrefix(out, "** Cycle: 01JABCDE (healthy)\n"))
	assert.Contains(t, out, ":CYCLE_ID: 01JABCDEFGHJKMNPQRSTVWXYZ0\n")
	assert.Contains(t, out, ":TIME: 2026-01-02T03:04:05Z\n")
	assert.Contains(t, out, ":MARGIN: 61000.00\n")
	assert.Contains(t, out, ":UTILIZATION: 6.11%\n")
	assert.Contains(t, out, "| p2 | BTC-DEC-96k-C | option | -42000.00 | 42000.00 |\n")
	assert.Contains(t, out, "- 2026-01-02T03:04:05Z SELL 2 BTC-FUT (p1) order 01JORDER\n")
}

func TestFormatCycleOrgInfiniteUtilization(t *testing.T) {
	t.Parallel()

	c := CycleRecord{CycleID: "c1", Status: "breach", Utilization: math.Inf(1)}
	out := FormatCycleOrg(c, nil)
	assert.Contains(t, out, ":UTILIZATION: inf\n")
	assert.NotContains(t, out, "*** Contributions")
	assert.NotContains(t, out, "*** Liquidations")
}

func TestFormatCyclesOrg(t *testing.T) {
	t.Parallel()

	out := FormatCyclesOrg([]CycleRecord{
		{CycleID: "c1", Status: "healthy"},
		{CycleID: "c2", Status: "warning"},
	})
	assert.Equal(t, 2, strings.Count(out, "** Cycle:"))
	assert.Empty(t, FormatCyclesOrg(nil))
}
