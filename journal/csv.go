package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes cycles and liquidations to two files. Contributions are not
// written.
type CSV struct {
	cycles       *csv.Writer
	liquidations *csv.Writer
	cf, lf       *os.File
}

var (
	cycleHeader       = []string{"cycle_id", "time", "balance", "unrealized_pl", "equity", "margin", "utilization", "status", "positions"}
	liquidationHeader = []string{"order_id", "cycle_id", "time", "position_id", "ticker", "side", "quantity", "reason"}
)

func NewCSV(cyclesPath, liquidationsPath string) (*CSV, error) {
	cf, err := os.Create(cyclesPath)
	if err != nil {
		return nil, err
	}
	lf, err := os.Create(liquidationsPath)
	if err != nil {
		_ = cf.Close()
		return nil, err
	}

	j := &CSV{csv.NewWriter(cf), csv.NewWriter(lf), cf, lf}
	if err := j.write(j.cycles, cycleHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.write(j.liquidations, liquidationHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSV) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) RecordCycle(c CycleRecord) error {
	return j.write(j.cycles, []string{
		c.CycleID,
		c.Time.Format(time.RFC3339Nano),
		f(c.Balance),
		f(c.UnrealizedPnL),
		f(c.Equity),
		f(c.Margin),
		f(c.Utilization),
		c.Status,
		strconv.Itoa(c.Positions),
	})
}

func (j *CSV) RecordLiquidation(l LiquidationRecord) error {
	return j.write(j.liquidations, []string{
		l.OrderID,
		l.CycleID,
		l.Time.Format(time.RFC3339Nano),
		l.PositionID,
		l.Ticker,
		l.Side,
		strconv.FormatInt(l.Quantity, 10),
		l.Reason,
	})
}

func (j *CSV) Close() error {
	j.cycles.Flush()
	if err := j.cycles.Error(); err != nil {
		return err
	}
	j.liquidations.Flush()
	if err := j.liquidations.Error(); err != nil {
		return err
	}

	if err := j.cf.Close(); err != nil {
		return err
	}
	return j.lf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
