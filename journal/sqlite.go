package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordCycle writes the cycle and its contributions in one transaction.
func (j *SQLite) RecordCycle(c CycleRecord) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO cycles
		(cycle_id, time, balance, unrealized_pl, equity, margin, utilization, status, positions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CycleID, c.Time, c.Balance, c.UnrealizedPnL, c.Equity,
		c.Margin, c.Utilization, c.Status, c.Positions,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	for _, pc := range c.Contributions {
		_, err = tx.Exec(`
			INSERT INTO contributions
			(cycle_id, position_id, ticker, kind, worst_pnl, margin)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.CycleID, pc.PositionID, pc.Ticker, pc.Kind, pc.WorstPnL, pc.Margin,
		)
		if err != nil {
			return fmt.Errorf("insert contribution: %w", err)
		}
	}

	return tx.Commit()
}

func (j *SQLite) RecordLiquidation(l LiquidationRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO liquidations
		(order_id, cycle_id, time, position_id, ticker, side, quantity, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.OrderID, l.CycleID, l.Time, l.PositionID, l.Ticker, l.Side, l.Quantity, l.Reason,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
