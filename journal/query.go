package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const cycleColumns = `cycle_id, time, balance, unrealized_pl, equity, margin, utilization, status, positions`

type scanner interface {
	Scan(dest ...any) error
}

func scanCycle(s scanner) (CycleRecord, error) {
	var rec CycleRecord
	err := s.Scan(
		&rec.CycleID,
		&rec.Time,
		&rec.Balance,
		&rec.UnrealizedPnL,
		&rec.Equity,
		&rec.Margin,
		&rec.Utilization,
		&rec.Status,
		&rec.Positions,
	)
	return rec, err
}

// GetCycle returns a cycle with its contributions.
func (j *SQLite) GetCycle(cycleID string) (CycleRecord, error) {
	row := j.db.QueryRow(`SELECT `+cycleColumns+` FROM cycles WHERE cycle_id = ?`, cycleID)
	rec, err := scanCycle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CycleRecord{}, fmt.Errorf("cycle %q not found", cycleID)
		}
		return CycleRecord{}, err
	}

	rows, err := j.db.Query(`
		SELECT position_id, ticker, kind, worst_pnl, margin
		FROM contributions
		WHERE cycle_id = ?
		ORDER BY rowid ASC`, cycleID)
	if err != nil {
		return CycleRecord{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var c ContributionRecord
		if err := rows.Scan(&c.PositionID, &c.Ticker, &c.Kind, &c.WorstPnL, &c.Margin); err != nil {
			return CycleRecord{}, err
		}
		rec.Contributions = append(rec.Contributions, c)
	}
	if err := rows.Err(); err != nil {
		return CycleRecord{}, err
	}
	return rec, nil
}

// ListCycles returns up to limit cycles, newest first, without
// contributions. limit <= 0 returns all.
func (j *SQLite) ListCycles(limit int) ([]CycleRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(`
		SELECT `+cycleColumns+`
		FROM cycles
		ORDER BY time DESC, cycle_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CycleRecord
	for rows.Next() {
		rec, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListLiquidations returns the orders sent in cycleID, or every order when
// cycleID is empty, oldest first.
func (j *SQLite) ListLiquidations(cycleID string) ([]LiquidationRecord, error) {
	q := `
		SELECT order_id, cycle_id, time, position_id, ticker, side, quantity, reason
		FROM liquidations`
	var args []any
	if cycleID != "" {
		q += ` WHERE cycle_id = ?`
		args = append(args, cycleID)
	}
	q += ` ORDER BY time ASC, order_id ASC`

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LiquidationRecord
	for rows.Next() {
		var l LiquidationRecord
		if err := rows.Scan(&l.OrderID, &l.CycleID, &l.Time, &l.PositionID, &l.Ticker, &l.Side, &l.Quantity, &l.Reason); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
