// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS cycles (
	cycle_id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	unrealized_pl REAL NOT NULL,
	equity REAL NOT NULL,
	margin REAL NOT NULL,
	utilization REAL NOT NULL,
	status TEXT NOT NULL,
	positions INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS contributions (
	cycle_id TEXT NOT NULL REFERENCES cycles(cycle_id),
	position_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	kind TEXT NOT NULL,
	worst_pnl REAL NOT NULL,
	margin REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS liquidations (
	order_id TEXT PRIMARY KEY,
	cycle_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	position_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cycles_time ON cycles(time);
CREATE INDEX IF NOT EXISTS idx_contributions_cycle ON contributions(cycle_id);
CREATE INDEX IF NOT EXISTS idx_liquidations_cycle ON liquidations(cycle_id);
`
