package journal

const Schema = `
CREATE TABLE IF NOT EXISTS users (
	account_id INTEGER NOT NULL UNIQUE,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	account_id INTEGER NOT NULL,
	created TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	position_id TEXT NOT NULL UNIQUE,
	run_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	direction TEXT NOT NULL,
	units TEXT NOT NULL,
	open_price TEXT NOT NULL,
	open_at TEXT NOT NULL,
	close_price TEXT,
	close_at TEXT,
	status TEXT NOT NULL,
	profit TEXT
);

CREATE INDEX IF NOT EXISTS idx_positions_run ON positions(run_id);
`
