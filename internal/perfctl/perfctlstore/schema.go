// Copyright 2026 Peter Edge
//
// All rights reserved.

package perfctlstore

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	source TEXT NOT NULL,
	format TEXT NOT NULL,
	low_confidence INTEGER NOT NULL,
	trade_count INTEGER NOT NULL,
	imported_at TEXT NOT NULL,
	summary_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	open_time TEXT NOT NULL,
	deal_id TEXT NOT NULL,
	order_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	type TEXT NOT NULL,
	direction TEXT NOT NULL,
	side TEXT NOT NULL,
	volume REAL NOT NULL,
	price REAL NOT NULL,
	stop_loss REAL,
	take_profit REAL,
	commission REAL NOT NULL,
	swap REAL NOT NULL,
	profit REAL NOT NULL,
	balance REAL,
	comment TEXT NOT NULL,
	time_fallback INTEGER NOT NULL,
	PRIMARY KEY (report_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
	report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	time TEXT NOT NULL,
	balance REAL NOT NULL,
	PRIMARY KEY (report_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(report_id, symbol);
`
