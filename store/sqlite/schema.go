package sqlite

// Every collection keeps the full document as JSON in doc. The other
// columns are copies of the fields queries filter or sort on.
const Schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS journal (
	id TEXT PRIMARY KEY,
	date INTEGER NOT NULL,
	account_id TEXT NOT NULL DEFAULT '',
	instrument_id TEXT NOT NULL DEFAULT '',
	strategy_id TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	doc TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_date ON journal(date);
CREATE INDEX IF NOT EXISTS idx_journal_account ON journal(account_id);
CREATE INDEX IF NOT EXISTS idx_journal_instrument ON journal(instrument_id);
CREATE INDEX IF NOT EXISTS idx_journal_strategy ON journal(strategy_id);

CREATE TABLE IF NOT EXISTS instruments (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS strategies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	doc TEXT NOT NULL
);
`
