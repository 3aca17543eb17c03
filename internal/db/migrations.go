package db

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS markets (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    outcome_type TEXT NOT NULL,
    creator_id TEXT NOT NULL,
    created_time INTEGER NOT NULL,
    close_time INTEGER NOT NULL,
    url TEXT NOT NULL,
    first_seen_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS bot_bets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    market_id TEXT NOT NULL REFERENCES markets(id),
    strategy TEXT NOT NULL,
    outcome TEXT NOT NULL,
    amount REAL NOT NULL,
    estimated_prob REAL NOT NULL,
    market_prob_at_bet REAL NOT NULL,
    confidence REAL NOT NULL,
    provider_bet_id TEXT,
    placed_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_bets_strategy ON bot_bets(strategy);
CREATE INDEX IF NOT EXISTS idx_bets_market ON bot_bets(market_id);

CREATE TABLE IF NOT EXISTS bankroll_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bankroll REAL NOT NULL,
    wagered REAL NOT NULL,
    snapshot_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`
