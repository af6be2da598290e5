package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// items, ledger_entries and the item_count setting are append-only: rows are
// never deleted, and items only ever move forward through their statuses.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS wallets (
    user_id    INTEGER PRIMARY KEY REFERENCES users(id),
    balance    INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY,
    owner_id    INTEGER NOT NULL REFERENCES users(id),
    description TEXT NOT NULL CHECK (description <> ''),
    location    TEXT NOT NULL CHECK (location <> ''),
    reward      INTEGER NOT NULL CHECK (reward >= 0),
    escrow      INTEGER NOT NULL CHECK (escrow >= 0 AND escrow <= reward),
    status      TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'found_reported', 'resolved')),
    finder_id   INTEGER REFERENCES users(id),
    image       BLOB,
    image_mime  TEXT,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    found_at    DATETIME,
    resolved_at DATETIME,
    CHECK ((status = 'open') = (finder_id IS NULL)),
    CHECK (finder_id IS NULL OR finder_id <> owner_id)
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    id         INTEGER PRIMARY KEY,
    op_id      TEXT NOT NULL,
    item_id    INTEGER REFERENCES items(id),
    account    TEXT NOT NULL,
    kind       TEXT NOT NULL,
    delta      INTEGER NOT NULL CHECK (delta <> 0),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_item ON ledger_entries(item_id);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries(account);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

INSERT OR IGNORE INTO settings (key, value) VALUES ('item_count', '0');
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
