// Package sqlite implements the repositories on an embedded SQLite database.
// It backs single-node deployments and the repository tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ArowuTest/memebox-backend/internal/repositories"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id    TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	body       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS accounts (
	owner      TEXT NOT NULL,
	asset      TEXT NOT NULL,
	balance    INTEGER NOT NULL CHECK (balance >= 0),
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (owner, asset)
);
CREATE TABLE IF NOT EXISTS transfers (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	asset      TEXT NOT NULL,
	from_owner TEXT NOT NULL,
	to_owner   TEXT NOT NULL,
	amount     INTEGER NOT NULL,
	game_id    TEXT NOT NULL DEFAULT '',
	box_index  INTEGER,
	reference  TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS transfers_from_idx ON transfers (from_owner, created_at);
CREATE INDEX IF NOT EXISTS transfers_to_idx ON transfers (to_owner, created_at);
CREATE INDEX IF NOT EXISTS transfers_game_idx ON transfers (game_id, created_at);
CREATE TABLE IF NOT EXISTS settlements (
	id                 TEXT PRIMARY KEY,
	game_id            TEXT NOT NULL,
	box_index          INTEGER NOT NULL,
	label              TEXT NOT NULL,
	claimant           TEXT NOT NULL,
	contributor_amount INTEGER NOT NULL,
	share              INTEGER NOT NULL,
	pool_asset         TEXT NOT NULL,
	payout_asset       TEXT NOT NULL,
	payout_amount      INTEGER NOT NULL,
	swapped            INTEGER NOT NULL,
	box_drained        INTEGER NOT NULL,
	status             TEXT NOT NULL DEFAULT 'COMPLETED',
	swap_reference     TEXT NOT NULL DEFAULT '',
	settled_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS settlements_game_idx ON settlements (game_id, settled_at);
CREATE INDEX IF NOT EXISTS settlements_claimant_idx ON settlements (claimant);
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	email        TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL,
	password     TEXT NOT NULL,
	role         TEXT NOT NULL,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
`

// Open opens (creating if needed) the database at path and applies the
// schema. ":memory:" gives a private in-memory database.
func Open(path string) (*repositories.Store, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// OpenDB opens the database at path and applies the schema.
func OpenDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// columnMigrations adds columns introduced after a table was first created.
var columnMigrations = []struct {
	table, column, ddl string
}{
	{"settlements", "status", `ALTER TABLE settlements ADD COLUMN status TEXT NOT NULL DEFAULT 'COMPLETED'`},
	{"settlements", "swap_reference", `ALTER TABLE settlements ADD COLUMN swap_reference TEXT NOT NULL DEFAULT ''`},
}

func migrate(db *sql.DB) error {
	for _, m := range columnMigrations {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, m.table, m.column).Scan(&n)
		if err != nil {
			return fmt.Errorf("failed to inspect %s.%s: %w", m.table, m.column, err)
		}
		if n > 0 {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", m.table, m.column, err)
		}
	}
	return nil
}

// NewStore wires every SQLite repository on db.
func NewStore(db *sql.DB) *repositories.Store {
	return &repositories.Store{
		Games:       NewGameRepository(db),
		Accounts:    NewAccountRepository(db),
		Transfers:   NewTransferRepository(db),
		Settlements: NewSettlementRepository(db),
		Users:       NewUserRepository(db),
		Close: func(context.Context) error {
			return db.Close()
		},
	}
}

func unixNano(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
