package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the SQLite database at path, creating its directory and the
// schema when missing. ":memory:" opens a private in-memory database.
func InitDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// an in-memory database lives only as long as its one connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createSchema(db *sql.DB) error {
	tables := []struct {
		name string
		ddl  string
	}{
		{"users", `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`},
		{"transactions", `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		asset_symbol TEXT NOT NULL,
		quantity REAL NOT NULL,
		buy_date_time DATETIME NOT NULL,
		buy_price_per_unit REAL NOT NULL,
		buy_currency TEXT NOT NULL DEFAULT 'TOMAN',
		fees_toman REAL NOT NULL DEFAULT 0,
		note TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);`},
		{"transactions index", `
	CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, buy_date_time);`},
		{"price_snapshots", `
	CREATE TABLE IF NOT EXISTS price_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fetched_at DATETIME NOT NULL,
		usd_to_local REAL NOT NULL,
		eur_to_local REAL NOT NULL,
		gold18_to_local REAL NOT NULL,
		fiat_prices TEXT NOT NULL,
		crypto_prices TEXT NOT NULL,
		gold_prices TEXT NOT NULL
	);`},
		{"portfolio_history", `
	CREATE TABLE IF NOT EXISTS portfolio_history (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		total_value REAL NOT NULL,
		total_invested REAL NOT NULL,
		profit REAL NOT NULL,
		profit_percentage REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, date),
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);`},
	}

	for _, t := range tables {
		if _, err := db.Exec(t.ddl); err != nil {
			return fmt.Errorf("create %s: %w", t.name, err)
		}
	}
	return nil
}
