package database

import (
	"database/sql"
	"fmt"
)

type columnMigration struct {
	table  string
	column string
	ddl    string
}

// columns added after the first release of the schema
var columnMigrations = []columnMigration{
	{"portfolio_history", "max_value", `ALTER TABLE portfolio_history ADD COLUMN max_value REAL DEFAULT 0`},
	{"portfolio_history", "min_value", `ALTER TABLE portfolio_history ADD COLUMN min_value REAL DEFAULT 0`},
}

// RunMigrations brings an existing database up to the current schema. Running
// it twice is a no-op.
func RunMigrations(db *sql.DB) error {
	for _, m := range columnMigrations {
		exists, err := columnExists(db, m.table, m.column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.Exec(m.ddl); err != nil {
			return fmt.Errorf("add %s.%s: %w", m.table, m.column, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
