// Package roaddb persists waypoint sets and track jump diagnostics in
// SQLite. The schema is managed by embedded golang-migrate migrations that
// are applied when the database is opened.
package roaddb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema. ":memory:" is allowed and is limited to one connection.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}

	if _, err := sqlDB.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
