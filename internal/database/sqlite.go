// Package database provides SQLite persistence for scans and favorites.
package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("failed to init database: %v", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	if err := initTable(db, "scans", `
		CREATE TABLE IF NOT EXISTS scans (
			id              TEXT PRIMARY KEY,
			sid             TEXT NOT NULL,
			target_language TEXT,
			source_text     TEXT,
			items           TEXT NOT NULL,
			created_at      INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS scans_sid ON scans (sid, created_at);`,
	); err != nil {
		return err
	}

	// favorites carry no foreign key to scans: the item is snapshotted
	// at creation and must survive deletion of the originating scan
	if err := initTable(db, "favorites", `
		CREATE TABLE IF NOT EXISTS favorites (
			id          TEXT PRIMARY KEY,
			sid         TEXT NOT NULL,
			scan_id     TEXT NOT NULL,
			item_index  INTEGER NOT NULL,
			item        TEXT NOT NULL,
			created_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS favorites_sid ON favorites (sid, created_at);`,
	); err != nil {
		return err
	}

	return nil
}

func initTable(
	db *sql.DB,
	name string,
	sql string,
) error {
	if _, err := db.Exec(sql); err != nil {
		return fmt.Errorf("failed to init '%s' table schema: %v", name, err)
	}
	return nil
}

func resultsEmpty(result sql.Result) bool {
	affected, err := result.RowsAffected()
	if err != nil {
		return true
	}
	return affected == 0
}
