package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const registrySchema = `
CREATE TABLE IF NOT EXISTS registry (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       TEXT NOT NULL,
	item_count INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStateStore implements StateStore on a SQLite database. The registry
// is kept as a single JSON document in a one-row table so every save is a
// full replacement committed in one transaction.
type SQLiteStateStore struct {
	db *sql.DB
}

// OpenSQLiteStateStore opens (creating if needed) the database at path.
func OpenSQLiteStateStore(path string) (*SQLiteStateStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}
	// One writer; the engine already serializes access.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(registrySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create registry table: %w", err)
	}

	return &SQLiteStateStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}

// Load loads the registry row.
func (s *SQLiteStateStore) Load() (*Registry, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM registry WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, os.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	return decodeRegistry([]byte(data))
}

// Save replaces the registry row inside a transaction.
func (s *SQLiteStateStore) Save(reg *Registry) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`
		INSERT INTO registry (id, data, item_count, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			item_count = excluded.item_count,
			updated_at = excluded.updated_at`,
		string(data), len(reg.Items), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}
