package pinger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const createStateTable = `CREATE TABLE IF NOT EXISTS ping_state (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteStore keeps pinger state in a SQLite file, for clients that live
// outside a browser.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the state database at path
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	// One writer at a time; the state is a single row.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createStateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value stored under key
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM ping_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query state: %w", err)
	}
	return value, true, nil
}

// Set stores value under key
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ping_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
