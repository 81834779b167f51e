package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const dbDriver = "sqlite3"

// Store wraps the SQLite database holding accounts, submissions, listings
// and the vote ledger. All invariants that need atomicity (claim
// exclusivity, duplicate-handle prevention, vote aggregation) are enforced
// here with transactions and conditional updates.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and runs
// migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	conn, err := sql.Open(dbDriver, path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: conn}
	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
