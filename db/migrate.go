package db

import "fmt"

// createTables creates the schema if it does not exist yet.
func (s *Store) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id INTEGER PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			joined_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			handle TEXT NOT NULL,
			description TEXT NOT NULL,
			features TEXT NOT NULL,
			category TEXT NOT NULL,
			submitted_by INTEGER NOT NULL,
			submitted_at INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			reject_reason TEXT,
			claimed_by INTEGER,
			claimed_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS listings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submission_id INTEGER NOT NULL,
			handle TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL,
			features TEXT NOT NULL,
			category TEXT NOT NULL,
			rating REAL NOT NULL DEFAULT 0,
			vote_count INTEGER NOT NULL DEFAULT 0,
			submitted_by INTEGER NOT NULL,
			approved_by INTEGER NOT NULL,
			submitted_at INTEGER NOT NULL,
			approved_at INTEGER NOT NULL,
			post_channel_id TEXT NOT NULL DEFAULT '',
			post_message_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS votes (
			listing_id INTEGER NOT NULL,
			voter_id INTEGER NOT NULL,
			score INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (listing_id, voter_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status);`,
		`CREATE INDEX IF NOT EXISTS idx_listings_category ON listings(category);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
