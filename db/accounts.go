package db

import (
	"database/sql"
	"time"

	"botlibrary/errs"
	"botlibrary/model"
)

// GetOrCreateAccount retrieves an account, creating it on first interaction.
// The username is refreshed on every call so renders always see current
// state.
func (s *Store) GetOrCreateAccount(userID int64, username string) (*model.Account, error) {
	var acc model.Account
	var joined int64
	err := s.db.QueryRow(
		"SELECT user_id, username, role, joined_at FROM accounts WHERE user_id = ?",
		userID,
	).Scan(&acc.ID, &acc.Username, &acc.Role, &joined)
	if err == sql.ErrNoRows {
		now := time.Now().Unix()
		_, err = s.db.Exec(
			"INSERT INTO accounts (user_id, username, role, joined_at) VALUES (?, ?, 'user', ?)",
			userID, username, now,
		)
		if err != nil {
			return nil, err
		}
		return &model.Account{ID: userID, Username: username, Role: model.RoleUser, JoinedAt: time.Unix(now, 0)}, nil
	}
	if err != nil {
		return nil, err
	}
	if username != "" && username != acc.Username {
		if _, err := s.db.Exec("UPDATE accounts SET username = ? WHERE user_id = ?", username, userID); err != nil {
			return nil, err
		}
		acc.Username = username
	}
	acc.JoinedAt = time.Unix(joined, 0)
	return &acc, nil
}

// GetAccount retrieves an account without creating it.
func (s *Store) GetAccount(userID int64) (*model.Account, error) {
	var acc model.Account
	var joined int64
	err := s.db.QueryRow(
		"SELECT user_id, username, role, joined_at FROM accounts WHERE user_id = ?",
		userID,
	).Scan(&acc.ID, &acc.Username, &acc.Role, &joined)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	acc.JoinedAt = time.Unix(joined, 0)
	return &acc, nil
}

// SetRole sets an account's role, creating the account if it does not exist
// yet (an admin may promote someone the bot has never talked to).
func (s *Store) SetRole(userID int64, role model.Role) error {
	_, err := s.db.Exec(
		`INSERT INTO accounts (user_id, role, joined_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET role = excluded.role`,
		userID, role, time.Now().Unix(),
	)
	return err
}

// AllAccountIDs returns every known account ID, for broadcast fan-out.
func (s *Store) AllAccountIDs() ([]int64, error) {
	rows, err := s.db.Query("SELECT user_id FROM accounts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PrivilegedAccountIDs returns accounts whose stored role grants moderation
// access. Config-defined owner/sudo accounts are resolved separately by the
// auth checker.
func (s *Store) PrivilegedAccountIDs() ([]int64, error) {
	rows, err := s.db.Query("SELECT user_id FROM accounts WHERE role IN ('owner', 'sudo', 'moderator')")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
