package db

import (
	"database/sql"
	"time"

	"botlibrary/errs"
	"botlibrary/model"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const submissionCols = `id, handle, description, features, category,
	submitted_by, submitted_at, status, reject_reason, claimed_by, claimed_at`

func scanSubmission(scanner rowScanner) (*model.Submission, error) {
	var sub model.Submission
	var submittedAt int64
	err := scanner.Scan(
		&sub.ID, &sub.Handle, &sub.Description, &sub.Features, &sub.Category,
		&sub.SubmittedBy, &submittedAt, &sub.Status, &sub.RejectReason,
		&sub.ClaimedBy, &sub.ClaimedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sub.SubmittedAt = time.Unix(submittedAt, 0)
	return &sub, nil
}

// HandleAvailable reports whether a handle is free to be submitted: no
// approved listing and no in-flight submission may already carry it.
func (s *Store) HandleAvailable(handle string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM listings WHERE handle = ?", handle).Scan(&n)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	err = s.db.QueryRow(
		"SELECT COUNT(*) FROM submissions WHERE handle = ? AND status IN ('pending', 'under_review')",
		handle,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// CreateSubmission persists a new pending submission. The duplicate-handle
// check runs inside the insert transaction so two concurrent submitters
// cannot both get the same handle in flight.
func (s *Store) CreateSubmission(handle, description, features string, category model.Category, submittedBy int64) (*model.Submission, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRow(
		`SELECT (SELECT COUNT(*) FROM listings WHERE handle = ?) +
		        (SELECT COUNT(*) FROM submissions WHERE handle = ? AND status IN ('pending', 'under_review'))`,
		handle, handle,
	).Scan(&n)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, errs.ErrDuplicate
	}

	now := time.Now().Unix()
	res, err := tx.Exec(
		`INSERT INTO submissions (handle, description, features, category, submitted_by, submitted_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, 'pending')`,
		handle, description, features, category, submittedBy, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Submission{
		ID:          id,
		Handle:      handle,
		Description: description,
		Features:    features,
		Category:    category,
		SubmittedBy: submittedBy,
		SubmittedAt: time.Unix(now, 0),
		Status:      model.StatusPending,
	}, nil
}

// GetSubmission retrieves the latest persisted state of a submission.
func (s *Store) GetSubmission(id int64) (*model.Submission, error) {
	row := s.db.QueryRow("SELECT "+submissionCols+" FROM submissions WHERE id = ?", id)
	return scanSubmission(row)
}

// ClaimSubmission assigns the submission to actorID. The conditional update
// makes the claim exclusive: of two concurrent claims exactly one wins, the
// other gets ErrAlreadyClaimed. Claiming a submission you already hold is
// idempotent.
func (s *Store) ClaimSubmission(id, actorID int64) (*model.Submission, error) {
	res, err := s.db.Exec(
		`UPDATE submissions SET claimed_by = ?, claimed_at = ?, status = 'under_review'
		 WHERE id = ? AND status IN ('pending', 'under_review')
		   AND (claimed_by IS NULL OR claimed_by = ?)`,
		actorID, time.Now().Unix(), id, actorID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, s.claimFailure(id, actorID)
	}
	return s.GetSubmission(id)
}

// UnclaimSubmission releases a claim held by actorID and returns the
// submission to the pending pool.
func (s *Store) UnclaimSubmission(id, actorID int64) (*model.Submission, error) {
	res, err := s.db.Exec(
		`UPDATE submissions SET claimed_by = NULL, claimed_at = NULL, status = 'pending'
		 WHERE id = ? AND status = 'under_review' AND claimed_by = ?`,
		id, actorID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		sub, err := s.GetSubmission(id)
		if err != nil {
			return nil, err
		}
		if holder, held := sub.Claimant(); !held || holder != actorID {
			return nil, errs.ErrNotClaimant
		}
		return nil, errs.ErrNotFound
	}
	return s.GetSubmission(id)
}

// RejectSubmission resolves a submission as rejected with the canned reason
// text. Fails with ErrNotClaimant if another moderator holds the claim, and
// with ErrNotFound if the submission is gone or already resolved.
func (s *Store) RejectSubmission(id, actorID int64, reason model.RejectReason) (*model.Submission, error) {
	res, err := s.db.Exec(
		`UPDATE submissions SET status = 'rejected', reject_reason = ?
		 WHERE id = ? AND status IN ('pending', 'under_review')
		   AND (claimed_by IS NULL OR claimed_by = ?)`,
		reason.Text(), id, actorID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, s.resolveFailure(id, actorID)
	}
	return s.GetSubmission(id)
}

// DeleteSubmission removes a submission row. Only used when its owning
// listing is administratively purged; resolved submissions otherwise stay as
// an audit trail.
func (s *Store) DeleteSubmission(id int64) error {
	_, err := s.db.Exec("DELETE FROM submissions WHERE id = ?", id)
	return err
}

// CountPendingSubmissions counts submissions still awaiting a decision.
func (s *Store) CountPendingSubmissions() (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM submissions WHERE status IN ('pending', 'under_review')",
	).Scan(&n)
	return n, err
}

// claimFailure turns a zero-row claim update into the right error.
func (s *Store) claimFailure(id, actorID int64) error {
	sub, err := s.GetSubmission(id)
	if err != nil {
		return err
	}
	if holder, held := sub.Claimant(); held && holder != actorID {
		return errs.ErrAlreadyClaimed
	}
	// Already resolved between render and click.
	return errs.ErrNotFound
}

// resolveFailure turns a zero-row approve/reject update into the right error.
func (s *Store) resolveFailure(id, actorID int64) error {
	sub, err := s.GetSubmission(id)
	if err != nil {
		return err
	}
	if sub.Status == model.StatusApproved || sub.Status == model.StatusRejected {
		return errs.ErrNotFound
	}
	if holder, held := sub.Claimant(); held && holder != actorID {
		return errs.ErrNotClaimant
	}
	return errs.ErrNotFound
}
