package db

import (
	"database/sql"
	"math"
	"time"

	"botlibrary/errs"
	"botlibrary/model"
)

const listingCols = `id, submission_id, handle, description, features, category,
	rating, vote_count, submitted_by, approved_by, submitted_at, approved_at,
	post_channel_id, post_message_id`

func scanListing(scanner rowScanner) (*model.Listing, error) {
	var l model.Listing
	var submittedAt, approvedAt int64
	err := scanner.Scan(
		&l.ID, &l.SubmissionID, &l.Handle, &l.Description, &l.Features, &l.Category,
		&l.Rating, &l.VoteCount, &l.SubmittedBy, &l.ApprovedBy, &submittedAt, &approvedAt,
		&l.PostRef.ChannelID, &l.PostRef.MessageID,
	)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	l.SubmittedAt = time.Unix(submittedAt, 0)
	l.ApprovedAt = time.Unix(approvedAt, 0)
	return &l, nil
}

// ApproveSubmission resolves a submission as approved and creates its
// listing in the same transaction, so a duplicate trigger can never produce
// a second listing. The claim rules of RejectSubmission apply; the unique
// handle index backs this up at the schema level.
func (s *Store) ApproveSubmission(id, actorID int64) (*model.Listing, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE submissions SET status = 'approved'
		 WHERE id = ? AND status IN ('pending', 'under_review')
		   AND (claimed_by IS NULL OR claimed_by = ?)`,
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
		return nil, s.resolveFailure(id, actorID)
	}

	sub, err := scanSubmission(tx.QueryRow("SELECT "+submissionCols+" FROM submissions WHERE id = ?", id))
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	ins, err := tx.Exec(
		`INSERT INTO listings (submission_id, handle, description, features, category,
			submitted_by, approved_by, submitted_at, approved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Handle, sub.Description, sub.Features, sub.Category,
		sub.SubmittedBy, actorID, sub.SubmittedAt.Unix(), now,
	)
	if err != nil {
		return nil, err
	}
	listingID, err := ins.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Listing{
		ID:           listingID,
		SubmissionID: sub.ID,
		Handle:       sub.Handle,
		Description:  sub.Description,
		Features:     sub.Features,
		Category:     sub.Category,
		SubmittedBy:  sub.SubmittedBy,
		ApprovedBy:   actorID,
		SubmittedAt:  sub.SubmittedAt,
		ApprovedAt:   time.Unix(now, 0),
		Votes:        map[int64]int{},
	}, nil
}

// GetListing retrieves a listing together with its vote ledger.
func (s *Store) GetListing(id int64) (*model.Listing, error) {
	return s.getListing("id", id)
}

// GetListingByHandle retrieves a listing by its unique handle.
func (s *Store) GetListingByHandle(handle string) (*model.Listing, error) {
	return s.getListing("handle", handle)
}

func (s *Store) getListing(col string, key interface{}) (*model.Listing, error) {
	var query string
	switch col {
	case "id":
		query = "SELECT " + listingCols + " FROM listings WHERE id = ?"
	case "handle":
		query = "SELECT " + listingCols + " FROM listings WHERE handle = ?"
	}
	l, err := scanListing(s.db.QueryRow(query, key))
	if err != nil {
		return nil, err
	}
	l.Votes, err = s.loadVotes(l.ID)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Store) loadVotes(listingID int64) (map[int64]int, error) {
	rows, err := s.db.Query("SELECT voter_id, score FROM votes WHERE listing_id = ?", listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := make(map[int64]int)
	for rows.Next() {
		var voter int64
		var score int
		if err := rows.Scan(&voter, &score); err != nil {
			return nil, err
		}
		votes[voter] = score
	}
	return votes, rows.Err()
}

// SetListingPostRef records the public channel message a listing was
// published as. Publishing is best effort, so this runs after the approval
// transaction.
func (s *Store) SetListingPostRef(listingID int64, ref model.MessageRef) error {
	_, err := s.db.Exec(
		"UPDATE listings SET post_channel_id = ?, post_message_id = ? WHERE id = ?",
		ref.ChannelID, ref.MessageID, listingID,
	)
	return err
}

// RecordVote upserts a voter's score and recomputes the denormalized rating
// and vote count inside one transaction. Returns the updated listing and
// whether the voter was new (false means their previous score was replaced).
//
// The rating is the ledger mean rounded half-up to one decimal; scores are
// positive so math.Round's half-away-from-zero behaves as half-up.
func (s *Store) RecordVote(listingID, voterID int64, score int) (*model.Listing, bool, error) {
	if score < 1 || score > 5 {
		return nil, false, errs.ErrValidation
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT COUNT(*) FROM listings WHERE id = ?", listingID).Scan(&exists); err != nil {
		return nil, false, err
	}
	if exists == 0 {
		return nil, false, errs.ErrNotFound
	}

	var prev int
	isNew := false
	err = tx.QueryRow(
		"SELECT score FROM votes WHERE listing_id = ? AND voter_id = ?",
		listingID, voterID,
	).Scan(&prev)
	switch {
	case err == sql.ErrNoRows:
		isNew = true
	case err != nil:
		return nil, false, err
	case prev == score:
		return nil, false, errs.ErrAlreadyRated
	}

	_, err = tx.Exec(
		`INSERT INTO votes (listing_id, voter_id, score, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(listing_id, voter_id) DO UPDATE SET
			score = excluded.score,
			created_at = excluded.created_at`,
		listingID, voterID, score, time.Now().Unix(),
	)
	if err != nil {
		return nil, false, err
	}

	var count int
	var sum int64
	if err := tx.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(score), 0) FROM votes WHERE listing_id = ?",
		listingID,
	).Scan(&count, &sum); err != nil {
		return nil, false, err
	}

	rating := 0.0
	if count > 0 {
		rating = math.Round(float64(sum)/float64(count)*10) / 10
	}
	if _, err := tx.Exec(
		"UPDATE listings SET rating = ?, vote_count = ? WHERE id = ?",
		rating, count, listingID,
	); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	l, err := s.getListing("id", listingID)
	if err != nil {
		return nil, false, err
	}
	return l, isNew, nil
}

// DeleteListing removes a listing, its vote ledger and its originating
// submission. The caller is responsible for removing the public post first.
func (s *Store) DeleteListing(listingID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var submissionID int64
	err = tx.QueryRow("SELECT submission_id FROM listings WHERE id = ?", listingID).Scan(&submissionID)
	if err == sql.ErrNoRows {
		return errs.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM votes WHERE listing_id = ?", listingID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM listings WHERE id = ?", listingID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM submissions WHERE id = ?", submissionID); err != nil {
		return err
	}
	return tx.Commit()
}
