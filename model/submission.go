package model

import (
	"database/sql"
	"time"
)

// Status tracks a submission through review.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Submission is a request to list a bot. Kept after resolution as an audit
// trail; removed only when its listing is administratively purged.
type Submission struct {
	ID           int64
	Handle       string
	Description  string
	Features     string
	Category     Category
	SubmittedBy  int64
	SubmittedAt  time.Time
	Status       Status
	RejectReason sql.NullString
	ClaimedBy    sql.NullInt64
	ClaimedAt    sql.NullInt64
}

// Claimant returns the claim holder and whether a claim is held.
func (s *Submission) Claimant() (int64, bool) {
	return s.ClaimedBy.Int64, s.ClaimedBy.Valid
}
