package model

import "time"

// MessageRef identifies a message previously sent through the gateway.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// IsZero reports whether the reference points at nothing.
func (r MessageRef) IsZero() bool {
	return r.ChannelID == "" && r.MessageID == ""
}

// Listing is an approved, publicly visible bot entry.
//
// Rating and VoteCount are denormalized from the vote ledger: whenever the
// ledger is non-empty, Rating is the one-decimal rounded mean of the ledger
// scores and VoteCount its size; both are zero when the ledger is empty.
type Listing struct {
	ID           int64
	SubmissionID int64
	Handle       string
	Description  string
	Features     string
	Category     Category
	Rating       float64
	VoteCount    int
	SubmittedBy  int64
	ApprovedBy   int64
	SubmittedAt  time.Time
	ApprovedAt   time.Time
	PostRef      MessageRef

	// Votes maps voter account ID to their most recent 1-5 score. Loaded
	// from the votes table alongside the listing row.
	Votes map[int64]int
}
