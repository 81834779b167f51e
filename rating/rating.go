// Package rating records star votes on listings and keeps the denormalized
// rating aggregates in step with the vote ledger.
package rating

import (
	"fmt"
	"log/slog"

	"botlibrary/db"
	"botlibrary/errs"
	"botlibrary/gateway"
	"botlibrary/metrics"
	"botlibrary/model"
	"botlibrary/render"
)

// Outcome describes what a vote did to the ledger.
type Outcome int

const (
	// OutcomeNew means the voter's first vote was added.
	OutcomeNew Outcome = iota
	// OutcomeChanged means an existing vote was replaced with a new score.
	OutcomeChanged
)

// Engine applies votes and re-renders the public post.
type Engine struct {
	store *db.Store
	gw    gateway.Gateway
	log   *slog.Logger
}

// New builds a rating engine.
func New(store *db.Store, gw gateway.Gateway, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, gw: gw, log: log}
}

// Vote records a 1-5 score from the voter.
//
// Errors: ErrNotFound if the listing is gone, ErrAlreadyRated if the voter
// repeats their current score (informational no-op), ErrValidation for an
// out-of-range score. A wrapped ErrDelivery means the vote IS persisted but
// the public post could not be re-rendered; the returned listing is valid in
// that case.
func (e *Engine) Vote(listingID, voterID int64, score int) (*model.Listing, Outcome, error) {
	listing, isNew, err := e.store.RecordVote(listingID, voterID, score)
	if err != nil {
		return nil, 0, err
	}
	metrics.VotesRecorded.Inc()

	outcome := OutcomeChanged
	if isNew {
		outcome = OutcomeNew
	}

	// The vote is committed; re-rendering the channel post is best effort
	// and preserves the existing rating-button layout.
	if !listing.PostRef.IsZero() {
		if err := e.gw.Edit(listing.PostRef, render.ChannelPost(listing), render.RatingKeyboard(listing.ID)); err != nil {
			e.log.Warn("channel post re-render failed", "listing", listing.ID, "err", err)
			return listing, outcome, fmt.Errorf("%w: channel post update: %v", errs.ErrDelivery, err)
		}
	}
	return listing, outcome, nil
}
