// Package moderation implements the claim/approve/reject protocol over
// pending submissions. All store mutations commit before any outward message
// is sent, and notification failures never surface as operation failures.
package moderation

import (
	"fmt"
	"log/slog"

	"botlibrary/auth"
	"botlibrary/db"
	"botlibrary/gateway"
	"botlibrary/metrics"
	"botlibrary/model"
	"botlibrary/render"
)

// Engine performs moderation actions. Claim exclusivity and approval
// idempotency are enforced by the store's conditional updates; this layer
// adds authorization and the outbound side effects.
type Engine struct {
	store     *db.Store
	gw        gateway.Gateway
	auth      *auth.Checker
	channelID string
	log       *slog.Logger
}

// New builds a moderation engine. channelID is the public directory channel
// approved listings are published to; empty disables publishing.
func New(store *db.Store, gw gateway.Gateway, checker *auth.Checker, channelID string, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, gw: gw, auth: checker, channelID: channelID, log: log}
}

// NotifyNewSubmission fans a review request out to every privileged
// account. Each send is attempted independently; one blocked recipient never
// stops the rest.
func (e *Engine) NotifyNewSubmission(submissionID int64) {
	sub, err := e.store.GetSubmission(submissionID)
	if err != nil {
		e.log.Error("load submission for notification", "submission", submissionID, "err", err)
		return
	}

	recipients, err := e.auth.PrivilegedIDs()
	if err != nil {
		e.log.Error("resolve privileged accounts", "err", err)
		return
	}

	text, kb := render.ReviewMessage(sub, "")
	for _, id := range recipients {
		if _, err := e.gw.SendDM(id, text, kb); err != nil {
			e.log.Warn("review notification failed", "recipient", id, "submission", submissionID, "err", err)
		}
	}
}

// Claim assigns the submission to the actor. Exactly one of two concurrent
// claimants wins; the loser gets ErrAlreadyClaimed and the submission is
// unchanged. Re-claiming one's own submission is idempotent.
func (e *Engine) Claim(submissionID, actorID int64) (*model.Submission, error) {
	if err := e.auth.Require(actorID); err != nil {
		return nil, err
	}
	return e.store.ClaimSubmission(submissionID, actorID)
}

// Unclaim releases the actor's claim, returning the submission to the pool.
func (e *Engine) Unclaim(submissionID, actorID int64) (*model.Submission, error) {
	if err := e.auth.Require(actorID); err != nil {
		return nil, err
	}
	return e.store.UnclaimSubmission(submissionID, actorID)
}

// Approve resolves the submission and creates its listing, then publishes
// the listing to the public channel. Publishing is best effort: its failure
// leaves the approval intact and is reported back to the actor through the
// returned warning.
func (e *Engine) Approve(submissionID, actorID int64) (*model.Listing, error) {
	if err := e.auth.Require(actorID); err != nil {
		return nil, err
	}

	listing, err := e.store.ApproveSubmission(submissionID, actorID)
	if err != nil {
		return nil, err
	}
	metrics.Approvals.Inc()

	// Committed from here on; everything below is delivery.
	if e.channelID != "" {
		ref, err := e.gw.SendChannel(e.channelID, render.ChannelPost(listing), render.RatingKeyboard(listing.ID))
		if err != nil {
			e.log.Warn("channel publish failed", "listing", listing.ID, "err", err)
			e.warnActor(actorID, fmt.Sprintf("⚠️ Approved, but publishing %s to the channel failed.", render.Escape(listing.Handle)))
		} else {
			listing.PostRef = ref
			if err := e.store.SetListingPostRef(listing.ID, ref); err != nil {
				e.log.Error("record post ref", "listing", listing.ID, "err", err)
			}
		}
	}

	if _, err := e.gw.SendDM(listing.SubmittedBy, render.ApprovedNotice(listing.Handle), nil); err != nil {
		// Submitter may have blocked the bot; not an operation failure.
		e.log.Warn("approval notice failed", "recipient", listing.SubmittedBy, "err", err)
	}
	return listing, nil
}

// Reject resolves the submission as rejected with a canned reason and
// notifies the submitter. The notification failure is swallowed.
func (e *Engine) Reject(submissionID, actorID int64, reason model.RejectReason) (*model.Submission, error) {
	if err := e.auth.Require(actorID); err != nil {
		return nil, err
	}

	sub, err := e.store.RejectSubmission(submissionID, actorID, reason)
	if err != nil {
		return nil, err
	}
	metrics.Rejections.Inc()

	if _, err := e.gw.SendDM(sub.SubmittedBy, render.RejectedNotice(sub.Handle, reason.Text()), nil); err != nil {
		e.log.Warn("rejection notice failed", "recipient", sub.SubmittedBy, "err", err)
	}
	return sub, nil
}

func (e *Engine) warnActor(actorID int64, text string) {
	if _, err := e.gw.SendDM(actorID, text, nil); err != nil {
		e.log.Warn("actor warning failed", "recipient", actorID, "err", err)
	}
}
