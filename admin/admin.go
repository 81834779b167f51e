// Package admin implements the authorization-gated administrative commands:
// role management, broadcast, statistics and listing removal.
package admin

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"botlibrary/auth"
	"botlibrary/db"
	"botlibrary/errs"
	"botlibrary/gateway"
	"botlibrary/metrics"
	"botlibrary/model"
	"botlibrary/render"
)

// Engine performs administrative operations.
type Engine struct {
	store *db.Store
	gw    gateway.Gateway
	auth  *auth.Checker
	log   *slog.Logger
}

// New builds an admin engine.
func New(store *db.Store, gw gateway.Gateway, checker *auth.Checker, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, gw: gw, auth: checker, log: log}
}

// PromoteSudo grants the sudo role. Owner only.
func (e *Engine) PromoteSudo(actorID, targetID int64) error {
	if !e.auth.IsOwner(actorID) {
		return errs.ErrUnauthorized
	}
	return e.store.SetRole(targetID, model.RoleSudo)
}

// DemoteSudo revokes the sudo role. Owner only.
func (e *Engine) DemoteSudo(actorID, targetID int64) error {
	if !e.auth.IsOwner(actorID) {
		return errs.ErrUnauthorized
	}
	return e.store.SetRole(targetID, model.RoleUser)
}

// PromoteModerator grants the moderator role.
func (e *Engine) PromoteModerator(actorID, targetID int64) error {
	if err := e.auth.Require(actorID); err != nil {
		return err
	}
	return e.store.SetRole(targetID, model.RoleModerator)
}

// DemoteModerator revokes the moderator role.
func (e *Engine) DemoteModerator(actorID, targetID int64) error {
	if err := e.auth.Require(actorID); err != nil {
		return err
	}
	target, err := e.store.GetAccount(targetID)
	if err != nil {
		return err
	}
	if target.Role != model.RoleModerator {
		return errs.ErrNotFound
	}
	return e.store.SetRole(targetID, model.RoleUser)
}

// BroadcastReport summarizes a broadcast fan-out.
type BroadcastReport struct {
	BatchID   string
	Delivered int
	Failed    int
}

// Broadcast sends an announcement to every known account. Each recipient is
// attempted independently; failures are collected, never propagated.
func (e *Engine) Broadcast(actorID int64, message string) (*BroadcastReport, error) {
	if err := e.auth.Require(actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(message) == "" {
		return nil, errs.ErrValidation
	}

	ids, err := e.store.AllAccountIDs()
	if err != nil {
		return nil, err
	}

	report := &BroadcastReport{BatchID: uuid.New().String()}
	text := render.BroadcastText(message)
	for _, id := range ids {
		if _, err := e.gw.SendDM(id, text, nil); err != nil {
			report.Failed++
			metrics.BroadcastFailed.Inc()
			e.log.Warn("broadcast delivery failed", "batch", report.BatchID, "recipient", id, "err", err)
			continue
		}
		report.Delivered++
		metrics.BroadcastDelivered.Inc()
	}
	e.log.Info("broadcast finished", "batch", report.BatchID, "delivered", report.Delivered, "failed", report.Failed)
	return report, nil
}

// Stats returns the aggregate statistics report.
func (e *Engine) Stats(actorID int64) (*db.Stats, error) {
	if err := e.auth.Require(actorID); err != nil {
		return nil, err
	}
	return e.store.GetStats()
}

// DeleteListing force-removes a listing by handle: its public post (best
// effort), the listing row, its vote ledger and its originating submission.
func (e *Engine) DeleteListing(actorID int64, handle string) error {
	if err := e.auth.Require(actorID); err != nil {
		return err
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	listing, err := e.store.GetListingByHandle(handle)
	if err != nil {
		return err
	}

	if !listing.PostRef.IsZero() {
		if err := e.gw.Delete(listing.PostRef); err != nil {
			e.log.Warn("channel post removal failed", "listing", listing.ID, "err", err)
		}
	}
	return e.store.DeleteListing(listing.ID)
}
