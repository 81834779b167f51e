// Package errs defines the error taxonomy shared by all engines.
package errs

import "errors"

var (
	// ErrValidation marks bad user input; the caller should re-prompt.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate marks a handle conflict; the workflow terminates.
	ErrDuplicate = errors.New("duplicate handle")
	// ErrUnauthorized marks an actor lacking privilege; no state change.
	ErrUnauthorized = errors.New("not authorized")
	// ErrAlreadyClaimed marks a claim attempt on a submission held by someone else.
	ErrAlreadyClaimed = errors.New("already claimed")
	// ErrNotClaimant marks a moderation action by an account that does not hold the claim.
	ErrNotClaimant = errors.New("not the claimant")
	// ErrAlreadyRated marks a repeat vote with the same score; informational no-op.
	ErrAlreadyRated = errors.New("already rated")
	// ErrNotFound marks a referenced entity that no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrDelivery marks a failed outbound message. Always non-fatal to the
	// mutation that preceded it.
	ErrDelivery = errors.New("delivery failed")
)
