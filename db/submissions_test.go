package db

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"botlibrary/errs"
	"botlibrary/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateSubmission(t *testing.T, s *Store, handle string, submitter int64) *model.Submission {
	t.Helper()
	sub, err := s.CreateSubmission(handle, "A cool bot", "Does X, Y", model.CategoryUtility, submitter)
	if err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return sub
}

func TestCreateSubmissionPending(t *testing.T) {
	store := newTestStore(t)

	sub := mustCreateSubmission(t, store, "@mybot", 100)
	got, err := store.GetSubmission(sub.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if got.Handle != "@mybot" || got.Description != "A cool bot" ||
		got.Features != "Does X, Y" || got.Category != model.CategoryUtility {
		t.Fatalf("unexpected fields: %+v", got)
	}
	if got.Status != model.StatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
	if got.SubmittedBy != 100 {
		t.Fatalf("submitted_by = %d, want 100", got.SubmittedBy)
	}
}

func TestDuplicateHandleAcrossSubmissions(t *testing.T) {
	store := newTestStore(t)
	mustCreateSubmission(t, store, "@mybot", 100)

	if _, err := store.CreateSubmission("@mybot", "d", "f", model.CategoryOther, 200); !errors.Is(err, errs.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestDuplicateHandleAgainstListing(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@foo", 100)
	if _, err := store.ApproveSubmission(sub.ID, 1); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if free, err := store.HandleAvailable("@foo"); err != nil || free {
		t.Fatalf("HandleAvailable(@foo) = %v, %v; want false, nil", free, err)
	}
	if _, err := store.CreateSubmission("@foo", "d", "f", model.CategoryOther, 200); !errors.Is(err, errs.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestClaimExclusive(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@mybot", 100)

	claimed, err := store.ClaimSubmission(sub.ID, 7)
	if err != nil {
		t.Fatalf("claim by 7: %v", err)
	}
	if holder, held := claimed.Claimant(); !held || holder != 7 {
		t.Fatalf("claimant = %d,%v; want 7,true", holder, held)
	}
	if claimed.Status != model.StatusUnderReview {
		t.Fatalf("status = %s, want under_review", claimed.Status)
	}

	if _, err := store.ClaimSubmission(sub.ID, 8); !errors.Is(err, errs.ErrAlreadyClaimed) {
		t.Fatalf("claim by 8: err = %v, want ErrAlreadyClaimed", err)
	}

	// Loser's attempt must not disturb the claim.
	got, err := store.GetSubmission(sub.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if holder, _ := got.Claimant(); holder != 7 {
		t.Fatalf("claimant after losing claim = %d, want 7", holder)
	}

	// Re-claiming one's own submission is idempotent.
	if _, err := store.ClaimSubmission(sub.ID, 7); err != nil {
		t.Fatalf("re-claim by 7: %v", err)
	}
}

func TestClaimConcurrent(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@mybot", 100)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for n, actor := range []int64{7, 8} {
		wg.Add(1)
		go func(n int, actor int64) {
			defer wg.Done()
			_, results[n] = store.ClaimSubmission(sub.ID, actor)
		}(n, actor)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, errs.ErrAlreadyClaimed):
			losses++
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins = %d, losses = %d; want exactly one of each", wins, losses)
	}
}

func TestUnclaim(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@mybot", 100)
	if _, err := store.ClaimSubmission(sub.ID, 7); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := store.UnclaimSubmission(sub.ID, 8); !errors.Is(err, errs.ErrNotClaimant) {
		t.Fatalf("unclaim by 8: err = %v, want ErrNotClaimant", err)
	}

	got, err := store.UnclaimSubmission(sub.ID, 7)
	if err != nil {
		t.Fatalf("unclaim by 7: %v", err)
	}
	if _, held := got.Claimant(); held {
		t.Fatalf("claim still held after unclaim")
	}
	if got.Status != model.StatusPending {
		t.Fatalf("status = %s, want pending", got.Status)
	}
}

func TestRejectStoresReason(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@mybot", 100)

	got, err := store.RejectSubmission(sub.ID, 7, model.ReasonSpam)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != model.StatusRejected {
		t.Fatalf("status = %s, want rejected", got.Status)
	}
	if !got.RejectReason.Valid || got.RejectReason.String != model.ReasonSpam.Text() {
		t.Fatalf("reject_reason = %+v, want %q", got.RejectReason, model.ReasonSpam.Text())
	}

	// A resolved submission cannot be rejected again.
	if _, err := store.RejectSubmission(sub.ID, 7, model.ReasonOther); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second reject: err = %v, want ErrNotFound", err)
	}
}

func TestRejectRequiresClaimMatch(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@mybot", 100)
	if _, err := store.ClaimSubmission(sub.ID, 7); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := store.RejectSubmission(sub.ID, 8, model.ReasonSpam); !errors.Is(err, errs.ErrNotClaimant) {
		t.Fatalf("reject by 8: err = %v, want ErrNotClaimant", err)
	}
}

func TestCountPendingSubmissions(t *testing.T) {
	store := newTestStore(t)
	mustCreateSubmission(t, store, "@a", 1)
	b := mustCreateSubmission(t, store, "@b", 2)
	c := mustCreateSubmission(t, store, "@c", 3)

	if _, err := store.ClaimSubmission(b.ID, 7); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := store.RejectSubmission(c.ID, 7, model.ReasonSpam); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// pending + under_review both count as awaiting a decision.
	n, err := store.CountPendingSubmissions()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("pending = %d, want 2", n)
	}
}
