package db

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"botlibrary/errs"
	"botlibrary/model"
)

func mustApprove(t *testing.T, s *Store, handle string, submitter, approver int64) *model.Listing {
	t.Helper()
	sub := mustCreateSubmission(t, s, handle, submitter)
	listing, err := s.ApproveSubmission(sub.ID, approver)
	if err != nil {
		t.Fatalf("approve %s: %v", handle, err)
	}
	return listing
}

func TestApproveCreatesListing(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@mybot", 100)

	listing, err := store.ApproveSubmission(sub.ID, 7)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if listing.Handle != "@mybot" || listing.SubmissionID != sub.ID || listing.ApprovedBy != 7 {
		t.Fatalf("unexpected listing: %+v", listing)
	}
	if listing.Rating != 0 || listing.VoteCount != 0 {
		t.Fatalf("new listing rating/votes = %v/%d, want 0/0", listing.Rating, listing.VoteCount)
	}

	got, err := store.GetSubmission(sub.ID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if got.Status != model.StatusApproved {
		t.Fatalf("submission status = %s, want approved", got.Status)
	}
}

func TestApproveNotRepeatable(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@mybot", 100)

	if _, err := store.ApproveSubmission(sub.ID, 7); err != nil {
		t.Fatalf("approve: %v", err)
	}
	// A duplicate trigger must not create a second listing.
	if _, err := store.ApproveSubmission(sub.ID, 7); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("second approve: err = %v, want ErrNotFound", err)
	}
	n, err := store.CountListings()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("listings = %d, want 1", n)
	}
}

func TestApproveRespectsForeignClaim(t *testing.T) {
	store := newTestStore(t)
	sub := mustCreateSubmission(t, store, "@mybot", 100)
	if _, err := store.ClaimSubmission(sub.ID, 7); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := store.ApproveSubmission(sub.ID, 8); !errors.Is(err, errs.ErrNotClaimant) {
		t.Fatalf("approve by 8: err = %v, want ErrNotClaimant", err)
	}
}

func TestRecordVoteAggregation(t *testing.T) {
	store := newTestStore(t)
	listing := mustApprove(t, store, "@mybot", 100, 7)

	// user1:5, user2:3 -> mean 4.0
	if _, _, err := store.RecordVote(listing.ID, 1, 5); err != nil {
		t.Fatalf("vote 1: %v", err)
	}
	l, isNew, err := store.RecordVote(listing.ID, 2, 3)
	if err != nil {
		t.Fatalf("vote 2: %v", err)
	}
	if !isNew {
		t.Fatalf("vote 2 not reported as new")
	}
	if l.VoteCount != 2 || l.Rating != 4.0 {
		t.Fatalf("after two votes: count = %d rating = %v, want 2, 4.0", l.VoteCount, l.Rating)
	}

	// user3 votes 4 -> count 3, rating 4.0
	l, _, err = store.RecordVote(listing.ID, 3, 4)
	if err != nil {
		t.Fatalf("vote 3: %v", err)
	}
	if l.VoteCount != 3 || l.Rating != 4.0 {
		t.Fatalf("count = %d rating = %v, want 3, 4.0", l.VoteCount, l.Rating)
	}

	// user1 re-votes 3 -> count unchanged, rating round((3+3+4)/3,1)=3.3
	l, isNew, err = store.RecordVote(listing.ID, 1, 3)
	if err != nil {
		t.Fatalf("re-vote: %v", err)
	}
	if isNew {
		t.Fatalf("re-vote reported as new")
	}
	if l.VoteCount != 3 || l.Rating != 3.3 {
		t.Fatalf("after re-vote: count = %d rating = %v, want 3, 3.3", l.VoteCount, l.Rating)
	}

	wantLedger := map[int64]int{1: 3, 2: 3, 3: 4}
	if diff := cmp.Diff(wantLedger, l.Votes); diff != "" {
		t.Fatalf("ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordVoteSameScoreNoOp(t *testing.T) {
	store := newTestStore(t)
	listing := mustApprove(t, store, "@mybot", 100, 7)

	if _, _, err := store.RecordVote(listing.ID, 1, 5); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, _, err := store.RecordVote(listing.ID, 1, 5); !errors.Is(err, errs.ErrAlreadyRated) {
		t.Fatalf("repeat vote: err = %v, want ErrAlreadyRated", err)
	}

	l, err := store.GetListing(listing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if l.VoteCount != 1 || l.Rating != 5.0 {
		t.Fatalf("count = %d rating = %v, want 1, 5.0 (unchanged)", l.VoteCount, l.Rating)
	}
}

func TestRecordVoteRoundingHalfUp(t *testing.T) {
	store := newTestStore(t)
	listing := mustApprove(t, store, "@mybot", 100, 7)

	// 4 + 5 = 9, mean 4.5 -> stays 4.5; 1 + 2 + 2 = 5, mean 1.666 -> 1.7.
	if _, _, err := store.RecordVote(listing.ID, 1, 1); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, _, err := store.RecordVote(listing.ID, 2, 2); err != nil {
		t.Fatalf("vote: %v", err)
	}
	l, _, err := store.RecordVote(listing.ID, 3, 2)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if l.Rating != 1.7 {
		t.Fatalf("rating = %v, want 1.7", l.Rating)
	}
}

func TestRecordVoteValidation(t *testing.T) {
	store := newTestStore(t)
	listing := mustApprove(t, store, "@mybot", 100, 7)

	if _, _, err := store.RecordVote(listing.ID, 1, 0); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("score 0: err = %v, want ErrValidation", err)
	}
	if _, _, err := store.RecordVote(listing.ID, 1, 6); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("score 6: err = %v, want ErrValidation", err)
	}
	if _, _, err := store.RecordVote(9999, 1, 3); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing listing: err = %v, want ErrNotFound", err)
	}
}

func TestSetListingPostRef(t *testing.T) {
	store := newTestStore(t)
	listing := mustApprove(t, store, "@mybot", 100, 7)

	ref := model.MessageRef{ChannelID: "chan", MessageID: "42"}
	if err := store.SetListingPostRef(listing.ID, ref); err != nil {
		t.Fatalf("set post ref: %v", err)
	}
	got, err := store.GetListing(listing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PostRef != ref {
		t.Fatalf("post ref = %+v, want %+v", got.PostRef, ref)
	}
}

func TestDeleteListingCascades(t *testing.T) {
	store := newTestStore(t)
	listing := mustApprove(t, store, "@mybot", 100, 7)
	if _, _, err := store.RecordVote(listing.ID, 1, 5); err != nil {
		t.Fatalf("vote: %v", err)
	}

	if err := store.DeleteListing(listing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetListing(listing.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("listing survived: err = %v", err)
	}
	if _, err := store.GetSubmission(listing.SubmissionID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("originating submission survived: err = %v", err)
	}
	// Handle is free again.
	if free, err := store.HandleAvailable("@mybot"); err != nil || !free {
		t.Fatalf("HandleAvailable = %v, %v; want true, nil", free, err)
	}
}

func TestStatsAndQueries(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetOrCreateAccount(100, "alice"); err != nil {
		t.Fatalf("account: %v", err)
	}

	a := mustApprove(t, store, "@a", 100, 7)
	mustApprove(t, store, "@b", 100, 7)
	mustCreateSubmission(t, store, "@c", 100)

	if _, _, err := store.RecordVote(a.ID, 1, 5); err != nil {
		t.Fatalf("vote: %v", err)
	}

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Listings != 2 || stats.PendingSubmissions != 1 {
		t.Fatalf("stats = %+v, want 2 listings, 1 pending", stats)
	}
	if stats.ByCategory[model.CategoryUtility] != 2 {
		t.Fatalf("utility count = %d, want 2", stats.ByCategory[model.CategoryUtility])
	}

	top, err := store.TopRatedListings(10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].Handle != "@a" {
		t.Fatalf("top order wrong: %+v", top)
	}

	found, err := store.SearchListings("cool", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("search matches = %d, want 2", len(found))
	}
}
