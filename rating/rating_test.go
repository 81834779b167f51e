package rating

import (
	"errors"
	"path/filepath"
	"testing"

	"botlibrary/db"
	"botlibrary/errs"
	"botlibrary/gateway"
	"botlibrary/model"
)

func newTestEngine(t *testing.T) (*Engine, *gateway.Fake, *db.Store) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	fake := gateway.NewFake()
	return New(store, fake, nil), fake, store
}

func seedListing(t *testing.T, store *db.Store, withPost bool) *model.Listing {
	t.Helper()
	sub, err := store.CreateSubmission("@mybot", "A cool bot", "Does X, Y", model.CategoryUtility, 100)
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	listing, err := store.ApproveSubmission(sub.ID, 7)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if withPost {
		ref := model.MessageRef{ChannelID: "directory", MessageID: "42"}
		if err := store.SetListingPostRef(listing.ID, ref); err != nil {
			t.Fatalf("set post ref: %v", err)
		}
		listing.PostRef = ref
	}
	return listing
}

func TestVoteOutcomes(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	listing := seedListing(t, store, true)

	got, outcome, err := engine.Vote(listing.ID, 1, 5)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if outcome != OutcomeNew {
		t.Fatalf("outcome = %v, want new", outcome)
	}
	if got.VoteCount != 1 || got.Rating != 5.0 {
		t.Fatalf("count = %d rating = %v, want 1, 5.0", got.VoteCount, got.Rating)
	}

	got, outcome, err = engine.Vote(listing.ID, 1, 3)
	if err != nil {
		t.Fatalf("re-vote: %v", err)
	}
	if outcome != OutcomeChanged {
		t.Fatalf("outcome = %v, want changed", outcome)
	}
	if got.VoteCount != 1 || got.Rating != 3.0 {
		t.Fatalf("count = %d rating = %v, want 1, 3.0", got.VoteCount, got.Rating)
	}

	// Each committed vote re-renders the public post.
	if len(fake.Edits) != 2 {
		t.Fatalf("post edits = %d, want 2", len(fake.Edits))
	}
}

func TestVoteSameScore(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	listing := seedListing(t, store, true)

	if _, _, err := engine.Vote(listing.ID, 1, 4); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if _, _, err := engine.Vote(listing.ID, 1, 4); !errors.Is(err, errs.ErrAlreadyRated) {
		t.Fatalf("repeat: err = %v, want ErrAlreadyRated", err)
	}
	// The no-op vote must not touch the post.
	if len(fake.Edits) != 1 {
		t.Fatalf("post edits = %d, want 1", len(fake.Edits))
	}
}

func TestVotePersistsThroughEditFailure(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	listing := seedListing(t, store, true)
	fake.FailEdit = true

	got, outcome, err := engine.Vote(listing.ID, 1, 5)
	if !errors.Is(err, errs.ErrDelivery) {
		t.Fatalf("err = %v, want ErrDelivery", err)
	}
	if got == nil || outcome != OutcomeNew {
		t.Fatalf("listing/outcome = %v/%v, want listing with new vote", got, outcome)
	}

	stored, err := store.GetListing(listing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.VoteCount != 1 || stored.Rating != 5.0 {
		t.Fatalf("vote lost: count = %d rating = %v", stored.VoteCount, stored.Rating)
	}
}

func TestVoteWithoutPost(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	listing := seedListing(t, store, false)

	if _, _, err := engine.Vote(listing.ID, 1, 5); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if len(fake.Edits) != 0 {
		t.Fatalf("post edits = %d, want 0", len(fake.Edits))
	}
}

func TestVoteMissingListing(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if _, _, err := engine.Vote(9999, 1, 3); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
