package moderation

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"botlibrary/auth"
	"botlibrary/db"
	"botlibrary/errs"
	"botlibrary/gateway"
	"botlibrary/model"
)

const (
	owner     = int64(1)
	modA      = int64(7)
	modB      = int64(8)
	submitter = int64(100)
)

func newTestEngine(t *testing.T) (*Engine, *gateway.Fake, *db.Store) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	fake := gateway.NewFake()
	checker := auth.NewChecker(owner, map[int64]bool{modA: true, modB: true}, store)
	return New(store, fake, checker, "directory", nil), fake, store
}

func seedSubmission(t *testing.T, store *db.Store, handle string) *model.Submission {
	t.Helper()
	sub, err := store.CreateSubmission(handle, "A cool bot", "Does X, Y", model.CategoryUtility, submitter)
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return sub
}

func TestClaimRequiresPrivilege(t *testing.T) {
	engine, _, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")

	if _, err := engine.Claim(sub.ID, 999); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("claim by outsider: err = %v, want ErrUnauthorized", err)
	}
	if _, err := engine.Claim(sub.ID, modA); err != nil {
		t.Fatalf("claim by moderator: %v", err)
	}
}

func TestClaimExclusivity(t *testing.T) {
	engine, _, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")

	claimed, err := engine.Claim(sub.ID, modA)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if holder, _ := claimed.Claimant(); holder != modA {
		t.Fatalf("claimant = %d, want %d", holder, modA)
	}
	if _, err := engine.Claim(sub.ID, modB); !errors.Is(err, errs.ErrAlreadyClaimed) {
		t.Fatalf("second claim: err = %v, want ErrAlreadyClaimed", err)
	}

	released, err := engine.Unclaim(sub.ID, modA)
	if err != nil {
		t.Fatalf("unclaim: %v", err)
	}
	if released.Status != model.StatusPending {
		t.Fatalf("status after unclaim = %s, want pending", released.Status)
	}
	if _, err := engine.Claim(sub.ID, modB); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}

func TestApprovePublishesAndNotifies(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")

	listing, err := engine.Approve(sub.ID, modA)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if len(fake.Posts) != 1 {
		t.Fatalf("channel posts = %d, want 1", len(fake.Posts))
	}
	post := fake.Posts[0]
	if post.ChannelID != "directory" {
		t.Fatalf("posted to %q, want directory", post.ChannelID)
	}
	if !strings.Contains(post.Text, "@mybot") {
		t.Fatalf("post text missing handle: %q", post.Text)
	}
	if len(post.Keyboard) != 2 {
		t.Fatalf("rating keyboard rows = %d, want 2", len(post.Keyboard))
	}

	stored, err := store.GetListing(listing.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if stored.PostRef.IsZero() {
		t.Fatal("post ref was not recorded")
	}

	texts := fake.DMTexts(submitter)
	if len(texts) != 1 || !strings.Contains(texts[0], "approved") {
		t.Fatalf("submitter DMs = %q, want one approval notice", texts)
	}
}

func TestApproveSurvivesPublishFailure(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")
	fake.FailChannel = true

	listing, err := engine.Approve(sub.ID, modA)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	// The approval is committed even though publishing failed.
	stored, err := store.GetListing(listing.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if !stored.PostRef.IsZero() {
		t.Fatalf("post ref = %+v, want zero", stored.PostRef)
	}

	texts := fake.DMTexts(modA)
	if len(texts) != 1 || !strings.Contains(texts[0], "publishing") {
		t.Fatalf("actor DMs = %q, want one publish warning", texts)
	}
}

func TestApproveSurvivesBlockedSubmitter(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")
	fake.FailDM[submitter] = true

	if _, err := engine.Approve(sub.ID, modA); err != nil {
		t.Fatalf("approve: %v", err)
	}
}

func TestApproveHonorsForeignClaim(t *testing.T) {
	engine, _, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")
	if _, err := engine.Claim(sub.ID, modA); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := engine.Approve(sub.ID, modB); !errors.Is(err, errs.ErrNotClaimant) {
		t.Fatalf("approve by non-claimant: err = %v, want ErrNotClaimant", err)
	}
}

func TestRejectNotifiesSubmitter(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")

	rejected, err := engine.Reject(sub.ID, modA, model.ReasonOffline)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.StatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}

	texts := fake.DMTexts(submitter)
	if len(texts) != 1 || !strings.Contains(texts[0], model.ReasonOffline.Text()) {
		t.Fatalf("submitter DMs = %q, want rejection with reason", texts)
	}

	// A resolved submission is out of reach for further actions.
	if _, err := engine.Approve(sub.ID, modA); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("approve after reject: err = %v, want ErrNotFound", err)
	}
}

func TestRejectSwallowsNoticeFailure(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")
	fake.FailDM[submitter] = true

	if _, err := engine.Reject(sub.ID, modA, model.ReasonSpam); err != nil {
		t.Fatalf("reject: %v", err)
	}
}

func TestNotifyNewSubmissionFanOut(t *testing.T) {
	engine, fake, store := newTestEngine(t)
	sub := seedSubmission(t, store, "@mybot")

	// One blocked recipient must not stop the rest.
	fake.FailDM[owner] = true
	engine.NotifyNewSubmission(sub.ID)

	for _, id := range []int64{modA, modB} {
		texts := fake.DMTexts(id)
		if len(texts) != 1 || !strings.Contains(texts[0], "@mybot") {
			t.Fatalf("recipient %d DMs = %q, want one review request", id, texts)
		}
	}
	if texts := fake.DMTexts(submitter); len(texts) != 0 {
		t.Fatalf("submitter received review fan-out: %q", texts)
	}
}
