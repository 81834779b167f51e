package action

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"botlibrary/errs"
	"botlibrary/model"
)

func TestParseRoundTrips(t *testing.T) {
	cases := []struct {
		token string
		want  Action
	}{
		{AddBotToken(), Action{Kind: KindAddBot}},
		{HelpToken(), Action{Kind: KindHelp}},
		{StartBackToken(), Action{Kind: KindStartBack}},
		{BrowseToken(), Action{Kind: KindBrowse}},
		{BrowseTopToken(), Action{Kind: KindBrowseTop}},
		{BrowseCategoriesToken(), Action{Kind: KindBrowseCategories}},
		{SubmitYesToken(), Action{Kind: KindSubmitYes}},
		{SubmitNoToken(), Action{Kind: KindSubmitNo}},
		{CategoryToken(model.CategoryUtility), Action{Kind: KindCategoryPick, Category: model.CategoryUtility}},
		{ListCategoryToken(model.CategoryGaming), Action{Kind: KindListCategory, Category: model.CategoryGaming}},
		{ClaimToken(42), Action{Kind: KindClaim, SubmissionID: 42}},
		{UnclaimToken(42), Action{Kind: KindUnclaim, SubmissionID: 42}},
		{ApproveToken(42), Action{Kind: KindApprove, SubmissionID: 42}},
		{RejectMenuToken(42), Action{Kind: KindRejectMenu, SubmissionID: 42}},
		{RejectToken(42, model.ReasonSpam), Action{Kind: KindReject, SubmissionID: 42, Reason: model.ReasonSpam}},
		{RateToken(7, 5), Action{Kind: KindRate, ListingID: 7, Score: 5}},
		{ListPageToken(3), Action{Kind: KindListPage, Page: 3}},
	}

	for _, tc := range cases {
		got, err := Parse(tc.token)
		if err != nil {
			t.Errorf("Parse(%q): %v", tc.token, err)
			continue
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tc.token, diff)
		}
	}
}

func TestParseRejectsMalformedTokens(t *testing.T) {
	tokens := []string{
		"",
		"bogus",
		"cat_Nonsense",
		"list_cat_",
		"mod_claim_",
		"mod_claim_abc",
		"mod_claim_-1",
		"mod_claim_0",
		"mod_reject_abc",
		"mod_reject_42_nonsense",
		"rate_7",
		"rate_7_0",
		"rate_7_6",
		"rate_abc_3",
		"list_page_-1",
		"list_page_x",
	}

	for _, token := range tokens {
		if _, err := Parse(token); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("Parse(%q): err = %v, want ErrValidation", token, err)
		}
	}
}
