// Package action decodes callback tokens into typed actions at the
// transport boundary, so engines never see raw token strings.
package action

import (
	"fmt"
	"strconv"
	"strings"

	"botlibrary/errs"
	"botlibrary/model"
)

// Kind discriminates the decoded action variants.
type Kind int

const (
	KindInvalid Kind = iota
	KindAddBot
	KindHelp
	KindStartBack
	KindBrowse
	KindBrowseTop
	KindBrowseCategories
	KindListCategory
	KindCategoryPick
	KindSubmitYes
	KindSubmitNo
	KindClaim
	KindUnclaim
	KindApprove
	KindRejectMenu
	KindReject
	KindRate
	KindListPage
)

// Action is a decoded callback token. Only the fields relevant to Kind are
// set.
type Action struct {
	Kind         Kind
	SubmissionID int64
	ListingID    int64
	Score        int
	Page         int
	Category     model.Category
	Reason       model.RejectReason
}

// Token builders. Keeping construction next to parsing keeps the grammar in
// one place.

func AddBotToken() string            { return "add_bot" }
func HelpToken() string              { return "help" }
func StartBackToken() string         { return "start_back" }
func BrowseToken() string            { return "browse_bots" }
func BrowseTopToken() string         { return "browse_top" }
func BrowseCategoriesToken() string  { return "browse_cats" }
func SubmitYesToken() string         { return "submit_yes" }
func SubmitNoToken() string          { return "submit_no" }

func ListCategoryToken(c model.Category) string { return "list_cat_" + string(c) }
func CategoryToken(c model.Category) string     { return "cat_" + string(c) }
func ClaimToken(id int64) string                { return fmt.Sprintf("mod_claim_%d", id) }
func UnclaimToken(id int64) string              { return fmt.Sprintf("mod_unclaim_%d", id) }
func ApproveToken(id int64) string              { return fmt.Sprintf("mod_approve_%d", id) }
func RejectMenuToken(id int64) string           { return fmt.Sprintf("mod_reject_%d", id) }
func RejectToken(id int64, r model.RejectReason) string {
	return fmt.Sprintf("mod_reject_%d_%s", id, r)
}
func RateToken(listingID int64, score int) string {
	return fmt.Sprintf("rate_%d_%d", listingID, score)
}
func ListPageToken(page int) string { return fmt.Sprintf("list_page_%d", page) }

// Parse decodes a callback token. Malformed tokens yield ErrValidation, not
// a panic: tokens arrive from the network and stale or forged values must be
// rejected defensively.
func Parse(token string) (Action, error) {
	switch token {
	case "add_bot":
		return Action{Kind: KindAddBot}, nil
	case "help":
		return Action{Kind: KindHelp}, nil
	case "start_back":
		return Action{Kind: KindStartBack}, nil
	case "browse_bots":
		return Action{Kind: KindBrowse}, nil
	case "browse_top":
		return Action{Kind: KindBrowseTop}, nil
	case "browse_cats":
		return Action{Kind: KindBrowseCategories}, nil
	case "submit_yes":
		return Action{Kind: KindSubmitYes}, nil
	case "submit_no":
		return Action{Kind: KindSubmitNo}, nil
	}

	switch {
	case strings.HasPrefix(token, "list_cat_"):
		name := strings.TrimPrefix(token, "list_cat_")
		if !model.ValidCategory(name) {
			return Action{}, badToken(token)
		}
		return Action{Kind: KindListCategory, Category: model.Category(name)}, nil

	case strings.HasPrefix(token, "cat_"):
		name := strings.TrimPrefix(token, "cat_")
		if !model.ValidCategory(name) {
			return Action{}, badToken(token)
		}
		return Action{Kind: KindCategoryPick, Category: model.Category(name)}, nil

	case strings.HasPrefix(token, "mod_claim_"):
		id, err := parseID(strings.TrimPrefix(token, "mod_claim_"))
		if err != nil {
			return Action{}, badToken(token)
		}
		return Action{Kind: KindClaim, SubmissionID: id}, nil

	case strings.HasPrefix(token, "mod_unclaim_"):
		id, err := parseID(strings.TrimPrefix(token, "mod_unclaim_"))
		if err != nil {
			return Action{}, badToken(token)
		}
		return Action{Kind: KindUnclaim, SubmissionID: id}, nil

	case strings.HasPrefix(token, "mod_approve_"):
		id, err := parseID(strings.TrimPrefix(token, "mod_approve_"))
		if err != nil {
			return Action{}, badToken(token)
		}
		return Action{Kind: KindApprove, SubmissionID: id}, nil

	case strings.HasPrefix(token, "mod_reject_"):
		rest := strings.TrimPrefix(token, "mod_reject_")
		// Either "<id>" (show the reason menu) or "<id>_<reason>".
		idPart, reasonPart, hasReason := strings.Cut(rest, "_")
		id, err := parseID(idPart)
		if err != nil {
			return Action{}, badToken(token)
		}
		if !hasReason {
			return Action{Kind: KindRejectMenu, SubmissionID: id}, nil
		}
		if !model.ValidReason(reasonPart) {
			return Action{}, badToken(token)
		}
		return Action{Kind: KindReject, SubmissionID: id, Reason: model.RejectReason(reasonPart)}, nil

	case strings.HasPrefix(token, "rate_"):
		parts := strings.Split(strings.TrimPrefix(token, "rate_"), "_")
		if len(parts) != 2 {
			return Action{}, badToken(token)
		}
		id, err := parseID(parts[0])
		if err != nil {
			return Action{}, badToken(token)
		}
		score, err := strconv.Atoi(parts[1])
		if err != nil || score < 1 || score > 5 {
			return Action{}, badToken(token)
		}
		return Action{Kind: KindRate, ListingID: id, Score: score}, nil

	case strings.HasPrefix(token, "list_page_"):
		page, err := strconv.Atoi(strings.TrimPrefix(token, "list_page_"))
		if err != nil || page < 0 {
			return Action{}, badToken(token)
		}
		return Action{Kind: KindListPage, Page: page}, nil
	}

	return Action{}, badToken(token)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", s)
	}
	return id, nil
}

func badToken(token string) error {
	return fmt.Errorf("%w: callback token %q", errs.ErrValidation, token)
}
