// Package render builds all user-visible message texts and keyboards. User
// supplied text is always escaped before it is embedded in a message.
package render

import (
	"fmt"
	"sort"
	"strings"

	"botlibrary/action"
	"botlibrary/db"
	"botlibrary/gateway"
	"botlibrary/model"
)

const divider = "─────────────────────"

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"*", "\\*",
	"_", "\\_",
	"~", "\\~",
	"`", "\\`",
	"|", "\\|",
	">", "\\>",
	"#", "\\#",
)

// Escape neutralizes formatting characters in user-supplied text.
func Escape(s string) string {
	return markdownEscaper.Replace(s)
}

// StartMenu is the landing message with the main menu keyboard.
func StartMenu(name string) (string, gateway.Keyboard) {
	text := fmt.Sprintf(
		"Welcome to **BotLibrary**, %s!\n\n"+
			"I am a community-driven bot directory. You can discover bots or submit your own.\n\n"+
			"Would you like to add a bot to our library?",
		Escape(name),
	)
	kb := gateway.Keyboard{
		gateway.Row(gateway.Button{Label: "➕ Add a Bot", Token: action.AddBotToken()}),
		gateway.Row(gateway.Button{Label: "🔍 Browse Library", Token: action.BrowseToken()}),
		gateway.Row(gateway.Button{Label: "ℹ️ Help", Token: action.HelpToken()}),
	}
	return text, kb
}

// HelpText lists the available commands.
func HelpText() (string, gateway.Keyboard) {
	text := "**BotLibrary Help**\n\n" +
		"**For Users:**\n" +
		"/add — Submit a new bot\n" +
		"/list — Browse the library\n" +
		"/search <query> — Search for bots\n" +
		"/cancel — Abort a running submission\n\n" +
		"**For Staff:**\n" +
		"/stats — View statistics"
	kb := gateway.Keyboard{
		gateway.Row(gateway.Button{Label: "🔙 Back", Token: action.StartBackToken()}),
	}
	return text, kb
}

// BrowseMenu offers the top-rated and per-category views.
func BrowseMenu() (string, gateway.Keyboard) {
	kb := gateway.Keyboard{
		gateway.Row(gateway.Button{Label: "🏆 Top Rated", Token: action.BrowseTopToken()}),
		gateway.Row(gateway.Button{Label: "📂 Categories", Token: action.BrowseCategoriesToken()}),
		gateway.Row(gateway.Button{Label: "🔙 Back", Token: action.StartBackToken()}),
	}
	return "🔍 **Browse Library**\nSelect a filter:", kb
}

// Workflow prompts.
const (
	PromptHandle      = "🤖 Please enter the **bot handle** (e.g. @example_bot):"
	PromptBadHandle   = "⚠️ The handle must start with '@'. Please try again:"
	PromptDescription = "📝 **Description**:\nProvide a brief description of your bot:"
	PromptFeatures    = "⚙️ **Features**:\nList the main features of your bot:"
	SubmittedNotice   = "✅ **Submitted!** Your bot is now under review."
	CancelledNotice   = "🛑 Submission cancelled."
)

// DuplicateNotice explains why a handle was refused.
func DuplicateNotice(handle string) string {
	return fmt.Sprintf("⚠️ %s is already in our library or pending review.", Escape(handle))
}

// CategoryPrompt presents the category choices.
func CategoryPrompt() (string, gateway.Keyboard) {
	var kb gateway.Keyboard
	for _, c := range model.Categories() {
		kb = append(kb, gateway.Row(gateway.Button{Label: string(c), Token: action.CategoryToken(c)}))
	}
	return "🏷️ Select a **category**:", kb
}

// ConfirmSummary shows the draft back to the submitter for confirmation.
func ConfirmSummary(handle, description, features string, category model.Category) (string, gateway.Keyboard) {
	text := fmt.Sprintf(
		"📋 **Submission Confirmation**\n\n"+
			"🤖 **Bot**: %s\n"+
			"📝 **Description**: %s\n"+
			"⚙️ **Features**: %s\n"+
			"🏷️ **Category**: %s\n\n"+
			"Submit this request?",
		Escape(handle), Escape(description), Escape(features), category,
	)
	kb := gateway.Keyboard{
		gateway.Row(
			gateway.Button{Label: "✅ Submit", Token: action.SubmitYesToken()},
			gateway.Button{Label: "❌ Cancel", Token: action.SubmitNoToken()},
		),
	}
	return text, kb
}

// ReviewMessage is the moderator-facing view of a submission. The keyboard
// depends on the claim state.
func ReviewMessage(sub *model.Submission, claimantName string) (string, gateway.Keyboard) {
	var status string
	switch {
	case sub.Status == model.StatusUnderReview && claimantName != "":
		status = fmt.Sprintf("👨‍💼 **Being reviewed by**: %s", Escape(claimantName))
	default:
		status = "⏳ Awaiting Review"
	}

	text := fmt.Sprintf(
		"🆕 **NEW BOT SUBMISSION** #%d\n\n"+
			"👤 Submitted by: %d\n"+
			"🤖 Bot: %s\n\n"+
			"📝 Description: %s\n"+
			"⚙️ Features: %s\n"+
			"🏷️ Category: %s\n\n"+
			"Status: %s",
		sub.ID, sub.SubmittedBy, Escape(sub.Handle),
		Escape(sub.Description), Escape(sub.Features), sub.Category, status,
	)

	if _, held := sub.Claimant(); held {
		return text, ClaimedKeyboard(sub.ID)
	}
	return text, PendingKeyboard(sub.ID)
}

// PendingKeyboard offers the single claim control.
func PendingKeyboard(subID int64) gateway.Keyboard {
	return gateway.Keyboard{
		gateway.Row(gateway.Button{Label: "I Will Check ✋", Token: action.ClaimToken(subID)}),
	}
}

// ClaimedKeyboard offers approve/reject/unclaim to the claimant.
func ClaimedKeyboard(subID int64) gateway.Keyboard {
	return gateway.Keyboard{
		gateway.Row(
			gateway.Button{Label: "✅ Approve", Token: action.ApproveToken(subID)},
			gateway.Button{Label: "❌ Reject", Token: action.RejectMenuToken(subID)},
		),
		gateway.Row(gateway.Button{Label: "🔙 Unclaim", Token: action.UnclaimToken(subID)}),
	}
}

// RejectReasonKeyboard is the fixed reason menu of the two-phase reject.
func RejectReasonKeyboard(subID int64) (string, gateway.Keyboard) {
	var kb gateway.Keyboard
	for _, r := range model.RejectReasons() {
		kb = append(kb, gateway.Row(gateway.Button{
			Label: model.ReasonLabel(r),
			Token: action.RejectToken(subID, r),
		}))
	}
	kb = append(kb, gateway.Row(gateway.Button{Label: "🔙 Back", Token: action.ClaimToken(subID)}))
	return "❓ **Select Rejection Reason**:", kb
}

// ChannelPost is the public directory entry for a listing.
func ChannelPost(l *model.Listing) string {
	return fmt.Sprintf(
		"**%s**\n%s\n\n"+
			"**📖 Description**\n%s\n\n"+
			"**🚀 Features**\n%s\n\n"+
			"%s\n"+
			"**📂 Category:** #%s\n"+
			"**⭐ Rating:** %.1f/5.0 (%d votes)\n"+
			"**👤 Submitter:** %d\n"+
			"%s",
		Escape(l.Handle), divider,
		Escape(l.Description),
		Escape(l.Features),
		divider,
		l.Category,
		l.Rating, l.VoteCount,
		l.SubmittedBy,
		divider,
	)
}

// RatingKeyboard is the five star buttons attached to a channel post.
func RatingKeyboard(listingID int64) gateway.Keyboard {
	return gateway.Keyboard{
		gateway.Row(
			gateway.Button{Label: "⭐ 1", Token: action.RateToken(listingID, 1)},
			gateway.Button{Label: "⭐ 2", Token: action.RateToken(listingID, 2)},
			gateway.Button{Label: "⭐ 3", Token: action.RateToken(listingID, 3)},
		),
		gateway.Row(
			gateway.Button{Label: "⭐ 4", Token: action.RateToken(listingID, 4)},
			gateway.Button{Label: "⭐ 5", Token: action.RateToken(listingID, 5)},
		),
	}
}

// ApprovedNotice congratulates the submitter.
func ApprovedNotice(handle string) string {
	return fmt.Sprintf("🎉 Congratulations! Your bot %s has been approved!", Escape(handle))
}

// RejectedNotice tells the submitter why their bot was refused.
func RejectedNotice(handle, reasonText string) string {
	return fmt.Sprintf(
		"❌ **Submission Rejected**\n\nYour bot %s was not approved.\n**Reason**: %s",
		Escape(handle), reasonText,
	)
}

// TopRated lists the highest-rated bots.
func TopRated(listings []*model.Listing) (string, gateway.Keyboard) {
	kb := gateway.Keyboard{
		gateway.Row(gateway.Button{Label: "🔙 Back", Token: action.BrowseToken()}),
	}
	if len(listings) == 0 {
		return "No bots found!", kb
	}
	var b strings.Builder
	b.WriteString("🏆 **Top Rated Bots**\n\n")
	for _, l := range listings {
		fmt.Fprintf(&b, "• %s — ⭐ %.1f (%d)\n", Escape(l.Handle), l.Rating, l.VoteCount)
	}
	return b.String(), kb
}

// CategoryMenu lists the categories two per row.
func CategoryMenu() (string, gateway.Keyboard) {
	var kb gateway.Keyboard
	var row []gateway.Button
	for _, c := range model.Categories() {
		row = append(row, gateway.Button{Label: string(c), Token: action.ListCategoryToken(c)})
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, gateway.Row(gateway.Button{Label: "🔙 Back", Token: action.BrowseToken()}))
	return "📂 **Select Category**:", kb
}

// CategoryList shows the listings of one category.
func CategoryList(cat model.Category, listings []*model.Listing) (string, gateway.Keyboard) {
	kb := gateway.Keyboard{
		gateway.Row(gateway.Button{Label: "🔙 Back", Token: action.BrowseCategoriesToken()}),
	}
	if len(listings) == 0 {
		return fmt.Sprintf("📂 Category: **%s**\n\nNo bots found.", cat), kb
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📂 Category: **%s**\n\n", cat)
	for _, l := range listings {
		fmt.Fprintf(&b, "• %s — ⭐ %.1f\n", Escape(l.Handle), l.Rating)
	}
	return b.String(), kb
}

// LibraryPage renders one page of the library with navigation.
func LibraryPage(listings []*model.Listing, page, totalPages, offset int) (string, gateway.Keyboard) {
	if len(listings) == 0 {
		return "📂 **Bot Library**\n\nNo bots found.", nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📂 **Bot Library** (Page %d/%d)\n\n", page+1, totalPages)
	for i, l := range listings {
		fmt.Fprintf(&b, "%d. %s — ⭐ %.1f\n", offset+i+1, Escape(l.Handle), l.Rating)
	}

	var nav []gateway.Button
	if page > 0 {
		nav = append(nav, gateway.Button{Label: "⬅️ Back", Token: action.ListPageToken(page - 1)})
	}
	if page < totalPages-1 {
		nav = append(nav, gateway.Button{Label: "Next ➡️", Token: action.ListPageToken(page + 1)})
	}
	var kb gateway.Keyboard
	if len(nav) > 0 {
		kb = gateway.Keyboard{nav}
	}
	return b.String(), kb
}

// SearchResults formats the top matches for a query.
func SearchResults(query string, listings []*model.Listing) string {
	if len(listings) == 0 {
		return fmt.Sprintf("❌ No bots found matching '%s'.", Escape(query))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 **Top matches for '%s':**\n\n", Escape(query))
	for _, l := range listings {
		fmt.Fprintf(&b, "🤖 **%s**\n⭐ %.1f/5.0 (%d votes)\n\n", Escape(l.Handle), l.Rating, l.VoteCount)
	}
	return b.String()
}

// StatsText formats the aggregate statistics report.
func StatsText(stats *db.Stats) string {
	cats := make([]string, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	var b strings.Builder
	b.WriteString("📊 **System Statistics**\n\n")
	fmt.Fprintf(&b, "👥 Total Users: %d\n", stats.Accounts)
	fmt.Fprintf(&b, "🤖 Approved Bots: %d\n", stats.Listings)
	fmt.Fprintf(&b, "⏳ Pending Reviews: %d\n\n", stats.PendingSubmissions)
	b.WriteString("📂 **Categories**:\n")
	for _, c := range cats {
		fmt.Fprintf(&b, "• %s: %d\n", c, stats.ByCategory[model.Category(c)])
	}
	return b.String()
}

// BroadcastText wraps an announcement sent to every known account.
func BroadcastText(message string) string {
	return "📢 **ANNOUNCEMENT**\n\n" + Escape(message)
}
