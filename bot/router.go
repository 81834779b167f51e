package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"botlibrary/action"
	"botlibrary/admin"
	"botlibrary/directory"
	"botlibrary/errs"
	"botlibrary/gateway"
	"botlibrary/model"
	"botlibrary/moderation"
	"botlibrary/rating"
	"botlibrary/render"
	"botlibrary/workflow"
)

// Router dispatches inbound Discord events to the engines. Callback tokens
// are decoded exactly once, at this boundary.
type Router struct {
	store      accountStore
	workflow   *workflow.Engine
	moderation *moderation.Engine
	rating     *rating.Engine
	directory  *directory.Engine
	admin      *admin.Engine
	log        *slog.Logger

	commandHandlers map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64)
}

type accountStore interface {
	GetOrCreateAccount(userID int64, username string) (*model.Account, error)
}

// NewRouter wires the engines into a dispatcher.
func NewRouter(store accountStore, wf *workflow.Engine, mod *moderation.Engine, rt *rating.Engine, dir *directory.Engine, adm *admin.Engine, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		store:      store,
		workflow:   wf,
		moderation: mod,
		rating:     rt,
		directory:  dir,
		admin:      adm,
		log:        log,
	}
	r.commandHandlers = map[string]func(*discordgo.Session, *discordgo.InteractionCreate, int64){
		"start":      r.cmdStart,
		"add":        r.cmdAdd,
		"cancel":     r.cmdCancel,
		"help":       r.cmdHelp,
		"list":       r.cmdList,
		"search":     r.cmdSearch,
		"stats":      r.cmdStats,
		"broadcast":  r.cmdBroadcast,
		"addsudo":    r.cmdAddSudo,
		"removesudo": r.cmdRemoveSudo,
		"addmod":     r.cmdAddMod,
		"removemod":  r.cmdRemoveMod,
		"deletebot":  r.cmdDeleteBot,
	}
	return r
}

// OnInteractionCreate is the main interaction router.
func (r *Router) OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	actorID, username, ok := interactionUser(i)
	if !ok {
		return
	}
	if _, err := r.store.GetOrCreateAccount(actorID, username); err != nil {
		r.log.Error("account upsert failed", "user", actorID, "err", err)
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := r.commandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i, actorID)
		}
	case discordgo.InteractionMessageComponent:
		r.onComponent(s, i, actorID, username)
	}
}

// OnMessageCreate feeds direct messages into the submission workflow.
func (r *Router) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return
	}
	userID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return
	}
	if _, err := r.store.GetOrCreateAccount(userID, m.Author.Username); err != nil {
		r.log.Error("account upsert failed", "user", userID, "err", err)
		return
	}
	if _, err := r.workflow.HandleText(userID, m.Content); err != nil &&
		!errors.Is(err, errs.ErrValidation) && !errors.Is(err, errs.ErrDuplicate) {
		r.log.Error("workflow text failed", "user", userID, "err", err)
	}
}

func (r *Router) onComponent(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64, username string) {
	token := i.MessageComponentData().CustomID
	act, err := action.Parse(token)
	if err != nil {
		r.log.Warn("malformed callback token", "token", token, "user", actorID)
		respondEphemeral(s, i, "⚠️ This button is no longer valid.")
		return
	}

	switch act.Kind {
	case action.KindAddBot:
		if err := r.workflow.Start(actorID); err != nil {
			r.log.Error("workflow start failed", "user", actorID, "err", err)
		}
		respondEphemeral(s, i, "🤖 Check your direct messages to continue.")

	case action.KindHelp:
		text, kb := render.HelpText()
		respondUpdate(s, i, text, kb)

	case action.KindStartBack:
		text, kb := render.StartMenu(username)
		respondUpdate(s, i, text, kb)

	case action.KindBrowse:
		text, kb := render.BrowseMenu()
		respondUpdate(s, i, text, kb)

	case action.KindBrowseTop:
		listings, err := r.directory.TopRated()
		if err != nil {
			r.fail(s, i, err)
			return
		}
		text, kb := render.TopRated(listings)
		respondUpdate(s, i, text, kb)

	case action.KindBrowseCategories:
		text, kb := render.CategoryMenu()
		respondUpdate(s, i, text, kb)

	case action.KindListCategory:
		listings, err := r.directory.ByCategory(act.Category)
		if err != nil {
			r.fail(s, i, err)
			return
		}
		text, kb := render.CategoryList(act.Category, listings)
		respondUpdate(s, i, text, kb)

	case action.KindListPage:
		listings, totalPages, offset, err := r.directory.Page(act.Page)
		if err != nil {
			r.fail(s, i, err)
			return
		}
		text, kb := render.LibraryPage(listings, act.Page, totalPages, offset)
		respondUpdate(s, i, text, kb)

	case action.KindCategoryPick:
		if err := r.workflow.HandleCategory(actorID, act.Category); err != nil {
			r.fail(s, i, err)
			return
		}
		respondEphemeral(s, i, fmt.Sprintf("🏷️ Category set to %s.", act.Category))

	case action.KindSubmitYes, action.KindSubmitNo:
		err := r.workflow.Confirm(actorID, act.Kind == action.KindSubmitYes)
		if err != nil && !errors.Is(err, errs.ErrDuplicate) {
			r.fail(s, i, err)
			return
		}
		ack(s, i)

	case action.KindClaim:
		r.onClaim(s, i, actorID, username, act.SubmissionID)

	case action.KindUnclaim:
		r.onUnclaim(s, i, actorID, act.SubmissionID)

	case action.KindApprove:
		r.onApprove(s, i, actorID, username, act.SubmissionID)

	case action.KindRejectMenu:
		r.onRejectMenu(s, i, actorID, act.SubmissionID)

	case action.KindReject:
		r.onReject(s, i, actorID, username, act.SubmissionID, act.Reason)

	case action.KindRate:
		r.onRate(s, i, actorID, act.ListingID, act.Score)
	}
}

func (r *Router) onClaim(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64, username string, subID int64) {
	sub, err := r.moderation.Claim(subID, actorID)
	if err != nil {
		r.fail(s, i, err)
		return
	}
	text, kb := render.ReviewMessage(sub, username)
	respondUpdate(s, i, text, kb)
}

func (r *Router) onUnclaim(s *discordgo.Session, i *discordgo.InteractionCreate, actorID, subID int64) {
	sub, err := r.moderation.Unclaim(subID, actorID)
	if err != nil {
		r.fail(s, i, err)
		return
	}
	text, kb := render.ReviewMessage(sub, "")
	respondUpdate(s, i, text, kb)
}

func (r *Router) onApprove(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64, username string, subID int64) {
	listing, err := r.moderation.Approve(subID, actorID)
	if err != nil {
		r.fail(s, i, err)
		return
	}
	respondUpdate(s, i, fmt.Sprintf("✅ %s approved by %s", render.Escape(listing.Handle), render.Escape(username)), nil)
}

func (r *Router) onRejectMenu(s *discordgo.Session, i *discordgo.InteractionCreate, actorID, subID int64) {
	// Authorization is rechecked by the reject action itself; the menu is
	// just a view change.
	text, kb := render.RejectReasonKeyboard(subID)
	respondUpdate(s, i, text, kb)
}

func (r *Router) onReject(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64, username string, subID int64, reason model.RejectReason) {
	sub, err := r.moderation.Reject(subID, actorID, reason)
	if err != nil {
		r.fail(s, i, err)
		return
	}
	respondUpdate(s, i, fmt.Sprintf("❌ %s rejected by %s\nReason: %s", render.Escape(sub.Handle), render.Escape(username), reason.Text()), nil)
}

func (r *Router) onRate(s *discordgo.Session, i *discordgo.InteractionCreate, actorID, listingID int64, score int) {
	listing, outcome, err := r.rating.Vote(listingID, actorID, score)
	switch {
	case errors.Is(err, errs.ErrAlreadyRated):
		respondEphemeral(s, i, fmt.Sprintf("✅ You already rated %d stars!", score))
	case errors.Is(err, errs.ErrNotFound):
		respondEphemeral(s, i, "⚠️ This bot is no longer listed.")
	case errors.Is(err, errs.ErrDelivery):
		// Vote persisted; only the display refresh failed.
		respondEphemeral(s, i, "⚠️ Vote recorded, but the post could not be refreshed.")
	case err != nil:
		r.fail(s, i, err)
	case outcome == rating.OutcomeChanged:
		respondEphemeral(s, i, fmt.Sprintf("✅ Rating updated to %d stars! Now ⭐ %.1f", score, listing.Rating))
	default:
		respondEphemeral(s, i, fmt.Sprintf("✅ You rated %d stars! Now ⭐ %.1f", score, listing.Rating))
	}
}

// fail maps engine errors onto the short acknowledgments users see.
func (r *Router) fail(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		respondEphemeral(s, i, "⛔ You are not part of the moderation team.")
	case errors.Is(err, errs.ErrAlreadyClaimed):
		respondEphemeral(s, i, "⚠️ Already claimed by another moderator!")
	case errors.Is(err, errs.ErrNotClaimant):
		respondEphemeral(s, i, "⚠️ You didn't claim this submission.")
	case errors.Is(err, errs.ErrNotFound):
		respondEphemeral(s, i, "⚠️ This entry no longer exists.")
	case errors.Is(err, errs.ErrValidation):
		respondEphemeral(s, i, "⚠️ Invalid request.")
	default:
		r.log.Error("interaction failed", "err", err)
		respondEphemeral(s, i, "⚠️ Something went wrong, please try again.")
	}
}

// interactionUser extracts the acting account from a guild or DM
// interaction.
func interactionUser(i *discordgo.InteractionCreate) (int64, string, bool) {
	var user *discordgo.User
	if i.Member != nil {
		user = i.Member.User
	} else {
		user = i.User
	}
	if user == nil {
		return 0, "", false
	}
	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, user.Username, true
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func respondUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, text string, kb gateway.Keyboard) {
	comps := components(kb)
	if comps == nil {
		comps = []discordgo.MessageComponent{}
	}
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    text,
			Components: comps,
		},
	})
}

func ack(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}
