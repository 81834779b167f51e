package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"botlibrary/errs"
	"botlibrary/gateway"
	"botlibrary/render"
)

func (r *Router) cmdStart(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	_, username, _ := interactionUser(i)
	text, kb := render.StartMenu(username)
	respondMessage(s, i, text, kb)
}

func (r *Router) cmdAdd(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	if err := r.workflow.Start(actorID); err != nil {
		r.log.Error("workflow start failed", "user", actorID, "err", err)
		respondEphemeral(s, i, "⚠️ Could not start the submission. Do you allow direct messages?")
		return
	}
	respondEphemeral(s, i, "🤖 Check your direct messages to continue.")
}

func (r *Router) cmdCancel(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	if r.workflow.Cancel(actorID) {
		respondEphemeral(s, i, "🛑 Submission cancelled.")
		return
	}
	respondEphemeral(s, i, "There is nothing to cancel.")
}

func (r *Router) cmdHelp(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	text, kb := render.HelpText()
	respondMessage(s, i, text, kb)
}

func (r *Router) cmdList(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	listings, totalPages, offset, err := r.directory.Page(0)
	if err != nil {
		r.fail(s, i, err)
		return
	}
	text, kb := render.LibraryPage(listings, 0, totalPages, offset)
	respondMessage(s, i, text, kb)
}

func (r *Router) cmdSearch(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	query := strings.TrimSpace(stringOption(i, "query"))
	if query == "" {
		respondEphemeral(s, i, "🔍 Usage: /search <bot name or description>")
		return
	}
	listings, err := r.directory.Search(query)
	if err != nil {
		r.fail(s, i, err)
		return
	}
	respondMessage(s, i, render.SearchResults(query, listings), nil)
}

func (r *Router) cmdStats(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	stats, err := r.admin.Stats(actorID)
	if err != nil {
		r.fail(s, i, err)
		return
	}
	respondEphemeral(s, i, render.StatsText(stats))
}

func (r *Router) cmdBroadcast(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	message := stringOption(i, "message")
	// Fan-out can take a while with many accounts; ack first.
	respondEphemeral(s, i, "📢 Broadcasting...")
	go func() {
		report, err := r.admin.Broadcast(actorID, message)
		if err != nil {
			r.log.Warn("broadcast refused", "user", actorID, "err", err)
			return
		}
		followupEphemeral(s, i, fmt.Sprintf("✅ Broadcast sent to %d users (%d failed).", report.Delivered, report.Failed))
	}()
}

func (r *Router) cmdAddSudo(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	target, ok := userOptionID(i, "user")
	if !ok {
		respondEphemeral(s, i, "Usage: /addsudo <user>")
		return
	}
	if err := r.admin.PromoteSudo(actorID, target); err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			respondEphemeral(s, i, "⛔ Only the Owner can add sudo users.")
			return
		}
		r.fail(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ User %d promoted to SUDO.", target))
}

func (r *Router) cmdRemoveSudo(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	target, ok := userOptionID(i, "user")
	if !ok {
		respondEphemeral(s, i, "Usage: /removesudo <user>")
		return
	}
	if err := r.admin.DemoteSudo(actorID, target); err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			respondEphemeral(s, i, "⛔ Only the Owner can remove sudo users.")
			return
		}
		r.fail(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ User %d removed from SUDO.", target))
}

func (r *Router) cmdAddMod(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	target, ok := userOptionID(i, "user")
	if !ok {
		respondEphemeral(s, i, "Usage: /addmod <user>")
		return
	}
	if err := r.admin.PromoteModerator(actorID, target); err != nil {
		r.fail(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ User %d promoted to MODERATOR.", target))
}

func (r *Router) cmdRemoveMod(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	target, ok := userOptionID(i, "user")
	if !ok {
		respondEphemeral(s, i, "Usage: /removemod <user>")
		return
	}
	if err := r.admin.DemoteModerator(actorID, target); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respondEphemeral(s, i, "⚠️ User not found or not a moderator.")
			return
		}
		r.fail(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ User %d removed from MODERATOR.", target))
}

func (r *Router) cmdDeleteBot(s *discordgo.Session, i *discordgo.InteractionCreate, actorID int64) {
	handle := strings.TrimSpace(stringOption(i, "handle"))
	if handle == "" {
		respondEphemeral(s, i, "Usage: /deletebot <handle>")
		return
	}
	if err := r.admin.DeleteListing(actorID, handle); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			respondEphemeral(s, i, fmt.Sprintf("❌ Bot %s not found in library.", render.Escape(handle)))
			return
		}
		r.fail(s, i, err)
		return
	}
	respondEphemeral(s, i, fmt.Sprintf("✅ Bot %s has been completely removed.", render.Escape(handle)))
}

func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

func userOptionID(i *discordgo.InteractionCreate, name string) (int64, bool) {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionUser {
			user := opt.UserValue(nil)
			if user == nil {
				return 0, false
			}
			id, err := strconv.ParseInt(user.ID, 10, 64)
			if err != nil {
				return 0, false
			}
			return id, true
		}
	}
	return 0, false
}

// respondMessage answers a slash command with a normal (visible) message.
func respondMessage(s *discordgo.Session, i *discordgo.InteractionCreate, text string, kb gateway.Keyboard) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    text,
			Components: components(kb),
		},
	})
}

func followupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	_, _ = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}
