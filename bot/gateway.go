package bot

import (
	"strconv"

	"github.com/bwmarrin/discordgo"

	"botlibrary/gateway"
	"botlibrary/model"
)

// discordGateway adapts a discordgo session to the gateway interface the
// engines consume.
type discordGateway struct {
	session *discordgo.Session
}

// NewGateway wraps a Discord session as a messaging gateway.
func NewGateway(session *discordgo.Session) gateway.Gateway {
	return &discordGateway{session: session}
}

func (g *discordGateway) SendDM(userID int64, text string, kb gateway.Keyboard) (model.MessageRef, error) {
	channel, err := g.session.UserChannelCreate(strconv.FormatInt(userID, 10))
	if err != nil {
		return model.MessageRef{}, err
	}
	msg, err := g.session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content:    text,
		Components: components(kb),
	})
	if err != nil {
		return model.MessageRef{}, err
	}
	return model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func (g *discordGateway) SendChannel(channelID, text string, kb gateway.Keyboard) (model.MessageRef, error) {
	msg, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    text,
		Components: components(kb),
	})
	if err != nil {
		return model.MessageRef{}, err
	}
	return model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func (g *discordGateway) Edit(ref model.MessageRef, text string, kb gateway.Keyboard) error {
	comps := components(kb)
	_, err := g.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.ChannelID,
		ID:         ref.MessageID,
		Content:    &text,
		Components: &comps,
	})
	return err
}

func (g *discordGateway) Delete(ref model.MessageRef) error {
	return g.session.ChannelMessageDelete(ref.ChannelID, ref.MessageID)
}

// components converts a keyboard into Discord action rows.
func components(kb gateway.Keyboard) []discordgo.MessageComponent {
	if len(kb) == 0 {
		return nil
	}
	rows := make([]discordgo.MessageComponent, 0, len(kb))
	for _, row := range kb {
		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, discordgo.Button{
					Label: b.Label,
					Style: discordgo.LinkButton,
					URL:   b.URL,
				})
				continue
			}
			buttons = append(buttons, discordgo.Button{
				Label:    b.Label,
				Style:    discordgo.PrimaryButton,
				CustomID: b.Token,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}
