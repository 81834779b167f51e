package bot

import "github.com/bwmarrin/discordgo"

// AllCommands are the slash commands registered at startup.
var AllCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "start",
		Description: "Show the BotLibrary menu",
	},
	{
		Name:        "add",
		Description: "Submit a new bot to the library",
	},
	{
		Name:        "cancel",
		Description: "Abort a running submission",
	},
	{
		Name:        "help",
		Description: "How to use BotLibrary",
	},
	{
		Name:        "list",
		Description: "Browse the bot library",
	},
	{
		Name:        "search",
		Description: "Search the bot library",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Text to search for",
				Required:    true,
			},
		},
	},
	{
		Name:        "stats",
		Description: "Show library statistics (staff only)",
	},
	{
		Name:        "broadcast",
		Description: "Broadcast a message to all users (staff only)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "message",
				Description: "Announcement text",
				Required:    true,
			},
		},
	},
	{
		Name:        "addsudo",
		Description: "Promote a user to sudo (owner only)",
		Options:     []*discordgo.ApplicationCommandOption{userOption()},
	},
	{
		Name:        "removesudo",
		Description: "Demote a sudo user (owner only)",
		Options:     []*discordgo.ApplicationCommandOption{userOption()},
	},
	{
		Name:        "addmod",
		Description: "Promote a user to moderator (staff only)",
		Options:     []*discordgo.ApplicationCommandOption{userOption()},
	},
	{
		Name:        "removemod",
		Description: "Demote a moderator (staff only)",
		Options:     []*discordgo.ApplicationCommandOption{userOption()},
	},
	{
		Name:        "deletebot",
		Description: "Remove a listed bot completely (staff only)",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "handle",
				Description: "Handle of the listed bot",
				Required:    true,
			},
		},
	},
}

func userOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "Target user",
		Required:    true,
	}
}
