package bot

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"botlibrary/admin"
	"botlibrary/auth"
	"botlibrary/config"
	"botlibrary/db"
	"botlibrary/directory"
	"botlibrary/moderation"
	"botlibrary/rating"
	"botlibrary/workflow"
)

// Start wires the store, engines and Discord session together and blocks
// until SIGINT/SIGTERM.
func Start(log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Cfg

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	gw := NewGateway(session)
	checker := auth.NewChecker(cfg.OwnerID, cfg.SudoSet(), store)

	mod := moderation.New(store, gw, checker, cfg.ChannelID, log)
	wf := workflow.New(store, gw, mod.NotifyNewSubmission, log)
	rt := rating.New(store, gw, log)
	dir := directory.New(store)
	adm := admin.New(store, gw, checker, log)

	router := NewRouter(store, wf, mod, rt, dir, adm, log)
	session.AddHandler(router.OnInteractionCreate)
	session.AddHandler(router.OnMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	if err := session.Open(); err != nil {
		return fmt.Errorf("open connection: %w", err)
	}
	defer session.Close()

	for _, cmd := range AllCommands {
		if _, err := session.ApplicationCommandCreate(session.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("create %q command: %w", cmd.Name, err)
		}
	}

	StartHealthServer(cfg.HealthAddr, log)

	log.Info("bot is now running, press CTRL-C to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	return nil
}
