package main

import (
	"log/slog"
	"os"

	"botlibrary/bot"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := bot.Start(log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
}
