package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"armatracker/internal/bot"
	"armatracker/internal/common"
	"armatracker/internal/config"
	"armatracker/internal/gameserver"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Error().Err(err).Msg("armatracker stopped")
		os.Exit(1)
	}
}

func run(configPath string) error {

	// Configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := common.SetupLogging(cfg.Logging); err != nil {
		return err
	}

	// Passwords have to be there before the first display is rendered
	credentials, err := config.LoadCredentials(cfg.Tracker.Credentials)
	if err != nil {
		return err
	}
	log.Info().Int("servers", len(credentials)).Str("path", cfg.Tracker.Credentials).Msg("Credentials loaded")

	// Game server
	client := gameserver.NewClient(cfg.Server.Host, cfg.Server.Port, cfg.Server.Timeout)
	log.Info().Str("server", client.Addr()).Msg("Tracking game server")

	// Discord
	discord, err := bot.NewSession(cfg.Discord.Token)
	if err != nil {
		return err
	}
	messenger := bot.NewDiscordMessenger(discord)
	tracker := bot.NewTracker(cfg.Discord.Channel, client, messenger, credentials,
		bot.WithInterval(cfg.Tracker.Interval),
		bot.WithStaleAfter(cfg.Tracker.StaleAfter),
	)

	// Keep the bot running until there is an os interruption (ctrl + C)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return bot.NewBot(discord, cfg.Discord.Prefix, tracker, messenger).Run(ctx)
}
