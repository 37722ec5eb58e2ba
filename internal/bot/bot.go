package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type Bot struct {
	discord   *discordgo.Session
	prefix    string
	tracker   *Tracker
	messenger Messenger
	ctx       context.Context
	fatal     chan error
}

func NewBot(discord *discordgo.Session, prefix string, tracker *Tracker, messenger Messenger) *Bot {
	return &Bot{
		discord:   discord,
		prefix:    prefix,
		tracker:   tracker,
		messenger: messenger,
		ctx:       context.Background(),
		fatal:     make(chan error, 1),
	}
}

// NewSession creates the discord session with the intents the bot needs
func NewSession(token string) (*discordgo.Session, error) {
	discord, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent
	return discord, nil
}

// Run connects to discord and blocks until the context is cancelled
// or the tracker cannot start
func (bot *Bot) Run(ctx context.Context) error {

	bot.ctx = ctx

	// Event handlers
	bot.discord.AddHandler(bot.Ready)
	bot.discord.AddHandler(bot.Receive)

	// Open session
	if err := bot.discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer bot.discord.Close()

	log.Info().Msg("Discord session open")
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		return nil
	case err := <-bot.fatal:
		return err
	}
}

// Ready fires on every new gateway session. The tracker is started by the first one only
func (bot *Bot) Ready(discord *discordgo.Session, ready *discordgo.Ready) {
	if ready.User != nil {
		log.Info().Str("user", ready.User.Username).Msg("Connected to discord")
	}
	go bot.startTracker()
}

func (bot *Bot) startTracker() {
	err := bot.tracker.Run(bot.ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyStarted):
		log.Debug().Msg("Tracker already running, ignoring reconnection")
	case bot.ctx.Err() != nil:
		log.Debug().Err(err).Msg("Tracker interrupted by shutdown")
	default:
		bot.fatal <- fmt.Errorf("tracker startup: %w", err)
	}
}

func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject my own messages
	if message.Author == nil || (discord.State != nil && discord.State.User != nil && message.Author.ID == discord.State.User.ID) {
		return
	}
	if message.Author.Bot {
		return
	}

	// Ignore messages from private channels
	if message.GuildID == "" {
		log.Debug().Msg("Ignoring private message")
		return
	}

	responses := bot.Handle(message.ChannelID, message.Content)
	bot.sendResponses(message.ChannelID, responses)
}

// Handle runs the command in the content, if any, and returns what to reply
func (bot *Bot) Handle(channelID string, content string) []Response {

	parseResult := Parse(bot.prefix, content)
	switch parseResult.parseid {
	case PARSEID_NO_BOT_PREFIX:
		return nil
	case PARSEID_OK:
		log.Info().Str("channel", channelID).Str("command", content).Msg("Command understood")
		switch parseResult.command {
		case COMMAND_CLEAR:
			switch number := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of message count %T", number))
			case int:
				return bot.clear(channelID, number)
			}
		case COMMAND_STATUS:
			return StatusMessage(bot.tracker.Status())
		case COMMAND_HELP:
			return HelpMessage(bot.prefix)
		default:
			panic(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
		}
	default:
		// The command is invalid input, so it contains an error message
		log.Info().Str("input", content).Str("reason", parseResult.errorMessage).Msg("Wrong input")
		return InputNotValid(parseResult.errorMessage)
	}
}

// Delete recent messages of the channel, never the live displays
func (bot *Bot) clear(channelID string, number int) []Response {
	deleted, err := bot.messenger.Purge(channelID, number, bot.tracker.Owns)
	if err != nil {
		log.Error().Err(err).Str("channel", channelID).Int("deleted", deleted).Msg("Could not clear channel")
		return ClearFailed()
	}
	log.Info().Str("channel", channelID).Int("deleted", deleted).Msg("Channel cleared")
	return nil
}

func (bot *Bot) sendResponses(channelID string, responses []Response) {
	for _, response := range responses {
		if _, err := bot.messenger.Send(channelID, response); err != nil {
			log.Error().Err(err).Msg("Could not send response")
		}
	}
}
