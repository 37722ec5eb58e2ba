package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Discord only bulk deletes messages younger than two weeks
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// Discord returns at most this many messages per page, and bulk deletes at most this many
const pageSize = 100

// Handle points at a message the bot posted and keeps editing
type Handle struct {
	ChannelID string
	MessageID string
}

// ChannelError wraps any failure talking to Discord
type ChannelError struct {
	Op        string
	ChannelID string
	Err       error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s %s: %v", e.Op, e.ChannelID, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Messenger is everything the bot needs to do to a channel.
// Purge deletes up to limit recent messages, skipping those for which keep
// returns true, and returns how many were deleted
type Messenger interface {
	Send(channelID string, response Response) (Handle, error)
	Edit(handle Handle, response Response) error
	Purge(channelID string, limit int, keep func(messageID string) bool) (int, error)
}

// The part of the discordgo REST API used by the messenger
type session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

type DiscordMessenger struct {
	session session
	now     func() time.Time
}

func NewDiscordMessenger(discord *discordgo.Session) *DiscordMessenger {
	return &DiscordMessenger{session: discord, now: time.Now}
}

func (m *DiscordMessenger) Send(channelID string, response Response) (Handle, error) {
	message, err := m.session.ChannelMessageSendComplex(channelID, response.MessageSend())
	if err != nil {
		return Handle{}, &ChannelError{Op: "send", ChannelID: channelID, Err: err}
	}
	return Handle{ChannelID: message.ChannelID, MessageID: message.ID}, nil
}

func (m *DiscordMessenger) Edit(handle Handle, response Response) error {
	if _, err := m.session.ChannelMessageEditComplex(response.MessageEdit(handle)); err != nil {
		return &ChannelError{Op: "edit", ChannelID: handle.ChannelID, Err: err}
	}
	return nil
}

func (m *DiscordMessenger) Purge(channelID string, limit int, keep func(messageID string) bool) (int, error) {

	deleted := 0
	before := ""
	remaining := limit
	for remaining > 0 {

		// Fetch the next page of history, newest first
		messages, err := m.session.ChannelMessages(channelID, min(remaining, pageSize), before, "", "")
		if err != nil {
			return deleted, &ChannelError{Op: "purge", ChannelID: channelID, Err: err}
		}
		if len(messages) == 0 {
			break
		}
		remaining -= len(messages)
		before = messages[len(messages)-1].ID

		// Split between what can go in bulk and what has to go one by one
		var recent, old []string
		for _, message := range messages {
			if keep != nil && keep(message.ID) {
				continue
			}
			if m.now().Sub(message.Timestamp) < bulkDeleteMaxAge {
				recent = append(recent, message.ID)
			} else {
				old = append(old, message.ID)
			}
		}

		if len(recent) > 0 {
			if err := m.session.ChannelMessagesBulkDelete(channelID, recent); err != nil {
				return deleted, &ChannelError{Op: "purge", ChannelID: channelID, Err: err}
			}
			deleted += len(recent)
		}
		for _, id := range old {
			if err := m.session.ChannelMessageDelete(channelID, id); err != nil {
				return deleted, &ChannelError{Op: "purge", ChannelID: channelID, Err: err}
			}
			deleted++
		}

		if len(messages) < pageSize {
			break
		}
	}

	log.Debug().Str("channel", channelID).Int("deleted", deleted).Msg("Purged channel")
	return deleted, nil
}
