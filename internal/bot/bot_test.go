package bot

import (
	"errors"
	"testing"
	"time"

	"armatracker/internal/gameserver"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBot(messenger Messenger, tracker *Tracker) *Bot {
	return NewBot(nil, ">", tracker, messenger)
}

func TestHandleIgnoresChatter(t *testing.T) {
	messenger := &fakeMessenger{}
	bot := newTestBot(messenger, NewTracker(testChannel, &fakeQuerier{}, messenger, nil))

	assert.Nil(t, bot.Handle(testChannel, "anyone on tonight?"))
	assert.Empty(t, messenger.purgeCalls())
}

func TestHandleClearKeepsDisplays(t *testing.T) {
	querier := &fakeQuerier{}
	querier.set(alpha, nil, nil)
	messenger := &fakeMessenger{deleted: 7}

	run := startTracker(t, querier, messenger)
	run.clock.waitRequest(t)
	bot := newTestBot(messenger, run.tracker)

	responses := bot.Handle("999", ">clear 7")
	assert.Empty(t, responses)

	purges := messenger.purgeCalls()
	require.Len(t, purges, 2, "startup purge and the command")
	assert.Equal(t, "999", purges[1].channelID)
	assert.Equal(t, 7, purges[1].limit)
	require.NotNil(t, purges[1].keep)
	assert.True(t, purges[1].keep("m4"))
	assert.True(t, purges[1].keep("m5"))
	assert.False(t, purges[1].keep("m1"))

	run.stop(t)
}

func TestHandleClearDefault(t *testing.T) {
	messenger := &fakeMessenger{}
	bot := newTestBot(messenger, NewTracker(testChannel, &fakeQuerier{}, messenger, nil))

	bot.Handle(testChannel, ">clear")
	purges := messenger.purgeCalls()
	require.Len(t, purges, 1)
	assert.Equal(t, defaultClearCount, purges[0].limit)
}

func TestHandleClearFailure(t *testing.T) {
	messenger := &fakeMessenger{purgeErr: errors.New("missing permissions")}
	bot := newTestBot(messenger, NewTracker(testChannel, &fakeQuerier{}, messenger, nil))

	responses := bot.Handle(testChannel, ">clear 3")
	assert.Equal(t, ClearFailed(), responses)
}

func TestHandleStatus(t *testing.T) {
	querier := &fakeQuerier{}
	querier.set(alpha, []gameserver.Player{{Name: "P1", Duration: time.Minute}}, nil)
	messenger := &fakeMessenger{}

	run := startTracker(t, querier, messenger)
	run.clock.waitRequest(t)
	bot := newTestBot(messenger, run.tracker)

	responses := bot.Handle(testChannel, ">status")
	require.Len(t, responses, 1)
	status := embedOf(t, responses[0]).MessageEmbed
	fields := fieldsByName(&status)
	assert.Equal(t, "Running", fields["State"])
	assert.Equal(t, "None", fields["Failed polls"])

	run.stop(t)
}

func TestHandleHelpAndInvalidInput(t *testing.T) {
	messenger := &fakeMessenger{}
	bot := newTestBot(messenger, NewTracker(testChannel, &fakeQuerier{}, messenger, nil))

	help := bot.Handle(testChannel, ">help")
	require.Len(t, help, 1)
	assert.Len(t, embedOf(t, help[0]).Fields, 3)

	invalid := bot.Handle(testChannel, ">clear lots")
	require.Len(t, invalid, 1)
	text, ok := invalid[0].(ResponseString)
	require.True(t, ok)
	assert.Contains(t, text.String(), "Input `lots` is not a number")
}

func TestReceiveRepliesThroughMessenger(t *testing.T) {
	messenger := &fakeMessenger{}
	bot := newTestBot(messenger, NewTracker(testChannel, &fakeQuerier{}, messenger, nil))
	discord := &discordgo.Session{State: discordgo.NewState()}
	discord.State.User = &discordgo.User{ID: "bot"}

	// Own messages, other bots and private messages are ignored
	bot.Receive(discord, &discordgo.MessageCreate{Message: &discordgo.Message{Author: &discordgo.User{ID: "bot"}, GuildID: "g", ChannelID: "c", Content: ">help"}})
	bot.Receive(discord, &discordgo.MessageCreate{Message: &discordgo.Message{Author: &discordgo.User{ID: "x", Bot: true}, GuildID: "g", ChannelID: "c", Content: ">help"}})
	bot.Receive(discord, &discordgo.MessageCreate{Message: &discordgo.Message{Author: &discordgo.User{ID: "x"}, ChannelID: "c", Content: ">help"}})
	assert.Empty(t, messenger.sentMessages())

	bot.Receive(discord, &discordgo.MessageCreate{Message: &discordgo.Message{Author: &discordgo.User{ID: "x"}, GuildID: "g", ChannelID: "c", Content: ">help"}})
	sends := messenger.sentMessages()
	require.Len(t, sends, 1)
	assert.Equal(t, "c", sends[0].channelID)
}
