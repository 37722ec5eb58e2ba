package bot

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"armatracker/internal/common"
	"armatracker/internal/config"
	"armatracker/internal/gameserver"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultInterval   = 5 * time.Second
	DefaultStaleAfter = time.Minute
)

// How many messages the startup purge removes
const startupPurgeLimit = 100

var ErrAlreadyStarted = errors.New("tracker already started")

type State int32

const (
	StateUnstarted State = iota
	StateStarting
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "Unstarted"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Querier is the game server as the tracker sees it
type Querier interface {
	Query(ctx context.Context) (gameserver.Snapshot, []gameserver.Player, error)
}

// Status is a point in time view of the tracker, safe to hand to command handlers
type Status struct {
	State               State
	LastRefresh         time.Time
	ConsecutiveFailures int
}

type displays struct {
	server  Handle
	players Handle
}

// Tracker keeps the server and player displays of one channel in sync
// with the game server. Only the goroutine inside Run writes to the displays
type Tracker struct {
	channelID   string
	querier     Querier
	messenger   Messenger
	credentials config.Credentials
	interval    time.Duration
	after       func(time.Duration) <-chan time.Time
	now         func() time.Time
	staleAfter  time.Duration

	state     atomic.Int32
	displays  atomic.Pointer[displays]
	failures  atomic.Int64
	refreshed *common.Stopwatch
	stale     *common.TimedExecutor
}

type TrackerOption func(*Tracker)

// WithInterval sets the wait between two poll cycles
func WithInterval(interval time.Duration) TrackerOption {
	return func(t *Tracker) {
		if interval > 0 {
			t.interval = interval
		}
	}
}

// WithStaleAfter sets how often a warning is logged while the displays cannot be refreshed
func WithStaleAfter(staleAfter time.Duration) TrackerOption {
	return func(t *Tracker) {
		if staleAfter > 0 {
			t.staleAfter = staleAfter
		}
	}
}

// WithClock replaces time.After, for tests
func WithClock(after func(time.Duration) <-chan time.Time) TrackerOption {
	return func(t *Tracker) {
		t.after = after
	}
}

// WithNow replaces time.Now when measuring how old the displays are, for tests
func WithNow(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		t.now = now
	}
}

func NewTracker(channelID string, querier Querier, messenger Messenger, credentials config.Credentials, options ...TrackerOption) *Tracker {

	tracker := &Tracker{
		channelID:   channelID,
		querier:     querier,
		messenger:   messenger,
		credentials: credentials,
		interval:    DefaultInterval,
		after:       time.After,
		now:         time.Now,
		staleAfter:  DefaultStaleAfter,
	}
	for _, option := range options {
		option(tracker)
	}
	tracker.refreshed = common.NewStopwatchWithClock(tracker.staleAfter, tracker.now)
	tracker.stale = common.NewTimedExecutorWithClock(tracker.staleAfter, tracker.warnStale, tracker.now)
	return tracker
}

func (t *Tracker) State() State {
	return State(t.state.Load())
}

func (t *Tracker) Status() Status {
	return Status{
		State:               t.State(),
		LastRefresh:         t.refreshed.StartTime(),
		ConsecutiveFailures: int(t.failures.Load()),
	}
}

// Owns reports if the message is one of the live displays
func (t *Tracker) Owns(messageID string) bool {
	d := t.displays.Load()
	if d == nil {
		return false
	}
	return d.server.MessageID == messageID || d.players.MessageID == messageID
}

// Run sets up the channel and then refreshes the displays every interval
// until the context is cancelled. It only returns an error if the startup
// fails, in which case the displays are never created.
// Only the first call does anything, the rest return ErrAlreadyStarted
func (t *Tracker) Run(ctx context.Context) error {

	if !t.state.CompareAndSwap(int32(StateUnstarted), int32(StateStarting)) {
		return ErrAlreadyStarted
	}
	defer t.state.Store(int32(StateStopped))

	log.Info().Str("channel", t.channelID).Msg("Starting tracker")
	if err := t.startup(ctx); err != nil {
		log.Error().Err(err).Str("channel", t.channelID).Msg("Tracker startup failed")
		return err
	}
	t.state.Store(int32(StateRunning))
	log.Info().Str("channel", t.channelID).Dur("interval", t.interval).Msg("Tracker running")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("channel", t.channelID).Msg("Tracker stopped")
			return nil
		case <-t.after(t.interval):
		}
		t.cycle(ctx)
	}
}

func (t *Tracker) startup(ctx context.Context) error {

	// Start from an empty channel. Not being able to is no reason to stop
	if deleted, err := t.messenger.Purge(t.channelID, startupPurgeLimit, nil); err != nil {
		log.Warn().Err(err).Msg("Could not purge the channel")
	} else {
		log.Info().Int("deleted", deleted).Msg("Channel purged")
	}

	// Static information, each one on its own
	for _, response := range []Response{Banner(), HostEmbed(), VoiceEmbed()} {
		if _, err := t.messenger.Send(t.channelID, response); err != nil {
			log.Warn().Err(err).Msg("Could not post static information")
		}
	}

	// Without a first answer from the server there is nothing to display
	snapshot, players, err := t.querier.Query(ctx)
	if err != nil {
		return err
	}

	server, err := t.messenger.Send(t.channelID, ResponseEmbed{*RenderServer(snapshot, t.credentials)})
	if err != nil {
		return err
	}
	playerList, err := t.messenger.Send(t.channelID, ResponseEmbed{*RenderPlayers(players)})
	if err != nil {
		return err
	}
	t.displays.Store(&displays{server: server, players: playerList})
	t.refreshed.Start()

	log.Info().Str("server", snapshot.Name).Int("players", len(players)).Msg("Displays created")
	return nil
}

// One poll cycle. Failures are logged and the displays keep their last content
func (t *Tracker) cycle(ctx context.Context) {

	logger := log.With().Str("cycle", uuid.NewString()).Logger()

	snapshot, players, err := t.querier.Query(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		failures := t.failures.Add(1)
		logger.Warn().Err(err).Int64("failures", failures).Msg("Server query failed, keeping the last displays")
		t.checkStale()
		return
	}
	if failures := t.failures.Swap(0); failures > 0 {
		logger.Info().Int64("failures", failures).Msg("Server answering again")
	}

	d := t.displays.Load()
	server := ResponseEmbed{*RenderServer(snapshot, t.credentials)}
	playerList := ResponseEmbed{*RenderPlayers(players)}

	// The two edits are independent: one failing does not stop the other
	updated := 0
	if err := t.messenger.Edit(d.server, server); err != nil {
		logger.Error().Err(err).Str("display", "server").Msg("Could not edit display")
	} else {
		updated++
	}
	if err := t.messenger.Edit(d.players, playerList); err != nil {
		logger.Error().Err(err).Str("display", "players").Msg("Could not edit display")
	} else {
		updated++
	}
	if updated == 0 {
		t.checkStale()
		return
	}
	t.refreshed.Start()
	t.stale.Reset()

	logger.Debug().Str("server", snapshot.Name).Int("players", len(players)).Msg("Displays refreshed")
}

// Warns, at most once every staleAfter, while the displays have not been refreshed for staleAfter
func (t *Tracker) checkStale() {
	if stale, _ := t.refreshed.Stopped(); stale {
		t.stale.Execute()
	}
}

func (t *Tracker) warnStale() {
	event := log.Warn().Str("channel", t.channelID).Int64("failures", t.failures.Load())
	if last := t.refreshed.StartTime(); !last.IsZero() {
		event = event.Time("last_refresh", last).Dur("stale_for", t.refreshed.Elapsed())
	}
	event.Msg("Displays are stale")
}
