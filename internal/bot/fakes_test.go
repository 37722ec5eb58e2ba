package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"armatracker/internal/gameserver"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type fakeQuerier struct {
	mu       sync.Mutex
	snapshot gameserver.Snapshot
	players  []gameserver.Player
	err      error
	calls    int
}

func (q *fakeQuerier) set(snapshot gameserver.Snapshot, players []gameserver.Player, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.snapshot, q.players, q.err = snapshot, players, err
}

func (q *fakeQuerier) Query(ctx context.Context) (gameserver.Snapshot, []gameserver.Player, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls++
	if q.err != nil {
		return gameserver.Snapshot{}, nil, q.err
	}
	return q.snapshot, q.players, nil
}

func (q *fakeQuerier) callCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

type sent struct {
	channelID string
	response  Response
}

type edited struct {
	handle   Handle
	response Response
}

type purged struct {
	channelID string
	limit     int
	keep      func(string) bool
}

type fakeMessenger struct {
	mu       sync.Mutex
	sends    []sent
	edits    []edited
	purges   []purged
	nextID   int
	sendErr  func(index int) error
	editErr  map[string]error
	purgeErr error
	deleted  int
}

func (m *fakeMessenger) Send(channelID string, response Response) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := len(m.sends)
	m.sends = append(m.sends, sent{channelID, response})
	if m.sendErr != nil {
		if err := m.sendErr(index); err != nil {
			return Handle{}, &ChannelError{Op: "send", ChannelID: channelID, Err: err}
		}
	}
	m.nextID++
	return Handle{ChannelID: channelID, MessageID: fmt.Sprintf("m%d", m.nextID)}, nil
}

func (m *fakeMessenger) Edit(handle Handle, response Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, edited{handle, response})
	if err := m.editErr[handle.MessageID]; err != nil {
		return &ChannelError{Op: "edit", ChannelID: handle.ChannelID, Err: err}
	}
	return nil
}

func (m *fakeMessenger) Purge(channelID string, limit int, keep func(string) bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purges = append(m.purges, purged{channelID, limit, keep})
	if m.purgeErr != nil {
		return 0, &ChannelError{Op: "purge", ChannelID: channelID, Err: m.purgeErr}
	}
	return m.deleted, nil
}

func (m *fakeMessenger) sentMessages() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.sends...)
}

func (m *fakeMessenger) editedMessages() []edited {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]edited(nil), m.edits...)
}

func (m *fakeMessenger) purgeCalls() []purged {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]purged(nil), m.purges...)
}

// fakeClock lets the test decide when each wait of the tracker is over.
// Every wait is reported on requests with the duration asked for
type fakeClock struct {
	requests chan time.Duration
	ticks    chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{requests: make(chan time.Duration, 16), ticks: make(chan time.Time)}
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.requests <- d
	return c.ticks
}

// Wait until the tracker is sleeping and return how long it asked to sleep
func (c *fakeClock) waitRequest(t *testing.T) time.Duration {
	t.Helper()
	select {
	case d := <-c.requests:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("tracker never went to sleep")
		return 0
	}
}

func (c *fakeClock) tick(t *testing.T) {
	t.Helper()
	select {
	case c.ticks <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("tracker never waited for the tick")
	}
}

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeNow() *fakeNow {
	return &fakeNow{t: time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)}
}

func (f *fakeNow) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// logBuffer collects the JSON lines of the global logger
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) count(message string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), fmt.Sprintf(`"message":%q`, message))
}

// Must be called before starting any tracker, so the logger is restored after they exit
func captureLogs(t *testing.T) *logBuffer {
	t.Helper()
	logs := &logBuffer{}
	previous := log.Logger
	log.Logger = zerolog.New(logs)
	t.Cleanup(func() { log.Logger = previous })
	return logs
}
