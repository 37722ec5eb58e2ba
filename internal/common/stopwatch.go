package common

import (
	"sync"
	"time"
)

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached.
// It is safe to use from several goroutines
type Stopwatch struct {
	mu        sync.Mutex
	timeout   time.Duration
	startTime time.Time
	running   bool
	now       func() time.Time
}

func NewStopwatch(timeout time.Duration) *Stopwatch {
	return NewStopwatchWithClock(timeout, time.Now)
}

// NewStopwatchWithClock reads the time from now instead of time.Now
func NewStopwatchWithClock(timeout time.Duration, now func() time.Time) *Stopwatch {
	return &Stopwatch{timeout: timeout, now: now}
}

func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.startTime = s.now()
}

func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// Elapsed time since the last Start, zero if never started
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return 0
	}
	return s.now().Sub(s.startTime)
}

// StartTime is the moment of the last Start, zero if never started
func (s *Stopwatch) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// Stopped reports if the timeout has been reached, and by how much.
// A stopwatch that is not running counts as stopped
func (s *Stopwatch) Stopped() (bool, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return true, 0
	}
	over := s.now().Sub(s.startTime.Add(s.timeout))
	return over >= 0, over
}
