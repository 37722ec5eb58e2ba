package common

import (
	"time"
)

// Give the timed executor a task and a timeout.
// Call the execute function from time to time.
// If the function gets called when the timeout has been reached,
// the provided task will execute. If not, the call will do nothing
type TimedExecutor struct {
	stopwatch *Stopwatch
	task      func()
}

// Create a timed executor provided a timeout and a task.
// The first call to Execute always runs the task
func NewTimedExecutor(timeout time.Duration, task func()) *TimedExecutor {
	return NewTimedExecutorWithClock(timeout, task, time.Now)
}

func NewTimedExecutorWithClock(timeout time.Duration, task func(), now func() time.Time) *TimedExecutor {
	return &TimedExecutor{NewStopwatchWithClock(timeout, now), task}
}

// Execute the task if the timeout has been reached, else do nothing.
// Returns true when the task ran
func (te *TimedExecutor) Execute() bool {
	if stopped, _ := te.stopwatch.Stopped(); stopped {
		te.stopwatch.Start()
		te.task()
		return true
	}
	return false
}

// Reset makes the next call to Execute run the task straight away
func (te *TimedExecutor) Reset() {
	te.stopwatch.Stop()
}
