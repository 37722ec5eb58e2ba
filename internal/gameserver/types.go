package gameserver

import (
	"fmt"
	"time"
)

// Snapshot is the state of the server as seen by one A2S_INFO query.
// An empty Map means the server did not report one.
type Snapshot struct {
	Name    string
	Map     string
	Address string
	Port    int
}

type Player struct {
	Name     string
	Duration time.Duration
}

// QueryError is returned for any failed exchange with the game server:
// timeouts, unreachable hosts and malformed responses alike.
type QueryError struct {
	Op   string
	Addr string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
