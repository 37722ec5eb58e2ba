package gameserver

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/rumblefrog/go-a2s"
	"golang.org/x/sync/errgroup"
)

const DefaultTimeout = 3 * time.Second

// The subset of the A2S client used here
type conn interface {
	QueryInfo() (*a2s.ServerInfo, error)
	QueryPlayer() (*a2s.PlayerInfo, error)
	Close() error
}

type dialFunc func(addr string, timeout time.Duration) (conn, error)

func dialA2S(addr string, timeout time.Duration) (conn, error) {
	c, err := a2s.NewClient(addr, a2s.TimeoutOption(timeout))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Client queries one fixed game server. Every call to Query opens its
// own UDP sockets, so a Client can be shared freely.
type Client struct {
	host    string
	port    int
	timeout time.Duration
	dial    dialFunc
}

func NewClient(host string, port int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{host: host, port: port, timeout: timeout, dial: dialA2S}
}

func (client *Client) Addr() string {
	return net.JoinHostPort(client.host, strconv.Itoa(client.port))
}

// Query asks the server for its info and its player list.
// Both requests run at the same time and both have to succeed:
// a snapshot without its players (or the other way round) is never returned
func (client *Client) Query(ctx context.Context) (Snapshot, []Player, error) {

	var snapshot Snapshot
	var players []Player

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		info, err := client.queryInfo(gctx)
		if err != nil {
			return err
		}
		snapshot, err = DecodeSnapshot(info, client.host, client.port)
		if err != nil {
			return &QueryError{Op: "info", Addr: client.Addr(), Err: err}
		}
		return nil
	})
	group.Go(func() error {
		info, err := client.queryPlayers(gctx)
		if err != nil {
			return err
		}
		players, err = DecodePlayers(info)
		if err != nil {
			return &QueryError{Op: "players", Addr: client.Addr(), Err: err}
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return Snapshot{}, nil, err
	}

	log.Debug().Str("server", snapshot.Name).Int("players", len(players)).Msg("Query answered")
	return snapshot, players, nil
}

func (client *Client) queryInfo(ctx context.Context) (*a2s.ServerInfo, error) {
	var info *a2s.ServerInfo
	err := client.exchange(ctx, "info", func(c conn) (err error) {
		info, err = c.QueryInfo()
		return err
	})
	return info, err
}

func (client *Client) queryPlayers(ctx context.Context) (*a2s.PlayerInfo, error) {
	var info *a2s.PlayerInfo
	err := client.exchange(ctx, "players", func(c conn) (err error) {
		info, err = c.QueryPlayer()
		return err
	})
	return info, err
}

// Run a single request on a fresh connection. Cancelling the context
// closes the socket, which unblocks the pending read
func (client *Client) exchange(ctx context.Context, op string, request func(conn) error) error {

	if err := ctx.Err(); err != nil {
		return &QueryError{Op: op, Addr: client.Addr(), Err: err}
	}

	c, err := client.dial(client.Addr(), client.timeout)
	if err != nil {
		return &QueryError{Op: op, Addr: client.Addr(), Err: fmt.Errorf("dial: %w", err)}
	}
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer func() {
		if stop() {
			c.Close()
		}
	}()

	if err := request(c); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return &QueryError{Op: op, Addr: client.Addr(), Err: err}
	}
	return nil
}
