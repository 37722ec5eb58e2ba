package gameserver

import (
	"fmt"
	"math"
	"time"

	"github.com/rumblefrog/go-a2s"
)

// Build a snapshot out of an A2S_INFO response.
// The game port comes from the extra data flag when the server sends it,
// otherwise the query port is the best we know
func DecodeSnapshot(info *a2s.ServerInfo, host string, queryPort int) (Snapshot, error) {

	if info == nil {
		return Snapshot{}, fmt.Errorf("empty info response")
	}

	port := queryPort
	if info.ExtendedServerInfo != nil && info.ExtendedServerInfo.Port != 0 {
		port = int(info.ExtendedServerInfo.Port)
	}

	return Snapshot{Name: info.Name, Map: info.Map, Address: host, Port: port}, nil
}

func DecodePlayers(info *a2s.PlayerInfo) ([]Player, error) {

	if info == nil {
		return nil, fmt.Errorf("empty player response")
	}

	players := make([]Player, 0, len(info.Players))
	for _, raw := range info.Players {
		if raw == nil {
			continue
		}
		players = append(players, Player{Name: raw.Name, Duration: decodeDuration(raw.Duration)})
	}
	return players, nil
}

// Durations come as float seconds. Some servers send garbage for players
// still connecting, so anything negative or not a number is zero
func decodeDuration(seconds float32) time.Duration {
	s := float64(seconds)
	if math.IsNaN(s) || s <= 0 {
		return 0
	}
	if s > float64(math.MaxInt64/int64(time.Second)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(s * float64(time.Second))
}
