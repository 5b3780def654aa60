package types

import (
	"github.com/choc763-lab/chocbear2/internal/engine"
)

// ClientMessage is the inbound wire envelope. Optional patch fields use
// pointers so "not present" and "set to empty" stay distinguishable.
type ClientMessage struct {
	Type              string  `json:"type"`
	ID                int     `json:"id,omitempty"`
	TeamID            int     `json:"teamId,omitempty"`
	PlayerID          int     `json:"playerId,omitempty"`
	Amount            int     `json:"amount,omitempty"`
	Name              *string `json:"name,omitempty"`
	Budget            *int    `json:"budget,omitempty"`
	Logo              *string `json:"logo,omitempty"`
	Image             *string `json:"image,omitempty"`
	MaxPlayersPerTeam int     `json:"maxPlayersPerTeam,omitempty"`
}

// ServerMessage is the outbound wire envelope.
// Type: "state" | "timer" | "lowTime" | "errorMessage" | "bidLog" | "clearBidLog"
type ServerMessage struct {
	Type    string              `json:"type"`
	State   *Snapshot           `json:"state,omitempty"`
	Seconds *int                `json:"seconds,omitempty"`
	Message string              `json:"message,omitempty"`
	Entry   *engine.BidLogEntry `json:"entry,omitempty"`
}

// Snapshot is the full state broadcast sent after every mutating command.
type Snapshot struct {
	Version           int             `json:"version"`
	Teams             []engine.Team   `json:"teams"`
	Players           []engine.Player `json:"players"`
	CurrentPlayer     *engine.Player  `json:"currentPlayer"`
	AuctionState      engine.Phase    `json:"auctionState"`
	RemainingTime     int             `json:"remainingTime"`
	MaxPlayersPerTeam int             `json:"maxPlayersPerTeam"`
}

func SnapshotFrom(version int, s engine.State) Snapshot {
	snap := Snapshot{
		Version:           version,
		Teams:             s.Teams,
		Players:           s.Players,
		AuctionState:      s.Phase,
		RemainingTime:     s.RemainingTime,
		MaxPlayersPerTeam: s.MaxPicks,
	}
	if snap.Teams == nil {
		snap.Teams = []engine.Team{}
	}
	if snap.Players == nil {
		snap.Players = []engine.Player{}
	}
	if s.CurrentID != 0 {
		for i := range s.Players {
			if s.Players[i].ID == s.CurrentID {
				p := s.Players[i]
				snap.CurrentPlayer = &p
				break
			}
		}
	}
	return snap
}
