package engine

import "time"

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRunning    Phase = "running"
	PhaseConfirming Phase = "confirming"
	PhaseEnded      Phase = "ended"
)

type PlayerStatus string

const (
	StatusPending PlayerStatus = "pending"
	StatusActive  PlayerStatus = "active"
	StatusSold    PlayerStatus = "sold"
	StatusUnsold  PlayerStatus = "unsold"
)

// Pick is one roster slot won at auction. Name is snapshotted from the
// player at sale time and kept in sync on rename.
type Pick struct {
	PlayerID int    `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
}

type Team struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Budget int    `json:"budget"`
	Logo   string `json:"logo,omitempty"`
	Picks  []Pick `json:"picks"`

	// BaseBudget is what Reset restores. Admin budget edits move it
	// together with Budget.
	BaseBudget int `json:"-"`
}

type Player struct {
	ID              int          `json:"id"`
	Name            string       `json:"name"`
	Image           string       `json:"image,omitempty"`
	Status          PlayerStatus `json:"status"`
	CurrentBid      int          `json:"currentBid"`
	HighestBidderID int          `json:"highestBidderId,omitempty"`
	Price           int          `json:"price"`
}

type BidLogEntry struct {
	TeamID   int       `json:"teamId"`
	TeamName string    `json:"teamName"`
	Amount   int       `json:"amount"`
	At       time.Time `json:"at"`
}

// Rules are the fixed knobs of a session; MaxPicks seeds State.MaxPicks,
// which the admin can change at runtime.
type Rules struct {
	RoundSeconds   int
	BaselineBudget int
	MaxTeams       int
	MaxPlayers     int
	MaxPicks       int
	MinIncrement   int
}

type State struct {
	Teams   []Team
	Players []Player

	Phase         Phase
	CurrentID     int // player id under the hammer, 0 when none
	RemainingTime int
	MaxPicks      int
	BidLog        []BidLogEntry

	Rules Rules

	NextTeamID   int
	NextPlayerID int
}

func NewState(r Rules) State {
	if r.RoundSeconds <= 0 {
		r.RoundSeconds = 180
	}
	if r.MaxTeams <= 0 {
		r.MaxTeams = 10
	}
	if r.MaxPlayers <= 0 {
		r.MaxPlayers = 40
	}
	if r.MaxPicks <= 0 {
		r.MaxPicks = 3
	}
	if r.MinIncrement <= 0 {
		r.MinIncrement = 1
	}
	return State{
		Teams:         []Team{},
		Players:       []Player{},
		Phase:         PhaseIdle,
		RemainingTime: r.RoundSeconds,
		MaxPicks:      r.MaxPicks,
		Rules:         r,
		NextTeamID:    1,
		NextPlayerID:  1,
	}
}

// Clone deep-copies the state. Apply mutates a clone so a rejected command
// never leaves a partial write behind.
func (s State) Clone() State {
	ns := s
	ns.Teams = make([]Team, len(s.Teams))
	for i, t := range s.Teams {
		ns.Teams[i] = t
		ns.Teams[i].Picks = append([]Pick{}, t.Picks...)
	}
	ns.Players = append([]Player{}, s.Players...)
	ns.BidLog = append([]BidLogEntry(nil), s.BidLog...)
	return ns
}
