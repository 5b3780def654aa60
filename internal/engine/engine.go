package engine

import (
	"errors"
	"time"
)

var (
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrEntityInUse        = errors.New("entity in use")
	ErrInvalidState       = errors.New("invalid state")
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrRosterFull         = errors.New("roster full")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrBidTooLow          = errors.New("bid too low")
	ErrInvalidValue       = errors.New("invalid value")
	ErrNoPendingPlayers   = errors.New("no pending players")
	ErrNoUnsoldPlayers    = errors.New("no unsold players")
	ErrUnsupportedCommand = errors.New("unsupported command")
)

type CommandType string

const (
	CmdStartAuction   CommandType = "StartAuction"
	CmdPlaceBid       CommandType = "PlaceBid"
	CmdConfirmAndNext CommandType = "ConfirmAndNext"
	CmdNextPlayer     CommandType = "NextPlayer"
	CmdRestartUnsold  CommandType = "RestartUnsold"
	CmdReset          CommandType = "Reset"
	CmdTick           CommandType = "Tick"

	CmdAddTeam       CommandType = "AddTeam"
	CmdDeleteTeam    CommandType = "DeleteTeam"
	CmdRenameTeam    CommandType = "RenameTeam"
	CmdSetTeamBudget CommandType = "SetTeamBudget"
	CmdSetTeamLogo   CommandType = "SetTeamLogo"

	CmdAddPlayer      CommandType = "AddPlayer"
	CmdDeletePlayer   CommandType = "DeletePlayer"
	CmdRenamePlayer   CommandType = "RenamePlayer"
	CmdSetPlayerImage CommandType = "SetPlayerImage"

	CmdSetMaxPicks CommandType = "SetMaxPicks"
)

type Command struct {
	Type     CommandType
	TeamID   int
	PlayerID int
	Amount   int
	Name     string
	URL      string
	Value    int
	At       time.Time
}

type EventType string

const (
	EvtRoundStarted  EventType = "RoundStarted"
	EvtBidAccepted   EventType = "BidAccepted"
	EvtTick          EventType = "Tick"
	EvtLowTime       EventType = "LowTime"
	EvtTimeExpired   EventType = "TimeExpired"
	EvtPlayerSold    EventType = "PlayerSold"
	EvtPlayerUnsold  EventType = "PlayerUnsold"
	EvtBidLogCleared EventType = "BidLogCleared"
	EvtAuctionEnded  EventType = "AuctionEnded"
	EvtEntityChanged EventType = "EntityChanged"
)

type Event struct {
	Type     EventType
	PlayerID int
	TeamID   int
	Amount   int
	Seconds  int
	Entry    BidLogEntry
}

// Apply runs one command against the state. On error the returned state is
// the input unchanged. A nil error with no events means the command was a
// no-op for the current phase (e.g. NextPlayer while idle).
func Apply(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdStartAuction:
		return applyStartAuction(s)
	case CmdPlaceBid:
		return applyPlaceBid(s, cmd)
	case CmdTick:
		return applyTick(s)
	case CmdConfirmAndNext:
		return applyConfirmAndNext(s)
	case CmdNextPlayer:
		return applyNextPlayer(s)
	case CmdRestartUnsold:
		return applyRestartUnsold(s)
	case CmdReset:
		return applyReset(s)
	default:
		return applyAdmin(s, cmd)
	}
}

func applyStartAuction(s State) ([]Event, State, error) {
	if s.Phase == PhaseRunning || s.Phase == PhaseConfirming {
		return nil, s, ErrInvalidState
	}
	next, ok := nextPending(s)
	if !ok {
		return nil, s, ErrNoPendingPlayers
	}

	ns := s.Clone()
	beginRound(&ns, next.ID)
	events := []Event{
		{Type: EvtBidLogCleared},
		{Type: EvtRoundStarted, PlayerID: next.ID, Seconds: ns.RemainingTime},
	}
	return events, ns, nil
}

func applyPlaceBid(s State, cmd Command) ([]Event, State, error) {
	if s.Phase != PhaseRunning {
		return nil, s, ErrInvalidState
	}
	team := findTeam(s, cmd.TeamID)
	if team == nil {
		return nil, s, ErrUnknownEntity
	}
	cur := findPlayer(s, s.CurrentID)
	if cur == nil {
		return nil, s, ErrInvalidState
	}
	if len(team.Picks) >= s.MaxPicks {
		return nil, s, ErrRosterFull
	}
	if cmd.Amount > team.Budget {
		return nil, s, ErrInsufficientBudget
	}
	if cmd.Amount < cur.CurrentBid+s.Rules.MinIncrement {
		return nil, s, ErrBidTooLow
	}

	ns := s.Clone()
	p := findPlayer(ns, ns.CurrentID)
	p.CurrentBid = cmd.Amount
	p.HighestBidderID = cmd.TeamID

	entry := BidLogEntry{TeamID: cmd.TeamID, TeamName: team.Name, Amount: cmd.Amount, At: cmd.At}
	ns.BidLog = append(ns.BidLog, entry)

	return []Event{{Type: EvtBidAccepted, TeamID: cmd.TeamID, Amount: cmd.Amount, Entry: entry}}, ns, nil
}

// lowTimeMark is the remaining-seconds value at which the distinguished
// low-time cue fires, once per round.
const lowTimeMark = 10

func applyTick(s State) ([]Event, State, error) {
	if s.Phase != PhaseRunning {
		// Tick from a superseded round; discard.
		return nil, s, nil
	}

	ns := s.Clone()
	ns.RemainingTime--
	if ns.RemainingTime < 0 {
		ns.RemainingTime = 0
	}

	events := []Event{{Type: EvtTick, Seconds: ns.RemainingTime}}
	if ns.RemainingTime == lowTimeMark {
		events = append(events, Event{Type: EvtLowTime, Seconds: ns.RemainingTime})
	}
	if ns.RemainingTime == 0 {
		ns.Phase = PhaseConfirming
		events = append(events, Event{Type: EvtTimeExpired, PlayerID: ns.CurrentID})
	}
	return events, ns, nil
}

func applyConfirmAndNext(s State) ([]Event, State, error) {
	if s.Phase != PhaseRunning && s.Phase != PhaseConfirming {
		return nil, s, nil
	}

	ns := s.Clone()
	cur := findPlayer(ns, ns.CurrentID)
	if cur == nil {
		return nil, s, ErrInvalidState
	}

	var events []Event
	winner := findTeam(ns, cur.HighestBidderID)
	if winner != nil && eligibleToWin(ns, *winner, *cur) {
		// The sale is one atomic step: debit, pick, status all land in ns
		// together or, on any earlier rejection, not at all.
		price := cur.CurrentBid
		winner.Budget -= price
		winner.Picks = append(winner.Picks, Pick{PlayerID: cur.ID, Name: cur.Name, Price: price})
		cur.Status = StatusSold
		cur.Price = price
		cur.CurrentBid = 0
		cur.HighestBidderID = 0
		events = append(events, Event{Type: EvtPlayerSold, PlayerID: cur.ID, TeamID: winner.ID, Amount: price})
	} else {
		resolveUnsold(cur)
		events = append(events, Event{Type: EvtPlayerUnsold, PlayerID: cur.ID})
	}

	events = advance(&ns, events)
	return events, ns, nil
}

func applyNextPlayer(s State) ([]Event, State, error) {
	if s.Phase != PhaseRunning && s.Phase != PhaseConfirming {
		// Idempotent: skipping while idle or ended does nothing.
		return nil, s, nil
	}

	ns := s.Clone()
	cur := findPlayer(ns, ns.CurrentID)
	if cur == nil {
		return nil, s, ErrInvalidState
	}
	resolveUnsold(cur)
	events := []Event{{Type: EvtPlayerUnsold, PlayerID: cur.ID}}
	events = advance(&ns, events)
	return events, ns, nil
}

func applyRestartUnsold(s State) ([]Event, State, error) {
	if s.Phase == PhaseRunning || s.Phase == PhaseConfirming {
		return nil, s, ErrInvalidState
	}

	requeued := 0
	ns := s.Clone()
	for i := range ns.Players {
		if ns.Players[i].Status == StatusUnsold {
			ns.Players[i].Status = StatusPending
			ns.Players[i].CurrentBid = 0
			ns.Players[i].HighestBidderID = 0
			requeued++
		}
	}
	if requeued == 0 {
		return nil, s, ErrNoUnsoldPlayers
	}
	ns.Phase = PhaseIdle
	return []Event{{Type: EvtEntityChanged}}, ns, nil
}

func applyReset(s State) ([]Event, State, error) {
	ns := s.Clone()
	for i := range ns.Players {
		ns.Players[i].Status = StatusPending
		ns.Players[i].CurrentBid = 0
		ns.Players[i].HighestBidderID = 0
		ns.Players[i].Price = 0
	}
	for i := range ns.Teams {
		ns.Teams[i].Budget = ns.Teams[i].BaseBudget
		ns.Teams[i].Picks = []Pick{}
	}
	ns.Phase = PhaseIdle
	ns.CurrentID = 0
	ns.RemainingTime = ns.Rules.RoundSeconds
	ns.BidLog = nil
	return []Event{{Type: EvtBidLogCleared}}, ns, nil
}

// advance closes out the finished round and either opens the next one or
// ends the auction when no pending player remains.
func advance(ns *State, events []Event) []Event {
	ns.CurrentID = 0
	ns.BidLog = nil
	events = append(events, Event{Type: EvtBidLogCleared})

	if next, ok := nextPending(*ns); ok {
		beginRound(ns, next.ID)
		events = append(events, Event{Type: EvtRoundStarted, PlayerID: next.ID, Seconds: ns.RemainingTime})
	} else {
		ns.Phase = PhaseEnded
		ns.RemainingTime = 0
		events = append(events, Event{Type: EvtAuctionEnded})
	}
	return events
}

func beginRound(ns *State, playerID int) {
	p := findPlayer(*ns, playerID)
	p.Status = StatusActive
	p.CurrentBid = 0
	p.HighestBidderID = 0
	ns.CurrentID = playerID
	ns.Phase = PhaseRunning
	ns.RemainingTime = ns.Rules.RoundSeconds
	ns.BidLog = nil
}

func resolveUnsold(p *Player) {
	p.Status = StatusUnsold
	p.CurrentBid = 0
	p.HighestBidderID = 0
}

// eligibleToWin re-checks the highest bidder at finalize time. Admin edits
// during the round (budget cut, capacity change) can invalidate a bid that
// was legal when placed; the round then resolves unsold rather than
// breaking the budget or roster invariants.
func eligibleToWin(s State, t Team, p Player) bool {
	return len(t.Picks) < s.MaxPicks && t.Budget >= p.CurrentBid
}
