package session

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/choc763-lab/chocbear2/internal/engine"
)

type Msg interface{ isSessionMsg() }

// FromClient carries one decoded command into the actor. All commands,
// admin and participant alike, go through here and are applied one at a
// time against the single session state.
type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Outbound // where this client wants to receive events
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isSessionMsg() {}

// tick is sent by the countdown goroutine. Gen identifies the round that
// armed the ticker; ticks from a superseded round are discarded.
type tick struct{ Gen uint64 }

func (tick) isSessionMsg() {}

type Kind string

const (
	KindState       Kind = "state"
	KindTimer       Kind = "timer"
	KindLowTime     Kind = "lowTime"
	KindError       Kind = "errorMessage"
	KindBidLog      Kind = "bidLog"
	KindClearBidLog Kind = "clearBidLog"
)

// Outbound is one server-to-client event. State is only set for KindState
// and is a deep copy, safe to read off the actor goroutine.
type Outbound struct {
	Kind    Kind
	Version int
	State   *engine.State
	Seconds int
	Message string
	Entry   engine.BidLogEntry
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
}

type Session struct {
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Outbound

	clock clockwork.Clock
	log   *zap.Logger

	// Countdown bookkeeping: generation guard plus a per-round context
	// that stops the ticker goroutine the moment the round is over.
	timerGen    uint64
	timerCancel context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, initial engine.State, clock clockwork.Clock, log *zap.Logger) *Session {
	ctx, cancel := context.WithCancel(parent)

	s := &Session{
		inbox:   make(chan Msg, 64),
		state:   initial,
		clients: make(map[string]chan Outbound),
		clock:   clock,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	go s.loop()
	return s
}

// Inbox exposes the actor's mailbox to the WS layer and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				// Reconnect-then-resync: the joining client gets the
				// authoritative snapshot immediately. Same send-or-drop
				// discipline as broadcast; the actor never blocks on a
				// client's channel.
				select {
				case msg.Outbox <- Outbound{Kind: KindState, Version: s.version, State: s.snapshot()}:
					s.clients[msg.ClientID] = msg.Outbox
				default:
					close(msg.Outbox)
					s.log.Warn("dropped client at join", zap.String("client_id", msg.ClientID))
				}

			case Leave:
				// The actor is the only sender, so closing here is safe;
				// it releases the client's writer goroutine.
				if ch, ok := s.clients[msg.ClientID]; ok {
					close(ch)
					delete(s.clients, msg.ClientID)
				}

			case FromClient:
				s.handleCommand(msg.Cmd)

			case tick:
				if msg.Gen != s.timerGen {
					break // stale fire from a cancelled round
				}
				s.handleCommand(engine.Command{Type: engine.CmdTick})

			case GetView:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.state.Clone(),
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) handleCommand(cmd engine.Command) {
	if cmd.At.IsZero() {
		cmd.At = s.clock.Now()
	}

	events, newState, err := engine.Apply(s.state, cmd)
	if err != nil {
		s.log.Debug("command rejected",
			zap.String("cmd", string(cmd.Type)),
			zap.Error(err))
		s.broadcast(Outbound{Kind: KindError, Message: notice(err)})
		return
	}
	if len(events) == 0 {
		return // phase no-op, nothing changed
	}

	s.state = newState
	s.dispatch(events)
	s.syncTimer(events)

	if snapshotWorthy(events) {
		s.version++
		s.broadcast(Outbound{Kind: KindState, Version: s.version, State: s.snapshot()})
	}
}

// dispatch turns engine events into the discrete client notifications that
// ride alongside snapshots.
func (s *Session) dispatch(events []engine.Event) {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtBidAccepted:
			s.broadcast(Outbound{Kind: KindBidLog, Entry: ev.Entry})
		case engine.EvtBidLogCleared:
			s.broadcast(Outbound{Kind: KindClearBidLog})
		case engine.EvtTick:
			s.broadcast(Outbound{Kind: KindTimer, Seconds: ev.Seconds})
		case engine.EvtLowTime:
			s.broadcast(Outbound{Kind: KindLowTime, Seconds: ev.Seconds})
		case engine.EvtTimeExpired:
			s.broadcast(Outbound{Kind: KindError, Message: "time is up, waiting for confirmation"})
		case engine.EvtPlayerSold:
			s.log.Info("player sold",
				zap.Int("player_id", ev.PlayerID),
				zap.Int("team_id", ev.TeamID),
				zap.Int("price", ev.Amount))
		case engine.EvtPlayerUnsold:
			s.log.Info("player unsold", zap.Int("player_id", ev.PlayerID))
		case engine.EvtAuctionEnded:
			s.log.Info("auction ended, player pool exhausted")
		}
	}
}

// snapshotWorthy reports whether the events demand a full state broadcast.
// Plain countdown ticks ride on the timer channel alone; everything else
// gets a snapshot.
func snapshotWorthy(events []engine.Event) bool {
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtTick, engine.EvtLowTime:
		default:
			return true
		}
	}
	return false
}

func (s *Session) snapshot() *engine.State {
	snap := s.state.Clone()
	return &snap
}

func (s *Session) broadcast(out Outbound) {
	for id, ch := range s.clients {
		select {
		case ch <- out:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
			s.log.Warn("dropped slow client", zap.String("client_id", id))
		}
	}
}

func (s *Session) shutdown() {
	s.stopTimer()
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}

func notice(err error) string {
	switch {
	case errors.Is(err, engine.ErrCapacityExceeded):
		return "capacity limit reached"
	case errors.Is(err, engine.ErrEntityInUse):
		return "cannot delete: still in use"
	case errors.Is(err, engine.ErrInvalidState):
		return "that action is not allowed right now"
	case errors.Is(err, engine.ErrUnknownEntity):
		return "unknown team or player"
	case errors.Is(err, engine.ErrRosterFull):
		return "team roster is full"
	case errors.Is(err, engine.ErrInsufficientBudget):
		return "not enough budget for that bid"
	case errors.Is(err, engine.ErrBidTooLow):
		return "bid must be higher than the current bid"
	case errors.Is(err, engine.ErrInvalidValue):
		return "invalid value"
	case errors.Is(err, engine.ErrNoPendingPlayers):
		return "no players waiting for auction"
	case errors.Is(err, engine.ErrNoUnsoldPlayers):
		return "no unsold players to requeue"
	default:
		return "internal error"
	}
}
