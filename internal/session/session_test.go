package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/choc763-lab/chocbear2/internal/engine"
)

// helper: receive one outbound event with a timeout so tests never hang
func recvOutbound(t *testing.T, ch <-chan Outbound, within time.Duration) Outbound {
	t.Helper()
	select {
	case o, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return o
	case <-time.After(within):
		t.Fatalf("timed out waiting for outbound event")
		return Outbound{} // unreachable
	}
}

func recvKind(t *testing.T, ch <-chan Outbound, kind Kind, within time.Duration) Outbound {
	t.Helper()
	o := recvOutbound(t, ch, within)
	if o.Kind != kind {
		t.Fatalf("want %s, got %s (%+v)", kind, o.Kind, o)
	}
	return o
}

func recvNoOutbound(t *testing.T, ch <-chan Outbound, within time.Duration) {
	t.Helper()
	select {
	case o, ok := <-ch:
		if !ok {
			return // closed is fine; no further events possible
		}
		t.Fatalf("expected no event within %v, but got: %+v", within, o)
	case <-time.After(within):
	}
}

func getView(t *testing.T, s *Session) View {
	t.Helper()
	reply := make(chan View, 1)
	s.Inbox() <- GetView{Reply: reply}
	select {
	case v := <-reply:
		return v
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func seedState(t *testing.T, r engine.Rules, teams, players, budget int) engine.State {
	t.Helper()
	s := engine.NewState(r)
	apply := func(cmd engine.Command) {
		t.Helper()
		_, ns, err := engine.Apply(s, cmd)
		if err != nil {
			t.Fatalf("seed %s: %v", cmd.Type, err)
		}
		s = ns
	}
	for i := 0; i < teams; i++ {
		apply(engine.Command{Type: engine.CmdAddTeam, Name: fmt.Sprintf("Team %d", i+1)})
		apply(engine.Command{Type: engine.CmdSetTeamBudget, TeamID: i + 1, Value: budget})
	}
	for i := 0; i < players; i++ {
		apply(engine.Command{Type: engine.CmdAddPlayer, Name: fmt.Sprintf("Player %d", i+1)})
	}
	return s
}

func TestSession_JoinReceivesSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, seedState(t, engine.Rules{}, 2, 3, 100), clockwork.NewFakeClock(), zap.NewNop())

	out := make(chan Outbound, 8)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvKind(t, out, KindState, time.Second)
	if first.Version != 0 {
		t.Fatalf("after join: want version=0, got %d", first.Version)
	}
	if len(first.State.Teams) != 2 || len(first.State.Players) != 3 {
		t.Fatalf("after join: unexpected snapshot %+v", first.State)
	}
}

func TestSession_StartAuctionBroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, seedState(t, engine.Rules{}, 1, 2, 100), clockwork.NewFakeClock(), zap.NewNop())

	out := make(chan Outbound, 8)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvKind(t, out, KindState, time.Second)

	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdStartAuction}}

	_ = recvKind(t, out, KindClearBidLog, time.Second)
	snap := recvKind(t, out, KindState, time.Second)
	if snap.Version != 1 {
		t.Fatalf("want version=1 after start, got %d", snap.Version)
	}
	if snap.State.Phase != engine.PhaseRunning || snap.State.CurrentID != 1 {
		t.Fatalf("want running on player 1, got phase=%s current=%d", snap.State.Phase, snap.State.CurrentID)
	}
}

func TestSession_BidBroadcastsLogThenSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, seedState(t, engine.Rules{}, 2, 1, 100), clockwork.NewFakeClock(), zap.NewNop())

	out := make(chan Outbound, 8)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvKind(t, out, KindState, time.Second)

	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdStartAuction}}
	_ = recvKind(t, out, KindClearBidLog, time.Second)
	_ = recvKind(t, out, KindState, time.Second)

	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdPlaceBid, TeamID: 1, Amount: 50}}

	entry := recvKind(t, out, KindBidLog, time.Second)
	if entry.Entry.TeamName != "Team 1" || entry.Entry.Amount != 50 {
		t.Fatalf("unexpected bid log entry: %+v", entry.Entry)
	}
	snap := recvKind(t, out, KindState, time.Second)
	if snap.State.Players[0].CurrentBid != 50 || snap.State.Players[0].HighestBidderID != 1 {
		t.Fatalf("bid not reflected in snapshot: %+v", snap.State.Players[0])
	}

	// An underbid produces only a transient error, no snapshot.
	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdPlaceBid, TeamID: 2, Amount: 40}}
	notice := recvKind(t, out, KindError, time.Second)
	if notice.Message == "" {
		t.Fatalf("want a user-facing message on rejection")
	}
	recvNoOutbound(t, out, 100*time.Millisecond)

	if v := getView(t, s); v.Version != snap.Version {
		t.Fatalf("rejected command must not bump the version: %d -> %d", snap.Version, v.Version)
	}
}

func TestSession_CountdownTicksLowTimeAndExpiry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fc := clockwork.NewFakeClock()
	s := New(ctx, seedState(t, engine.Rules{RoundSeconds: 12}, 1, 1, 100), fc, zap.NewNop())

	out := make(chan Outbound, 16)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvKind(t, out, KindState, time.Second)

	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdStartAuction}}
	_ = recvKind(t, out, KindClearBidLog, time.Second)
	_ = recvKind(t, out, KindState, time.Second)

	fc.BlockUntil(1) // countdown armed

	fc.Advance(time.Second)
	tick := recvKind(t, out, KindTimer, time.Second)
	if tick.Seconds != 11 {
		t.Fatalf("want 11s remaining after first tick, got %d", tick.Seconds)
	}

	fc.Advance(time.Second)
	tick = recvKind(t, out, KindTimer, time.Second)
	if tick.Seconds != 10 {
		t.Fatalf("want 10s remaining, got %d", tick.Seconds)
	}
	low := recvKind(t, out, KindLowTime, time.Second)
	if low.Seconds != 10 {
		t.Fatalf("low-time cue should fire at exactly 10, got %d", low.Seconds)
	}

	for want := 9; want >= 1; want-- {
		fc.Advance(time.Second)
		tick = recvKind(t, out, KindTimer, time.Second)
		if tick.Seconds != want {
			t.Fatalf("want %ds remaining, got %d", want, tick.Seconds)
		}
	}

	fc.Advance(time.Second)
	tick = recvKind(t, out, KindTimer, time.Second)
	if tick.Seconds != 0 {
		t.Fatalf("want final tick at 0, got %d", tick.Seconds)
	}
	_ = recvKind(t, out, KindError, time.Second) // time's-up notice
	snap := recvKind(t, out, KindState, time.Second)
	if snap.State.Phase != engine.PhaseConfirming {
		t.Fatalf("want confirming after expiry, got %s", snap.State.Phase)
	}
}

func TestSession_TimerStopsWhenRoundEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fc := clockwork.NewFakeClock()
	s := New(ctx, seedState(t, engine.Rules{RoundSeconds: 30}, 1, 1, 100), fc, zap.NewNop())

	out := make(chan Outbound, 16)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvKind(t, out, KindState, time.Second)

	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdStartAuction}}
	_ = recvKind(t, out, KindClearBidLog, time.Second)
	_ = recvKind(t, out, KindState, time.Second)

	fc.BlockUntil(1)
	fc.Advance(time.Second)
	_ = recvKind(t, out, KindTimer, time.Second)

	// No bids, single player: confirm resolves unsold and exhausts the pool.
	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdConfirmAndNext}}
	_ = recvKind(t, out, KindClearBidLog, time.Second)
	snap := recvKind(t, out, KindState, time.Second)
	if snap.State.Phase != engine.PhaseEnded {
		t.Fatalf("want ended, got %s", snap.State.Phase)
	}

	// The superseded round's ticker must not leak any more timer events.
	fc.Advance(3 * time.Second)
	recvNoOutbound(t, out, 200*time.Millisecond)
}

func TestSession_LeaveClosesOutbox(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, seedState(t, engine.Rules{}, 1, 1, 100), clockwork.NewFakeClock(), zap.NewNop())

	out := make(chan Outbound, 8)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvKind(t, out, KindState, time.Second)

	s.Inbox() <- Leave{ClientID: "c1"}

	// The outbox must be closed so the connection's writer goroutine can
	// exit; a deleted-but-open channel would leak it per disconnect.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				if v := getView(t, s); v.NumClients != 0 {
					t.Fatalf("client still registered after leave; NumClients=%d", v.NumClients)
				}
				return
			}
		case <-deadline:
			t.Fatalf("outbox not closed after leave")
		}
	}
}

func TestSession_JoinWithFullOutboxDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, seedState(t, engine.Rules{}, 1, 1, 100), clockwork.NewFakeClock(), zap.NewNop())

	// Nobody drains this channel, so the welcome snapshot cannot land; the
	// actor must refuse the client rather than block.
	out := make(chan Outbound)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}

	if v := getView(t, s); v.NumClients != 0 {
		t.Fatalf("unwritable joiner should be refused; NumClients=%d", v.NumClients)
	}
	select {
	case _, ok := <-out:
		if ok {
			t.Fatalf("expected outbox closed, got an event")
		}
	case <-time.After(time.Second):
		t.Fatalf("outbox of refused joiner not closed")
	}
}

func TestSession_DropSlowClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, seedState(t, engine.Rules{}, 1, 1, 100), clockwork.NewFakeClock(), zap.NewNop())

	out := make(chan Outbound, 1)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	// Outbox now holds the join snapshot and is never drained.

	s.Inbox() <- FromClient{Cmd: engine.Command{Type: engine.CmdStartAuction}}

	if v := getView(t, s); v.NumClients != 0 {
		t.Fatalf("expected slow client to be dropped; NumClients=%d", v.NumClients)
	}
}

func TestSession_ShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, seedState(t, engine.Rules{RoundSeconds: 5}, 1, 1, 100), clockwork.NewFakeClock(), zap.NewNop())

	out := make(chan Outbound, 8)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvKind(t, out, KindState, time.Second)

	s.Inbox() <- Shutdown{}

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return // closed, done
			}
		case <-deadline:
			t.Fatalf("outbox not closed on shutdown")
		}
	}
}
