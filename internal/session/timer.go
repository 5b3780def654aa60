package session

import (
	"context"
	"time"

	"github.com/choc763-lab/chocbear2/internal/engine"
)

// syncTimer keeps the countdown goroutine in step with the state machine:
// a fresh round arms a new ticker, any transition out of running cancels
// the active one. Called after every successful Apply.
func (s *Session) syncTimer(events []engine.Event) {
	if engine.ContainsEvent(events, engine.EvtRoundStarted) {
		s.startTimer()
		return
	}
	if s.state.Phase != engine.PhaseRunning {
		s.stopTimer()
	}
}

func (s *Session) startTimer() {
	s.stopTimer()
	s.timerGen++

	ctx, cancel := context.WithCancel(s.ctx)
	s.timerCancel = cancel

	go s.runTicker(ctx, s.timerGen)
}

func (s *Session) stopTimer() {
	if s.timerCancel != nil {
		s.timerCancel()
		s.timerCancel = nil
	}
	// Bump the generation so any tick already in the inbox is discarded.
	s.timerGen++
}

// runTicker delivers one tick per second into the inbox until its round is
// cancelled. It never touches state itself; the actor applies the tick
// under the same serialization point as every other command.
func (s *Session) runTicker(ctx context.Context, gen uint64) {
	t := s.clock.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			select {
			case s.inbox <- tick{Gen: gen}:
			case <-ctx.Done():
				return
			}
		}
	}
}
