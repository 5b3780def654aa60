package engine

// findTeam returns a pointer into s.Teams. The slice header is shared
// across State copies, so writes through the pointer land in the clone the
// caller is building.
func findTeam(s State, id int) *Team {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i]
		}
	}
	return nil
}

func findPlayer(s State, id int) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// nextPending returns the first pending player by ascending id. Players is
// only ever appended to with increasing ids, so slice order is id order.
func nextPending(s State) (Player, bool) {
	for _, p := range s.Players {
		if p.Status == StatusPending {
			return p, true
		}
	}
	return Player{}, false
}

func isPicked(s State, playerID int) bool {
	for _, t := range s.Teams {
		for _, pk := range t.Picks {
			if pk.PlayerID == playerID {
				return true
			}
		}
	}
	return false
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}
