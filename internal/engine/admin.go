package engine

import "fmt"

// applyAdmin handles the entity-store commands. They are legal in any
// phase; the one referential guard beyond delete constraints is that the
// player currently under the hammer cannot be removed mid-round.
func applyAdmin(s State, cmd Command) ([]Event, State, error) {
	switch cmd.Type {
	case CmdAddTeam:
		if len(s.Teams) >= s.Rules.MaxTeams {
			return nil, s, ErrCapacityExceeded
		}
		ns := s.Clone()
		id := ns.NextTeamID
		ns.NextTeamID++
		name := cmd.Name
		if name == "" {
			name = fmt.Sprintf("Team %d", id)
		}
		ns.Teams = append(ns.Teams, Team{
			ID:         id,
			Name:       name,
			Budget:     ns.Rules.BaselineBudget,
			BaseBudget: ns.Rules.BaselineBudget,
			Picks:      []Pick{},
		})
		return []Event{{Type: EvtEntityChanged, TeamID: id}}, ns, nil

	case CmdDeleteTeam:
		team := findTeam(s, cmd.TeamID)
		if team == nil {
			return nil, s, ErrUnknownEntity
		}
		if len(team.Picks) > 0 {
			return nil, s, ErrEntityInUse
		}
		ns := s.Clone()
		for i := range ns.Teams {
			if ns.Teams[i].ID == cmd.TeamID {
				ns.Teams = append(ns.Teams[:i], ns.Teams[i+1:]...)
				break
			}
		}
		return []Event{{Type: EvtEntityChanged, TeamID: cmd.TeamID}}, ns, nil

	case CmdRenameTeam:
		ns := s.Clone()
		team := findTeam(ns, cmd.TeamID)
		if team == nil {
			return nil, s, ErrUnknownEntity
		}
		team.Name = cmd.Name
		return []Event{{Type: EvtEntityChanged, TeamID: cmd.TeamID}}, ns, nil

	case CmdSetTeamBudget:
		if cmd.Value < 0 {
			return nil, s, ErrInvalidValue
		}
		ns := s.Clone()
		team := findTeam(ns, cmd.TeamID)
		if team == nil {
			return nil, s, ErrUnknownEntity
		}
		// An admin budget edit also becomes the team's reset baseline.
		team.Budget = cmd.Value
		team.BaseBudget = cmd.Value
		return []Event{{Type: EvtEntityChanged, TeamID: cmd.TeamID}}, ns, nil

	case CmdSetTeamLogo:
		ns := s.Clone()
		team := findTeam(ns, cmd.TeamID)
		if team == nil {
			return nil, s, ErrUnknownEntity
		}
		team.Logo = cmd.URL
		return []Event{{Type: EvtEntityChanged, TeamID: cmd.TeamID}}, ns, nil

	case CmdAddPlayer:
		if len(s.Players) >= s.Rules.MaxPlayers {
			return nil, s, ErrCapacityExceeded
		}
		ns := s.Clone()
		id := ns.NextPlayerID
		ns.NextPlayerID++
		name := cmd.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", id)
		}
		ns.Players = append(ns.Players, Player{ID: id, Name: name, Status: StatusPending})
		return []Event{{Type: EvtEntityChanged, PlayerID: id}}, ns, nil

	case CmdDeletePlayer:
		p := findPlayer(s, cmd.PlayerID)
		if p == nil {
			return nil, s, ErrUnknownEntity
		}
		if p.Status == StatusSold || isPicked(s, cmd.PlayerID) {
			return nil, s, ErrEntityInUse
		}
		if cmd.PlayerID == s.CurrentID && (s.Phase == PhaseRunning || s.Phase == PhaseConfirming) {
			return nil, s, ErrEntityInUse
		}
		ns := s.Clone()
		for i := range ns.Players {
			if ns.Players[i].ID == cmd.PlayerID {
				ns.Players = append(ns.Players[:i], ns.Players[i+1:]...)
				break
			}
		}
		return []Event{{Type: EvtEntityChanged, PlayerID: cmd.PlayerID}}, ns, nil

	case CmdRenamePlayer:
		ns := s.Clone()
		p := findPlayer(ns, cmd.PlayerID)
		if p == nil {
			return nil, s, ErrUnknownEntity
		}
		p.Name = cmd.Name
		// Picks carry a name snapshot; keep them consistent.
		for i := range ns.Teams {
			for j := range ns.Teams[i].Picks {
				if ns.Teams[i].Picks[j].PlayerID == cmd.PlayerID {
					ns.Teams[i].Picks[j].Name = cmd.Name
				}
			}
		}
		return []Event{{Type: EvtEntityChanged, PlayerID: cmd.PlayerID}}, ns, nil

	case CmdSetPlayerImage:
		ns := s.Clone()
		p := findPlayer(ns, cmd.PlayerID)
		if p == nil {
			return nil, s, ErrUnknownEntity
		}
		p.Image = cmd.URL
		return []Event{{Type: EvtEntityChanged, PlayerID: cmd.PlayerID}}, ns, nil

	case CmdSetMaxPicks:
		if cmd.Value != 3 && cmd.Value != 4 {
			return nil, s, ErrInvalidValue
		}
		for _, t := range s.Teams {
			if len(t.Picks) > cmd.Value {
				return nil, s, ErrInvalidValue
			}
		}
		ns := s.Clone()
		ns.MaxPicks = cmd.Value
		return []Event{{Type: EvtEntityChanged}}, ns, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}
