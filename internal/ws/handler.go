package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/choc763-lab/chocbear2/internal/engine"
	"github.com/choc763-lab/chocbear2/internal/session"
	"github.com/choc763-lab/chocbear2/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	// outboxSize must absorb a full snapshot fan-out (snapshot + log clear
	// + timer) before the writer drains; a client that stays behind longer
	// than this gets dropped by the session.
	outboxSize = 32
)

func Handler(sess *session.Session, log *zap.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Outbound, outboxSize)
		clientID := uuid.NewString()

		sess.Inbox() <- session.Join{ClientID: clientID, Outbox: out}
		defer func() { sess.Inbox() <- session.Leave{ClientID: clientID} }()

		log.Info("client connected", zap.String("client_id", clientID))

		// Writer goroutine: drains the outbox until the session closes it
		// (leave/drop/shutdown) or this connection dies.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for o := range out {
				payload, err := json.Marshal(toServerMessage(o))
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("client read ended", zap.String("client_id", clientID), zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}

			cmds, ok := toCommands(cm)
			if !ok {
				writeError(r.Context(), conn, "unknown message type")
				continue
			}

			for _, cmd := range cmds {
				sess.Inbox() <- session.FromClient{Cmd: cmd}
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: string(session.KindError), Message: msg})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

// toCommands maps one wire message to its engine commands. An admin patch
// message yields one tagged command per present field, keeping validation
// per-field and exhaustive.
func toCommands(m types.ClientMessage) ([]engine.Command, bool) {
	switch m.Type {
	case "startAuction":
		return []engine.Command{{Type: engine.CmdStartAuction}}, true
	case "confirmAndNext":
		return []engine.Command{{Type: engine.CmdConfirmAndNext}}, true
	case "nextPlayer":
		return []engine.Command{{Type: engine.CmdNextPlayer}}, true
	case "reset":
		return []engine.Command{{Type: engine.CmdReset}}, true
	case "restartUnsold":
		return []engine.Command{{Type: engine.CmdRestartUnsold}}, true

	case "placeBid":
		return []engine.Command{{Type: engine.CmdPlaceBid, TeamID: m.TeamID, Amount: m.Amount}}, true

	case "adminAddTeam":
		return []engine.Command{{Type: engine.CmdAddTeam, Name: strOrEmpty(m.Name)}}, true
	case "adminDeleteTeam":
		return []engine.Command{{Type: engine.CmdDeleteTeam, TeamID: m.TeamID}}, true
	case "adminUpdateTeam":
		var cmds []engine.Command
		if m.Name != nil {
			cmds = append(cmds, engine.Command{Type: engine.CmdRenameTeam, TeamID: m.ID, Name: *m.Name})
		}
		if m.Budget != nil {
			cmds = append(cmds, engine.Command{Type: engine.CmdSetTeamBudget, TeamID: m.ID, Value: *m.Budget})
		}
		if m.Logo != nil {
			cmds = append(cmds, engine.Command{Type: engine.CmdSetTeamLogo, TeamID: m.ID, URL: *m.Logo})
		}
		return cmds, len(cmds) > 0

	case "adminAddPlayer":
		return []engine.Command{{Type: engine.CmdAddPlayer, Name: strOrEmpty(m.Name)}}, true
	case "adminDeletePlayer":
		return []engine.Command{{Type: engine.CmdDeletePlayer, PlayerID: m.PlayerID}}, true
	case "adminUpdatePlayer":
		var cmds []engine.Command
		if m.Name != nil {
			cmds = append(cmds, engine.Command{Type: engine.CmdRenamePlayer, PlayerID: m.ID, Name: *m.Name})
		}
		if m.Image != nil {
			cmds = append(cmds, engine.Command{Type: engine.CmdSetPlayerImage, PlayerID: m.ID, URL: *m.Image})
		}
		return cmds, len(cmds) > 0

	case "adminSetConfig":
		return []engine.Command{{Type: engine.CmdSetMaxPicks, Value: m.MaxPlayersPerTeam}}, true

	default:
		return nil, false
	}
}

func toServerMessage(o session.Outbound) types.ServerMessage {
	sm := types.ServerMessage{Type: string(o.Kind)}
	switch o.Kind {
	case session.KindState:
		snap := types.SnapshotFrom(o.Version, *o.State)
		sm.State = &snap
	case session.KindTimer, session.KindLowTime:
		secs := o.Seconds
		sm.Seconds = &secs
	case session.KindError:
		sm.Message = o.Message
	case session.KindBidLog:
		entry := o.Entry
		sm.Entry = &entry
	}
	return sm
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
