package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/choc763-lab/chocbear2/internal/session"
	"github.com/choc763-lab/chocbear2/internal/types"
)

// StateSnapshot serves the current snapshot over plain HTTP. Clients
// normally resync through the websocket join, but this keeps the state
// inspectable with curl and gives reconnect logic a fallback.
func StateSnapshot(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan session.View, 1)
		sess.Inbox() <- session.GetView{Reply: reply}

		select {
		case view := <-reply:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(types.SnapshotFrom(view.Version, view.State))
		case <-time.After(2 * time.Second):
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
		case <-r.Context().Done():
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
