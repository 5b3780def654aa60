package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/choc763-lab/chocbear2/internal/engine"
	"github.com/choc763-lab/chocbear2/internal/session"
	"github.com/choc763-lab/chocbear2/internal/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	st := engine.NewState(engine.Rules{})
	_, st, err := engine.Apply(st, engine.Command{Type: engine.CmdAddTeam, Name: "Tigers"})
	require.NoError(t, err)

	sess := session.New(ctx, st, clockwork.NewFakeClock(), zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(sess, zap.NewNop(), []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStateSnapshot(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var snap types.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	require.Len(t, snap.Teams, 1)
	assert.Equal(t, "Tigers", snap.Teams[0].Name)
	assert.Equal(t, engine.PhaseIdle, snap.AuctionState)
	assert.Equal(t, 180, snap.RemainingTime)
	assert.Equal(t, 3, snap.MaxPlayersPerTeam)
	assert.Nil(t, snap.CurrentPlayer)
	assert.NotNil(t, snap.Players)
}
