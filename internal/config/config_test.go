package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, 180, c.RoundSeconds)
	assert.Equal(t, 0, c.BaselineBudget)
	assert.Equal(t, 10, c.MaxTeams)
	assert.Equal(t, 40, c.MaxPlayers)
	assert.Equal(t, 3, c.MaxPicks)
	assert.Equal(t, 1, c.MinIncrement)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AUCTION_ADDR", ":9999")
	t.Setenv("AUCTION_ROUND_SECONDS", "60")
	t.Setenv("AUCTION_BASELINE_BUDGET", "1000")
	t.Setenv("AUCTION_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", c.Addr)
	assert.Equal(t, 60, c.RoundSeconds)
	assert.Equal(t, 1000, c.BaselineBudget)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, c.AllowedOrigins)
}

func TestValidate(t *testing.T) {
	t.Setenv("AUCTION_ROUND_SECONDS", "0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUCTION_ROUND_SECONDS", "180")
	t.Setenv("AUCTION_MIN_INCREMENT", "0")
	_, err = Load()
	require.Error(t, err)
}

func TestRulesMapping(t *testing.T) {
	c := Config{RoundSeconds: 90, BaselineBudget: 500, MaxTeams: 8, MaxPlayers: 24, MaxPicks: 3, MinIncrement: 5}
	r := c.Rules()
	assert.Equal(t, 90, r.RoundSeconds)
	assert.Equal(t, 500, r.BaselineBudget)
	assert.Equal(t, 8, r.MaxTeams)
	assert.Equal(t, 24, r.MaxPlayers)
	assert.Equal(t, 5, r.MinIncrement)
}
