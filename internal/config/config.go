package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/choc763-lab/chocbear2/internal/engine"
)

// Config is the process configuration, read from the environment with the
// AUCTION_ prefix (AUCTION_ADDR, AUCTION_ROUND_SECONDS, ...).
type Config struct {
	Addr string `envconfig:"ADDR" default:":8080"`
	Env  string `envconfig:"APP_ENV" default:"development"`

	RoundSeconds   int `envconfig:"ROUND_SECONDS" default:"180"`
	BaselineBudget int `envconfig:"BASELINE_BUDGET" default:"0"`
	MaxTeams       int `envconfig:"MAX_TEAMS" default:"10"`
	MaxPlayers     int `envconfig:"MAX_PLAYERS" default:"40"`
	MaxPicks       int `envconfig:"MAX_PICKS" default:"3"`
	MinIncrement   int `envconfig:"MIN_INCREMENT" default:"1"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("auction", &c); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.RoundSeconds <= 0 {
		return fmt.Errorf("round seconds must be positive, got %d", c.RoundSeconds)
	}
	if c.BaselineBudget < 0 {
		return fmt.Errorf("baseline budget must be non-negative, got %d", c.BaselineBudget)
	}
	if c.MinIncrement < 1 {
		return fmt.Errorf("min increment must be at least 1, got %d", c.MinIncrement)
	}
	if c.MaxTeams <= 0 || c.MaxPlayers <= 0 || c.MaxPicks <= 0 {
		return fmt.Errorf("capacity limits must be positive")
	}
	return nil
}

// Rules maps the config onto the engine's session rules.
func (c Config) Rules() engine.Rules {
	return engine.Rules{
		RoundSeconds:   c.RoundSeconds,
		BaselineBudget: c.BaselineBudget,
		MaxTeams:       c.MaxTeams,
		MaxPlayers:     c.MaxPlayers,
		MaxPicks:       c.MaxPicks,
		MinIncrement:   c.MinIncrement,
	}
}
