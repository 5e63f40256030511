package table

import (
	"fmt"
	"time"
)

const (
	DefaultMaxPlayers    = 6
	DefaultInitialChips  = 1000
	DefaultActionTimeout = 30 * time.Second
	DefaultNextHandDelay = 5 * time.Second
)

// Settings configures a single table.
type Settings struct {
	MaxPlayers     int
	InitialChips   int
	SmallBlind     int
	BigBlind       int
	AllowStraddle  bool
	AllInDealCount int
	ActionTimeout  time.Duration
	NextHandDelay  time.Duration // zero disables automatic hand starts
}

// DefaultSettings returns settings for a six-max table with 1000 chip stacks.
func DefaultSettings() Settings {
	return Settings{NextHandDelay: DefaultNextHandDelay}.WithDefaults()
}

// WithDefaults fills zero values. Blinds are derived from the initial stack
// when not set. NextHandDelay is left alone since zero is meaningful.
func (s Settings) WithDefaults() Settings {
	if s.MaxPlayers == 0 {
		s.MaxPlayers = DefaultMaxPlayers
	}
	if s.InitialChips == 0 {
		s.InitialChips = DefaultInitialChips
	}
	if s.SmallBlind == 0 {
		s.SmallBlind = s.InitialChips / 100
	}
	if s.BigBlind == 0 {
		s.BigBlind = s.InitialChips / 50
	}
	if s.AllInDealCount == 0 {
		s.AllInDealCount = 1
	}
	if s.ActionTimeout == 0 {
		s.ActionTimeout = DefaultActionTimeout
	}
	return s
}

// Validate checks the settings are playable.
func (s Settings) Validate() error {
	if s.MaxPlayers < 2 || s.MaxPlayers > 10 {
		return fmt.Errorf("max players must be between 2 and 10, got %d", s.MaxPlayers)
	}
	if s.InitialChips <= 0 {
		return fmt.Errorf("initial chips must be positive, got %d", s.InitialChips)
	}
	if s.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive, got %d", s.SmallBlind)
	}
	if s.BigBlind <= s.SmallBlind {
		return fmt.Errorf("big blind (%d) must be greater than small blind (%d)", s.BigBlind, s.SmallBlind)
	}
	if s.AllInDealCount < 1 || s.AllInDealCount > 4 {
		return fmt.Errorf("all-in deal count must be between 1 and 4, got %d", s.AllInDealCount)
	}
	if s.ActionTimeout <= 0 {
		return fmt.Errorf("action timeout must be positive, got %s", s.ActionTimeout)
	}
	if s.NextHandDelay < 0 {
		return fmt.Errorf("next hand delay cannot be negative, got %s", s.NextHandDelay)
	}
	return nil
}
