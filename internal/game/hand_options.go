package game

import (
	"github.com/lox/pokertable/poker"
)

// HandOption configures a HandState during creation.
type HandOption func(*handConfig)

// handConfig holds all configuration for creating a hand.
type handConfig struct {
	handID    string
	deck      *poker.Deck // If provided, uses this deck (overrides RNG for deck creation)
	straddle  bool
	allInRuns int
	burnCards bool
}

func defaultHandConfig() *handConfig {
	return &handConfig{
		allInRuns: 1,
		burnCards: true,
	}
}

// WithHandID sets the id reported in results and snapshots.
func WithHandID(id string) HandOption {
	return func(c *handConfig) {
		c.handID = id
	}
}

// WithDeck sets a specific pre-arranged deck.
// This overrides the RNG for the main deck; the RNG is still used for
// multi-run dealouts.
func WithDeck(deck *poker.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = deck
	}
}

// WithStraddle makes the player after the big blind post a straddle of two
// big blinds. Ignored heads-up.
func WithStraddle(enabled bool) HandOption {
	return func(c *handConfig) {
		c.straddle = enabled
	}
}

// WithAllInRuns sets how many times the remaining board is dealt when two or
// more players are all-in with no action left.
func WithAllInRuns(n int) HandOption {
	return func(c *handConfig) {
		if n < 1 {
			n = 1
		}
		c.allInRuns = n
	}
}

// WithBurnCards controls whether a card is burned before each street.
func WithBurnCards(enabled bool) HandOption {
	return func(c *handConfig) {
		c.burnCards = enabled
	}
}
