package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/poker"
)

func TestHandOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		cfg := defaultHandConfig()
		assert.Equal(t, 1, cfg.allInRuns)
		assert.True(t, cfg.burnCards)
		assert.False(t, cfg.straddle)
		assert.Nil(t, cfg.deck)
	})

	t.Run("WithAllInRuns clamps to one", func(t *testing.T) {
		cfg := defaultHandConfig()
		WithAllInRuns(0)(cfg)
		assert.Equal(t, 1, cfg.allInRuns)
		WithAllInRuns(3)(cfg)
		assert.Equal(t, 3, cfg.allInRuns)
	})

	t.Run("WithHandID", func(t *testing.T) {
		players := []*Player{NewPlayer("a", 0, 1000), NewPlayer("b", 1, 1000)}
		h := newTestHand(t, players, 0, WithHandID("hand-1"))
		assert.Equal(t, "hand-1", h.ID)
		assert.Equal(t, "hand-1", h.Snapshot().HandID)
	})

	t.Run("WithDeck", func(t *testing.T) {
		deck, err := StackedDeck(0, []string{"As Ah", "Kd Kc"}, "2c 3d 4h 5s 7c", false)
		require.NoError(t, err)
		players := []*Player{NewPlayer("a", 0, 1000), NewPlayer("b", 1, 1000)}
		h := newTestHand(t, players, 0, WithDeck(deck), WithBurnCards(false))
		assert.ElementsMatch(t, poker.MustParseCards("As Ah"), players[0].HoleCards)
		assert.ElementsMatch(t, poker.MustParseCards("Kd Kc"), players[1].HoleCards)
		assert.Same(t, deck, h.deck)
		assert.Equal(t, Preflop, h.Phase)
	})
}
