package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actionTypes(valid []ValidAction) []ActionType {
	types := make([]ActionType, len(valid))
	for i, va := range valid {
		types[i] = va.Type
	}
	return types
}

// TestAllInPlayerSkippedForActions verifies that all-in players are never
// prompted again.
func TestAllInPlayerSkippedForActions(t *testing.T) {
	t.Parallel()

	players := []*Player{
		NewPlayer("alice", 0, 100),
		NewPlayer("bob", 1, 500),
		NewPlayer("charlie", 2, 500),
		NewPlayer("dave", 3, 500),
	}
	h := newTestHand(t, players, 0)
	require.Equal(t, "dave", h.CurrentPlayerID())

	act(t, h, "dave", Action{Type: Call})
	res := act(t, h, "alice", Action{Type: AllIn})
	assert.True(t, res.Reopened)
	assert.True(t, players[0].AllIn)

	assert.Equal(t, "bob", h.CurrentPlayerID())
	act(t, h, "bob", Action{Type: Call})
	assert.Equal(t, "charlie", h.CurrentPlayerID())
	act(t, h, "charlie", Action{Type: Call})
	assert.Equal(t, "dave", h.CurrentPlayerID())
	act(t, h, "dave", Action{Type: Call})

	// Alice sits left of the button but is skipped on every street.
	require.Equal(t, Flop, h.Phase)
	assert.Equal(t, "bob", h.CurrentPlayerID())
	for _, id := range []string{"bob", "charlie", "dave"} {
		act(t, h, id, Action{Type: Check})
	}
	require.Equal(t, Turn, h.Phase)
	assert.Equal(t, "bob", h.CurrentPlayerID())
	assert.Empty(t, h.ValidActions("alice"))

	checkDown(t, h)
	assert.True(t, h.IsComplete())
	assert.Equal(t, 1600, chipTotal(players))
}

// TestLastPlayerWithChipsDoesNotAct verifies the board runs out once only
// one player could still bet.
func TestLastPlayerWithChipsDoesNotAct(t *testing.T) {
	t.Parallel()

	players := []*Player{
		NewPlayer("alice", 0, 100),
		NewPlayer("bob", 1, 500),
		NewPlayer("charlie", 2, 500),
	}
	h := newTestHand(t, players, 0)

	act(t, h, "alice", Action{Type: AllIn})
	act(t, h, "bob", Action{Type: Call})
	act(t, h, "charlie", Action{Type: Fold})

	assert.True(t, h.IsComplete())
	assert.Len(t, h.Board, 5)
	assert.Empty(t, h.CurrentPlayerID())
	assert.Equal(t, 1100, chipTotal(players))
}

// TestAllPlayersAllInAutoComplete verifies the hand completes without
// prompts when everyone is all in.
func TestAllPlayersAllInAutoComplete(t *testing.T) {
	t.Parallel()

	players := []*Player{
		NewPlayer("alice", 0, 100),
		NewPlayer("bob", 1, 150),
	}
	h := newTestHand(t, players, 0)
	require.Equal(t, "alice", h.CurrentPlayerID())

	act(t, h, "alice", RaiseBy(30))
	act(t, h, "bob", Action{Type: AllIn})
	assert.Equal(t, []ActionType{Fold, AllIn}, actionTypes(h.ValidActions("alice")))
	act(t, h, "alice", Action{Type: AllIn})

	require.True(t, h.IsComplete())
	assert.Len(t, h.Board, 5)
	assert.Equal(t, 250, chipTotal(players))
	// Bob's extra 50 is only his to win.
	assert.GreaterOrEqual(t, players[1].Chips, 50)
}

// TestExactStackMatchesCall covers a stack that exactly equals the amount
// to call: the only ways forward are fold or all in.
func TestExactStackMatchesCall(t *testing.T) {
	t.Parallel()

	players := []*Player{
		NewPlayer("alice", 0, 1000),
		NewPlayer("bob", 1, 120),
		NewPlayer("charlie", 2, 1000),
	}
	h := newTestHand(t, players, 0)

	// Alice raises to 120, which is bob's whole stack with his small blind.
	act(t, h, "alice", RaiseBy(100))
	require.Equal(t, "bob", h.CurrentPlayerID())
	require.Equal(t, 110, players[1].Chips)

	valid := h.ValidActions("bob")
	assert.Equal(t, []ActionType{Fold, AllIn}, actionTypes(valid))
	assert.Equal(t, 110, valid[1].MinAmount)

	res := act(t, h, "bob", Action{Type: AllIn})
	assert.Equal(t, AllIn, res.Applied)
	assert.False(t, res.Reopened)
	assert.Equal(t, 120, h.Betting.CurrentBet)

	valid = h.ValidActions("charlie")
	require.Contains(t, actionTypes(valid), Call)
	assert.Equal(t, 100, valid[1].MinAmount)
}
