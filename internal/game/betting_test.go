package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayers(chips ...int) []*Player {
	players := make([]*Player, len(chips))
	for i, c := range chips {
		players[i] = NewPlayer(playerID(i), i, c)
	}
	return players
}

func playerID(i int) string {
	return string(rune('a' + i))
}

// facing sets up a round where players[0] bet to amount.
func facing(t *testing.T, players []*Player, amount int) *BettingRound {
	t.Helper()
	br := NewBettingRound(len(players), 20)
	br.ResetForNewRound(0)
	_, err := br.Apply(players, 0, RaiseBy(amount))
	require.NoError(t, err)
	return br
}

func TestBettingCheck(t *testing.T) {
	t.Parallel()

	players := newTestPlayers(1000, 1000)
	br := NewBettingRound(2, 20)

	res, err := br.Apply(players, 0, Action{Type: Check})
	require.NoError(t, err)
	assert.Equal(t, Check, res.Applied)
	assert.True(t, br.Acted[0])

	br = facing(t, players, 40)
	before := *players[1]
	_, err = br.Apply(players, 1, Action{Type: Check})
	assert.ErrorIs(t, err, ErrCannotCheck)
	assert.Equal(t, before, *players[1], "rejected action must not mutate the player")
	assert.False(t, br.Acted[1])
}

func TestBettingCall(t *testing.T) {
	t.Parallel()

	t.Run("nothing owed becomes check", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(1000, 1000)
		br := NewBettingRound(2, 20)
		res, err := br.Apply(players, 1, Action{Type: Call})
		require.NoError(t, err)
		assert.Equal(t, Call, res.Requested)
		assert.Equal(t, Check, res.Applied)
		assert.Equal(t, 0, res.Amount)
	})

	t.Run("regular call", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(1000, 1000)
		br := facing(t, players, 60)
		res, err := br.Apply(players, 1, Action{Type: Call})
		require.NoError(t, err)
		assert.Equal(t, Call, res.Applied)
		assert.Equal(t, 60, res.Amount)
		assert.Equal(t, 940, players[1].Chips)
		assert.Equal(t, 60, players[1].CurrentBet)
		assert.Equal(t, 60, players[1].TotalBet)
		assert.False(t, players[1].AllIn)
	})

	t.Run("short stack call converts to all-in", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(1000, 45)
		br := facing(t, players, 60)
		res, err := br.Apply(players, 1, Action{Type: Call})
		require.NoError(t, err)
		assert.Equal(t, AllIn, res.Applied)
		assert.Equal(t, 45, res.Amount)
		assert.True(t, players[1].AllIn)
		assert.Equal(t, 0, players[1].Chips)
		assert.Equal(t, 60, br.CurrentBet, "a short call does not change the bet")
	})
}

func TestBettingRaise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		chips   int
		amount  int
		wantErr error
	}{
		{"below minimum", 1000, 30, ErrRaiseTooSmall},
		{"zero", 1000, 0, ErrRaiseTooSmall},
		{"more than stack", 100, 200, ErrInsufficientChips},
		{"exactly minimum", 1000, 60, nil},
		{"short stack all-in below minimum", 70, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			players := newTestPlayers(1000, tt.chips)
			br := facing(t, players, 60)
			before := *players[1]

			_, err := br.Apply(players, 1, RaiseBy(tt.amount))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, *players[1])
				assert.Equal(t, 60, br.CurrentBet)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 60+tt.amount, br.CurrentBet)
		})
	}
}

func TestBettingFullRaiseReopens(t *testing.T) {
	t.Parallel()

	players := newTestPlayers(1000, 1000, 1000)
	br := facing(t, players, 40)
	_, err := br.Apply(players, 1, Action{Type: Call})
	require.NoError(t, err)

	res, err := br.Apply(players, 2, RaiseBy(100))
	require.NoError(t, err)
	assert.True(t, res.Reopened)
	assert.Equal(t, 140, br.CurrentBet)
	assert.Equal(t, 100, br.MinRaise)
	assert.Equal(t, 2, br.LastRaiser)
	assert.Equal(t, 2, br.RoundStart)
	assert.Equal(t, []bool{false, false, true}, br.Acted)
	assert.False(t, br.IsRoundComplete(players))

	// Earlier actors may raise again.
	assert.True(t, br.CanRaise(0))
	_, err = br.Apply(players, 0, RaiseBy(100))
	require.NoError(t, err)
	assert.Equal(t, 240, br.CurrentBet)
}

func TestBettingShortAllInDoesNotReopen(t *testing.T) {
	t.Parallel()

	// a bets 100, b calls, c shoves 150 total: a 50 increment below the
	// 100 minimum raise.
	players := newTestPlayers(1000, 1000, 150)
	br := facing(t, players, 100)
	_, err := br.Apply(players, 1, Action{Type: Call})
	require.NoError(t, err)

	res, err := br.Apply(players, 2, Action{Type: AllIn})
	require.NoError(t, err)
	assert.Equal(t, AllIn, res.Applied)
	assert.False(t, res.Reopened)
	assert.Equal(t, 150, br.CurrentBet)
	assert.Equal(t, 100, br.MinRaise, "minimum raise is unchanged by a short all-in")
	assert.Equal(t, 0, br.LastRaiser)

	_, err = br.Apply(players, 0, RaiseBy(200))
	assert.ErrorIs(t, err, ErrRaiseNotReopened)
	_, err = br.Apply(players, 0, Action{Type: AllIn})
	assert.ErrorIs(t, err, ErrRaiseNotReopened)

	valid := br.GetValidActions(players, 0)
	assert.Equal(t, []ValidAction{
		{Type: Fold},
		{Type: Call, MinAmount: 50, MaxAmount: 50},
	}, valid)

	res, err = br.Apply(players, 0, Action{Type: Call})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Amount)
	assert.False(t, br.IsRoundComplete(players), "b still owes 50")

	_, err = br.Apply(players, 1, Action{Type: Call})
	require.NoError(t, err)
	assert.True(t, br.IsRoundComplete(players))
}

func TestBettingAllInFullRaise(t *testing.T) {
	t.Parallel()

	players := newTestPlayers(1000, 500)
	br := facing(t, players, 100)
	res, err := br.Apply(players, 1, Action{Type: AllIn})
	require.NoError(t, err)
	assert.True(t, res.Reopened)
	assert.Equal(t, 500, br.CurrentBet)
	assert.Equal(t, 400, br.MinRaise)
	assert.Equal(t, 500, res.BetTotal)
}

func TestBettingAllInWithoutChips(t *testing.T) {
	t.Parallel()

	players := newTestPlayers(1000, 0)
	br := NewBettingRound(2, 20)
	_, err := br.Apply(players, 1, Action{Type: AllIn})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestBettingUnknownAction(t *testing.T) {
	t.Parallel()

	players := newTestPlayers(1000, 1000)
	br := NewBettingRound(2, 20)
	_, err := br.Apply(players, 0, Action{Type: ActionType(42)})
	assert.ErrorIs(t, err, ErrInvalidAction)

	var rv *RuleViolation
	require.True(t, errors.As(err, &rv))
	assert.Equal(t, CodeInvalidAction, rv.Code)
}

func TestIsRoundComplete(t *testing.T) {
	t.Parallel()

	t.Run("everyone folded or all-in", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(0, 0, 100)
		players[0].AllIn = true
		players[1].AllIn = true
		players[2].Folded = true
		br := NewBettingRound(3, 20)
		br.CurrentBet = 500
		assert.True(t, br.IsRoundComplete(players))
	})

	t.Run("single active player matched", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(0, 900)
		players[0].AllIn = true
		players[0].CurrentBet = 100
		players[1].CurrentBet = 100
		br := NewBettingRound(2, 20)
		br.CurrentBet = 100
		assert.True(t, br.IsRoundComplete(players))

		players[1].CurrentBet = 50
		assert.False(t, br.IsRoundComplete(players))
	})

	t.Run("matched bets need everyone to act", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(1000, 1000, 1000)
		br := NewBettingRound(3, 20)
		assert.False(t, br.IsRoundComplete(players), "fresh street with no action")

		for i := range players {
			_, err := br.Apply(players, i, Action{Type: Check})
			require.NoError(t, err)
		}
		assert.True(t, br.IsRoundComplete(players))
	})

	t.Run("unmatched bet", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(1000, 1000, 1000)
		br := facing(t, players, 40)
		_, err := br.Apply(players, 1, Action{Type: Call})
		require.NoError(t, err)
		assert.False(t, br.IsRoundComplete(players))
		_, err = br.Apply(players, 2, Action{Type: Fold})
		require.NoError(t, err)
		assert.True(t, br.IsRoundComplete(players))
	})
}

func TestNextToAct(t *testing.T) {
	t.Parallel()

	players := newTestPlayers(1000, 0, 1000, 1000)
	players[1].AllIn = true
	players[2].Folded = true
	br := NewBettingRound(4, 20)

	assert.Equal(t, 3, br.NextToAct(players, 0))
	assert.Equal(t, 0, br.NextToAct(players, 3))

	players[0].Folded = true
	players[3].Folded = true
	assert.Equal(t, -1, br.NextToAct(players, 0))
}

func TestGetValidActions(t *testing.T) {
	t.Parallel()

	t.Run("unopened", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(1000, 1000)
		br := NewBettingRound(2, 20)
		assert.Equal(t, []ValidAction{
			{Type: Fold},
			{Type: Check},
			{Type: Raise, MinAmount: 20, MaxAmount: 1000},
			{Type: AllIn, MinAmount: 1000, MaxAmount: 1000},
		}, br.GetValidActions(players, 0))
	})

	t.Run("facing a bet", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(1000, 1000)
		br := facing(t, players, 100)
		assert.Equal(t, []ValidAction{
			{Type: Fold},
			{Type: Call, MinAmount: 100, MaxAmount: 100},
			{Type: Raise, MinAmount: 100, MaxAmount: 900},
			{Type: AllIn, MinAmount: 1000, MaxAmount: 1000},
		}, br.GetValidActions(players, 1))
	})

	t.Run("covering the bet takes the whole stack", func(t *testing.T) {
		t.Parallel()
		players := newTestPlayers(1000, 80)
		br := facing(t, players, 100)
		assert.Equal(t, []ValidAction{
			{Type: Fold},
			{Type: AllIn, MinAmount: 80, MaxAmount: 80},
		}, br.GetValidActions(players, 1))
	})
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  int
		want    Action
		wantErr error
	}{
		{"fold", 0, Action{Type: Fold}, nil},
		{"CHECK", 0, Action{Type: Check}, nil},
		{" call ", 0, Action{Type: Call}, nil},
		{"raise", 60, RaiseBy(60), nil},
		{"raise", 0, Action{}, ErrRaiseTooSmall},
		{"all-in", 0, Action{Type: AllIn}, nil},
		{"allin", 0, Action{Type: AllIn}, nil},
		{"bet", 10, Action{}, ErrInvalidAction},
	}

	for _, tt := range tests {
		got, err := ParseAction(tt.name, tt.amount)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
