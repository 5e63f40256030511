package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, 6, s.MaxPlayers)
	assert.Equal(t, 1000, s.InitialChips)
	assert.Equal(t, 10, s.SmallBlind)
	assert.Equal(t, 20, s.BigBlind)
	assert.Equal(t, 1, s.AllInDealCount)
	assert.Equal(t, 30*time.Second, s.ActionTimeout)
	assert.Equal(t, 5*time.Second, s.NextHandDelay)
	assert.False(t, s.AllowStraddle)
}

func TestSettingsDeriveBlindsFromStack(t *testing.T) {
	t.Parallel()

	s := Settings{InitialChips: 5000}.WithDefaults()
	assert.Equal(t, 50, s.SmallBlind)
	assert.Equal(t, 100, s.BigBlind)
	assert.Zero(t, s.NextHandDelay)

	s = Settings{InitialChips: 5000, SmallBlind: 25, BigBlind: 50}.WithDefaults()
	assert.Equal(t, 25, s.SmallBlind)
	assert.Equal(t, 50, s.BigBlind)
}

func TestSettingsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"one player", func(s *Settings) { s.MaxPlayers = 1 }},
		{"eleven players", func(s *Settings) { s.MaxPlayers = 11 }},
		{"no chips", func(s *Settings) { s.InitialChips = -1 }},
		{"zero small blind", func(s *Settings) { s.SmallBlind = -5 }},
		{"big blind not above small", func(s *Settings) { s.BigBlind = s.SmallBlind }},
		{"no runs", func(s *Settings) { s.AllInDealCount = -1 }},
		{"five runs", func(s *Settings) { s.AllInDealCount = 5 }},
		{"negative timeout", func(s *Settings) { s.ActionTimeout = -time.Second }},
		{"negative delay", func(s *Settings) { s.NextHandDelay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := DefaultSettings()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}

	for runs := 1; runs <= 4; runs++ {
		s := DefaultSettings()
		s.AllInDealCount = runs
		assert.NoError(t, s.Validate())
	}
}
