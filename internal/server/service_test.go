package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/table"
)

type fakeSender struct {
	mu        sync.Mutex
	broadcast map[string][]*Message
	direct    map[string][]*Message
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		broadcast: make(map[string][]*Message),
		direct:    make(map[string][]*Message),
	}
}

func (f *fakeSender) BroadcastToTable(tableID string, msg *Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast[tableID] = append(f.broadcast[tableID], msg)
}

func (f *fakeSender) SendToPlayer(playerID string, msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct[playerID] = append(f.direct[playerID], msg)
	return nil
}

func types(msgs []*Message) []MessageType {
	out := make([]MessageType, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func (f *fakeSender) broadcastTypes(tableID string) []MessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return types(f.broadcast[tableID])
}

func (f *fakeSender) directTypes(playerID string) []MessageType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return types(f.direct[playerID])
}

func (f *fakeSender) lastBroadcast(tableID string) *Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.broadcast[tableID]
	if len(msgs) == 0 {
		return nil
	}
	return msgs[len(msgs)-1]
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tables = []TableConfig{{Name: "main", NextHandDelay: "0s"}}
	return cfg
}

func newTestService(t *testing.T, cfg *Config) (*Service, *fakeSender) {
	t.Helper()
	sender := newFakeSender()
	svc, err := NewService(cfg, sender,
		WithServiceClock(quartz.NewMock(t)),
		WithServiceLogger(log.New(io.Discard)))
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc, sender
}

func TestNewServiceCreatesConfiguredTables(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Tables = []TableConfig{
		{Name: "micro", SmallBlind: 1, BigBlind: 2},
		{Name: "deep", InitialChips: 5000, AllowStraddle: true, AllInDealCount: 3, MaxPlayers: 9},
	}
	svc, _ := newTestService(t, cfg)

	tables := svc.ListTables()
	require.Len(t, tables, 2)
	assert.Equal(t, TableInfo{
		ID: "deep", MaxPlayers: 9, SmallBlind: 50, BigBlind: 100,
		Straddle: true, RunCount: 3, Status: "waiting",
	}, tables[0])
	assert.Equal(t, TableInfo{
		ID: "micro", MaxPlayers: 6, SmallBlind: 1, BigBlind: 2,
		RunCount: 1, Status: "waiting",
	}, tables[1])
}

func TestNewServiceRejectsBadTable(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Tables = []TableConfig{{Name: "bad", AllInDealCount: 9}}
	_, err := NewService(cfg, newFakeSender(), WithServiceLogger(log.New(io.Discard)))
	assert.Error(t, err)
}

func TestJoinTableStartsHandWithTwoPlayers(t *testing.T) {
	t.Parallel()

	svc, sender := newTestService(t, testConfig())

	joined, err := svc.JoinTable("main", "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, joined.Seat)
	o, ok := svc.Table("main")
	require.True(t, ok)
	assert.False(t, o.InProgress())

	joined, err = svc.JoinTable("main", "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, joined.Seat)
	assert.Len(t, joined.Players, 2)
	assert.True(t, o.InProgress())

	assert.Equal(t, []MessageType{MessageTypeHandStarted}, sender.broadcastTypes("main"))
	// Heads-up the button posts the small blind and acts first.
	assert.Equal(t, []MessageType{MessageTypeHoleCards, MessageTypeActionRequired}, sender.directTypes("alice"))
	assert.Equal(t, []MessageType{MessageTypeHoleCards}, sender.directTypes("bob"))

	var hc table.HoleCardsEvent
	require.NoError(t, json.Unmarshal(sender.direct["bob"][0].Data, &hc))
	assert.Equal(t, "bob", hc.PlayerID)
	assert.Len(t, hc.Cards, 2)

	_, err = svc.JoinTable("main", "bob")
	assert.ErrorIs(t, err, ErrAlreadySeated)
	_, err = svc.JoinTable("nope", "carol")
	assert.ErrorIs(t, err, ErrTableUnknown)

	info := svc.ListTables()[0]
	assert.Equal(t, "playing", info.Status)
	assert.Equal(t, 2, info.PlayerCount)
	assert.Equal(t, 1, info.HandsPlayed)
}

func TestHandleAction(t *testing.T) {
	t.Parallel()

	svc, sender := newTestService(t, testConfig())
	for _, id := range []string{"alice", "bob"} {
		_, err := svc.JoinTable("main", id)
		require.NoError(t, err)
	}

	_, err := svc.HandleAction("main", "bob", PlayerActionData{Action: "call"})
	assert.ErrorIs(t, err, game.ErrNotYourTurn)
	assert.Equal(t, "not_your_turn", errorData("action_failed", err).Code)

	_, err = svc.HandleAction("main", "alice", PlayerActionData{Action: "shove"})
	assert.ErrorIs(t, err, game.ErrInvalidAction)

	_, err = svc.HandleAction("elsewhere", "alice", PlayerActionData{Action: "fold"})
	assert.ErrorIs(t, err, ErrTableUnknown)
	assert.Equal(t, "action_failed", errorData("action_failed", err).Code)

	res, err := svc.HandleAction("main", "alice", PlayerActionData{Action: "fold"})
	require.NoError(t, err)
	assert.Equal(t, game.Fold, res.Applied)

	o, _ := svc.Table("main")
	require.NotNil(t, o.LastResult())
	assert.Equal(t, map[string]int{"bob": 30}, o.LastResult().Payouts)
	assert.Equal(t, []MessageType{
		MessageTypeHandStarted, MessageTypePlayerAction, MessageTypeHandResult,
	}, sender.broadcastTypes("main"))
	assert.Equal(t, 1, svc.Stats().Hands())
}

func TestLeaveTableFoldsPlayerToAct(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, testConfig())
	for _, id := range []string{"alice", "bob"} {
		_, err := svc.JoinTable("main", id)
		require.NoError(t, err)
	}

	require.NoError(t, svc.LeaveTable("main", "alice"))
	o, _ := svc.Table("main")
	assert.False(t, o.InProgress())
	require.NotNil(t, o.LastResult())
	assert.Equal(t, map[string]int{"bob": 30}, o.LastResult().Payouts)

	assert.ErrorIs(t, svc.LeaveTable("main", "alice"), ErrNotSeated)
	assert.Equal(t, 1, svc.ListTables()[0].PlayerCount)

	// Rejoining gets a fresh seat and the next hand deals her back in.
	_, err := svc.JoinTable("main", "alice")
	require.NoError(t, err)
	assert.True(t, o.InProgress())
	snap, ok := o.Snapshot()
	require.True(t, ok)
	assert.Len(t, snap.Players, 2)
}

func TestRejoinWaitsForRunningHand(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, testConfig())
	for _, id := range []string{"alice", "bob"} {
		_, err := svc.JoinTable("main", id)
		require.NoError(t, err)
	}
	o, _ := svc.Table("main")

	// Alice is to act, so bob leaving does not end the hand.
	require.NoError(t, svc.LeaveTable("main", "bob"))
	require.True(t, o.InProgress())

	_, err := svc.JoinTable("main", "bob")
	assert.ErrorIs(t, err, ErrStillInHand)
	assert.Equal(t, 1, svc.ListTables()[0].PlayerCount)

	_, err = svc.HandleAction("main", "alice", PlayerActionData{Action: "fold"})
	require.NoError(t, err)
	require.NotNil(t, o.LastResult())
	assert.Equal(t, map[string]int{"bob": 30}, o.LastResult().Payouts)

	joined, err := svc.JoinTable("main", "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, joined.Seat)
	assert.True(t, o.InProgress())
	assert.Equal(t, 2, svc.ListTables()[0].PlayerCount)
}

func TestTickBroadcastsTimer(t *testing.T) {
	t.Parallel()

	svc, sender := newTestService(t, testConfig())
	svc.Tick()
	assert.Empty(t, sender.broadcastTypes("main"), "no timer without a hand")

	for _, id := range []string{"alice", "bob"} {
		_, err := svc.JoinTable("main", id)
		require.NoError(t, err)
	}
	svc.Tick()

	msg := sender.lastBroadcast("main")
	require.NotNil(t, msg)
	assert.Equal(t, MessageTypeTimer, msg.Type)

	var u table.TimerUpdate
	require.NoError(t, json.Unmarshal(msg.Data, &u))
	assert.Equal(t, "alice", u.PlayerID)
	assert.Equal(t, 30, u.RemainingSeconds)
}

func TestRunTickerStopsWithContext(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.RunTicker(ctx))
}

func TestManyPlayersJoinConcurrently(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Tables = []TableConfig{{Name: "main", MaxPlayers: 10, NextHandDelay: "0s"}}
	svc, _ := newTestService(t, cfg)

	var wg sync.WaitGroup
	errs := make(chan error, 12)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.JoinTable("main", fmt.Sprintf("p%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	full := 0
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrTableFull)
			full++
		}
	}
	assert.Equal(t, 2, full)
	assert.Equal(t, 10, svc.ListTables()[0].PlayerCount)

	o, _ := svc.Table("main")
	assert.True(t, o.InProgress())
}
