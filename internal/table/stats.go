package table

import (
	"math"
	"sort"
	"sync"

	"github.com/lox/pokertable/internal/game"
)

// PlayerStats summarizes one player's results.
type PlayerStats struct {
	PlayerID        string  `json:"player_id"`
	Hands           int     `json:"hands"`
	NetChips        int     `json:"net_chips"`
	BB100           float64 `json:"bb_per_100"`
	StdDev          float64 `json:"std_dev_bb"`
	WinningHands    int     `json:"winning_hands"`
	ShowdownWins    int     `json:"showdown_wins"`
	NonShowdownWins int     `json:"non_showdown_wins"`
	ShowdownLosses  int     `json:"showdown_losses"`
	Timeouts        int     `json:"timeouts"`
	Aborted         int     `json:"aborted"`
}

type playerStats struct {
	hands           int
	net             int
	sumBB           float64
	sumBB2          float64 // sum of squares for variance
	winningHands    int
	showdownWins    int
	nonShowdownWins int
	showdownLosses  int
	timeouts        int
	aborted         int
}

func (s *playerStats) addResult(net, bigBlind int, wentToShowdown bool) {
	netBB := float64(net) / float64(bigBlind)
	s.hands++
	s.net += net
	s.sumBB += netBB
	s.sumBB2 += netBB * netBB

	switch {
	case net > 0:
		s.winningHands++
		if wentToShowdown {
			s.showdownWins++
		} else {
			s.nonShowdownWins++
		}
	case net < 0 && wentToShowdown:
		s.showdownLosses++
	}
}

func (s *playerStats) mean() float64 {
	if s.hands == 0 {
		return 0
	}
	return s.sumBB / float64(s.hands)
}

// stdDev is the sample standard deviation in big blinds per hand.
func (s *playerStats) stdDev() float64 {
	if s.hands < 2 {
		return 0
	}
	mean := s.mean()
	v := (s.sumBB2 - float64(s.hands)*mean*mean) / float64(s.hands-1)
	return math.Sqrt(math.Max(v, 0))
}

type handInfo struct {
	bigBlind int
	players  []string
}

// StatsCollector aggregates per-player results from table events. One
// collector can subscribe to many tables.
type StatsCollector struct {
	mu      sync.RWMutex
	players map[string]*playerStats
	current map[string]handInfo // by table id
	hands   int
	aborted int
}

var _ Subscriber = (*StatsCollector)(nil)

// NewStatsCollector creates an empty collector.
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		players: make(map[string]*playerStats),
		current: make(map[string]handInfo),
	}
}

func (c *StatsCollector) player(id string) *playerStats {
	ps, ok := c.players[id]
	if !ok {
		ps = &playerStats{}
		c.players[id] = ps
	}
	return ps
}

// OnEvent implements Subscriber.
func (c *StatsCollector) OnEvent(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := e.(type) {
	case HandStartedEvent:
		info := handInfo{bigBlind: e.BigBlind}
		for _, pv := range e.State.Players {
			info.players = append(info.players, pv.ID)
		}
		c.current[e.TableID()] = info
	case PlayerTimeoutEvent:
		c.player(e.PlayerID).timeouts++
	case HandAbortedEvent:
		c.aborted++
		for _, id := range c.current[e.TableID()].players {
			c.player(id).aborted++
		}
		delete(c.current, e.TableID())
	case HandResultEvent:
		c.record(e.TableID(), e.Result, e.State)
	case AllInResultEvent:
		c.record(e.TableID(), e.Result, e.State)
	}
}

func (c *StatsCollector) record(tableID string, res *game.HandResult, state game.Snapshot) {
	info := c.current[tableID]
	delete(c.current, tableID)
	if info.bigBlind <= 0 {
		return
	}
	c.hands++

	showdown := make(map[string]bool, len(res.Showdown))
	for _, entry := range res.Showdown {
		showdown[entry.PlayerID] = true
	}
	for _, pv := range state.Players {
		net := res.Payouts[pv.ID] - pv.TotalBet
		c.player(pv.ID).addResult(net, info.bigBlind, showdown[pv.ID])
	}
}

// Hands returns the number of hands that settled.
func (c *StatsCollector) Hands() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hands
}

// Aborted returns the number of hands that were aborted.
func (c *StatsCollector) Aborted() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aborted
}

// Players returns per-player statistics, best result first.
func (c *StatsCollector) Players() []PlayerStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]PlayerStats, 0, len(c.players))
	for id, ps := range c.players {
		out = append(out, PlayerStats{
			PlayerID:        id,
			Hands:           ps.hands,
			NetChips:        ps.net,
			BB100:           ps.mean() * 100,
			StdDev:          ps.stdDev(),
			WinningHands:    ps.winningHands,
			ShowdownWins:    ps.showdownWins,
			NonShowdownWins: ps.nonShowdownWins,
			ShowdownLosses:  ps.showdownLosses,
			Timeouts:        ps.timeouts,
			Aborted:         ps.aborted,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetChips != out[j].NetChips {
			return out[i].NetChips > out[j].NetChips
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// Reset clears all statistics.
func (c *StatsCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.players = make(map[string]*playerStats)
	c.current = make(map[string]handInfo)
	c.hands = 0
	c.aborted = 0
}
