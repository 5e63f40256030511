// Package simulator plays many tables of bots against each other as fast as
// possible, checking that no chips are created or lost along the way.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/internal/bot"
	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/randutil"
	"github.com/lox/pokertable/internal/table"
	"github.com/lox/pokertable/poker"
)

// Config holds configuration for running simulations
type Config struct {
	Tables         int
	Hands          int // per table
	Players        int // per table
	Seed           int64
	Strategies     []string // assigned to seats in turn; all strategies when empty
	Settings       table.Settings
	DisconnectRate float64 // chance a player drops out of any given hand
	Timeout        time.Duration
	Logger         *log.Logger
}

// Simulator runs poker hand simulations
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Tables <= 0 {
		config.Tables = 1
	}
	if config.Players <= 0 {
		config.Players = 6
	}
	if len(config.Strategies) == 0 {
		config.Strategies = bot.Strategies()
	}
	config.Settings = config.Settings.WithDefaults()
	config.Settings.NextHandDelay = 0

	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{config: config, logger: logger.WithPrefix("simulate")}
}

// Run plays every table in parallel. It stops at the first table error.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	if err := s.config.Settings.Validate(); err != nil {
		return nil, err
	}
	if s.config.Players > s.config.Settings.MaxPlayers {
		return nil, fmt.Errorf("%d players do not fit a %d seat table", s.config.Players, s.config.Settings.MaxPlayers)
	}
	for _, name := range s.config.Strategies {
		if _, err := bot.New(name, nil); err != nil {
			return nil, err
		}
	}
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	stats := table.NewStatsCollector()
	reports := make([]TableReport, s.config.Tables)

	g, ctx := errgroup.WithContext(ctx)
	for i := range reports {
		g.Go(func() error {
			r, err := s.runTable(ctx, i, stats)
			reports[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		Seed:     s.config.Seed,
		Tables:   reports,
		Players:  stats.Players(),
		Duration: time.Since(start),
	}, nil
}

// tableRecorder tracks what a table's bots are allowed to know.
type tableRecorder struct {
	holes     map[string][]poker.Card
	aborted   int
	showdowns int
	multiRun  int
}

func (r *tableRecorder) OnEvent(e table.Event) {
	switch e := e.(type) {
	case table.HandStartedEvent:
		clear(r.holes)
	case table.HoleCardsEvent:
		r.holes[e.PlayerID] = e.Cards
	case table.HandResultEvent:
		if len(e.Result.Showdown) > 0 {
			r.showdowns++
		}
	case table.AllInResultEvent:
		r.showdowns++
		r.multiRun++
	case table.HandAbortedEvent:
		r.aborted++
	}
}

func (s *Simulator) runTable(ctx context.Context, index int, stats *table.StatsCollector) (TableReport, error) {
	id := fmt.Sprintf("table-%d", index+1)
	report := TableReport{ID: id}
	settings := s.config.Settings
	rng := randutil.Stream(s.config.Seed, index)

	players := make([]*game.Player, s.config.Players)
	bots := make(map[string]bot.Bot, len(players))
	for seat := range players {
		pid := fmt.Sprintf("t%d-p%d", index+1, seat+1)
		players[seat] = game.NewPlayer(pid, seat, settings.InitialChips)
		b, err := bot.New(s.config.Strategies[seat%len(s.config.Strategies)], rng)
		if err != nil {
			return report, err
		}
		bots[pid] = b
	}
	total := len(players) * settings.InitialChips

	rec := &tableRecorder{holes: make(map[string][]poker.Card)}
	o, err := table.New(id, settings, table.StaticRoster(players),
		table.WithRNG(rng),
		table.WithLogger(s.logger),
		table.WithSubscriber(rec),
		table.WithSubscriber(stats),
	)
	if err != nil {
		return report, err
	}
	defer o.Close()

	logger := s.logger.With("table", id)
	for hand := 1; hand <= s.config.Hands; hand++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		for _, p := range players {
			if p.Chips == 0 {
				p.Chips = settings.InitialChips
				total += settings.InitialChips
				report.Rebuys++
			}
		}

		var dropped []string
		if s.config.DisconnectRate > 0 {
			for _, p := range players {
				if rng.Float64() < s.config.DisconnectRate {
					dropped = append(dropped, p.ID)
				}
			}
		}

		// An aborted hand restores the stacks, so it still gets the chip check.
		if _, err := o.StartHand(); err != nil && !game.IsStateError(err) {
			return report, fmt.Errorf("%s: hand %d: %w", id, hand, err)
		}
		for _, pid := range dropped {
			if err := o.Disconnect(pid); err != nil && !game.IsStateError(err) {
				return report, fmt.Errorf("%s: hand %d: disconnect %s: %w", id, hand, pid, err)
			}
		}

		if err := s.playHand(o, rec, bots, settings.BigBlind); err != nil {
			return report, fmt.Errorf("%s: hand %d: %w", id, hand, err)
		}
		for _, pid := range dropped {
			o.Reconnect(pid)
		}

		chips := 0
		for _, p := range players {
			chips += p.Chips
		}
		if chips != total {
			return report, fmt.Errorf("%s: hand %d: %w: %d chips on the table, expected %d",
				id, hand, game.ErrChipMismatch, chips, total)
		}
		logger.Debug("Hand played", "hand", hand, "chips", chips)
	}

	report.Hands = o.HandCount()
	report.Aborted = rec.aborted
	report.Showdowns = rec.showdowns
	report.MultiRun = rec.multiRun
	report.Chips = total
	return report, nil
}

// maxActions bounds a single hand; more means the engine failed to advance.
const maxActions = 1000

func (s *Simulator) playHand(o *table.Orchestrator, rec *tableRecorder, bots map[string]bot.Bot, bigBlind int) error {
	for n := 0; o.InProgress(); n++ {
		if n == maxActions {
			return errors.New("hand did not finish")
		}
		state, _ := o.Snapshot()
		pid := state.CurrentPlayer
		if pid == "" {
			return errors.New("hand in progress with nobody to act")
		}

		chips := 0
		for _, pv := range state.Players {
			if pv.ID == pid {
				chips = pv.Chips
			}
		}
		d := bots[pid].MakeDecision(bot.Situation{
			State:     state,
			HoleCards: rec.holes[pid],
			Chips:     chips,
			BigBlind:  bigBlind,
			Valid:     o.ValidActions(pid),
		})

		_, err := o.ApplyAction(pid, d.Action)
		var rv *game.RuleViolation
		switch {
		case err == nil:
		case errors.As(err, &rv):
			s.logger.Warn("Bot chose an illegal action", "player", pid, "action", d.Action.Type, "amount", d.Action.Amount, "error", err)
			if _, err := o.ApplyAction(pid, game.Action{Type: game.Fold}); err != nil && !game.IsStateError(err) {
				return err
			}
		case game.IsStateError(err):
			return nil
		default:
			return err
		}
	}
	return nil
}
