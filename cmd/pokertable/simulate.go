package main

import (
	"os"
	"time"

	"github.com/lox/pokertable/cmd/pokertable/shared"
	"github.com/lox/pokertable/internal/simulator"
	"github.com/lox/pokertable/internal/table"
)

// SimulateCmd plays bot-only tables as fast as possible.
type SimulateCmd struct {
	Tables         int           `default:"4" help:"Number of tables to run in parallel"`
	Hands          int           `default:"10000" help:"Hands to play at each table"`
	Players        int           `default:"6" help:"Players seated at each table"`
	Strategies     []string      `default:"chart,call,rand,maniac,fold" help:"Bot strategies, assigned to seats in turn"`
	Seed           int64         `default:"0" help:"RNG seed (0 for random)"`
	MaxPlayers     int           `default:"6" help:"Seats at each table"`
	InitialChips   int           `default:"1000" help:"Starting stack, also the rebuy amount"`
	SmallBlind     int           `default:"5" help:"Small blind"`
	BigBlind       int           `default:"10" help:"Big blind"`
	Straddle       bool          `help:"Allow the straddle"`
	AllInDeals     int           `name:"allin-deals" default:"1" help:"Boards to run when everyone is all in"`
	DisconnectRate float64       `default:"0" help:"Chance a player drops out of a hand"`
	Timeout        time.Duration `default:"0s" help:"Stop after this long (0 for no limit)"`
	Output         string        `short:"o" type:"path" help:"Also write the report as JSON to this file"`
	LogLevel       string        `short:"l" default:"warn" help:"Log level"`
}

func (c *SimulateCmd) Run() error {
	logger, err := shared.NewLogger(c.LogLevel)
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("Starting simulation", "seed", seed, "tables", c.Tables, "hands", c.Hands)

	sim := simulator.New(simulator.Config{
		Tables:     c.Tables,
		Hands:      c.Hands,
		Players:    c.Players,
		Seed:       seed,
		Strategies: c.Strategies,
		Settings: table.Settings{
			MaxPlayers:     c.MaxPlayers,
			InitialChips:   c.InitialChips,
			SmallBlind:     c.SmallBlind,
			BigBlind:       c.BigBlind,
			AllowStraddle:  c.Straddle,
			AllInDealCount: c.AllInDeals,
		},
		DisconnectRate: c.DisconnectRate,
		Timeout:        c.Timeout,
		Logger:         logger,
	})

	report, err := sim.Run(shared.SignalContext(logger))
	if err != nil {
		return err
	}
	simulator.PrintSummary(os.Stdout, report)
	if c.Output != "" {
		if err := report.WriteFile(c.Output); err != nil {
			return err
		}
		logger.Info("Report written", "path", c.Output)
	}
	return nil
}
