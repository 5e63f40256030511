// Package bot provides simple automated players used by the simulator.
package bot

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/poker"
)

// Situation is what a bot sees when it is asked to act.
type Situation struct {
	State     game.Snapshot
	HoleCards []poker.Card
	Chips     int
	BigBlind  int
	Valid     []game.ValidAction
}

// Decision is a bot's chosen action with a short reason for logs.
type Decision struct {
	Action    game.Action
	Reasoning string
}

// Bot chooses an action for the situation. It must return one of the
// valid actions.
type Bot interface {
	MakeDecision(s Situation) Decision
}

type factory func(rng *rand.Rand) Bot

var strategies = map[string]factory{
	"fold":   func(*rand.Rand) Bot { return NewFoldBot() },
	"call":   func(*rand.Rand) Bot { return NewCallBot() },
	"rand":   func(rng *rand.Rand) Bot { return NewRandBot(rng) },
	"chart":  func(rng *rand.Rand) Bot { return NewChartBot(rng) },
	"maniac": func(rng *rand.Rand) Bot { return NewManiacBot(rng) },
}

// Strategies lists the known strategy names.
func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a bot by strategy name.
func New(strategy string, rng *rand.Rand) (Bot, error) {
	f, ok := strategies[strategy]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy %q", strategy)
	}
	return f(rng), nil
}

func find(valid []game.ValidAction, t game.ActionType) (game.ValidAction, bool) {
	for _, va := range valid {
		if va.Type == t {
			return va, true
		}
	}
	return game.ValidAction{}, false
}

// passive checks when free, otherwise calls or folds.
func passive(valid []game.ValidAction, call bool, who string) Decision {
	if _, ok := find(valid, game.Check); ok {
		return Decision{Action: game.Action{Type: game.Check}, Reasoning: who + " checking"}
	}
	if call {
		if _, ok := find(valid, game.Call); ok {
			return Decision{Action: game.Action{Type: game.Call}, Reasoning: who + " calling"}
		}
	}
	return Decision{Action: game.Action{Type: game.Fold}, Reasoning: who + " folding"}
}

// raise returns a raise of size clamped to the valid range, or an all-in
// when no raise is available.
func raise(valid []game.ValidAction, size int, who string) (Decision, bool) {
	if va, ok := find(valid, game.Raise); ok {
		size = min(max(size, va.MinAmount), va.MaxAmount)
		return Decision{Action: game.RaiseBy(size), Reasoning: who + " raising"}, true
	}
	if _, ok := find(valid, game.AllIn); ok {
		return Decision{Action: game.Action{Type: game.AllIn}, Reasoning: who + " shoving"}, true
	}
	return Decision{}, false
}
