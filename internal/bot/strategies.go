package bot

import (
	"math/rand"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/poker"
)

// FoldBot checks when it can and folds otherwise.
type FoldBot struct{}

func NewFoldBot() *FoldBot { return &FoldBot{} }

func (FoldBot) MakeDecision(s Situation) Decision {
	return passive(s.Valid, false, "fold-bot")
}

// CallBot checks or calls every street.
type CallBot struct{}

func NewCallBot() *CallBot { return &CallBot{} }

func (CallBot) MakeDecision(s Situation) Decision {
	if _, ok := find(s.Valid, game.Call); !ok {
		if _, ok := find(s.Valid, game.Check); !ok {
			// Calling would take the whole stack.
			if _, ok := find(s.Valid, game.AllIn); ok {
				return Decision{Action: game.Action{Type: game.AllIn}, Reasoning: "call-bot calling all in"}
			}
		}
	}
	return passive(s.Valid, true, "call-bot")
}

// RandBot makes uniform random legal actions.
type RandBot struct {
	rng *rand.Rand
}

func NewRandBot(rng *rand.Rand) *RandBot { return &RandBot{rng: rng} }

func (r *RandBot) MakeDecision(s Situation) Decision {
	if len(s.Valid) == 0 {
		return Decision{Action: game.Action{Type: game.Fold}, Reasoning: "rand-bot no valid actions"}
	}

	va := s.Valid[r.rng.Intn(len(s.Valid))]
	a := game.Action{Type: va.Type}
	if va.Type == game.Raise {
		a.Amount = va.MinAmount
		if va.MaxAmount > va.MinAmount {
			a.Amount += r.rng.Intn(va.MaxAmount - va.MinAmount + 1)
		}
	}
	return Decision{Action: a, Reasoning: "rand-bot random action"}
}

// ChartBot raises strong starting hands, shoves premiums when short, and
// otherwise plays check/call with anything it entered with.
type ChartBot struct {
	rng *rand.Rand
}

func NewChartBot(rng *rand.Rand) *ChartBot { return &ChartBot{rng: rng} }

func (c *ChartBot) MakeDecision(s Situation) Decision {
	tier := poker.ClassifyStartingHand(s.HoleCards)
	preflop := s.State.Phase == game.Preflop.String()

	if preflop {
		short := s.BigBlind > 0 && s.Chips <= 15*s.BigBlind
		switch {
		case tier >= poker.TierPremium && short:
			if _, ok := find(s.Valid, game.AllIn); ok {
				return Decision{Action: game.Action{Type: game.AllIn}, Reasoning: "chart-bot push"}
			}
		case tier >= poker.TierStrong:
			if d, ok := raise(s.Valid, 3*s.BigBlind, "chart-bot"); ok && c.rng.Float64() < 0.8 {
				return d
			}
			return passive(s.Valid, true, "chart-bot")
		case tier >= poker.TierMedium:
			return passive(s.Valid, true, "chart-bot")
		}
		return passive(s.Valid, false, "chart-bot")
	}

	// Post-flop: bet made hands, check/call the rest.
	if len(s.State.Board) >= 3 {
		if rank, err := poker.Evaluate(s.HoleCards, s.State.Board); err == nil && rank.Category >= poker.TwoPair {
			pot := 0
			for _, p := range s.State.Pots {
				pot += p.Amount
			}
			if d, ok := raise(s.Valid, pot/2, "chart-bot"); ok {
				return d
			}
		}
	}
	return passive(s.Valid, tier >= poker.TierMedium, "chart-bot")
}

// ManiacBot raises and shoves far more often than it should.
type ManiacBot struct {
	rng *rand.Rand
}

func NewManiacBot(rng *rand.Rand) *ManiacBot { return &ManiacBot{rng: rng} }

func (m *ManiacBot) MakeDecision(s Situation) Decision {
	roll := m.rng.Float64()
	switch {
	case roll < 0.15:
		if _, ok := find(s.Valid, game.AllIn); ok {
			return Decision{Action: game.Action{Type: game.AllIn}, Reasoning: "maniac shove"}
		}
	case roll < 0.7:
		if va, ok := find(s.Valid, game.Raise); ok {
			size := va.MinAmount + (va.MaxAmount-va.MinAmount)/4
			return Decision{Action: game.RaiseBy(size), Reasoning: "maniac big raise"}
		}
	case roll < 0.9:
		return passive(s.Valid, true, "maniac")
	}
	if _, ok := find(s.Valid, game.Check); ok {
		return Decision{Action: game.Action{Type: game.Check}, Reasoning: "maniac checking"}
	}
	return Decision{Action: game.Action{Type: game.Fold}, Reasoning: "maniac folding"}
}
