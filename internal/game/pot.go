package game

import (
	"fmt"
	"sort"

	"github.com/lox/pokertable/poker"
)

// Pot represents a pot (main or side)
type Pot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"` // non-folded players at or above Level, seat order
	Level    int      `json:"level"`    // contribution threshold that created this pot
	// LastFolded is the contributor at this level who folded last. It only
	// matters when nobody eligible is left.
	LastFolded string `json:"-"`
}

// PotAward records how one pot was paid out.
type PotAward struct {
	Pot     int            `json:"pot"`
	Amount  int            `json:"amount"`
	Winners []string       `json:"winners"`
	Shares  map[string]int `json:"shares"`
}

// CalculatePots derives the main pot and side pots from each player's total
// contribution. It does not mutate players. Folded players' chips count
// towards pot amounts but they are never eligible.
func CalculatePots(players []*Player) []Pot {
	contributors := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.TotalBet > 0 {
			contributors = append(contributors, p)
		}
	}
	if len(contributors) == 0 {
		return nil
	}

	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].TotalBet < contributors[j].TotalBet
	})

	var pots []Pot
	prevLevel := 0
	for i := 0; i < len(contributors); i++ {
		level := contributors[i].TotalBet
		if level == prevLevel {
			continue
		}

		atOrAbove := contributors[i:]
		pot := Pot{
			Amount: (level - prevLevel) * len(atOrAbove),
			Level:  level,
		}

		lastFold := 0
		for _, p := range bySeat(atOrAbove) {
			if !p.Folded {
				pot.Eligible = append(pot.Eligible, p.ID)
			} else if p.foldOrder > lastFold {
				lastFold = p.foldOrder
				pot.LastFolded = p.ID
			}
		}

		pots = append(pots, pot)
		prevLevel = level
	}
	return pots
}

// TotalPot sums the amounts of all pots.
func TotalPot(pots []Pot) int {
	total := 0
	for _, pot := range pots {
		total += pot.Amount
	}
	return total
}

// TotalContributed sums every player's TotalBet.
func TotalContributed(players []*Player) int {
	total := 0
	for _, p := range players {
		total += p.TotalBet
	}
	return total
}

// verifyPots checks that pots account for exactly the chips contributed.
func verifyPots(pots []Pot, players []*Player) error {
	if got, want := TotalPot(pots), TotalContributed(players); got != want {
		return stateError("calculate pots", fmt.Errorf("%w: pots hold %d, players bet %d", ErrChipMismatch, got, want))
	}
	return nil
}

// Distribute pays out each pot to the best eligible hand(s). ranks holds the
// evaluated hand of every player still in the hand. order lists player ids
// clockwise starting at the small blind and decides who receives odd chips.
// Pots are processed from the last side pot to the main pot.
func Distribute(pots []Pot, ranks map[string]poker.HandRank, order []string) ([]PotAward, map[string]int, error) {
	awards := make([]PotAward, len(pots))
	payouts := make(map[string]int)

	for i := len(pots) - 1; i >= 0; i-- {
		pot := pots[i]
		winners := bestHands(pot.Eligible, ranks)
		if len(winners) == 0 {
			if pot.LastFolded == "" {
				return nil, nil, stateError("distribute", errNoClaimant(i, pot.Amount))
			}
			winners = []string{pot.LastFolded}
		}

		shares := splitEvenly(pot.Amount, winners, order)
		for id, amt := range shares {
			payouts[id] += amt
		}
		awards[i] = PotAward{Pot: i, Amount: pot.Amount, Winners: winners, Shares: shares}
	}
	return awards, payouts, nil
}

func errNoClaimant(pot, amount int) error {
	return fmt.Errorf("pot %d (%d chips) has no claimant", pot, amount)
}

// bestHands returns the eligible players holding the strongest hand, ties
// included, in eligibility order.
func bestHands(eligible []string, ranks map[string]poker.HandRank) []string {
	var winners []string
	var best poker.HandRank
	for _, id := range eligible {
		rank, ok := ranks[id]
		if !ok {
			continue
		}
		switch {
		case len(winners) == 0:
			best = rank
			winners = []string{id}
		case poker.Compare(rank, best) > 0:
			best = rank
			winners = []string{id}
		case poker.Compare(rank, best) == 0:
			winners = append(winners, id)
		}
	}
	return winners
}

// splitEvenly gives each winner floor(amount/n); the remainder goes to the
// winner who comes first in order.
func splitEvenly(amount int, winners []string, order []string) map[string]int {
	weights := make(map[string]int, len(winners))
	for _, id := range winners {
		weights[id] = 1
	}
	return splitByWeight(amount, weights, order)
}

// splitByWeight divides amount in proportion to weights, rounding down; the
// chips left over go to the first weighted player in order.
func splitByWeight(amount int, weights map[string]int, order []string) map[string]int {
	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}
	shares := make(map[string]int, len(weights))
	if totalWeight == 0 {
		return shares
	}

	paid := 0
	for id, w := range weights {
		if w <= 0 {
			continue
		}
		share := amount * w / totalWeight
		shares[id] = share
		paid += share
	}

	if remainder := amount - paid; remainder > 0 {
		shares[firstInOrder(weights, order)] += remainder
	}
	return shares
}

func firstInOrder(weights map[string]int, order []string) string {
	for _, id := range order {
		if weights[id] > 0 {
			return id
		}
	}
	// Not in order: fall back to the lowest id for determinism.
	ids := make([]string, 0, len(weights))
	for id, w := range weights {
		if w > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids[0]
}

func bySeat(players []*Player) []*Player {
	out := make([]*Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}
