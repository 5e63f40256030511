package poker

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTooFewCards is returned when fewer than five cards are available.
var ErrTooFewCards = errors.New("need at least 5 cards to evaluate")

// Category enumerates the hand categories from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandRank is the value of the best five-card hand. Hands compare by
// Category first and then by Kickers lexicographically.
//
// Kicker vectors per category:
//
//	HighCard, Flush:           five ranks, descending
//	Pair:                      pair, k1, k2, k3
//	TwoPair:                   high pair, low pair, kicker
//	ThreeOfAKind:              trips, k1, k2
//	Straight, StraightFlush:   top card of the straight (5 for the wheel)
//	FullHouse:                 trips, pair
//	FourOfAKind:               quads, kicker
//	RoyalFlush:                Ace
type HandRank struct {
	Category Category `json:"category"`
	Kickers  []Rank   `json:"kickers"`
	Cards    [5]Card  `json:"cards"` // best five, most significant first
}

// String describes the hand, e.g. "Full House (K 2)".
func (hr HandRank) String() string {
	parts := make([]string, len(hr.Kickers))
	for i, r := range hr.Kickers {
		parts[i] = r.String()
	}
	return fmt.Sprintf("%s (%s)", hr.Category, strings.Join(parts, " "))
}

// Evaluate returns the best five-card hand made from the hole cards and the
// community cards.
func Evaluate(hole, board []Card) (HandRank, error) {
	cards := make([]Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)
	return EvaluateCards(cards)
}

// EvaluateCards scores every five-card subset and keeps the strongest. On
// equal scores the first subset found wins, so the result does not depend on
// suits.
func EvaluateCards(cards []Card) (HandRank, error) {
	n := len(cards)
	if n < 5 {
		return HandRank{}, fmt.Errorf("%w: have %d", ErrTooFewCards, n)
	}

	var best HandRank
	found := false
	var five [5]Card
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five = [5]Card{cards[a], cards[b], cards[c], cards[d], cards[e]}
						rank := EvaluateFive(five)
						if !found || Compare(rank, best) > 0 {
							best = rank
							found = true
						}
					}
				}
			}
		}
	}
	return best, nil
}

// EvaluateFive scores exactly five cards.
func EvaluateFive(cards [5]Card) HandRank {
	sorted := cards
	sort.Slice(sorted[:], func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank > sorted[j].Rank
		}
		return sorted[i].Suit > sorted[j].Suit
	})

	flush := true
	for _, c := range sorted[1:] {
		if c.Suit != sorted[0].Suit {
			flush = false
			break
		}
	}

	straightHigh, wheel := straightTop(sorted)
	if straightHigh > 0 {
		ordered := sorted
		if wheel {
			// Ace plays low: 5 4 3 2 A
			ordered = [5]Card{sorted[1], sorted[2], sorted[3], sorted[4], sorted[0]}
		}
		switch {
		case flush && straightHigh == Ace:
			return HandRank{Category: RoyalFlush, Kickers: []Rank{Ace}, Cards: ordered}
		case flush:
			return HandRank{Category: StraightFlush, Kickers: []Rank{straightHigh}, Cards: ordered}
		}
		return HandRank{Category: Straight, Kickers: []Rank{straightHigh}, Cards: ordered}
	}

	groups := groupByRank(sorted)
	ordered := orderByGroups(sorted, groups)

	switch {
	case groups[0].count == 4:
		return HandRank{Category: FourOfAKind, Kickers: groupRanks(groups), Cards: ordered}
	case groups[0].count == 3 && groups[1].count == 2:
		return HandRank{Category: FullHouse, Kickers: groupRanks(groups), Cards: ordered}
	case flush:
		return HandRank{Category: Flush, Kickers: groupRanks(groups), Cards: ordered}
	case groups[0].count == 3:
		return HandRank{Category: ThreeOfAKind, Kickers: groupRanks(groups), Cards: ordered}
	case groups[0].count == 2 && groups[1].count == 2:
		return HandRank{Category: TwoPair, Kickers: groupRanks(groups), Cards: ordered}
	case groups[0].count == 2:
		return HandRank{Category: Pair, Kickers: groupRanks(groups), Cards: ordered}
	default:
		return HandRank{Category: HighCard, Kickers: groupRanks(groups), Cards: ordered}
	}
}

// Compare compares two hands and returns 1 if a wins, -1 if b wins, 0 for tie
func Compare(a, b HandRank) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.Kickers) && i < len(b.Kickers); i++ {
		if a.Kickers[i] != b.Kickers[i] {
			if a.Kickers[i] > b.Kickers[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// straightTop expects cards sorted by rank descending. It returns the top
// rank of the straight and whether it is the wheel.
func straightTop(sorted [5]Card) (Rank, bool) {
	for i := 1; i < 5; i++ {
		if sorted[i].Rank == sorted[i-1].Rank {
			return 0, false
		}
	}
	if sorted[0].Rank-sorted[4].Rank == 4 {
		return sorted[0].Rank, false
	}
	if sorted[0].Rank == Ace && sorted[1].Rank == Five && sorted[4].Rank == Two {
		return Five, true
	}
	return 0, false
}

type rankGroup struct {
	rank  Rank
	count int
}

// groupByRank groups sorted cards by rank, largest group first and higher
// rank first within equal sizes.
func groupByRank(sorted [5]Card) []rankGroup {
	groups := make([]rankGroup, 0, 5)
	for _, c := range sorted {
		if len(groups) > 0 && groups[len(groups)-1].rank == c.Rank {
			groups[len(groups)-1].count++
			continue
		}
		groups = append(groups, rankGroup{rank: c.Rank, count: 1})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})
	return groups
}

func groupRanks(groups []rankGroup) []Rank {
	ranks := make([]Rank, len(groups))
	for i, g := range groups {
		ranks[i] = g.rank
	}
	return ranks
}

func orderByGroups(sorted [5]Card, groups []rankGroup) [5]Card {
	var out [5]Card
	i := 0
	for _, g := range groups {
		for _, c := range sorted {
			if c.Rank == g.rank {
				out[i] = c
				i++
			}
		}
	}
	return out
}
