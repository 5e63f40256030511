package game

import (
	"fmt"

	"github.com/lox/pokertable/poker"
)

// StackedDeck builds an unshuffled deck that deals the given hole cards and
// board when used with WithDeck. hole[i] holds the two cards for players[i]
// (for example "As Kd"); an empty entry takes whatever is left. Hole cards are
// dealt one at a time starting left of dealer, as NewHand deals them. When
// burn is set a filler card sits before the flop, turn and river.
func StackedDeck(dealer int, hole []string, board string, burn bool) (*poker.Deck, error) {
	n := len(hole)
	if dealer < 0 || dealer >= n {
		return nil, fmt.Errorf("dealer %d out of range", dealer)
	}

	var used [53]bool
	mark := func(cards []poker.Card) error {
		for _, c := range cards {
			idx := int(c.Suit)*13 + int(c.Rank-poker.Two)
			if used[idx] {
				return fmt.Errorf("card %s used twice", c)
			}
			used[idx] = true
		}
		return nil
	}

	holes := make([][]poker.Card, n)
	for i, s := range hole {
		cards, err := poker.ParseCards(s)
		if err != nil {
			return nil, err
		}
		if len(cards) != 0 && len(cards) != 2 {
			return nil, fmt.Errorf("player %d: want 2 hole cards, got %d", i, len(cards))
		}
		if err := mark(cards); err != nil {
			return nil, err
		}
		holes[i] = cards
	}
	boardCards, err := poker.ParseCards(board)
	if err != nil {
		return nil, err
	}
	if len(boardCards) > 5 {
		return nil, fmt.Errorf("board has %d cards", len(boardCards))
	}
	if err := mark(boardCards); err != nil {
		return nil, err
	}

	var spare []poker.Card
	for suit := poker.Clubs; suit <= poker.Spades; suit++ {
		for rank := poker.Two; rank <= poker.Ace; rank++ {
			if !used[int(suit)*13+int(rank-poker.Two)] {
				spare = append(spare, poker.NewCard(rank, suit))
			}
		}
	}
	take := func() poker.Card {
		c := spare[0]
		spare = spare[1:]
		return c
	}

	order := make([]poker.Card, 0, 52)
	for round := 0; round < 2; round++ {
		for i := 1; i <= n; i++ {
			idx := (dealer + i) % n
			if len(holes[idx]) == 2 {
				order = append(order, holes[idx][round])
			} else {
				order = append(order, take())
			}
		}
	}

	for i, street := range []int{3, 1, 1} {
		if burn {
			order = append(order, take())
		}
		start := []int{0, 3, 4}[i]
		for j := start; j < start+street; j++ {
			if j < len(boardCards) {
				order = append(order, boardCards[j])
			} else {
				order = append(order, take())
			}
		}
	}
	order = append(order, spare...)

	return poker.NewDeckFromCards(order)
}
