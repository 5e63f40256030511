package poker

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrDeckExhausted is returned when drawing from an empty deck.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a standard 52-card deck
type Deck struct {
	cards []Card
	next  int
	rng   *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	return NewDeckWithout(rng, nil)
}

// NewDeckWithout creates a shuffled deck holding every card except the
// excluded ones. Used for fresh run-outs where hole cards and the board are
// already known.
func NewDeckWithout(rng *rand.Rand, exclude []Card) *Deck {
	var used [52]bool
	for _, c := range exclude {
		if c.Valid() {
			used[c.index()] = true
		}
	}

	d := &Deck{
		cards: make([]Card, 0, 52),
		rng:   rng,
	}
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			if !used[c.index()] {
				d.cards = append(d.cards, c)
			}
		}
	}

	d.Shuffle()
	return d
}

// NewDeckFromCards creates an unshuffled deck that deals cards in the given
// order. Duplicates are rejected so the no-repeat invariant still holds.
func NewDeckFromCards(cards []Card) (*Deck, error) {
	var seen [52]bool
	for _, c := range cards {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid card %v", c)
		}
		if seen[c.index()] {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen[c.index()] = true
	}

	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d, nil
}

// Shuffle shuffles the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	d.next = 0
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.Intn(i + 1)
		} else {
			j = rand.Intn(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrDeckExhausted
	}
	card := d.cards[d.next]
	d.next++
	return card, nil
}

// DrawN draws n cards. Nothing is drawn if fewer than n remain.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Burn discards the top card.
func (d *Deck) Burn() error {
	_, err := d.Draw()
	return err
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}
