package poker

import (
	"fmt"
	"strings"
)

// Suit is one of the four card suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const suitChars = "cdhs"

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// Rank is a card rank from Two (2) to Ace (14).
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

// Char returns the single character used for the rank in card notation.
func (r Rank) Char() byte {
	if r < Two || r > Ace {
		return '?'
	}
	return rankChars[r-Two]
}

func (r Rank) String() string {
	return string(r.Char())
}

// Card is an immutable playing card.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a card from rank and suit
func NewCard(rank Rank, suit Suit) Card {
	return Card{Suit: suit, Rank: rank}
}

// Valid reports whether the card has a real rank and suit.
func (c Card) Valid() bool {
	return c.Rank >= Two && c.Rank <= Ace && c.Suit <= Spades
}

// String returns the short notation, e.g. "As" or "Td".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{c.Rank.Char(), suitChars[c.Suit]})
}

// index maps a card to 0..51.
func (c Card) index() int {
	return int(c.Suit)*13 + int(c.Rank-Two)
}

// MarshalText encodes the card in short notation.
func (c Card) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid card %d/%d", c.Rank, c.Suit)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes short notation.
func (c *Card) UnmarshalText(b []byte) error {
	parsed, err := ParseCard(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCard parses a string like "As" into a Card
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card string: %q", s)
	}

	rankIdx := strings.IndexByte(rankChars, strings.ToUpper(s[:1])[0])
	if rankIdx < 0 {
		return Card{}, fmt.Errorf("invalid rank in %q", s)
	}
	suitIdx := strings.IndexByte(suitChars, strings.ToLower(s[1:])[0])
	if suitIdx < 0 {
		return Card{}, fmt.Errorf("invalid suit in %q", s)
	}

	return NewCard(Two+Rank(rankIdx), Suit(suitIdx)), nil
}

// ParseCards parses a whitespace separated list such as "As Kd 7c".
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for literals in tests and fixtures.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards joins cards with spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
