package game

import (
	"github.com/lox/pokertable/poker"
)

// Player represents a seated player. The room owns it; the hand mutates the
// chip stack and the per-hand fields below.
type Player struct {
	ID    string
	Seat  int
	Chips int // persists across hands

	// Per-hand fields, reset by ResetForHand.
	HoleCards  []poker.Card
	CurrentBet int // Current bet in this round
	TotalBet   int // Total bet in the hand
	Folded     bool
	AllIn      bool
	ShowHand   bool

	foldOrder int // 1-based position in the hand's fold sequence
}

// NewPlayer creates a player with a starting stack.
func NewPlayer(id string, seat, chips int) *Player {
	return &Player{ID: id, Seat: seat, Chips: chips}
}

// ResetForHand clears everything that only lives for one hand.
func (p *Player) ResetForHand() {
	p.HoleCards = nil
	p.CurrentBet = 0
	p.TotalBet = 0
	p.Folded = false
	p.AllIn = false
	p.ShowHand = false
	p.foldOrder = 0
}

// CanAct returns true if the player can still act
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn && p.Chips > 0
}

// InHand returns true while the player still contests the pot.
func (p *Player) InHand() bool {
	return !p.Folded
}

// commit moves chips from the stack into the current bet.
func (p *Player) commit(amount int) {
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBet += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
}
