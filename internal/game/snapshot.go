package game

import (
	"github.com/lox/pokertable/poker"
)

// PlayerView is the public view of a seated player.
type PlayerView struct {
	ID         string       `json:"id"`
	Seat       int          `json:"seat"`
	Chips      int          `json:"chips"`
	CurrentBet int          `json:"current_bet"`
	TotalBet   int          `json:"total_bet"`
	Folded     bool         `json:"folded"`
	AllIn      bool         `json:"all_in"`
	HoleCards  []poker.Card `json:"hole_cards,omitempty"` // only once shown
}

// Snapshot is the broadcastable state of a hand. It never carries hidden
// hole cards.
type Snapshot struct {
	HandID        string       `json:"hand_id"`
	Phase         string       `json:"phase"`
	Board         []poker.Card `json:"board"`
	Pots          []Pot        `json:"pots"`
	CurrentBet    int          `json:"current_bet"`
	MinRaise      int          `json:"min_raise"`
	DealerSeat    int          `json:"dealer_seat"`
	SmallBlindID  string       `json:"small_blind"`
	BigBlindID    string       `json:"big_blind"`
	CurrentPlayer string       `json:"current_player,omitempty"`
	Players       []PlayerView `json:"players"`
}

// Snapshot captures the public state of the hand.
func (h *HandState) Snapshot() Snapshot {
	s := Snapshot{
		HandID:        h.ID,
		Phase:         h.Phase.String(),
		Board:         append([]poker.Card{}, h.Board...),
		Pots:          h.Pots(),
		CurrentBet:    h.Betting.CurrentBet,
		MinRaise:      h.Betting.MinRaise,
		DealerSeat:    h.Players[h.Dealer].Seat,
		SmallBlindID:  h.Players[h.SmallBlind].ID,
		BigBlindID:    h.Players[h.BigBlind].ID,
		CurrentPlayer: h.CurrentPlayerID(),
		Players:       make([]PlayerView, len(h.Players)),
	}
	for i, p := range h.Players {
		v := PlayerView{
			ID:         p.ID,
			Seat:       p.Seat,
			Chips:      p.Chips,
			CurrentBet: p.CurrentBet,
			TotalBet:   p.TotalBet,
			Folded:     p.Folded,
			AllIn:      p.AllIn,
		}
		if p.ShowHand {
			v.HoleCards = append([]poker.Card(nil), p.HoleCards...)
		}
		s.Players[i] = v
	}
	return s
}
