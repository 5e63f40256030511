package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/table"
)

var (
	ErrTableFull     = errors.New("table is full")
	ErrAlreadySeated = errors.New("player already seated")
	ErrNotSeated     = errors.New("player not seated")
	ErrTableUnknown  = errors.New("table not found")
	ErrStillInHand   = errors.New("previous hand still in progress")
)

// Room is the seating chart of one table. It is the orchestrator's roster:
// players join between or during hands and are dealt in from the next one.
type Room struct {
	id           string
	initialChips int

	mu    sync.RWMutex
	seats []*game.Player // indexed by seat, nil when empty
}

var _ table.Roster = (*Room)(nil)

// NewRoom creates an empty room with settings.MaxPlayers seats.
func NewRoom(id string, settings table.Settings) *Room {
	return &Room{
		id:           id,
		initialChips: settings.InitialChips,
		seats:        make([]*game.Player, settings.MaxPlayers),
	}
}

// ID returns the table id.
func (r *Room) ID() string { return r.id }

// Join seats playerID in the lowest free seat with a fresh stack.
func (r *Room) Join(playerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	free := -1
	for seat, p := range r.seats {
		if p == nil {
			if free < 0 {
				free = seat
			}
			continue
		}
		if p.ID == playerID {
			return seat, fmt.Errorf("%w: %s", ErrAlreadySeated, playerID)
		}
	}
	if free < 0 {
		return -1, ErrTableFull
	}
	r.seats[free] = game.NewPlayer(playerID, free, r.initialChips)
	return free, nil
}

// Leave frees the player's seat. A hand in progress keeps its reference to
// the player until it settles.
func (r *Room) Leave(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for seat, p := range r.seats {
		if p != nil && p.ID == playerID {
			r.seats[seat] = nil
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotSeated, playerID)
}

// ActivePlayers returns seated players with chips, in seat order.
func (r *Room) ActivePlayers() []*game.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	active := make([]*game.Player, 0, len(r.seats))
	for _, p := range r.seats {
		if p != nil && p.Chips > 0 {
			active = append(active, p)
		}
	}
	return active
}

// Seats lists every seated player.
func (r *Room) Seats() []SeatInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var seats []SeatInfo
	for _, p := range r.seats {
		if p != nil {
			seats = append(seats, SeatInfo{PlayerID: p.ID, Seat: p.Seat})
		}
	}
	return seats
}

// Seated reports whether playerID holds a seat.
func (r *Room) Seated(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.seats {
		if p != nil && p.ID == playerID {
			return true
		}
	}
	return false
}

// Len returns the number of occupied seats.
func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.seats {
		if p != nil {
			n++
		}
	}
	return n
}
