package table

import (
	"time"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/poker"
)

// EventType represents a table event type with type safety
type EventType string

const (
	EventTypeHandStarted    EventType = "hand_started"
	EventTypeHoleCards      EventType = "hole_cards"
	EventTypePlayerAction   EventType = "player_action"
	EventTypeStreetChange   EventType = "street_change"
	EventTypePlayerTimeout  EventType = "player_timeout"
	EventTypeHandResult     EventType = "hand_result"
	EventTypeAllInResult    EventType = "allin_result"
	EventTypeHandAborted    EventType = "hand_aborted"
	EventTypeActionRequired EventType = "action_required"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is anything published by an Orchestrator.
type Event interface {
	EventType() EventType
	TableID() string
	Timestamp() time.Time
}

// PrivateEvent is delivered only to the player it names.
type PrivateEvent interface {
	Event
	Recipient() string
}

// Subscriber receives table events in the order they happened. OnEvent may
// read the orchestrator (Snapshot, ValidActions) but must not apply actions
// or start hands synchronously.
type Subscriber interface {
	OnEvent(Event)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Event)

func (f SubscriberFunc) OnEvent(e Event) { f(e) }

type eventBase struct {
	Table string    `json:"table_id"`
	At    time.Time `json:"timestamp"`
}

func (e eventBase) TableID() string      { return e.Table }
func (e eventBase) Timestamp() time.Time { return e.At }

// HandStartedEvent is published once blinds are posted and cards are dealt.
type HandStartedEvent struct {
	eventBase
	HandID     string        `json:"hand_id"`
	HandNumber int           `json:"hand_number"`
	DealerSeat int           `json:"dealer_seat"`
	SmallBlind int           `json:"small_blind"`
	BigBlind   int           `json:"big_blind"`
	Straddle   bool          `json:"straddle"`
	State      game.Snapshot `json:"state"`
}

func (e HandStartedEvent) EventType() EventType { return EventTypeHandStarted }

// HoleCardsEvent carries one player's private cards.
type HoleCardsEvent struct {
	eventBase
	HandID   string       `json:"hand_id"`
	PlayerID string       `json:"player_id"`
	Cards    []poker.Card `json:"cards"`
}

func (e HoleCardsEvent) EventType() EventType { return EventTypeHoleCards }
func (e HoleCardsEvent) Recipient() string    { return e.PlayerID }

// PlayerActionEvent is published after every applied action, including
// timeouts and disconnect folds.
type PlayerActionEvent struct {
	eventBase
	HandID string            `json:"hand_id"`
	Action game.ActionResult `json:"action"`
	State  game.Snapshot     `json:"state"`
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }

// StreetChangeEvent is published when community cards are dealt.
type StreetChangeEvent struct {
	eventBase
	HandID string        `json:"hand_id"`
	Phase  string        `json:"phase"`
	Board  []poker.Card  `json:"board"`
	State  game.Snapshot `json:"state"`
}

func (e StreetChangeEvent) EventType() EventType { return EventTypeStreetChange }

// PlayerTimeoutEvent is published before the default action is applied.
type PlayerTimeoutEvent struct {
	eventBase
	HandID   string          `json:"hand_id"`
	PlayerID string          `json:"player_id"`
	Action   game.ActionType `json:"action"`
}

func (e PlayerTimeoutEvent) EventType() EventType { return EventTypePlayerTimeout }

// HandResultEvent is published when a hand settles on a single board.
type HandResultEvent struct {
	eventBase
	Result *game.HandResult `json:"result"`
	State  game.Snapshot    `json:"state"`
}

func (e HandResultEvent) EventType() EventType { return EventTypeHandResult }

// AllInResultEvent is published instead of HandResultEvent when the board
// was run more than once.
type AllInResultEvent struct {
	eventBase
	Result *game.HandResult `json:"result"`
	State  game.Snapshot    `json:"state"`
}

func (e AllInResultEvent) EventType() EventType { return EventTypeAllInResult }

// HandAbortedEvent is published when an engine error ends a hand. Stacks
// are back to what they were when the hand started.
type HandAbortedEvent struct {
	eventBase
	HandID string `json:"hand_id"`
	Reason string `json:"reason"`
}

func (e HandAbortedEvent) EventType() EventType { return EventTypeHandAborted }

// ActionRequiredEvent tells the player to act that the turn is theirs.
type ActionRequiredEvent struct {
	eventBase
	HandID         string             `json:"hand_id"`
	PlayerID       string             `json:"player_id"`
	ValidActions   []game.ValidAction `json:"valid_actions"`
	TimeoutSeconds int                `json:"timeout_seconds"`
	State          game.Snapshot      `json:"state"`
}

func (e ActionRequiredEvent) EventType() EventType { return EventTypeActionRequired }
func (e ActionRequiredEvent) Recipient() string    { return e.PlayerID }
