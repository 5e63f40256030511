package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/table"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// EventMessage wraps a table event. The event type doubles as the message
// type and the event timestamp is kept.
func EventMessage(e table.Event) (*Message, error) {
	dataBytes, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      MessageType(e.EventType()),
		Data:      dataBytes,
		Timestamp: e.Timestamp(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type PlayerActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableInfo struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	SmallBlind  int    `json:"smallBlind"`
	BigBlind    int    `json:"bigBlind"`
	Straddle    bool   `json:"straddle"`
	RunCount    int    `json:"runCount"`
	HandsPlayed int    `json:"handsPlayed"`
	Status      string `json:"status"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

type SeatInfo struct {
	PlayerID string `json:"playerId"`
	Seat     int    `json:"seat"`
}

type TableJoinedData struct {
	TableID string     `json:"tableId"`
	Seat    int        `json:"seat"`
	Players []SeatInfo `json:"players"`
}

type TableLeftData struct {
	TableID string `json:"tableId"`
}

// ActionResultData acknowledges an accepted action to the player who sent it.
type ActionResultData struct {
	TableID string            `json:"tableId"`
	Result  game.ActionResult `json:"result"`
}

// errorData maps an error to its wire form. Rule violations keep their
// code; anything else is reported with fallback.
func errorData(fallback string, err error) ErrorData {
	var rv *game.RuleViolation
	if errors.As(err, &rv) {
		return ErrorData{Code: string(rv.Code), Message: err.Error()}
	}
	return ErrorData{Code: fallback, Message: err.Error()}
}
