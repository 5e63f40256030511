package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants. Table events keep the name of the
// table.EventType they were built from.
const (
	// Client to server messages
	MessageTypeAuth         MessageType = "auth"
	MessageTypeJoinTable    MessageType = "join_table"
	MessageTypeLeaveTable   MessageType = "leave_table"
	MessageTypeListTables   MessageType = "list_tables"
	MessageTypePlayerAction MessageType = "player_action"

	// Server to client messages
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeError          MessageType = "error"
	MessageTypeTableJoined    MessageType = "table_joined"
	MessageTypeTableLeft      MessageType = "table_left"
	MessageTypeTableList      MessageType = "table_list"
	MessageTypeActionResult   MessageType = "action_result"
	MessageTypeHandStarted    MessageType = "hand_started"
	MessageTypeHoleCards      MessageType = "hole_cards"
	MessageTypeActionRequired MessageType = "action_required"
	MessageTypeStreetChange   MessageType = "street_change"
	MessageTypePlayerTimeout  MessageType = "player_timeout"
	MessageTypeHandResult     MessageType = "hand_result"
	MessageTypeAllInResult    MessageType = "allin_result"
	MessageTypeHandAborted    MessageType = "hand_aborted"
	MessageTypeTimer          MessageType = "timer"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
