package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeTimeout   = 10 * time.Second
	idleTimeout    = 60 * time.Second // without a pong the client is dropped
	pingInterval   = idleTimeout * 9 / 10
	maxInboundSize = 8 << 10
	outboxSize     = 256
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSlowClient       = errors.New("client outbox full")
)

// Connection is one websocket client. It authenticates as at most one player
// and sits at no more than one table at a time.
type Connection struct {
	ws     *websocket.Conn
	server *Server
	logger *log.Logger

	outbox    chan *Message
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	playerID string
	tableID  string
}

// NewConnection wraps an upgraded websocket.
func NewConnection(ws *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	return &Connection{
		ws:     ws,
		server: server,
		logger: logger.WithPrefix("conn"),
		outbox: make(chan *Message, outboxSize),
		done:   make(chan struct{}),
	}
}

// Start runs the read and write loops until the connection closes.
func (c *Connection) Start() {
	go c.writeLoop()
	go c.readLoop()
}

// Done is closed once the connection has been closed.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Close sends a close frame and drops the socket. It is safe to call more
// than once and from any goroutine.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws == nil {
			return
		}
		frame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, frame, time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}

// Send queues msg for the client without blocking. A client whose outbox is
// full is disconnected.
func (c *Connection) Send(msg *Message) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.outbox <- msg:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		c.logger.Warn("Dropping slow client", "player", c.Player(), "queued", len(c.outbox))
		_ = c.Close()
		return ErrSlowClient
	}
}

// Player returns the authenticated player id, or "" before auth.
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Table returns the table the player is seated at, or "".
func (c *Connection) Table() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

func (c *Connection) setPlayer(playerID string) {
	c.mu.Lock()
	c.playerID = playerID
	c.mu.Unlock()
}

func (c *Connection) setTable(tableID string) {
	c.mu.Lock()
	c.tableID = tableID
	c.mu.Unlock()
}

func (c *Connection) extendDeadline() error {
	return c.ws.SetReadDeadline(time.Now().Add(idleTimeout))
}

// readLoop dispatches client frames until the socket fails, then gives up
// the player's seat.
func (c *Connection) readLoop() {
	defer c.depart()

	c.ws.SetReadLimit(maxInboundSize)
	_ = c.extendDeadline()
	c.ws.SetPongHandler(func(string) error { return c.extendDeadline() })

	for {
		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Read failed", "player", c.Player(), "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(frame, &msg); err != nil {
			c.sendError("invalid_message", "Malformed message")
			continue
		}
		c.handleMessage(&msg)
	}
}

// depart leaves any table through the service so a hand in progress folds
// the player, then unregisters and closes the connection.
func (c *Connection) depart() {
	playerID, tableID := c.Player(), c.Table()
	if svc := c.service(); svc != nil && playerID != "" && tableID != "" {
		if err := svc.LeaveTable(tableID, playerID); err != nil {
			c.logger.Debug("Leave on disconnect", "player", playerID, "table", tableID, "error", err)
		}
		c.setTable("")
	}
	if c.server != nil {
		c.server.remove(c)
	}
	_ = c.Close()
}

func (c *Connection) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		var err error
		select {
		case msg := <-c.outbox:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			err = c.ws.WriteJSON(msg)
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			err = c.ws.WriteMessage(websocket.PingMessage, nil)
		case <-c.done:
			return
		}
		if err != nil {
			c.logger.Debug("Write failed", "player", c.Player(), "error", err)
			_ = c.Close()
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Player())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeJoinTable:
		var data JoinTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join table data")
			return
		}
		c.handleJoinTable(data)

	case MessageTypeLeaveTable:
		var data LeaveTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse leave table data")
			return
		}
		c.handleLeaveTable(data)

	case MessageTypeListTables:
		c.handleListTables()

	case MessageTypePlayerAction:
		var data PlayerActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse player action data")
			return
		}
		c.handlePlayerAction(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.reply(MessageTypeError, ErrorData{Code: code, Message: message})
}

func (c *Connection) reply(t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", t, "error", err)
		return
	}
	_ = c.Send(msg)
}

func (c *Connection) service() *Service {
	if c.server == nil {
		return nil
	}
	return c.server.service
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerName", data.PlayerName)

	if data.PlayerName == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}
	if c.Table() != "" {
		c.sendError("invalid_auth", "Leave the table before changing name")
		return
	}
	if c.server == nil {
		c.setPlayer(data.PlayerName)
	} else if !c.server.authenticate(c, data.PlayerName) {
		c.reply(MessageTypeAuthResponse, AuthResponseData{Error: "name already in use"})
		return
	}

	c.reply(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: data.PlayerName,
	})
}

func (c *Connection) handleJoinTable(data JoinTableData) {
	c.logger.Info("Join table request", "tableId", data.TableID, "player", c.Player())

	svc := c.service()
	if svc == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	playerName := c.Player()
	if playerName == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	if current := c.Table(); current != "" {
		c.sendError("join_failed", "Already seated at "+current)
		return
	}

	// Set the table first so events from a hand started by this join reach
	// the connection.
	c.setTable(data.TableID)
	joined, err := svc.JoinTable(data.TableID, playerName)
	if err != nil {
		c.setTable("")
		c.sendError("join_failed", err.Error())
		return
	}
	c.reply(MessageTypeTableJoined, joined)
}

func (c *Connection) handleLeaveTable(data LeaveTableData) {
	c.logger.Info("Leave table request", "tableId", data.TableID, "player", c.Player())

	svc := c.service()
	if svc == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	playerName := c.Player()
	if playerName == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	if err := svc.LeaveTable(data.TableID, playerName); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}

	c.setTable("")
	c.reply(MessageTypeTableLeft, TableLeftData{TableID: data.TableID})
}

func (c *Connection) handleListTables() {
	svc := c.service()
	if svc == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	c.reply(MessageTypeTableList, TableListData{Tables: svc.ListTables()})
}

func (c *Connection) handlePlayerAction(data PlayerActionData) {
	c.logger.Debug("Player action", "player", c.Player(), "action", data.Action, "amount", data.Amount)

	svc := c.service()
	if svc == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	playerName := c.Player()
	if playerName == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	tableID := data.TableID
	if tableID == "" {
		tableID = c.Table()
	}

	res, err := svc.HandleAction(tableID, playerName, data)
	if err != nil {
		e := errorData("action_failed", err)
		c.sendError(e.Code, e.Message)
		return
	}
	c.reply(MessageTypeActionResult, ActionResultData{TableID: tableID, Result: res})
}
