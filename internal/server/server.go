package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokertable/internal/table"
)

const shutdownTimeout = 5 * time.Second

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	service     *Service
}

// NewServer creates a new WebSocket server
func NewServer(addr string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetService sets the game service for the server
func (s *Server) SetService(service *Service) {
	s.service = service
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Serve listens on the server address until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", s.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = s.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down WebSocket server")
	_ = s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// Stop stops the WebSocket server
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()

	return nil
}

// add registers c unless the server is stopping.
func (s *Server) add(c *Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.connections[c] = true
	s.logger.Info("Client connected", "total", len(s.connections))
	return true
}

func (s *Server) remove(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connections[c]; !ok {
		return
	}
	delete(s.connections, c)
	s.logger.Info("Client disconnected", "player", c.Player(), "total", len(s.connections))
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	if !s.add(client) {
		_ = client.Close()
		return
	}
	client.Start()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// StatsResponse is served on /stats.
type StatsResponse struct {
	Hands   int                 `json:"hands"`
	Aborted int                 `json:"aborted"`
	Tables  []TableInfo         `json:"tables"`
	Players []table.PlayerStats `json:"players"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "game service not available", http.StatusServiceUnavailable)
		return
	}
	stats := s.service.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(StatsResponse{
		Hands:   stats.Hands(),
		Aborted: stats.Aborted(),
		Tables:  s.service.ListTables(),
		Players: stats.Players(),
	})
}

// BroadcastToTable sends a message to all connections at a specific table
func (s *Server) BroadcastToTable(tableID string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.Table() == tableID {
			if err := conn.Send(msg); err != nil {
				s.logger.Error("Failed to send message to client", "error", err, "player", conn.Player())
			} else {
				count++
			}
		}
	}

	s.logger.Debug("Broadcasted message to table", "tableId", tableID, "type", msg.Type, "recipients", count)
}

// SendToPlayer sends a message to a specific player
func (s *Server) SendToPlayer(playerID string, msg *Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.Player() == playerID {
			return conn.Send(msg)
		}
	}

	return fmt.Errorf("player not found: %s", playerID)
}

// authenticate binds playerID to c unless another connection already holds
// it. The check and the bind share one critical section.
func (s *Server) authenticate(c *Connection, playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		if conn != c && conn.Player() == playerID {
			return false
		}
	}
	c.setPlayer(playerID)
	return true
}

// GetConnectedPlayers returns a list of connected player IDs
func (s *Server) GetConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if playerID := conn.Player(); playerID != "" {
			players = append(players, playerID)
		}
	}

	return players
}
