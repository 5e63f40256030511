package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/internal/table"
)

// TickInterval is how often turn timers are broadcast.
const TickInterval = time.Second

// Sender delivers messages to connected clients.
type Sender interface {
	BroadcastToTable(tableID string, msg *Message)
	SendToPlayer(playerID string, msg *Message) error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceClock sets the clock shared by every table and the tick loop.
func WithServiceClock(clock quartz.Clock) ServiceOption {
	return func(s *Service) { s.clock = clock }
}

// WithServiceLogger sets the parent logger.
func WithServiceLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// Service owns the configured tables and their seating, and relays table
// events to clients.
type Service struct {
	logger   *log.Logger
	clock    quartz.Clock
	sender   Sender
	registry *table.Registry
	rooms    map[string]*Room // fixed after NewService
	stats    *table.StatsCollector
}

// NewService creates one table per configured table block.
func NewService(cfg *Config, sender Sender, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		sender:   sender,
		registry: table.NewRegistry(),
		rooms:    make(map[string]*Room),
		stats:    table.NewStatsCollector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	for _, tc := range cfg.Tables {
		settings, err := tc.Settings()
		if err != nil {
			s.registry.Close()
			return nil, fmt.Errorf("table %s: %w", tc.Name, err)
		}
		room := NewRoom(tc.Name, settings)
		o, err := table.New(tc.Name, settings, room,
			table.WithClock(s.clock),
			table.WithLogger(s.logger),
			table.WithSubscriber(&broadcaster{
				tableID: tc.Name,
				sender:  sender,
				logger:  s.logger.WithPrefix("broadcast"),
			}),
			table.WithSubscriber(s.stats),
		)
		if err != nil {
			s.registry.Close()
			return nil, err
		}
		if err := s.registry.Add(o); err != nil {
			s.registry.Close()
			return nil, err
		}
		s.rooms[tc.Name] = room

		s.logger.Info("Table created",
			"table", tc.Name,
			"max_players", settings.MaxPlayers,
			"blinds", fmt.Sprintf("%d/%d", settings.SmallBlind, settings.BigBlind),
			"straddle", settings.AllowStraddle,
			"runs", settings.AllInDealCount)
	}
	return s, nil
}

func (s *Service) lookup(tableID string) (*table.Orchestrator, *Room, error) {
	o, ok := s.registry.Get(tableID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrTableUnknown, tableID)
	}
	return o, s.rooms[tableID], nil
}

// Table returns the orchestrator for tableID.
func (s *Service) Table(tableID string) (*table.Orchestrator, bool) {
	return s.registry.Get(tableID)
}

// JoinTable seats playerID and deals a hand if the table was idle.
func (s *Service) JoinTable(tableID, playerID string) (TableJoinedData, error) {
	o, room, err := s.lookup(tableID)
	if err != nil {
		return TableJoinedData{}, err
	}
	// The old seat's player stays in a running hand until it settles.
	if !room.Seated(playerID) && o.Dealt(playerID) {
		return TableJoinedData{}, fmt.Errorf("%w: %s", ErrStillInHand, playerID)
	}
	seat, err := room.Join(playerID)
	if err != nil {
		return TableJoinedData{}, err
	}
	o.Reconnect(playerID)
	s.logger.Info("Player joined", "table", tableID, "player", playerID, "seat", seat)

	s.startIfIdle(o)
	return TableJoinedData{TableID: tableID, Seat: seat, Players: room.Seats()}, nil
}

func (s *Service) startIfIdle(o *table.Orchestrator) {
	if o.InProgress() || o.NextHandPending() {
		return
	}
	_, err := o.StartHand()
	switch {
	case err == nil,
		errors.Is(err, table.ErrNotEnoughPlayers),
		errors.Is(err, table.ErrHandInProgress):
	default:
		s.logger.Error("Failed to start hand", "table", o.ID(), "error", err)
	}
}

// LeaveTable folds playerID out of any hand in progress and frees the seat.
func (s *Service) LeaveTable(tableID, playerID string) error {
	o, room, err := s.lookup(tableID)
	if err != nil {
		return err
	}
	if !room.Seated(playerID) {
		return fmt.Errorf("%w: %s", ErrNotSeated, playerID)
	}
	if err := o.Disconnect(playerID); err != nil {
		s.logger.Warn("Disconnect fold failed", "table", tableID, "player", playerID, "error", err)
	}
	s.logger.Info("Player left", "table", tableID, "player", playerID)
	return room.Leave(playerID)
}

// HandleAction parses and applies a player's action.
func (s *Service) HandleAction(tableID, playerID string, data PlayerActionData) (game.ActionResult, error) {
	o, _, err := s.lookup(tableID)
	if err != nil {
		return game.ActionResult{}, err
	}
	a, err := game.ParseAction(data.Action, data.Amount)
	if err != nil {
		return game.ActionResult{}, err
	}
	return o.ApplyAction(playerID, a)
}

// ListTables describes every table in id order.
func (s *Service) ListTables() []TableInfo {
	var tables []TableInfo
	s.registry.Each(func(o *table.Orchestrator) {
		settings := o.Settings()
		status := "waiting"
		if o.InProgress() {
			status = "playing"
		}
		tables = append(tables, TableInfo{
			ID:          o.ID(),
			PlayerCount: s.rooms[o.ID()].Len(),
			MaxPlayers:  settings.MaxPlayers,
			SmallBlind:  settings.SmallBlind,
			BigBlind:    settings.BigBlind,
			Straddle:    settings.AllowStraddle,
			RunCount:    settings.AllInDealCount,
			HandsPlayed: o.HandCount(),
			Status:      status,
		})
	})
	return tables
}

// Tick broadcasts the running turn timer of every table.
func (s *Service) Tick() {
	s.registry.Each(func(o *table.Orchestrator) {
		u := o.Tick()
		if u.PlayerID == "" {
			return
		}
		msg, err := NewMessage(MessageTypeTimer, u)
		if err != nil {
			s.logger.Error("Failed to create timer message", "error", err)
			return
		}
		s.sender.BroadcastToTable(o.ID(), msg)
	})
}

// RunTicker calls Tick every TickInterval until ctx is done.
func (s *Service) RunTicker(ctx context.Context) error {
	w := s.clock.TickerFunc(ctx, TickInterval, func() error {
		s.Tick()
		return nil
	}, "tick")
	if err := w.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stats returns the statistics collected across all tables.
func (s *Service) Stats() *table.StatsCollector {
	return s.stats
}

// Close stops every table.
func (s *Service) Close() {
	s.registry.Close()
}

// broadcaster relays one table's events. Private events go only to their
// recipient.
type broadcaster struct {
	tableID string
	sender  Sender
	logger  *log.Logger
}

func (b *broadcaster) OnEvent(e table.Event) {
	msg, err := EventMessage(e)
	if err != nil {
		b.logger.Error("Failed to encode event", "type", e.EventType(), "error", err)
		return
	}
	if pe, ok := e.(table.PrivateEvent); ok {
		if err := b.sender.SendToPlayer(pe.Recipient(), msg); err != nil {
			b.logger.Debug("Private event not delivered", "type", e.EventType(), "player", pe.Recipient(), "error", err)
		}
		return
	}
	b.sender.BroadcastToTable(b.tableID, msg)
}
