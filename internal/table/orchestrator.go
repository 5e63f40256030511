package table

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/pokertable/internal/game"
	"github.com/lox/pokertable/poker"
)

var (
	ErrHandInProgress   = errors.New("hand already in progress")
	ErrNotEnoughPlayers = errors.New("need at least two players with chips")
	ErrTableClosed      = errors.New("table is closed")
)

// Roster supplies the players dealt into the next hand, in seat order.
type Roster interface {
	ActivePlayers() []*game.Player
}

// StaticRoster is a fixed list of players. Busted players are skipped.
type StaticRoster []*game.Player

func (r StaticRoster) ActivePlayers() []*game.Player {
	active := make([]*game.Player, 0, len(r))
	for _, p := range r {
		if p.Chips > 0 {
			active = append(active, p)
		}
	}
	return active
}

// DeckSource returns the deck for the next hand, or nil for a shuffled one.
// dealer indexes players.
type DeckSource func(dealer int, players []*game.Player) *poker.Deck

// TimerUpdate is the state of the turn timer at a tick.
type TimerUpdate struct {
	TableID          string        `json:"table_id"`
	HandID           string        `json:"hand_id,omitempty"`
	PlayerID         string        `json:"player_id,omitempty"`
	Remaining        time.Duration `json:"-"`
	RemainingSeconds int           `json:"remaining_seconds"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the clock used for the turn timer and hand scheduling.
func WithClock(clock quartz.Clock) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithLogger sets the parent logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithRNG sets the random source used for shuffling.
func WithRNG(rng *rand.Rand) Option {
	return func(o *Orchestrator) { o.rng = rng }
}

// WithSubscriber registers a subscriber before the first hand.
func WithSubscriber(s Subscriber) Option {
	return func(o *Orchestrator) { o.subscribers = append(o.subscribers, s) }
}

// WithDeckSource overrides how decks are built for each hand.
func WithDeckSource(src DeckSource) Option {
	return func(o *Orchestrator) { o.deckSource = src }
}

// Orchestrator runs the hands of one table. All state changes happen under
// its mutex; events are published in order once the mutex is released.
type Orchestrator struct {
	id         string
	settings   Settings
	roster     Roster
	clock      quartz.Clock
	logger     *log.Logger
	rng        *rand.Rand
	deckSource DeckSource

	mu           sync.Mutex
	hand         *game.HandState
	handCount    int
	dealerSeat   int
	timer        *ActionTimer
	nextHand     *quartz.Timer
	disconnected map[string]bool
	closed       bool
	subscribers  []Subscriber
	pending      []Event

	emitMu sync.Mutex
}

// New creates an orchestrator for table id. No hand is dealt until
// StartHand is called.
func New(id string, settings Settings, roster Roster, opts ...Option) (*Orchestrator, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("table %s: %w", id, err)
	}
	if roster == nil {
		return nil, errors.New("roster is required")
	}

	o := &Orchestrator{
		id:           id,
		settings:     settings,
		roster:       roster,
		dealerSeat:   -1,
		disconnected: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.clock == nil {
		o.clock = quartz.NewReal()
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	o.logger = o.logger.WithPrefix("table").With("table", id)
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(o.clock.Now().UnixNano()))
	}
	o.timer = NewActionTimer(o.clock)
	return o, nil
}

// ID returns the table id.
func (o *Orchestrator) ID() string { return o.id }

// Settings returns the table settings.
func (o *Orchestrator) Settings() Settings { return o.settings }

// Subscribe adds a subscriber for subsequent events.
func (o *Orchestrator) Subscribe(s Subscriber) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.subscribers = append(o.subscribers, s)
}

// StartHand rotates the button and deals a new hand.
func (o *Orchestrator) StartHand() (HandStartedEvent, error) {
	o.mu.Lock()
	ev, err := o.startHandLocked()
	o.mu.Unlock()
	o.flush()
	return ev, err
}

func (o *Orchestrator) startHandLocked() (HandStartedEvent, error) {
	if o.closed {
		return HandStartedEvent{}, ErrTableClosed
	}
	if o.hand != nil && !o.hand.IsComplete() {
		return HandStartedEvent{}, ErrHandInProgress
	}
	o.stopNextHand()

	players := o.roster.ActivePlayers()
	if len(players) < 2 {
		return HandStartedEvent{}, ErrNotEnoughPlayers
	}
	if len(players) > o.settings.MaxPlayers {
		return HandStartedEvent{}, fmt.Errorf("%d players exceed the table maximum of %d", len(players), o.settings.MaxPlayers)
	}

	dealer := game.NextDealer(players, o.dealerSeat)
	handID := uuid.NewString()
	opts := []game.HandOption{
		game.WithHandID(handID),
		game.WithStraddle(o.settings.AllowStraddle),
		game.WithAllInRuns(o.settings.AllInDealCount),
	}
	if o.deckSource != nil {
		if deck := o.deckSource(dealer, players); deck != nil {
			opts = append(opts, game.WithDeck(deck))
		}
	}

	h, err := game.NewHand(o.rng, players, dealer, o.settings.SmallBlind, o.settings.BigBlind, opts...)
	if h == nil {
		if game.IsStateError(err) {
			o.abortHand(handID, err)
		}
		return HandStartedEvent{}, err
	}

	o.hand = h
	o.handCount++
	o.dealerSeat = players[dealer].Seat

	o.logger.Info("Hand started",
		"hand_id", handID,
		"hand", o.handCount,
		"players", len(players),
		"dealer_seat", o.dealerSeat)

	ev := HandStartedEvent{
		eventBase:  o.base(),
		HandID:     handID,
		HandNumber: o.handCount,
		DealerSeat: o.dealerSeat,
		SmallBlind: o.settings.SmallBlind,
		BigBlind:   o.settings.BigBlind,
		Straddle:   h.Straddle >= 0,
		State:      h.Snapshot(),
	}
	o.emit(ev)
	for _, p := range players {
		o.emit(HoleCardsEvent{
			eventBase: o.base(),
			HandID:    handID,
			PlayerID:  p.ID,
			Cards:     append([]poker.Card(nil), p.HoleCards...),
		})
	}

	o.afterChange(game.Preflop)
	return ev, err
}

// ApplyAction applies an action for playerID. A RuleViolation leaves the
// hand and the turn timer untouched.
func (o *Orchestrator) ApplyAction(playerID string, a game.Action) (game.ActionResult, error) {
	o.mu.Lock()
	res, err := o.applyLocked(playerID, a)
	o.mu.Unlock()
	o.flush()
	return res, err
}

func (o *Orchestrator) applyLocked(playerID string, a game.Action) (game.ActionResult, error) {
	h := o.hand
	if h == nil || !h.Phase.IsBetting() {
		return game.ActionResult{}, game.ErrNoHandInProgress
	}

	prev := h.Phase
	res, err := h.Apply(playerID, a)
	if err != nil {
		if game.IsStateError(err) {
			o.abortHand(h.ID, err)
		}
		return res, err
	}

	o.timer.Cancel()
	o.logger.Debug("Player action",
		"hand_id", h.ID,
		"player", playerID,
		"action", res.Applied,
		"amount", res.Amount,
		"bet", res.BetTotal)

	o.emit(PlayerActionEvent{
		eventBase: o.base(),
		HandID:    h.ID,
		Action:    res,
		State:     h.Snapshot(),
	})
	o.afterChange(prev)
	return res, nil
}

// afterChange publishes whatever the last transition produced and hands the
// turn to the next player.
func (o *Orchestrator) afterChange(prev game.Phase) {
	h := o.hand
	switch {
	case h.Aborted != nil:
		o.abortHand(h.ID, h.Aborted)
	case h.IsComplete():
		o.finishHand()
	default:
		if h.Phase != prev {
			o.emit(StreetChangeEvent{
				eventBase: o.base(),
				HandID:    h.ID,
				Phase:     h.Phase.String(),
				Board:     append([]poker.Card(nil), h.Board...),
				State:     h.Snapshot(),
			})
		}
		o.startTurn()
	}
}

func (o *Orchestrator) startTurn() {
	id := o.hand.CurrentPlayerID()
	if id == "" {
		o.timer.Cancel()
		return
	}
	if o.disconnected[id] {
		o.logger.Info("Folding disconnected player", "hand_id", o.hand.ID, "player", id)
		if _, err := o.applyLocked(id, game.Action{Type: game.Fold}); err != nil && !game.IsStateError(err) {
			o.logger.Error("Disconnect fold rejected", "player", id, "error", err)
		}
		return
	}
	o.timer.Start(id, o.settings.ActionTimeout, o.expire)
	o.emit(ActionRequiredEvent{
		eventBase:      o.base(),
		HandID:         o.hand.ID,
		PlayerID:       id,
		ValidActions:   o.hand.ValidActions(id),
		TimeoutSeconds: int(o.settings.ActionTimeout / time.Second),
		State:          o.hand.Snapshot(),
	})
}

// expire applies the default action for a turn that ran out of time.
func (o *Orchestrator) expire(gen uint64) {
	o.mu.Lock()
	if o.closed || !o.timer.Expired(gen) || o.hand == nil || !o.hand.Phase.IsBetting() {
		o.mu.Unlock()
		return
	}

	h := o.hand
	id := h.CurrentPlayerID()
	a := h.TimeoutAction()
	o.logger.Warn("Player timed out", "hand_id", h.ID, "player", id, "action", a.Type)
	o.emit(PlayerTimeoutEvent{
		eventBase: o.base(),
		HandID:    h.ID,
		PlayerID:  id,
		Action:    a.Type,
	})
	if _, err := o.applyLocked(id, a); err != nil && !game.IsStateError(err) {
		o.logger.Error("Timeout action rejected", "player", id, "error", err)
	}
	o.mu.Unlock()
	o.flush()
}

func (o *Orchestrator) finishHand() {
	h := o.hand
	o.timer.Cancel()

	total := game.TotalPot(h.Result.Pots)
	o.logger.Info("Hand complete",
		"hand_id", h.ID,
		"pot", total,
		"winners", h.Result.Winners(),
		"runs", max(len(h.Result.Runs), 1))

	if h.Result.MultiRun() {
		o.emit(AllInResultEvent{eventBase: o.base(), Result: h.Result, State: h.Snapshot()})
	} else {
		o.emit(HandResultEvent{eventBase: o.base(), Result: h.Result, State: h.Snapshot()})
	}
	o.scheduleNextHand()
}

func (o *Orchestrator) abortHand(handID string, err error) {
	o.timer.Cancel()
	o.logger.Error("Hand aborted", "hand_id", handID, "error", err)
	o.emit(HandAbortedEvent{eventBase: o.base(), HandID: handID, Reason: err.Error()})
	o.scheduleNextHand()
}

func (o *Orchestrator) scheduleNextHand() {
	if o.closed || o.settings.NextHandDelay <= 0 {
		return
	}
	o.stopNextHand()
	o.nextHand = o.clock.AfterFunc(o.settings.NextHandDelay, func() {
		if _, err := o.StartHand(); err != nil {
			o.logger.Info("Next hand not started", "error", err)
		}
	}, "next-hand")
}

func (o *Orchestrator) stopNextHand() {
	if o.nextHand != nil {
		o.nextHand.Stop()
		o.nextHand = nil
	}
}

// Disconnect marks playerID as gone. They are folded now if it is their
// turn, otherwise as soon as action reaches them.
func (o *Orchestrator) Disconnect(playerID string) error {
	o.mu.Lock()
	o.disconnected[playerID] = true
	var err error
	if o.hand != nil && o.hand.Phase.IsBetting() && o.hand.CurrentPlayerID() == playerID {
		o.logger.Info("Folding disconnected player", "hand_id", o.hand.ID, "player", playerID)
		_, err = o.applyLocked(playerID, game.Action{Type: game.Fold})
	}
	o.mu.Unlock()
	o.flush()
	return err
}

// Reconnect lets a disconnected player act again.
func (o *Orchestrator) Reconnect(playerID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.disconnected, playerID)
}

// Tick reports the turn timer. It never changes the hand.
func (o *Orchestrator) Tick() TimerUpdate {
	o.mu.Lock()
	defer o.mu.Unlock()

	u := TimerUpdate{TableID: o.id}
	if o.hand != nil {
		u.HandID = o.hand.ID
	}
	id, ok := o.timer.Active()
	if !ok {
		return u
	}
	u.PlayerID = id
	u.Remaining = o.timer.Remaining()
	u.RemainingSeconds = int((u.Remaining + time.Second - 1) / time.Second)
	return u
}

// Snapshot returns the public state of the current or last hand.
func (o *Orchestrator) Snapshot() (game.Snapshot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hand == nil {
		return game.Snapshot{}, false
	}
	return o.hand.Snapshot(), true
}

// ValidActions returns the legal actions for playerID.
func (o *Orchestrator) ValidActions(playerID string) []game.ValidAction {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hand == nil {
		return nil
	}
	return o.hand.ValidActions(playerID)
}

// InProgress reports whether a hand is being played.
func (o *Orchestrator) InProgress() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hand != nil && !o.hand.IsComplete()
}

// Dealt reports whether playerID holds a seat in the hand in progress,
// folded or not.
func (o *Orchestrator) Dealt(playerID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hand != nil && !o.hand.IsComplete() && o.hand.Player(playerID) != nil
}

// NextHandPending reports whether a hand is scheduled to start.
func (o *Orchestrator) NextHandPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nextHand != nil
}

// HandCount returns the number of hands dealt.
func (o *Orchestrator) HandCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handCount
}

// LastResult returns the result of the latest finished hand, nil if it was
// aborted or is still running.
func (o *Orchestrator) LastResult() *game.HandResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hand == nil || !o.hand.IsComplete() {
		return nil
	}
	return o.hand.Result
}

// Close stops all timers. Later calls to StartHand fail.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.timer.Cancel()
	o.stopNextHand()
}

func (o *Orchestrator) base() eventBase {
	return eventBase{Table: o.id, At: o.clock.Now()}
}

// emit queues an event. Callers hold o.mu.
func (o *Orchestrator) emit(e Event) {
	o.pending = append(o.pending, e)
}

// flush delivers queued events. emitMu keeps deliveries from concurrent
// callers in queue order.
func (o *Orchestrator) flush() {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	events := o.pending
	o.pending = nil
	subs := append([]Subscriber(nil), o.subscribers...)
	o.mu.Unlock()

	for _, e := range events {
		for _, s := range subs {
			s.OnEvent(e)
		}
	}
}
