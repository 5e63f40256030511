package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/lox/pokertable/poker"
)

// Phase represents where the hand is in its lifecycle.
type Phase int

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
	Finished
)

func (p Phase) String() string {
	switch p {
	case Waiting:
		return "waiting"
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// IsBetting reports whether players act in this phase.
func (p Phase) IsBetting() bool {
	return p >= Preflop && p <= River
}

// HandState represents the state of a poker hand
type HandState struct {
	ID            string
	Players       []*Player // seat order; indexes below refer to this slice
	Phase         Phase
	Board         []poker.Card
	Dealer        int
	SmallBlind    int // index of the small blind
	BigBlind      int // index of the big blind
	Straddle      int // index of the straddler, -1 without straddle
	CurrentPlayer int // -1 when nobody is to act
	Betting       *BettingRound
	AllInPlayers  []string
	Result        *HandResult
	Aborted       error

	deck        *poker.Deck
	rng         *rand.Rand
	cfg         *handConfig
	startStacks []int
	folds       int
}

// NewHand starts a hand: resets per-hand player state, deals hole cards,
// posts blinds (and the straddle when enabled) and sets the first player to
// act. players must be in seat order and all have chips.
//
// Example usage:
//
//	rng := rand.New(rand.NewSource(42))
//	h, err := NewHand(rng, players, 0, 10, 20, WithStraddle(true))
func NewHand(rng *rand.Rand, players []*Player, dealer int, smallBlind, bigBlind int, opts ...HandOption) (*HandState, error) {
	if rng == nil {
		return nil, errors.New("rng is required for hand creation")
	}
	if len(players) < 2 {
		return nil, errors.New("at least 2 players required")
	}
	if dealer < 0 || dealer >= len(players) {
		return nil, fmt.Errorf("dealer index %d out of range", dealer)
	}
	if smallBlind <= 0 || bigBlind < smallBlind {
		return nil, fmt.Errorf("invalid blinds %d/%d", smallBlind, bigBlind)
	}
	for _, p := range players {
		if p.Chips <= 0 {
			return nil, fmt.Errorf("player %s has no chips", p.ID)
		}
	}

	cfg := defaultHandConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	deck := cfg.deck
	if deck == nil {
		deck = poker.NewDeck(rng)
	}

	n := len(players)
	h := &HandState{
		ID:            cfg.handID,
		Players:       players,
		Phase:         Preflop,
		Board:         make([]poker.Card, 0, 5),
		Dealer:        dealer,
		Straddle:      -1,
		CurrentPlayer: -1,
		Betting:       NewBettingRound(n, bigBlind),
		deck:          deck,
		rng:           rng,
		cfg:           cfg,
		startStacks:   make([]int, n),
	}
	for i, p := range players {
		p.ResetForHand()
		h.startStacks[i] = p.Chips
	}

	if n == 2 {
		// Heads-up: button posts small blind
		h.SmallBlind = dealer
		h.BigBlind = (dealer + 1) % n
	} else {
		h.SmallBlind = (dealer + 1) % n
		h.BigBlind = (dealer + 2) % n
	}

	if err := h.dealHoleCards(); err != nil {
		h.abort(err)
		return nil, err
	}

	h.postBlind(h.SmallBlind, smallBlind)
	h.postBlind(h.BigBlind, bigBlind)
	lastForced := h.BigBlind
	if cfg.straddle && n > 2 {
		h.Straddle = (h.BigBlind + 1) % n
		h.postBlind(h.Straddle, 2*bigBlind)
		h.Betting.MinRaise = 2 * bigBlind
		lastForced = h.Straddle
	}
	h.Betting.RoundStart = (lastForced + 1) % n

	if n == 2 {
		h.CurrentPlayer = h.firstToActFrom(dealer)
	} else {
		h.CurrentPlayer = h.Betting.NextToAct(h.Players, lastForced)
	}

	if h.CurrentPlayer == -1 || h.Betting.IsRoundComplete(h.Players) {
		if err := h.endRound(); err != nil {
			h.abort(err)
			return h, err
		}
	}
	return h, nil
}

func (h *HandState) dealHoleCards() error {
	n := len(h.Players)
	for round := 0; round < 2; round++ {
		for i := 1; i <= n; i++ {
			p := h.Players[(h.Dealer+i)%n]
			card, err := h.deck.Draw()
			if err != nil {
				return stateError("deal hole cards", err)
			}
			p.HoleCards = append(p.HoleCards, card)
		}
	}
	return nil
}

// postBlind posts a forced bet, capped at the player's stack.
func (h *HandState) postBlind(idx, amount int) {
	p := h.Players[idx]
	amount = min(amount, p.Chips)
	p.commit(amount)
	if p.AllIn {
		h.AllInPlayers = append(h.AllInPlayers, p.ID)
	}
	if p.CurrentBet > h.Betting.CurrentBet {
		h.Betting.CurrentBet = p.CurrentBet
	}
}

// firstToActFrom returns the first player at or after idx who can act.
func (h *HandState) firstToActFrom(idx int) int {
	n := len(h.Players)
	return h.Betting.NextToAct(h.Players, (idx-1+n)%n)
}

// Apply validates and applies an action from the player to act, then moves
// the hand forward: next player, next street, showdown or an uncontested win.
// A RuleViolation leaves the hand untouched. A StateError aborts the hand.
func (h *HandState) Apply(playerID string, a Action) (ActionResult, error) {
	if !h.Phase.IsBetting() {
		return ActionResult{}, violation(CodeNoHandInProgress, "hand is %s", h.Phase)
	}
	idx := h.indexOf(playerID)
	if idx < 0 {
		return ActionResult{}, violation(CodeUnknownPlayer, "player %s is not in this hand", playerID)
	}
	if idx != h.CurrentPlayer {
		return ActionResult{}, violation(CodeNotYourTurn, "waiting on %s", h.CurrentPlayerID())
	}

	phase := h.Phase
	res, err := h.Betting.Apply(h.Players, idx, a)
	if err != nil {
		return ActionResult{}, err
	}
	res.Phase = phase

	p := h.Players[idx]
	if res.Applied == Fold {
		h.folds++
		p.foldOrder = h.folds
	}
	if p.AllIn && res.Amount > 0 {
		h.AllInPlayers = append(h.AllInPlayers, p.ID)
	}

	if err := h.advance(idx); err != nil {
		h.abort(err)
		return res, err
	}
	return res, nil
}

// advance decides what happens after players[from] acted.
func (h *HandState) advance(from int) error {
	if h.countInHand() == 1 {
		return h.finishUncontested()
	}
	if !h.Betting.IsRoundComplete(h.Players) {
		if next := h.Betting.NextToAct(h.Players, from); next >= 0 {
			h.CurrentPlayer = next
			return nil
		}
	}
	return h.endRound()
}

// endRound closes the current betting round and deals streets until someone
// has to act or the hand is settled.
func (h *HandState) endRound() error {
	h.CurrentPlayer = -1
	for {
		if h.countInHand() == 1 {
			return h.finishUncontested()
		}
		if h.Phase == River {
			return h.showdown()
		}
		if h.actionClosed() && h.cfg.allInRuns > 1 && h.countAllIn() >= 2 {
			return h.runItMultiple()
		}
		if err := h.nextStreet(); err != nil {
			return err
		}
		if !h.Betting.IsRoundComplete(h.Players) {
			h.CurrentPlayer = h.Betting.NextToAct(h.Players, h.Dealer)
			if h.CurrentPlayer >= 0 {
				return nil
			}
		}
	}
}

// nextStreet clears round bets and deals the next community cards.
func (h *HandState) nextStreet() error {
	for _, p := range h.Players {
		p.CurrentBet = 0
	}
	h.Betting.ResetForNewRound(h.Betting.NextToAct(h.Players, h.Dealer))

	switch h.Phase {
	case Preflop:
		if err := h.dealBoard(3); err != nil {
			return err
		}
		h.Phase = Flop
	case Flop:
		if err := h.dealBoard(1); err != nil {
			return err
		}
		h.Phase = Turn
	case Turn:
		if err := h.dealBoard(1); err != nil {
			return err
		}
		h.Phase = River
	default:
		return stateError("next street", fmt.Errorf("cannot advance from %s", h.Phase))
	}
	return nil
}

func (h *HandState) dealBoard(n int) error {
	if h.cfg.burnCards {
		if err := h.deck.Burn(); err != nil {
			return stateError("burn", err)
		}
	}
	cards, err := h.deck.DrawN(n)
	if err != nil {
		return stateError("deal board", err)
	}
	h.Board = append(h.Board, cards...)
	return nil
}

// completeBoard deals whatever streets are missing, street by street.
func (h *HandState) completeBoard() error {
	for len(h.Board) < 5 {
		n := 1
		if len(h.Board) == 0 {
			n = 3
		}
		if err := h.dealBoard(n); err != nil {
			return err
		}
	}
	return nil
}

func (h *HandState) showdown() error {
	h.Phase = Showdown
	h.CurrentPlayer = -1
	if err := h.completeBoard(); err != nil {
		return err
	}

	pots := CalculatePots(h.Players)
	if err := verifyPots(pots, h.Players); err != nil {
		return err
	}

	ranks, entries, err := h.evaluate(h.Board)
	if err != nil {
		return err
	}

	awards, payouts, err := Distribute(pots, ranks, h.payoutOrder())
	if err != nil {
		return err
	}
	if err := h.pay(payouts); err != nil {
		return err
	}

	h.Result = &HandResult{
		HandID:   h.ID,
		Board:    append([]poker.Card(nil), h.Board...),
		Pots:     pots,
		Awards:   awards,
		Payouts:  payouts,
		Showdown: entries,
	}
	h.Phase = Finished
	return nil
}

func (h *HandState) finishUncontested() error {
	h.CurrentPlayer = -1

	var winner *Player
	for _, p := range h.Players {
		if !p.Folded {
			winner = p
			break
		}
	}
	if winner == nil {
		return stateError("finish hand", errors.New("no player left in hand"))
	}

	pots := CalculatePots(h.Players)
	if err := verifyPots(pots, h.Players); err != nil {
		return err
	}

	awards := make([]PotAward, len(pots))
	for i, pot := range pots {
		awards[i] = PotAward{
			Pot:     i,
			Amount:  pot.Amount,
			Winners: []string{winner.ID},
			Shares:  map[string]int{winner.ID: pot.Amount},
		}
	}
	payouts := map[string]int{winner.ID: TotalPot(pots)}
	if err := h.pay(payouts); err != nil {
		return err
	}

	h.Result = &HandResult{
		HandID:      h.ID,
		Board:       append([]poker.Card(nil), h.Board...),
		Pots:        pots,
		Awards:      awards,
		Payouts:     payouts,
		Uncontested: true,
	}
	h.Phase = Finished
	return nil
}

// evaluate ranks every non-folded hand against board.
func (h *HandState) evaluate(board []poker.Card) (map[string]poker.HandRank, []ShowdownEntry, error) {
	ranks := make(map[string]poker.HandRank)
	var entries []ShowdownEntry
	for _, p := range h.Players {
		if p.Folded {
			continue
		}
		rank, err := poker.Evaluate(p.HoleCards, board)
		if err != nil {
			return nil, nil, stateError("evaluate", err)
		}
		ranks[p.ID] = rank
		entries = append(entries, ShowdownEntry{
			PlayerID:  p.ID,
			HoleCards: append([]poker.Card(nil), p.HoleCards...),
			Rank:      rank,
		})
	}
	return ranks, entries, nil
}

// pay credits payouts and checks that no chips were created or lost.
func (h *HandState) pay(payouts map[string]int) error {
	paid := 0
	for _, amt := range payouts {
		paid += amt
	}
	if contributed := TotalContributed(h.Players); paid != contributed {
		return stateError("pay", fmt.Errorf("%w: paying %d of %d", ErrChipMismatch, paid, contributed))
	}

	for _, p := range h.Players {
		p.Chips += payouts[p.ID]
		if !p.Folded && h.Phase == Showdown {
			p.ShowHand = true
		}
	}

	before, after := 0, 0
	for i, p := range h.Players {
		before += h.startStacks[i]
		after += p.Chips
	}
	if before != after {
		return stateError("pay", fmt.Errorf("%w: stacks %d before, %d after", ErrChipMismatch, before, after))
	}
	return nil
}

// abort restores every stack to its start-of-hand value and ends the hand.
func (h *HandState) abort(err error) {
	for i, p := range h.Players {
		p.Chips = h.startStacks[i]
		p.CurrentBet = 0
		p.TotalBet = 0
		p.ShowHand = false
	}
	h.Result = nil
	h.Aborted = err
	h.CurrentPlayer = -1
	h.Phase = Finished
}

// payoutOrder lists player ids clockwise from the small blind.
func (h *HandState) payoutOrder() []string {
	n := len(h.Players)
	order := make([]string, n)
	for i := 0; i < n; i++ {
		order[i] = h.Players[(h.SmallBlind+i)%n].ID
	}
	return order
}

// actionClosed reports that no further betting is possible this hand.
func (h *HandState) actionClosed() bool {
	canAct := 0
	for _, p := range h.Players {
		if p.CanAct() {
			canAct++
		}
	}
	return canAct <= 1
}

func (h *HandState) countInHand() int {
	count := 0
	for _, p := range h.Players {
		if !p.Folded {
			count++
		}
	}
	return count
}

func (h *HandState) countAllIn() int {
	count := 0
	for _, p := range h.Players {
		if !p.Folded && p.AllIn {
			count++
		}
	}
	return count
}

func (h *HandState) indexOf(playerID string) int {
	for i, p := range h.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Player returns the player with the given id, or nil.
func (h *HandState) Player(playerID string) *Player {
	if idx := h.indexOf(playerID); idx >= 0 {
		return h.Players[idx]
	}
	return nil
}

// CurrentPlayerID returns the id of the player to act, or "".
func (h *HandState) CurrentPlayerID() string {
	if h.CurrentPlayer < 0 || h.CurrentPlayer >= len(h.Players) {
		return ""
	}
	return h.Players[h.CurrentPlayer].ID
}

// IsComplete returns true if the hand is complete
func (h *HandState) IsComplete() bool {
	return h.Phase == Finished
}

// ValidActions returns the legal actions for playerID, empty when it is not
// their turn.
func (h *HandState) ValidActions(playerID string) []ValidAction {
	if !h.Phase.IsBetting() || h.CurrentPlayerID() != playerID || playerID == "" {
		return nil
	}
	return h.Betting.GetValidActions(h.Players, h.CurrentPlayer)
}

// TimeoutAction is the default applied when the player to act runs out of
// time: check when nothing is owed, fold otherwise.
func (h *HandState) TimeoutAction() Action {
	if h.CurrentPlayer < 0 {
		return Action{Type: Fold}
	}
	if h.Players[h.CurrentPlayer].CurrentBet >= h.Betting.CurrentBet {
		return Action{Type: Check}
	}
	return Action{Type: Fold}
}

// Pots returns the pots as they stand.
func (h *HandState) Pots() []Pot {
	return CalculatePots(h.Players)
}

// NextDealer returns the index of the player who takes the button after the
// player seated at prevSeat. With no previous dealer (prevSeat < 0) the
// first player gets it.
func NextDealer(players []*Player, prevSeat int) int {
	if len(players) == 0 {
		return -1
	}
	if prevSeat < 0 {
		return 0
	}
	best := -1
	for i, p := range players {
		if p.Seat > prevSeat && (best == -1 || p.Seat < players[best].Seat) {
			best = i
		}
	}
	if best >= 0 {
		return best
	}
	lowest := 0
	for i, p := range players {
		if p.Seat < players[lowest].Seat {
			lowest = i
		}
	}
	return lowest
}
