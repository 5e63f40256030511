package game

import (
	"strings"
)

// ActionType is the closed set of player actions.
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Raise
	AllIn
)

func (a ActionType) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	case AllIn:
		return "allin"
	default:
		return "unknown"
	}
}

// MarshalText encodes the action by name.
func (a ActionType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Action is a validated player action. Amount is only meaningful for Raise,
// where it is the raise size over the current bet (not the new total).
type Action struct {
	Type   ActionType
	Amount int
}

// RaiseBy returns a raise of amount over the current bet.
func RaiseBy(amount int) Action {
	return Action{Type: Raise, Amount: amount}
}

// ParseAction converts a wire action name into an Action. It is the only
// place action names are interpreted.
func ParseAction(name string, amount int) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fold":
		return Action{Type: Fold}, nil
	case "check":
		return Action{Type: Check}, nil
	case "call":
		return Action{Type: Call}, nil
	case "raise":
		if amount <= 0 {
			return Action{}, violation(CodeRaiseTooSmall, "raise amount must be positive, got %d", amount)
		}
		return RaiseBy(amount), nil
	case "allin", "all-in", "all_in":
		return Action{Type: AllIn}, nil
	default:
		return Action{}, violation(CodeInvalidAction, "unknown action %q", name)
	}
}

// ActionResult describes an action as it was applied.
type ActionResult struct {
	PlayerID  string     `json:"player_id"`
	Seat      int        `json:"seat"`
	Requested ActionType `json:"requested"`
	Applied   ActionType `json:"applied"` // a call with nothing owed is a check, a call for the whole stack is an all-in
	Amount    int        `json:"amount"`  // chips moved from stack to pot
	BetTotal  int        `json:"bet_total"`
	Reopened  bool       `json:"reopened"` // the action was a full raise
	Phase     Phase      `json:"phase"`
}

// ValidAction is a legal action for the player to act, with amount bounds.
// For Call and AllIn, MinAmount == MaxAmount == chips committed. For Raise
// the bounds are on the raise size.
type ValidAction struct {
	Type      ActionType `json:"action"`
	MinAmount int        `json:"min_amount"`
	MaxAmount int        `json:"max_amount"`
}

// BettingRound encapsulates the state for a betting round
type BettingRound struct {
	CurrentBet int
	MinRaise   int
	BigBlind   int // Store for resetting min raise on new streets
	LastRaiser int
	RoundStart int
	// Acted marks players who have acted since the last full raise. A short
	// all-in raise does not clear it, which is what keeps betting closed for
	// players who already acted.
	Acted []bool
}

// NewBettingRound creates a new betting round
func NewBettingRound(numPlayers int, bigBlind int) *BettingRound {
	return &BettingRound{
		MinRaise:   bigBlind,
		BigBlind:   bigBlind,
		LastRaiser: -1,
		RoundStart: -1,
		Acted:      make([]bool, numPlayers),
	}
}

// ResetForNewRound resets the betting round for a new street
func (br *BettingRound) ResetForNewRound(start int) {
	br.CurrentBet = 0
	br.MinRaise = br.BigBlind
	br.LastRaiser = -1
	br.RoundStart = start
	for i := range br.Acted {
		br.Acted[i] = false
	}
}

// CanRaise reports whether betting is open to the player at idx.
func (br *BettingRound) CanRaise(idx int) bool {
	return !br.Acted[idx]
}

// Apply validates and applies a single action for players[idx]. Nothing is
// mutated when an error is returned.
func (br *BettingRound) Apply(players []*Player, idx int, a Action) (ActionResult, error) {
	p := players[idx]
	res := ActionResult{PlayerID: p.ID, Seat: p.Seat, Requested: a.Type}

	var err error
	switch a.Type {
	case Fold:
		p.Folded = true
		res.Applied = Fold
	case Check:
		err = br.check(p, &res)
	case Call:
		err = br.call(players, idx, &res)
	case Raise:
		err = br.raise(players, idx, a.Amount, &res)
	case AllIn:
		err = br.allIn(players, idx, &res)
	default:
		err = violation(CodeInvalidAction, "unknown action %d", a.Type)
	}
	if err != nil {
		return ActionResult{}, err
	}

	br.Acted[idx] = true
	res.BetTotal = p.CurrentBet
	return res, nil
}

func (br *BettingRound) check(p *Player, res *ActionResult) error {
	if p.CurrentBet < br.CurrentBet {
		return violation(CodeCannotCheck, "must call %d", br.CurrentBet-p.CurrentBet)
	}
	res.Applied = Check
	return nil
}

func (br *BettingRound) call(players []*Player, idx int, res *ActionResult) error {
	p := players[idx]
	toCall := br.CurrentBet - p.CurrentBet
	if toCall <= 0 {
		res.Applied = Check
		return nil
	}
	if toCall >= p.Chips {
		br.shove(players, idx, res)
		return nil
	}
	p.commit(toCall)
	res.Applied = Call
	res.Amount = toCall
	return nil
}

func (br *BettingRound) raise(players []*Player, idx int, amount int, res *ActionResult) error {
	p := players[idx]
	if amount <= 0 {
		return violation(CodeRaiseTooSmall, "raise amount must be positive, got %d", amount)
	}

	need := br.CurrentBet + amount - p.CurrentBet
	if need > p.Chips {
		return violation(CodeInsufficientChips, "raise needs %d, have %d", need, p.Chips)
	}
	if !br.CanRaise(idx) {
		return violation(CodeRaiseNotReopened, "betting was not reopened, call or fold")
	}
	if need == p.Chips {
		// Whole stack: allowed below the minimum raise
		br.shove(players, idx, res)
		res.Applied = Raise
		return nil
	}
	if amount < br.MinRaise {
		return violation(CodeRaiseTooSmall, "minimum raise is %d", br.MinRaise)
	}

	p.commit(need)
	br.CurrentBet += amount
	br.MinRaise = amount
	br.fullRaise(idx)
	res.Applied = Raise
	res.Amount = need
	res.Reopened = true
	return nil
}

func (br *BettingRound) allIn(players []*Player, idx int, res *ActionResult) error {
	p := players[idx]
	if p.Chips == 0 {
		return violation(CodeInvalidAction, "no chips left")
	}
	if p.CurrentBet+p.Chips > br.CurrentBet && !br.CanRaise(idx) {
		return violation(CodeRaiseNotReopened, "betting was not reopened, call or fold")
	}
	br.shove(players, idx, res)
	return nil
}

// shove commits the player's whole stack. Going over the current bet by at
// least the minimum raise reopens betting; a smaller increment only lifts the
// bet to match.
func (br *BettingRound) shove(players []*Player, idx int, res *ActionResult) {
	p := players[idx]
	amount := p.Chips
	p.commit(amount)

	res.Applied = AllIn
	res.Amount = amount

	if p.CurrentBet <= br.CurrentBet {
		return
	}
	increment := p.CurrentBet - br.CurrentBet
	br.CurrentBet = p.CurrentBet
	if increment >= br.MinRaise {
		br.MinRaise = increment
		br.fullRaise(idx)
		res.Reopened = true
	}
}

func (br *BettingRound) fullRaise(idx int) {
	br.LastRaiser = idx
	br.RoundStart = idx
	for i := range br.Acted {
		br.Acted[i] = false
	}
	br.Acted[idx] = true
}

// IsRoundComplete checks if the current betting round is complete
func (br *BettingRound) IsRoundComplete(players []*Player) bool {
	active := 0
	var only *Player
	for _, p := range players {
		if !p.Folded && !p.AllIn {
			active++
			only = p
		}
	}

	switch active {
	case 0:
		return true // Everyone is folded or all-in
	case 1:
		return only.CurrentBet >= br.CurrentBet
	}

	for i, p := range players {
		if p.Folded || p.AllIn {
			continue
		}
		if p.CurrentBet != br.CurrentBet || !br.Acted[i] {
			return false
		}
	}
	return true
}

// NextToAct returns the index of the next player after from who can act, or
// -1 when nobody can.
func (br *BettingRound) NextToAct(players []*Player, from int) int {
	n := len(players)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if players[idx].CanAct() {
			return idx
		}
	}
	return -1
}

// GetValidActions returns valid actions for a player
func (br *BettingRound) GetValidActions(players []*Player, idx int) []ValidAction {
	p := players[idx]
	actions := []ValidAction{{Type: Fold}}
	toCall := br.CurrentBet - p.CurrentBet

	if toCall <= 0 {
		actions = append(actions, ValidAction{Type: Check})
	} else if toCall < p.Chips {
		actions = append(actions, ValidAction{Type: Call, MinAmount: toCall, MaxAmount: toCall})
	}

	if br.CanRaise(idx) {
		if maxRaise := p.Chips - max(toCall, 0); maxRaise > br.MinRaise {
			actions = append(actions, ValidAction{Type: Raise, MinAmount: br.MinRaise, MaxAmount: maxRaise})
		}
	}
	if p.Chips > 0 && (br.CanRaise(idx) || p.Chips <= toCall) {
		actions = append(actions, ValidAction{Type: AllIn, MinAmount: p.Chips, MaxAmount: p.Chips})
	}
	return actions
}
