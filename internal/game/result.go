package game

import (
	"github.com/lox/pokertable/poker"
)

// HandResult is the settled outcome of a hand.
type HandResult struct {
	HandID      string          `json:"hand_id"`
	Board       []poker.Card    `json:"board"`
	Pots        []Pot           `json:"pots"`
	Awards      []PotAward      `json:"awards"`
	Payouts     map[string]int  `json:"payouts"`
	Showdown    []ShowdownEntry `json:"showdown,omitempty"`
	Uncontested bool            `json:"uncontested"`
	Runs        []RunOut        `json:"runs,omitempty"` // set when the board was dealt more than once
}

// ShowdownEntry is one player's hand as shown at showdown.
type ShowdownEntry struct {
	PlayerID  string         `json:"player_id"`
	HoleCards []poker.Card   `json:"hole_cards"`
	Rank      poker.HandRank `json:"rank"`
}

// RunOut is one of several boards dealt after an all-in.
type RunOut struct {
	Board   []poker.Card              `json:"board"`
	Winners [][]string                `json:"winners"` // per pot
	Ranks   map[string]poker.HandRank `json:"ranks"`
}

// MultiRun reports whether the board was run more than once.
func (r *HandResult) MultiRun() bool {
	return len(r.Runs) > 1
}

// Winners returns the ids that received chips, in no particular order.
func (r *HandResult) Winners() []string {
	ids := make([]string, 0, len(r.Payouts))
	for id, amt := range r.Payouts {
		if amt > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// runUnit is the weight of one run won outright. It divides evenly by any
// tie size at a ten-handed table.
const runUnit = 2520

// runItMultiple deals the missing board cards once per configured run, each
// from a fresh deck holding no card already seen, and splits every pot by the
// share of runs each player won.
func (h *HandState) runItMultiple() error {
	h.Phase = Showdown
	h.CurrentPlayer = -1

	pots := CalculatePots(h.Players)
	if err := verifyPots(pots, h.Players); err != nil {
		return err
	}

	known := append([]poker.Card(nil), h.Board...)
	for _, p := range h.Players {
		known = append(known, p.HoleCards...)
	}
	missing := 5 - len(h.Board)

	weights := make([]map[string]int, len(pots))
	for i := range weights {
		weights[i] = make(map[string]int)
	}

	runs := make([]RunOut, 0, h.cfg.allInRuns)
	for r := 0; r < h.cfg.allInRuns; r++ {
		deck := poker.NewDeckWithout(h.rng, known)
		drawn, err := deck.DrawN(missing)
		if err != nil {
			return stateError("run out board", err)
		}
		board := append(append([]poker.Card(nil), h.Board...), drawn...)

		ranks, _, err := h.evaluate(board)
		if err != nil {
			return err
		}

		run := RunOut{Board: board, Winners: make([][]string, len(pots)), Ranks: ranks}
		for i, pot := range pots {
			winners := bestHands(pot.Eligible, ranks)
			run.Winners[i] = winners
			for _, id := range winners {
				weights[i][id] += runUnit / len(winners)
			}
		}
		runs = append(runs, run)
	}

	order := h.payoutOrder()
	awards := make([]PotAward, len(pots))
	payouts := make(map[string]int)
	for i := len(pots) - 1; i >= 0; i-- {
		pot := pots[i]
		w := weights[i]
		if len(w) == 0 {
			if pot.LastFolded == "" {
				return stateError("run out board", errNoClaimant(i, pot.Amount))
			}
			w = map[string]int{pot.LastFolded: 1}
		}

		shares := splitByWeight(pot.Amount, w, order)
		winners := make([]string, 0, len(shares))
		for _, id := range order {
			if shares[id] > 0 {
				winners = append(winners, id)
			}
		}
		for id, amt := range shares {
			payouts[id] += amt
		}
		awards[i] = PotAward{Pot: i, Amount: pot.Amount, Winners: winners, Shares: shares}
	}

	if err := h.pay(payouts); err != nil {
		return err
	}

	var entries []ShowdownEntry
	for _, p := range h.Players {
		if p.Folded {
			continue
		}
		entries = append(entries, ShowdownEntry{
			PlayerID:  p.ID,
			HoleCards: append([]poker.Card(nil), p.HoleCards...),
			Rank:      runs[0].Ranks[p.ID],
		})
	}

	h.Result = &HandResult{
		HandID:   h.ID,
		Board:    append([]poker.Card(nil), h.Board...),
		Pots:     pots,
		Awards:   awards,
		Payouts:  payouts,
		Showdown: entries,
		Runs:     runs,
	}
	h.Phase = Finished
	return nil
}
