// Package game implements the rules of a single Texas Hold'em hand.
//
// The main type is HandState, which deals cards, posts blinds, validates
// and applies actions, advances streets and settles the pots.
//
// # Basic Usage
//
//	players := []*game.Player{
//	    game.NewPlayer("alice", 0, 1000),
//	    game.NewPlayer("bob", 1, 1000),
//	    game.NewPlayer("carol", 2, 1000),
//	}
//	rng := rand.New(rand.NewSource(42))
//	h, err := game.NewHand(rng, players, 0, 10, 20)
//	// ...
//	res, err := h.Apply(h.CurrentPlayerID(), game.Action{Type: game.Call})
//	if h.IsComplete() {
//	    winners := h.Result.Winners()
//	}
//
// Rule violations come back as *RuleViolation and leave the hand untouched.
// A *StateError means the hand could not continue; it has been aborted and
// every stack restored.
//
// # Deterministic Testing
//
// StackedDeck builds a deck that deals chosen hole cards and board, for use
// with WithDeck:
//
//	deck, _ := game.StackedDeck(0, []string{"As Ah", "Kd Kc"}, "2c 7d 9h Js 3h", true)
//	h, err := game.NewHand(rng, players, 0, 10, 20, game.WithDeck(deck))
//
// # Architecture
//
// HandState delegates to smaller pieces:
//   - BettingRound: action validation and round completion
//   - CalculatePots and Distribute: side pots and odd-chip splits
//   - poker.Deck and poker.Evaluate: cards and hand ranking
//
// Players are owned by the caller and only their chip stacks persist across
// hands.
package game
