// Package game implements the rules engine of the shell roulette duel.
//
// The main type is Session, which holds one match: the participants, the
// chamber of live and blank shells for the current round, and the turn state
// machine that moves between awaiting an action, resolving items and shots,
// reloading, and game over.
//
// # Basic Usage
//
// Create a duel against the dealer and play a turn:
//
//	rng := randutil.New(42)
//	s, err := game.NewSession(rng, game.Duel, []game.Seat{{ID: "u1", Name: "Alice"}})
//	events := s.Start()
//	events, err = s.Submit("u1", game.Use(game.Magnifier))
//	events, err = s.Submit("u1", game.Shoot(game.DealerID))
//
// Submit returns the ordered notifications produced by the action, including
// every dealer move played before the turn came back to a human. A rejected
// action returns one of the sentinel errors and leaves the session untouched.
//
// # Deterministic Testing
//
// All randomness flows through the *rand.Rand passed to NewSession. Scripted
// chambers and inventories can be injected with WithChamber and WithItems:
//
//	s, _ := game.NewSession(rng, game.Duel, roster,
//	    game.WithChamber(game.NewChamber(game.Blank, game.Live, game.Blank)),
//	    game.WithItems("u1", game.Knife))
//
// # Architecture
//
// Session delegates to small components:
//   - Chamber: shell queue with live/blank counters kept in step
//   - Inventory: per-participant multiset of items
//   - effects: one resolver per item; adrenaline hands back a delegated item
//     that the engine resolves in a loop
//   - Decide: the dealer's priority ladder, a pure function of its inputs
//
// A Session is not safe for concurrent use. internal/session serialises all
// access per session id.
package game
