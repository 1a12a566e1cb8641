package game

import (
	"testing"

	"github.com/lox/roulette/internal/randutil"
	"github.com/stretchr/testify/require"
)

const human = "u1"

func duelSeats() []Seat {
	return []Seat{{ID: human, Name: "Alice"}}
}

func meleeSeats(n int) []Seat {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi", "Ivan", "Judy", "Mallory"}
	seats := make([]Seat, n)
	for i := range seats {
		seats[i] = Seat{ID: names[i][:1] + "-id", Name: names[i]}
	}
	return seats
}

// newDuel builds a duel with a fixed chamber and scripted inventories.
func newDuel(t *testing.T, chamber []Shell, humanItems, dealerItems []Item) *Session {
	t.Helper()
	s, err := NewSession(randutil.New(7), Duel, duelSeats(),
		WithID("duel-test"),
		WithChamber(NewChamber(chamber...)),
		WithItems(human, humanItems...),
		WithItems(DealerID, dealerItems...),
	)
	require.NoError(t, err)
	return s
}

// newMelee builds an n-player melee with a fixed chamber and empty inventories.
func newMelee(t *testing.T, n int, chamber []Shell) *Session {
	t.Helper()
	opts := []SessionOption{WithID("melee-test"), WithChamber(NewChamber(chamber...))}
	for _, seat := range meleeSeats(n) {
		opts = append(opts, WithItems(seat.ID))
	}
	s, err := NewSession(randutil.New(7), Melee, meleeSeats(n), opts...)
	require.NoError(t, err)
	return s
}

func eventsOf(events []Event, t EventType) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func requireCountersConsistent(t *testing.T, s *Session) {
	t.Helper()
	live, blank := 0, 0
	for _, sh := range s.Chamber.Shells() {
		if sh == Live {
			live++
		} else {
			blank++
		}
	}
	require.Equal(t, live, s.Chamber.Live(), "live counter out of step")
	require.Equal(t, blank, s.Chamber.Blank(), "blank counter out of step")
}
