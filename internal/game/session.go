package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
)

// Mode selects the rule set of a session.
type Mode string

const (
	// Duel pits one human against the scripted dealer.
	Duel Mode = "duel"
	// Melee is 2-10 humans in a fixed rotation.
	Melee Mode = "melee"
)

// Phase is the resting state of the turn state machine between actions.
type Phase int

const (
	AwaitingAction Phase = iota
	// AwaitingTarget follows a knife: the actor must shoot before anything else.
	AwaitingTarget
	GameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case AwaitingAction:
		return "awaiting_action"
	case AwaitingTarget:
		return "awaiting_target"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Outcome describes how a finished session ended.
type Outcome struct {
	Winner     string `json:"winner,omitempty"`
	MutualLoss bool   `json:"mutualLoss,omitempty"`
}

// Session is the mutable state of one match. It is not safe for concurrent
// use; callers serialise access per session (see internal/session).
type Session struct {
	ID           string
	Mode         Mode
	Participants []*Participant
	Chamber      *Chamber
	Round        int
	// ExtraTurn is set when the acting participant keeps the turn.
	ExtraTurn bool
	Active    bool
	Outcome   Outcome

	turn   int
	phase  Phase
	rng    *rand.Rand
	logger *log.Logger
	events []Event
}

// NewSession validates the roster and deals the first round. Duel takes
// exactly one human seat; the dealer is seated after it. Melee takes
// MinMeleePlayers to MaxMeleePlayers seats.
func NewSession(rng *rand.Rand, mode Mode, roster []Seat, opts ...SessionOption) (*Session, error) {
	if rng == nil {
		panic("rng is required for session creation")
	}
	if err := validateRoster(mode, roster); err != nil {
		return nil, err
	}

	cfg := newSessionConfig(opts)

	seats := append([]Seat(nil), roster...)
	if mode == Duel {
		seats = append(seats, Seat{ID: DealerID, Name: cfg.dealerName})
	}

	participants := make([]*Participant, len(seats))
	for i, seat := range seats {
		items, ok := cfg.items[seat.ID]
		if !ok {
			items = DrawInitial(rng)
		}
		participants[i] = newParticipant(seat, items)
		participants[i].Dealer = mode == Duel && seat.ID == DealerID
	}

	chamber := cfg.chamber
	if chamber == nil {
		chamber = GenerateChamber(rng)
	}

	s := &Session{
		ID:           cfg.id,
		Mode:         mode,
		Participants: participants,
		Chamber:      chamber,
		Round:        1,
		Active:       true,
		rng:          rng,
		logger:       cfg.logger.WithPrefix("game").With("session", cfg.id),
	}

	s.logger.Info("Session created", "mode", mode, "players", len(participants),
		"live", chamber.Live(), "blank", chamber.Blank())
	return s, nil
}

func validateRoster(mode Mode, roster []Seat) error {
	switch mode {
	case Duel:
		if len(roster) != 1 {
			return fmt.Errorf("%w: duel needs exactly 1 player, got %d", ErrInvalidRoster, len(roster))
		}
	case Melee:
		if len(roster) < MinMeleePlayers || len(roster) > MaxMeleePlayers {
			return fmt.Errorf("%w: melee needs %d-%d players, got %d",
				ErrInvalidRoster, MinMeleePlayers, MaxMeleePlayers, len(roster))
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRoster, mode)
	}

	seen := make(map[string]bool, len(roster))
	for _, seat := range roster {
		if seat.ID == "" || seat.ID == TargetSelf {
			return fmt.Errorf("%w: invalid participant id %q", ErrInvalidRoster, seat.ID)
		}
		if mode == Duel && seat.ID == DealerID {
			return fmt.Errorf("%w: id %q is reserved", ErrInvalidRoster, DealerID)
		}
		if seen[seat.ID] {
			return fmt.Errorf("%w: duplicate participant %q", ErrInvalidRoster, seat.ID)
		}
		seen[seat.ID] = true
	}
	return nil
}

// Start returns the opening notifications: the round header and the first
// turn prompt.
func (s *Session) Start() []Event {
	s.emitRoundStart(EventSessionStart)
	s.promptTurn()
	return s.flush()
}

// Phase returns the resting state of the turn state machine.
func (s *Session) Phase() Phase {
	return s.phase
}

// Current returns the participant whose turn it is.
func (s *Session) Current() *Participant {
	return s.Participants[s.turn]
}

// Participant looks up a participant by id.
func (s *Session) Participant(id string) *Participant {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Alive returns the participants that still have lives, in roster order.
func (s *Session) Alive() []*Participant {
	alive := make([]*Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		if p.Alive() {
			alive = append(alive, p)
		}
	}
	return alive
}

// Dealer returns the scripted opponent, or nil in melee mode.
func (s *Session) Dealer() *Participant {
	if s.Mode != Duel {
		return nil
	}
	return s.Participant(DealerID)
}

func (s *Session) indexOf(p *Participant) int {
	for i, q := range s.Participants {
		if q == p {
			return i
		}
	}
	return -1
}

// nextEligible returns the index of the next participant after from, in
// roster order and wrapping, that still has lives. It returns from when
// nobody else is alive.
func (s *Session) nextEligible(from int) int {
	n := len(s.Participants)
	for i := 1; i <= n; i++ {
		idx := (from + i) % n
		if s.Participants[idx].Alive() {
			return idx
		}
	}
	return from
}

// firstEligible returns the first living participant in roster order.
func (s *Session) firstEligible() int {
	return s.nextEligible(len(s.Participants) - 1)
}

// nextInTurnOrder is the participant who would act after p: the single
// opponent in duel, the next living seat in melee.
func (s *Session) nextInTurnOrder(p *Participant) *Participant {
	next := s.Participants[s.nextEligible(s.indexOf(p))]
	if next == p {
		return nil
	}
	return next
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

func (s *Session) flush() []Event {
	events := s.events
	s.events = nil
	return events
}
