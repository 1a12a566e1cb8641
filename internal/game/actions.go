package game

import (
	"fmt"
)

// TargetSelf may be used in place of the actor's own id when shooting.
const TargetSelf = "self"

// ActionKind discriminates the actions a participant can submit.
type ActionKind string

const (
	ActionUse      ActionKind = "use"
	ActionShoot    ActionKind = "shoot"
	ActionReadPeek ActionKind = "read_peek"
)

// Action is one participant input.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Item   Item       `json:"item,omitempty"`
	Target string     `json:"target,omitempty"`
}

// Use builds an item action.
func Use(item Item) Action {
	return Action{Kind: ActionUse, Item: item}
}

// Shoot builds a shot at target, a participant id or TargetSelf.
func Shoot(target string) Action {
	return Action{Kind: ActionShoot, Target: target}
}

// ReadPeek builds the follow-up read of a phone peek.
func ReadPeek() Action {
	return Action{Kind: ActionReadPeek}
}

// Submit applies one action from participant id and returns the ordered
// notifications it produced. In duel mode the dealer's turns are played out
// before returning, so the session always rests on a human decision or on
// GameOver. A rejected action returns an error and leaves the session as it
// was.
func (s *Session) Submit(id string, action Action) ([]Event, error) {
	if !s.Active {
		return nil, ErrGameInactive
	}
	p := s.Participant(id)
	if p == nil || p.Dealer {
		return nil, fmt.Errorf("%w: %q", ErrNotParticipant, id)
	}

	if action.Kind == ActionReadPeek {
		return s.readPeek(p)
	}

	if s.Current() != p {
		return nil, fmt.Errorf("%w: waiting for %s", ErrOutOfTurn, s.Current().Name)
	}

	switch action.Kind {
	case ActionUse:
		if s.phase == AwaitingTarget {
			return nil, ErrTargetRequired
		}
		if !action.Item.Valid() || !p.Inventory.Has(action.Item) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotOwned, action.Item.Name())
		}
		s.ExtraTurn = false
		if res := s.useItem(p, action.Item); res.needsTarget {
			s.promptTurn()
			return s.flush(), nil
		}
		s.settle()

	case ActionShoot:
		target, err := s.resolveTarget(p, action.Target)
		if err != nil {
			return nil, err
		}
		s.ExtraTurn = false
		s.shoot(p, target)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action.Kind)
	}

	s.runDealer()
	s.promptTurn()
	return s.flush(), nil
}

// resolveTarget maps a target id onto a living participant.
func (s *Session) resolveTarget(actor *Participant, target string) (*Participant, error) {
	if target == TargetSelf || target == actor.ID {
		return actor, nil
	}
	p := s.Participant(target)
	if p == nil {
		return nil, fmt.Errorf("%w: no participant %q", ErrInvalidTarget, target)
	}
	if !p.Alive() {
		return nil, fmt.Errorf("%w: %s is already out", ErrInvalidTarget, p.Name)
	}
	return p, nil
}

// readPeek discloses a pending phone peek to its owner and consumes it.
func (s *Session) readPeek(p *Participant) ([]Event, error) {
	if p.peek == nil {
		return nil, ErrNoPeek
	}
	peek := *p.peek
	p.peek = nil
	s.emit(Event{
		Type:     EventPeek,
		Actor:    p.ID,
		Position: peek.Position,
		Shell:    shellPtr(peek.Shell),
		Audience: p.ID,
		Text:     fmt.Sprintf("Shell #%d is %s.", peek.Position, peek.Shell),
	})
	return s.flush(), nil
}

// Forfeit eliminates a participant outside of normal play, e.g. when they
// leave the room mid-match. Turn order and the terminal check are applied as
// if they had been shot out.
func (s *Session) Forfeit(id string) ([]Event, error) {
	if !s.Active {
		return nil, ErrGameInactive
	}
	p := s.Participant(id)
	if p == nil || p.Dealer {
		return nil, fmt.Errorf("%w: %q", ErrNotParticipant, id)
	}
	if !p.Alive() {
		return nil, nil
	}

	wasCurrent := s.Current() == p
	p.Lives = 0
	p.clearPending()
	p.Restrained = false
	s.logger.Info("Participant forfeited", "participant", p.Name)
	s.emit(Event{
		Type:  EventEliminated,
		Actor: p.ID,
		Text:  fmt.Sprintf("%s left the table.", p.Name),
	})

	if s.checkTerminal() {
		return s.flush(), nil
	}
	if wasCurrent {
		s.phase = AwaitingAction
		s.ExtraTurn = false
		s.advance()
		s.runDealer()
		s.promptTurn()
	}
	return s.flush(), nil
}
