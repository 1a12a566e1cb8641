package game

import "fmt"

// advance passes the turn to the next eligible participant, auto-resolving
// any restrained seats on the way.
func (s *Session) advance() {
	s.turn = s.nextEligible(s.turn)
	s.skipRestrained()
}

// skipRestrained consumes the restraint of the participant to act, once per
// seat, passing the turn along. A restrained seat stays in the rotation.
func (s *Session) skipRestrained() {
	for range s.Participants {
		p := s.Current()
		if !p.Restrained {
			return
		}
		p.Restrained = false
		s.logger.Debug("Restrained turn skipped", "participant", p.Name)
		s.emit(Event{
			Type:  EventRestrainedSkip,
			Actor: p.ID,
			Delay: ItemDelay,
			Text:  fmt.Sprintf("%s is in handcuffs and skips the turn!", p.Name),
		})
		s.turn = s.nextEligible(s.turn)
	}
}

// promptTurn tells everyone who is up next. Nothing is emitted once the game
// is over or when the dealer is to act.
func (s *Session) promptTurn() {
	if !s.Active {
		return
	}
	p := s.Current()
	if p.Dealer {
		return
	}
	text := fmt.Sprintf("%s to act.", p.Name)
	if s.phase == AwaitingTarget {
		text = fmt.Sprintf("%s must choose a target.", p.Name)
	}
	s.emit(Event{
		Type:  EventTurn,
		Actor: p.ID,
		Round: s.Round,
		Text:  text,
	})
}
