package game

import "fmt"

// fire pops the front shell and applies it to target. A live shell deals the
// shooter's pending damage; a blank aimed at oneself keeps the turn. The
// knife bonus is spent by this shot whatever it turns out to be.
func (s *Session) fire(shooter, target *Participant) (Shell, error) {
	shell, ok := s.Chamber.Pop()
	if !ok {
		return Blank, ErrChamberEmpty
	}

	damage := shooter.BonusDamage()
	shooter.bonusDamage = 0
	for _, p := range s.Participants {
		p.peek = nil
	}

	self := shooter == target
	who := target.Name
	if self {
		who = "themselves"
	}
	s.emit(Event{
		Type:   EventShot,
		Actor:  shooter.ID,
		Target: target.ID,
		Shell:  shellPtr(shell),
		Delay:  ItemDelay,
		Text:   fmt.Sprintf("%s shoots %s... %s!", shooter.Name, who, shell),
	})
	s.logger.Debug("Shot fired", "shooter", shooter.Name, "target", target.Name, "shell", shell, "damage", damage)

	switch {
	case shell == Live:
		target.Lives = max(target.Lives-damage, 0)
		s.emit(Event{
			Type:   EventDamage,
			Actor:  shooter.ID,
			Target: target.ID,
			Damage: damage,
			Lives:  target.Lives,
			Delay:  ShotDelay,
			Text:   fmt.Sprintf("%s loses %d %s.", target.Name, damage, plural(damage, "life", "lives")),
		})
		if !target.Alive() {
			target.Restrained = false
			target.clearPending()
			s.emit(Event{
				Type:  EventEliminated,
				Actor: target.ID,
				Text:  fmt.Sprintf("%s is out!", target.Name),
			})
		}
	case self:
		s.ExtraTurn = true
		s.emit(Event{
			Type:  EventExtraTurn,
			Actor: shooter.ID,
			Delay: ShotDelay,
			Text:  fmt.Sprintf("%s gets another turn!", shooter.Name),
		})
	}
	return shell, nil
}

// shoot resolves a shot and then moves the state machine to its next rest.
func (s *Session) shoot(shooter, target *Participant) {
	s.phase = AwaitingAction
	if _, err := s.fire(shooter, target); err != nil {
		s.logger.Warn("Shot met an exhausted chamber, reloading", "shooter", shooter.Name)
		s.reload()
		return
	}
	s.settle()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
