package game

import "fmt"

// settle runs CheckRoundEnd after an item or shot: the terminal check first,
// then a reload if the chamber is spent, otherwise the turn passes unless
// the actor earned an extra turn.
func (s *Session) settle() {
	if s.checkTerminal() {
		return
	}
	switch {
	case s.Chamber.Empty():
		s.reload()
	case !s.ExtraTurn:
		s.advance()
	}
}

// reload starts the next round: a fresh chamber, one new item per survivor
// and the turn back to the first eligible seat. Lives, inventories,
// restraints and knife bonuses carry over.
func (s *Session) reload() {
	s.Round++
	s.Chamber = GenerateChamber(s.rng)
	s.ExtraTurn = false
	s.phase = AwaitingAction

	for _, p := range s.Participants {
		p.peek = nil
		if p.Alive() {
			p.Inventory.Add(RandomItem(s.rng))
		}
	}
	s.turn = s.firstEligible()

	s.logger.Info("Reloaded", "round", s.Round, "live", s.Chamber.Live(), "blank", s.Chamber.Blank())
	s.emitRoundStart(EventReload)
	s.skipRestrained()
}

// checkTerminal ends the session when the mode's win condition holds. Duel
// ends as soon as either side is out; melee ends once at most one
// participant is alive, with nobody left meaning a mutual loss.
func (s *Session) checkTerminal() bool {
	alive := s.Alive()

	var over bool
	switch s.Mode {
	case Duel:
		over = len(alive) < len(s.Participants)
	case Melee:
		over = len(alive) <= 1
	}
	if !over {
		return false
	}

	s.Active = false
	s.phase = GameOver
	e := Event{Type: EventGameOver, Round: s.Round}
	if len(alive) == 0 {
		s.Outcome = Outcome{MutualLoss: true}
		e.Text = "Game over. Nobody survived."
	} else {
		winner := alive[0]
		s.Outcome = Outcome{Winner: winner.ID}
		e.Winner = winner.ID
		e.Text = fmt.Sprintf("Game over. %s wins!", winner.Name)
	}
	s.logger.Info("Game over", "winner", s.Outcome.Winner, "mutualLoss", s.Outcome.MutualLoss, "round", s.Round)
	s.emit(e)
	return true
}

func (s *Session) emitRoundStart(t EventType) {
	s.emit(Event{
		Type:  t,
		Round: s.Round,
		Live:  s.Chamber.Live(),
		Blank: s.Chamber.Blank(),
		Text: fmt.Sprintf("=== Round %d === %d live, %d blank.",
			s.Round, s.Chamber.Live(), s.Chamber.Blank()),
	})
}
