package game

// maxDealerSteps bounds one dealer streak. Every step consumes an item or a
// shell, so a real game never gets close.
const maxDealerSteps = 256

// runDealer plays the dealer's turns until the turn rests with the human or
// the game is over.
func (s *Session) runDealer() {
	for steps := 0; s.Active && s.Current().Dealer; steps++ {
		if steps == maxDealerSteps {
			s.logger.Error("Dealer exceeded step limit, handing the turn back", "round", s.Round)
			s.turn = s.firstEligible()
			return
		}
		s.dealerStep()
	}
}

// dealerStep asks the ladder for one move and applies it. An item that names
// a target (magnifier, knife) resolves straight into a shot; any other item
// keeps the turn and the dealer decides again on the next step.
func (s *Session) dealerStep() {
	d := s.Current()
	opp := s.nextInTurnOrder(d)
	if opp == nil {
		s.checkTerminal()
		return
	}
	s.ExtraTurn = false
	coin := s.rng.Float64

	front, _ := s.Chamber.Front()
	in := DealerInput{
		Live:               s.Chamber.Live(),
		Blank:              s.Chamber.Blank(),
		Inventory:          d.Inventory.Items(),
		Front:              front,
		OpponentRestrained: opp.Restrained,
		Lives:              d.Lives,
	}

	decision, ok := Decide(in, coin)
	if !ok {
		if s.Chamber.Empty() {
			s.reload()
			return
		}
		decision = Decision{Target: FallbackTarget(in.Live, in.Blank, coin)}
	}
	s.logger.Debug("Dealer decision", "item", decision.Item, "target", decision.Target,
		"live", in.Live, "blank", in.Blank)

	target := decision.Target
	if decision.Item != NoItem {
		res := s.useItem(d, decision.Item)
		if res.needsTarget && target == TargetNone {
			// A knife arrived through adrenaline.
			target = FallbackTarget(s.Chamber.Live(), s.Chamber.Blank(), coin)
		}
		if target == TargetNone {
			s.settle()
			return
		}
		s.ExtraTurn = false
	}

	victim := opp
	if target == TargetKindSelf {
		victim = d
	}
	s.shoot(d, victim)
}
