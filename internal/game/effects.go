package game

import "fmt"

// effectResult is what resolving one item hands back to the turn engine.
type effectResult struct {
	extraTurn   bool
	needsTarget bool
	// delegate is an item stolen by adrenaline that must be used next, as
	// the same actor, in place of the rest of this resolution.
	delegate Item
}

// useItem consumes item from p and resolves it. Delegated items are resolved
// in a loop rather than by re-entering the action path, so the depth is
// bounded by the number of items in play.
func (s *Session) useItem(p *Participant, item Item) effectResult {
	for {
		if err := p.Inventory.Take(item); err != nil {
			s.logger.Error("Item vanished before use", "participant", p.Name, "item", item, "error", err)
			return effectResult{}
		}
		s.logger.Debug("Item used", "participant", p.Name, "item", item)

		res := s.applyItem(p, item)
		if res.delegate == NoItem {
			if res.extraTurn {
				s.ExtraTurn = true
			}
			return res
		}
		item = res.delegate
	}
}

func (s *Session) applyItem(p *Participant, item Item) effectResult {
	switch item {
	case Magnifier:
		return s.useMagnifier(p)
	case Knife:
		return s.useKnife(p)
	case Cigarettes:
		return s.useCigarettes(p)
	case Beer:
		return s.useBeer(p)
	case Handcuffs:
		return s.useHandcuffs(p)
	case Adrenaline:
		return s.useAdrenaline(p)
	case Phone:
		return s.usePhone(p)
	case Inverter:
		return s.useInverter(p)
	}
	s.logger.Error("Unknown item", "item", item)
	return effectResult{extraTurn: true}
}

func (s *Session) itemEvent(t EventType, p *Participant, item Item, format string, args ...any) Event {
	return Event{
		Type:  t,
		Actor: p.ID,
		Item:  item,
		Delay: ItemDelay,
		Text:  fmt.Sprintf("%s uses %s", p.Name, item.Label()) + fmt.Sprintf(format, args...),
	}
}

func (s *Session) useMagnifier(p *Participant) effectResult {
	front, ok := s.Chamber.Front()
	if !ok {
		s.emit(s.itemEvent(EventItemNoop, p, Magnifier, ", but the chamber is empty."))
		return effectResult{extraTurn: true}
	}
	s.emit(s.itemEvent(EventItemUsed, p, Magnifier, " and inspects the next shell."))
	s.emit(Event{
		Type:     EventReveal,
		Actor:    p.ID,
		Item:     Magnifier,
		Shell:    shellPtr(front),
		Position: 1,
		Audience: p.ID,
		Text:     fmt.Sprintf("The next shell is %s.", front),
	})
	return effectResult{extraTurn: true}
}

func (s *Session) useKnife(p *Participant) effectResult {
	p.bonusDamage = KnifeDamage
	s.phase = AwaitingTarget
	s.emit(s.itemEvent(EventItemUsed, p, Knife, ": the next live shell deals %d damage.", KnifeDamage))
	return effectResult{needsTarget: true}
}

func (s *Session) useCigarettes(p *Participant) effectResult {
	if !p.heal() {
		s.emit(s.itemEvent(EventItemNoop, p, Cigarettes, ", but lives are already at the maximum."))
		return effectResult{extraTurn: true}
	}
	e := s.itemEvent(EventItemUsed, p, Cigarettes, ": +1 life.")
	e.Lives = p.Lives
	s.emit(e)
	return effectResult{extraTurn: true}
}

func (s *Session) useBeer(p *Participant) effectResult {
	shell, ok := s.Chamber.Pop()
	if !ok {
		s.emit(s.itemEvent(EventItemNoop, p, Beer, ", but the chamber is empty."))
		return effectResult{extraTurn: true}
	}
	e := s.itemEvent(EventItemUsed, p, Beer, ": a %s shell is ejected.", shell)
	e.Shell = shellPtr(shell)
	s.emit(e)
	return effectResult{extraTurn: true}
}

func (s *Session) useHandcuffs(p *Participant) effectResult {
	target := s.nextInTurnOrder(p)
	if target == nil {
		s.emit(s.itemEvent(EventItemNoop, p, Handcuffs, ", but nobody is left to cuff."))
		return effectResult{extraTurn: true}
	}
	target.Restrained = true
	e := s.itemEvent(EventItemUsed, p, Handcuffs, ": %s skips their next turn.", target.Name)
	e.Target = target.ID
	s.emit(e)
	return effectResult{extraTurn: true}
}

func (s *Session) useAdrenaline(p *Participant) effectResult {
	victim := s.nextInTurnOrder(p)
	if victim == nil || victim.Inventory.Len() == 0 {
		s.emit(s.itemEvent(EventItemNoop, p, Adrenaline, ", but there is nothing to steal."))
		return effectResult{extraTurn: true}
	}
	stolen, _ := victim.Inventory.TakeRandom(s.rng)
	p.Inventory.Add(stolen)

	e := s.itemEvent(EventItemStolen, p, Adrenaline, " and steals %s from %s!", stolen.Label(), victim.Name)
	e.Target = victim.ID
	s.emit(e)
	return effectResult{delegate: stolen}
}

func (s *Session) usePhone(p *Participant) effectResult {
	n := s.Chamber.Len()
	if n <= 1 {
		s.emit(s.itemEvent(EventItemNoop, p, Phone, ", but there are not enough shells left."))
		return effectResult{extraTurn: true}
	}
	idx := 1 + s.rng.IntN(n-1)
	shell, _ := s.Chamber.At(idx)
	p.peek = &Peek{Position: idx + 1, Shell: shell}
	s.emit(s.itemEvent(EventItemUsed, p, Phone, " and hears a whisper about shell #%d.", idx+1))
	return effectResult{extraTurn: true}
}

func (s *Session) useInverter(p *Participant) effectResult {
	if _, ok := s.Chamber.Invert(); !ok {
		s.emit(s.itemEvent(EventItemNoop, p, Inverter, ", but the chamber is empty."))
		return effectResult{extraTurn: true}
	}
	s.emit(s.itemEvent(EventItemUsed, p, Inverter, ": the next shell is flipped."))
	return effectResult{extraTurn: true}
}
