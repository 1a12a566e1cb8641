package game

import "slices"

// TargetKind is the dealer's choice of whom to shoot.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetKindSelf
	TargetOpponent
)

// String returns the target name.
func (t TargetKind) String() string {
	switch t {
	case TargetKindSelf:
		return "self"
	case TargetOpponent:
		return "opponent"
	default:
		return "none"
	}
}

// DealerInput is everything the dealer may look at. Front is only consulted
// in the magnifier branch, where using the magnifier makes it known.
type DealerInput struct {
	Live               int
	Blank              int
	Inventory          []Item
	Front              Shell
	OpponentRestrained bool
	Lives              int
}

// Decision is one dealer move: at most one item, and a target when the move
// resolves into a shot. A zero Item with a target is a plain shot.
type Decision struct {
	Item   Item
	Target TargetKind
}

// Decide walks the dealer's priority ladder. It returns false when no
// decision can be computed: the chamber is empty (reload instead) or the
// opponent is already restrained. Only the final fallback shot consults coin.
func Decide(in DealerInput, coin func() float64) (Decision, bool) {
	total := in.Live + in.Blank
	if total == 0 {
		return Decision{}, false
	}
	if in.OpponentRestrained {
		return Decision{}, false
	}

	p := float64(in.Live) / float64(total)
	has := func(item Item) bool { return slices.Contains(in.Inventory, item) }

	switch {
	case has(Handcuffs) && p > 0.5 && total > 2:
		return Decision{Item: Handcuffs}, true
	case has(Beer) && total > 1 && p > 0.5:
		return Decision{Item: Beer}, true
	case has(Magnifier) && p > 0.3 && p < 0.7 && total > 1:
		if in.Front == Blank {
			return Decision{Item: Magnifier, Target: TargetKindSelf}, true
		}
		return Decision{Item: Magnifier, Target: TargetOpponent}, true
	case has(Knife) && p > 0.3:
		return Decision{Item: Knife, Target: TargetOpponent}, true
	case has(Cigarettes) && in.Lives <= 2 && in.Lives < MaxLives:
		return Decision{Item: Cigarettes}, true
	case has(Adrenaline) && p > 0.5:
		return Decision{Item: Adrenaline}, true
	case has(Phone) && total > 2:
		return Decision{Item: Phone}, true
	case has(Inverter) && total > 1 && p > 0.5:
		return Decision{Item: Inverter}, true
	}

	return Decision{Target: FallbackTarget(in.Live, in.Blank, coin)}, true
}

// FallbackTarget is the dealer's plain shot: self when no live shells are
// left, the opponent when no blanks are left, otherwise the opponent with
// probability live/(live+blank).
func FallbackTarget(live, blank int, coin func() float64) TargetKind {
	if live == 0 {
		return TargetKindSelf
	}
	if blank == 0 {
		return TargetOpponent
	}
	p := float64(live) / float64(live+blank)
	if coin() < p {
		return TargetOpponent
	}
	return TargetKindSelf
}
