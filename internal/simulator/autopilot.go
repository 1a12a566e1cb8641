package simulator

import (
	"fmt"
	rand "math/rand/v2"
	"slices"
	"sort"

	"github.com/lox/roulette/internal/game"
)

// Autopilot plays the human seat of a simulated duel.
type Autopilot interface {
	// Next picks the action for the current view. It is only called on the
	// autopilot's own turn.
	Next(v game.View) game.Action
	// Observe sees every event the autopilot is allowed to see.
	Observe(events []game.Event)
}

type autopilotFactory func(self string, rng *rand.Rand) Autopilot

var autopilots = map[string]autopilotFactory{
	"aggressive": func(string, *rand.Rand) Autopilot { return aggressive{} },
	"random": func(self string, rng *rand.Rand) Autopilot {
		return &randomPilot{self: self, rng: rng}
	},
	"careful": func(self string, _ *rand.Rand) Autopilot {
		return &carefulPilot{self: self}
	},
}

// Strategies lists the autopilot names accepted by Config.Strategy.
func Strategies() []string {
	names := make([]string, 0, len(autopilots))
	for name := range autopilots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewAutopilot builds the named strategy for the seat self.
func NewAutopilot(name, self string, rng *rand.Rand) (Autopilot, error) {
	factory, ok := autopilots[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (want one of %v)", name, Strategies())
	}
	return factory(self, rng), nil
}

// aggressive always shoots the dealer and never touches its items.
type aggressive struct{}

func (aggressive) Next(game.View) game.Action { return game.Shoot(game.DealerID) }
func (aggressive) Observe([]game.Event)       {}

// randomPilot picks uniformly among the legal moves.
type randomPilot struct {
	self string
	rng  *rand.Rand
}

func (r *randomPilot) Next(v game.View) game.Action {
	moves := []game.Action{game.Shoot(game.TargetSelf), game.Shoot(game.DealerID)}
	if v.Phase != game.AwaitingTarget.String() {
		for _, item := range itemsOf(v, r.self) {
			moves = append(moves, game.Use(item))
		}
	}
	return moves[r.rng.IntN(len(moves))]
}

func (r *randomPilot) Observe([]game.Event) {}

// carefulPilot plays the odds, inspects the front shell when it can and
// heals when low.
type carefulPilot struct {
	self  string
	known *game.Shell
}

func (c *carefulPilot) Next(v game.View) game.Action {
	if v.Phase == game.AwaitingTarget.String() {
		return game.Shoot(game.DealerID)
	}

	items := itemsOf(v, c.self)
	has := func(item game.Item) bool { return slices.Contains(items, item) }
	me, dealer := participant(v, c.self), participant(v, game.DealerID)
	total := v.Live + v.Blank

	switch {
	case has(game.Cigarettes) && me.Lives <= 2:
		return game.Use(game.Cigarettes)
	case c.known != nil && *c.known == game.Live && has(game.Knife):
		return game.Use(game.Knife)
	case c.known != nil && *c.known == game.Live:
		return game.Shoot(game.DealerID)
	case c.known != nil && *c.known == game.Blank && has(game.Inverter):
		return game.Use(game.Inverter)
	case c.known != nil:
		return game.Shoot(game.TargetSelf)
	case has(game.Magnifier) && total > 1:
		return game.Use(game.Magnifier)
	case has(game.Handcuffs) && !dealer.Restrained && v.Live*2 > total && total > 2:
		return game.Use(game.Handcuffs)
	case v.Live*2 >= total:
		return game.Shoot(game.DealerID)
	default:
		return game.Shoot(game.TargetSelf)
	}
}

// Observe forgets the front shell once anything could have changed it.
func (c *carefulPilot) Observe(events []game.Event) {
	for _, e := range events {
		switch e.Type {
		case game.EventShot, game.EventReload:
			c.known = nil
		case game.EventItemUsed:
			switch e.Item {
			case game.Beer:
				c.known = nil
			case game.Inverter:
				if c.known != nil {
					flipped := !*c.known
					c.known = &flipped
				}
			}
		case game.EventReveal:
			if e.Audience == c.self && e.Shell != nil {
				shell := *e.Shell
				c.known = &shell
			}
		}
	}
}

func participant(v game.View, id string) game.ParticipantView {
	for _, p := range v.Participants {
		if p.ID == id {
			return p
		}
	}
	return game.ParticipantView{}
}

func itemsOf(v game.View, id string) []game.Item {
	return participant(v, id).Items
}
