package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"

	"github.com/lox/roulette/internal/randutil"
)

// Chamber generation parameters.
const (
	MinShells  = 4
	MaxShells  = 8
	LiveChance = 0.66
)

// Shell is a single round in the chamber. Its value never changes once fired.
type Shell bool

const (
	Blank Shell = false
	Live  Shell = true
)

// String returns "live" or "blank".
func (s Shell) String() string {
	if s {
		return "live"
	}
	return "blank"
}

// MarshalText implements encoding.TextMarshaler.
func (s Shell) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shell) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "live":
		*s = Live
	case "blank":
		*s = Blank
	default:
		return fmt.Errorf("unknown shell %q", text)
	}
	return nil
}

// Chamber is the ordered queue of shells for the current round. Index 0 is the
// next shell to fire. The live and blank counters always match the contents.
type Chamber struct {
	shells []Shell
	live   int
	blank  int
}

// NewChamber builds a chamber holding exactly the given shells, front first.
func NewChamber(shells ...Shell) *Chamber {
	c := &Chamber{shells: append([]Shell(nil), shells...)}
	for _, s := range c.shells {
		c.count(s, 1)
	}
	return c
}

// GenerateChamber loads between MinShells and MaxShells shells, each live with
// probability LiveChance. A load without blanks has one shell forced blank so
// a non-lethal option always exists. The result is shuffled.
func GenerateChamber(rng *rand.Rand) *Chamber {
	total := MinShells + rng.IntN(MaxShells-MinShells+1)
	shells := make([]Shell, total)
	blanks := 0
	for i := range shells {
		shells[i] = Shell(randutil.Chance(rng, LiveChance))
		if !shells[i] {
			blanks++
		}
	}
	if blanks == 0 {
		shells[rng.IntN(total)] = Blank
	}
	rng.Shuffle(total, func(i, j int) {
		shells[i], shells[j] = shells[j], shells[i]
	})
	return NewChamber(shells...)
}

// Len returns the number of shells left.
func (c *Chamber) Len() int { return len(c.shells) }

// Live returns the number of live shells left.
func (c *Chamber) Live() int { return c.live }

// Blank returns the number of blank shells left.
func (c *Chamber) Blank() int { return c.blank }

// Empty reports whether the chamber has been exhausted.
func (c *Chamber) Empty() bool { return len(c.shells) == 0 }

// LiveProbability is the chance the front shell is live given only the
// public counters. It is 0 for an empty chamber.
func (c *Chamber) LiveProbability() float64 {
	total := c.live + c.blank
	if total == 0 {
		return 0
	}
	return float64(c.live) / float64(total)
}

// Front returns the next shell to fire.
func (c *Chamber) Front() (Shell, bool) {
	return c.At(0)
}

// At returns the shell at index i (0 is the front).
func (c *Chamber) At(i int) (Shell, bool) {
	if i < 0 || i >= len(c.shells) {
		return Blank, false
	}
	return c.shells[i], true
}

// Pop removes and returns the front shell.
func (c *Chamber) Pop() (Shell, bool) {
	if len(c.shells) == 0 {
		return Blank, false
	}
	s := c.shells[0]
	c.shells = c.shells[1:]
	c.count(s, -1)
	return s, true
}

// Invert flips the front shell in place and returns its new value.
func (c *Chamber) Invert() (Shell, bool) {
	if len(c.shells) == 0 {
		return Blank, false
	}
	old := c.shells[0]
	c.count(old, -1)
	c.shells[0] = !old
	c.count(!old, 1)
	return !old, true
}

// Shells returns a copy of the remaining shells, front first.
func (c *Chamber) Shells() []Shell {
	return append([]Shell(nil), c.shells...)
}

func (c *Chamber) count(s Shell, delta int) {
	if s {
		c.live += delta
	} else {
		c.blank += delta
	}
}
