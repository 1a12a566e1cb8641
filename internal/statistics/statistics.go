package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/roulette/internal/game"
)

// Outcome is how a simulated duel ended for the autopilot seat.
type Outcome int

const (
	Loss Outcome = iota
	Win
	MutualLoss
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case MutualLoss:
		return "mutual_loss"
	default:
		return "loss"
	}
}

// DuelResult represents the outcome of a single simulated duel
type DuelResult struct {
	Seed      int64 // RNG seed for this duel (for replay)
	Outcome   Outcome
	Rounds    int // Chambers loaded, including the first
	Shots     int
	SelfShots int // Shots a participant fired at themself
	// LivesLeft is the autopilot's lives at the end.
	LivesLeft int
	ItemsUsed map[game.Item]int
}

// Statistics aggregates simulated duels. Round counts feed the spread
// figures; outcomes feed the win rate.
type Statistics struct {
	Games        int
	Wins         int
	Losses       int
	MutualLosses int

	SumRounds  float64
	SumRounds2 float64   // Sum of squares for variance calculation
	Values     []float64 // Rounds per duel, for median/percentile calculation
	MaxRounds  int

	Shots     int
	SelfShots int
	ItemsUsed map[game.Item]int
}

// Add incorporates a new duel result into the statistics
func (s *Statistics) Add(result DuelResult) {
	s.Games++
	switch result.Outcome {
	case Win:
		s.Wins++
	case MutualLoss:
		s.MutualLosses++
	default:
		s.Losses++
	}

	rounds := float64(result.Rounds)
	s.SumRounds += rounds
	s.SumRounds2 += rounds * rounds
	s.Values = append(s.Values, rounds)
	if result.Rounds > s.MaxRounds {
		s.MaxRounds = result.Rounds
	}

	s.Shots += result.Shots
	s.SelfShots += result.SelfShots
	if s.ItemsUsed == nil {
		s.ItemsUsed = make(map[game.Item]int)
	}
	for item, n := range result.ItemsUsed {
		s.ItemsUsed[item] += n
	}
}

// WinRate returns the fraction of duels the autopilot won
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// WinRateInterval95 returns the normal-approximation 95% interval for the
// win rate, clamped to [0, 1].
func (s *Statistics) WinRateInterval95() (float64, float64) {
	if s.Games == 0 {
		return 0, 0
	}
	p := s.WinRate()
	margin := 1.96 * math.Sqrt(p*(1-p)/float64(s.Games))
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

// Mean returns the mean number of rounds per duel
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumRounds / float64(s.Games)
}

// Variance returns the sample variance of rounds per duel
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumRounds2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of rounds per duel
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// Median returns the median rounds per duel
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the rounds value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks that the tallies agree with each other
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if s.Wins+s.Losses+s.MutualLosses != s.Games {
		return fmt.Errorf("outcomes (%d+%d+%d) do not add up to %d games",
			s.Wins, s.Losses, s.MutualLosses, s.Games)
	}
	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)",
			len(s.Values), s.Games)
	}
	if s.SelfShots > s.Shots {
		return fmt.Errorf("self shots (%d) exceed shots (%d)", s.SelfShots, s.Shots)
	}
	if s.Shots < s.Games {
		return fmt.Errorf("%d shots cannot finish %d duels", s.Shots, s.Games)
	}
	return nil
}
