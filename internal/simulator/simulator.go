package simulator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/statistics"
	"golang.org/x/sync/errgroup"
)

const (
	pilotID = "autopilot"
	// maxActions bounds a single duel; a correct engine ends long before.
	maxActions = 10_000
)

// Config holds configuration for running simulations
type Config struct {
	Games    int
	Strategy string
	Seed     int64
	Workers  int
	Timeout  time.Duration
	Logger   *log.Logger
}

// Simulator plays autopilot duels against the dealer
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run plays every duel and returns the aggregated results. Each duel gets
// its own seed derived from Config.Seed, so results do not depend on the
// number of workers.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", s.config.Games)
	}
	if _, err := NewAutopilot(s.config.Strategy, pilotID, nil); err != nil {
		return nil, err
	}

	results := make([]statistics.DuelResult, s.config.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i := range results {
		seed := randutil.Derive(s.config.Seed, i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.playDuelWithTimeout(ctx, seed)
			if err != nil {
				return fmt.Errorf("duel %d: %w", i+1, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playDuelWithTimeout runs a single duel with timeout protection
func (s *Simulator) playDuelWithTimeout(ctx context.Context, seed int64) (statistics.DuelResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	type outcome struct {
		result statistics.DuelResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := s.playDuel(seed)
		done <- outcome{result, err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return statistics.DuelResult{}, fmt.Errorf("duel timed out after %v (seed: %d): %w", s.config.Timeout, seed, ctx.Err())
	}
}

// playDuel plays one duel to the end. The engine and the autopilot draw
// from separate sources so a strategy change never shifts the chambers.
func (s *Simulator) playDuel(seed int64) (statistics.DuelResult, error) {
	pilot, err := NewAutopilot(s.config.Strategy, pilotID, randutil.New(randutil.Derive(seed, 1)))
	if err != nil {
		return statistics.DuelResult{}, err
	}
	session, err := game.NewSession(randutil.New(seed), game.Duel,
		[]game.Seat{{ID: pilotID, Name: "Autopilot"}},
		game.WithID(fmt.Sprintf("sim-%d", seed)),
		game.WithLogger(s.config.Logger),
	)
	if err != nil {
		return statistics.DuelResult{}, err
	}

	result := statistics.DuelResult{Seed: seed, ItemsUsed: make(map[game.Item]int)}
	observe := func(events []game.Event) {
		var visible []game.Event
		for _, e := range events {
			tally(&result, e)
			if e.VisibleTo(pilotID) {
				visible = append(visible, e)
			}
		}
		pilot.Observe(visible)
	}

	observe(session.Start())
	for i := 0; session.Active; i++ {
		if i >= maxActions {
			return result, fmt.Errorf("no result after %d actions (seed: %d)", maxActions, seed)
		}
		action := pilot.Next(session.View(pilotID))
		events, err := session.Submit(pilotID, action)
		if err != nil {
			return result, fmt.Errorf("autopilot %s made an illegal move %+v: %w", s.config.Strategy, action, err)
		}
		observe(events)
	}

	result.Rounds = session.Round
	result.LivesLeft = session.Participant(pilotID).Lives
	switch {
	case session.Outcome.MutualLoss:
		result.Outcome = statistics.MutualLoss
	case session.Outcome.Winner == pilotID:
		result.Outcome = statistics.Win
	default:
		result.Outcome = statistics.Loss
	}
	s.config.Logger.Debug("Duel finished", "seed", seed, "outcome", result.Outcome, "rounds", result.Rounds)
	return result, nil
}

func tally(r *statistics.DuelResult, e game.Event) {
	switch e.Type {
	case game.EventShot:
		r.Shots++
		if e.Actor == e.Target {
			r.SelfShots++
		}
	case game.EventItemUsed, game.EventItemNoop:
		r.ItemsUsed[e.Item]++
	}
}

// RunSimulation is a convenience function for running a simulation with basic parameters
func RunSimulation(ctx context.Context, games int, strategy string, seed int64, logger *log.Logger) (*statistics.Statistics, error) {
	return New(Config{
		Games:    games,
		Strategy: strategy,
		Seed:     seed,
		Logger:   logger,
	}).Run(ctx)
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, strategy string) {
	low, high := stats.WinRateInterval95()

	_, _ = fmt.Fprintf(w, "\n=== FINAL RESULTS: %s autopilot vs dealer ===\n", strategy)
	_, _ = fmt.Fprintf(w, "Duels played: %d\n", stats.Games)
	_, _ = fmt.Fprintf(w, "Wins: %d, losses: %d, mutual losses: %d\n", stats.Wins, stats.Losses, stats.MutualLosses)
	_, _ = fmt.Fprintf(w, "Win rate: %.1f%% (95%% CI: %.1f%% to %.1f%%)\n", stats.WinRate()*100, low*100, high*100)

	_, _ = fmt.Fprintf(w, "\n=== ROUNDS ===\n")
	_, _ = fmt.Fprintf(w, "Mean: %.2f, median: %.1f, std dev: %.2f, max: %d\n",
		stats.Mean(), stats.Median(), stats.StdDev(), stats.MaxRounds)
	_, _ = fmt.Fprintf(w, "Percentiles: P25=%.1f, P75=%.1f, P95=%.1f\n",
		stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	_, _ = fmt.Fprintf(w, "\n=== SHOTS & ITEMS ===\n")
	_, _ = fmt.Fprintf(w, "Shots: %d (%.1f per duel), self shots: %d\n",
		stats.Shots, float64(stats.Shots)/float64(stats.Games), stats.SelfShots)
	for _, item := range game.Catalog {
		if n := stats.ItemsUsed[item]; n > 0 {
			_, _ = fmt.Fprintf(w, "%-12s %d\n", item.Name()+":", n)
		}
	}
}
