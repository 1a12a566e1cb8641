package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/statistics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.WarnLevel})
}

func TestNew(t *testing.T) {
	simulator := New(Config{Games: 100, Strategy: "careful", Seed: 12345})
	if simulator == nil {
		t.Fatal("New() returned nil")
	}
	if simulator.config.Workers != 1 {
		t.Errorf("Expected 1 worker by default, got %d", simulator.config.Workers)
	}
	if simulator.config.Timeout != 5*time.Second {
		t.Errorf("Expected 5s default timeout, got %v", simulator.config.Timeout)
	}
	if simulator.config.Logger == nil {
		t.Error("Expected a default logger")
	}
}

func TestSimulator_RejectsBadConfig(t *testing.T) {
	_, err := New(Config{Games: 0, Strategy: "careful"}).Run(context.Background())
	assert.ErrorContains(t, err, "games must be positive")

	_, err = New(Config{Games: 1, Strategy: "psychic"}).Run(context.Background())
	assert.ErrorContains(t, err, "unknown strategy")
}

func TestSimulator_AllStrategies(t *testing.T) {
	for _, strategy := range Strategies() {
		t.Run(strategy, func(t *testing.T) {
			t.Parallel()
			stats, err := New(Config{
				Games:    50,
				Strategy: strategy,
				Seed:     12345,
				Workers:  4,
				Logger:   quietLogger(),
			}).Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 50, stats.Games)
			assert.Equal(t, 50, stats.Wins+stats.Losses+stats.MutualLosses)
			assert.GreaterOrEqual(t, stats.Shots, stats.Games)
			assert.GreaterOrEqual(t, stats.Mean(), 1.0)
		})
	}
}

func TestSimulator_AggressiveNeverShootsItself(t *testing.T) {
	stats, err := RunSimulation(context.Background(), 20, "aggressive", 7, quietLogger())
	require.NoError(t, err)

	// Only the dealer ever turns the shotgun on itself.
	assert.Less(t, stats.SelfShots, stats.Shots)
	for item, n := range stats.ItemsUsed {
		assert.Positive(t, n, item.Name())
	}
}

func TestSimulator_DeterministicAcrossWorkers(t *testing.T) {
	run := func(workers int) *statistics.Statistics {
		stats, err := New(Config{
			Games:    40,
			Strategy: "random",
			Seed:     99,
			Workers:  workers,
			Logger:   quietLogger(),
		}).Run(context.Background())
		require.NoError(t, err)
		return stats
	}

	one, many := run(1), run(8)
	assert.Equal(t, one.Values, many.Values)
	assert.Equal(t, one.Wins, many.Wins)
	assert.Equal(t, one.Shots, many.Shots)
	assert.Equal(t, one.ItemsUsed, many.ItemsUsed)
}

func TestSimulator_PlayDuel_Deterministic(t *testing.T) {
	simulator := New(Config{Games: 1, Strategy: "careful", Logger: quietLogger()})

	result1, err := simulator.playDuel(12345)
	require.NoError(t, err)
	result2, err := simulator.playDuel(12345)
	require.NoError(t, err)

	assert.Equal(t, result1, result2)
	assert.Equal(t, int64(12345), result1.Seed)
	assert.GreaterOrEqual(t, result1.Rounds, 1)
	if result1.Outcome == statistics.Win {
		assert.Positive(t, result1.LivesLeft)
	} else {
		assert.Zero(t, result1.LivesLeft)
	}
}

func TestSimulator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Games: 10, Strategy: "careful"}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCarefulPilot(t *testing.T) {
	view := func(live, blank, lives int, items ...game.Item) game.View {
		return game.View{
			Live:  live,
			Blank: blank,
			Phase: game.AwaitingAction.String(),
			Participants: []game.ParticipantView{
				{ID: pilotID, Lives: lives, Items: items},
				{ID: game.DealerID, Lives: 5, Dealer: true},
			},
		}
	}

	tests := []struct {
		name string
		view game.View
		want game.Action
	}{
		{"low lives heal", view(2, 2, 2, game.Cigarettes), game.Use(game.Cigarettes)},
		{"inspect first", view(2, 2, 5, game.Magnifier), game.Use(game.Magnifier)},
		{"cuff when live-heavy", view(3, 1, 5, game.Handcuffs), game.Use(game.Handcuffs)},
		{"odds favour live", view(2, 1, 5), game.Shoot(game.DealerID)},
		{"even odds shoot dealer", view(1, 1, 5), game.Shoot(game.DealerID)},
		{"odds favour blank", view(1, 2, 5), game.Shoot(game.TargetSelf)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pilot := &carefulPilot{self: pilotID}
			assert.Equal(t, tt.want, pilot.Next(tt.view))
		})
	}

	t.Run("acts on a reveal", func(t *testing.T) {
		pilot := &carefulPilot{self: pilotID}
		blank, live := game.Blank, game.Live

		pilot.Observe([]game.Event{{Type: game.EventReveal, Audience: pilotID, Shell: &blank}})
		assert.Equal(t, game.Shoot(game.TargetSelf), pilot.Next(view(3, 1, 5)))
		assert.Equal(t, game.Use(game.Inverter), pilot.Next(view(3, 1, 5, game.Inverter)))

		pilot.Observe([]game.Event{{Type: game.EventItemUsed, Item: game.Inverter}})
		assert.Equal(t, game.Use(game.Knife), pilot.Next(view(1, 3, 5, game.Knife)))
		assert.Equal(t, game.Shoot(game.DealerID), pilot.Next(view(1, 3, 5)))

		pilot.Observe([]game.Event{{Type: game.EventShot, Shell: &live}})
		assert.Equal(t, game.Shoot(game.TargetSelf), pilot.Next(view(1, 3, 5)))
	})

	t.Run("ignores other people's reveals", func(t *testing.T) {
		pilot := &carefulPilot{self: pilotID}
		live := game.Live
		pilot.Observe([]game.Event{{Type: game.EventReveal, Audience: "someone-else", Shell: &live}})
		assert.Nil(t, pilot.known)
	})

	t.Run("shoots after the knife", func(t *testing.T) {
		pilot := &carefulPilot{self: pilotID}
		v := view(1, 3, 5, game.Magnifier)
		v.Phase = game.AwaitingTarget.String()
		assert.Equal(t, game.Shoot(game.DealerID), pilot.Next(v))
	})
}

func TestRandomPilotOnlyPicksLegalMoves(t *testing.T) {
	pilot := &randomPilot{self: pilotID, rng: randutil.New(1)}
	v := game.View{
		Phase: game.AwaitingTarget.String(),
		Participants: []game.ParticipantView{
			{ID: pilotID, Items: []game.Item{game.Beer, game.Phone}},
		},
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, game.ActionShoot, pilot.Next(v).Kind)
	}

	v.Phase = game.AwaitingAction.String()
	seen := make(map[game.Item]bool)
	for i := 0; i < 500; i++ {
		a := pilot.Next(v)
		if a.Kind == game.ActionUse {
			seen[a.Item] = true
		}
	}
	assert.Equal(t, map[game.Item]bool{game.Beer: true, game.Phone: true}, seen)
}

func TestPrintSummary(t *testing.T) {
	stats, err := RunSimulation(context.Background(), 10, "careful", 1, quietLogger())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, stats, "careful")
	out := buf.String()
	assert.Contains(t, out, "=== FINAL RESULTS: careful autopilot vs dealer ===")
	assert.Contains(t, out, "Duels played: 10")
	assert.Contains(t, out, "Win rate:")
}

func TestWriteReport(t *testing.T) {
	stats, err := RunSimulation(context.Background(), 10, "careful", 1, quietLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteReport(path, NewReport(stats, "careful", 1)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "careful", got.Strategy)
	assert.Equal(t, 10, got.Games)
	assert.Equal(t, stats.Wins, got.Wins)
	assert.InDelta(t, stats.WinRate(), got.WinRate, 1e-9)
	for name := range got.ItemsUsed {
		_, err := game.ParseItem(name)
		assert.NoError(t, err, name)
	}
}
