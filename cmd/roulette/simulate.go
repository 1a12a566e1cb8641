package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/simulator"
)

// SimulateCmd plays many autopilot duels against the dealer
type SimulateCmd struct {
	Games    int           `default:"10000" help:"Number of duels to simulate"`
	Strategy string        `default:"careful" enum:"aggressive,careful,random" help:"Autopilot strategy: aggressive, careful, random"`
	Seed     *int64        `help:"RNG seed (optional)"`
	Workers  int           `default:"0" help:"Parallel workers (0 for one per CPU)"`
	Timeout  time.Duration `default:"5s" help:"Per-duel timeout"`
	Out      string        `help:"Write a JSON report to this path" type:"path"`
	Debug    bool          `help:"Enable debug logging"`
}

func (c *SimulateCmd) Run() error {
	logger := setupLogger(os.Stderr, levelFor(c.Debug))
	ctx := setupSignalHandler(logger)

	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	seed := randutil.Seed(c.Seed)
	logger.Info("Simulating duels", "games", c.Games, "strategy", c.Strategy, "seed", seed, "workers", workers)

	// Per-duel engine lines only show up with --debug
	simLogger := logger.WithPrefix("sim")
	if !c.Debug {
		simLogger.SetLevel(log.WarnLevel)
	}

	start := time.Now()
	stats, err := simulator.New(simulator.Config{
		Games:    c.Games,
		Strategy: c.Strategy,
		Seed:     seed,
		Workers:  workers,
		Timeout:  c.Timeout,
		Logger:   simLogger,
	}).Run(ctx)
	if err != nil {
		return err
	}

	simulator.PrintSummary(os.Stdout, stats, c.Strategy)
	elapsed := time.Since(start)
	fmt.Printf("\nCompleted %d duels in %v (%.0f duels/sec)\n",
		stats.Games, elapsed.Round(time.Millisecond), float64(stats.Games)/elapsed.Seconds())

	if c.Out != "" {
		if err := simulator.WriteReport(c.Out, simulator.NewReport(stats, c.Strategy, seed)); err != nil {
			return err
		}
		logger.Info("Wrote report", "path", c.Out)
	}
	return nil
}
