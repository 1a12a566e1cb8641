package main

import (
	"fmt"
	"os"

	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/tui"
)

// PlayCmd runs a duel in the terminal, locally or on a server
type PlayCmd struct {
	Name     string `short:"n" default:"Player" help:"Your name at the table"`
	Server   string `help:"Play on a roulette server (e.g. http://localhost:8080) for duels and melees"`
	Seed     *int64 `help:"Deterministic RNG seed (optional)"`
	NoPacing bool   `help:"Show events without dramatic pauses"`
	NoColor  bool   `help:"Disable colours"`
	LogFile  string `default:"roulette.log" help:"Log file path (the terminal belongs to the game)"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *PlayCmd) Run() error {
	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := setupLogger(logFile, levelFor(c.Debug))
	ctx := setupSignalHandler(logger)

	seed := randutil.Seed(c.Seed)
	if c.Server != "" {
		logger.Info("Joining server", "player", c.Name, "server", c.Server)
	} else {
		logger.Info("Starting local duel", "player", c.Name, "seed", seed)
	}

	return tui.Run(ctx, tui.Options{
		Name:    c.Name,
		Seed:    seed,
		Pacing:  !c.NoPacing,
		NoColor: c.NoColor,
		Logger:  logger,
		Server:  c.Server,
	})
}
