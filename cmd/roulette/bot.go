package main

import (
	"context"
	"os"
	"time"

	"github.com/lox/roulette/internal/client"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/server"
	"github.com/lox/roulette/internal/simulator"
)

// BotCmd connects an autopilot to a running server and plays the dealer
type BotCmd struct {
	Server   string        `default:"http://localhost:8080" help:"Server URL"`
	Name     string        `default:"Autopilot" help:"Display name"`
	Strategy string        `default:"careful" enum:"aggressive,careful,random" help:"Autopilot strategy: aggressive, careful, random"`
	Games    int           `default:"10" help:"Number of duels to play"`
	Seed     *int64        `help:"RNG seed for the autopilot (optional)"`
	Wait     time.Duration `default:"10s" help:"How long to wait for the server to become healthy"`
	Debug    bool          `help:"Enable debug logging"`
}

func (c *BotCmd) Run() error {
	logger := setupLogger(os.Stderr, levelFor(c.Debug))
	ctx := setupSignalHandler(logger)

	waitCtx, cancel := context.WithTimeout(ctx, c.Wait)
	defer cancel()
	if err := server.WaitForHealthy(waitCtx, c.Server); err != nil {
		return err
	}

	bot := client.NewClient(c.Server, logger)
	if err := bot.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = bot.Disconnect() }()

	if err := bot.Hello(ctx, c.Name); err != nil {
		return err
	}

	stats, err := client.PlayDuels(ctx, bot, client.BotConfig{
		Strategy: c.Strategy,
		Games:    c.Games,
		Seed:     randutil.Seed(c.Seed),
	})
	if stats != nil && stats.Games > 0 {
		simulator.PrintSummary(os.Stdout, stats, c.Strategy)
	}
	return err
}
