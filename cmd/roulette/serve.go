package main

import (
	"fmt"
	"os"

	"github.com/lox/roulette/internal/config"
	"github.com/lox/roulette/internal/lobby"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/server"
)

// ServeCmd runs the WebSocket server
type ServeCmd struct {
	Config   string `short:"c" default:"roulette.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for sessions (overrides config)"`
	NoPacing bool   `help:"Deliver events without pauses"`
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Apply command line overrides
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Seed != nil {
		cfg.Server.Seed = c.Seed
	}
	if c.NoPacing {
		disabled := false
		cfg.Pacing.Enabled = &disabled
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	addr := cfg.Address()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger := setupLogger(os.Stderr, cfg.LogLevel())
	ctx := setupSignalHandler(logger)

	seed := randutil.Seed(cfg.Server.Seed)
	logger.Info("Starting roulette server",
		"addr", addr,
		"seed", seed,
		"pacing", cfg.PacingEnabled(),
		"maxPlayers", cfg.Lobby.MaxPlayers,
		"config", c.Config)

	srv := server.NewServer(server.Options{
		Lobby: lobby.Config{
			MaxPlayers: cfg.Lobby.MaxPlayers,
			CodeLength: cfg.Lobby.CodeLength,
		},
		Pacing: server.PacingConfig{
			Enabled:   cfg.PacingEnabled(),
			ItemDelay: cfg.ItemDelay(),
			ShotDelay: cfg.ShotDelay(),
		},
		Seed: &seed,
	}, logger)

	return srv.Start(ctx, addr)
}
