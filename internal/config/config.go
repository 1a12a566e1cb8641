// Package config loads the roulette server configuration from HCL.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/gameid"
)

// Config represents the complete server configuration
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Pacing *PacingSettings `hcl:"pacing,block"`
	Lobby  *LobbySettings  `hcl:"lobby,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	Seed     *int64 `hcl:"seed,optional"`
}

// PacingSettings controls the pauses between delivered events
type PacingSettings struct {
	Enabled *bool `hcl:"enabled,optional"`
	ItemMs  int   `hcl:"item_ms,optional"`
	ShotMs  int   `hcl:"shot_ms,optional"`
}

// LobbySettings controls waiting rooms
type LobbySettings struct {
	MaxPlayers int `hcl:"max_players,optional"`
	CodeLength int `hcl:"code_length,optional"`
}

// Default returns the default configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Pacing == nil {
		c.Pacing = &PacingSettings{}
	}
	if c.Pacing.Enabled == nil {
		enabled := true
		c.Pacing.Enabled = &enabled
	}
	if c.Pacing.ItemMs == 0 {
		c.Pacing.ItemMs = int(game.ItemDelay / time.Millisecond)
	}
	if c.Pacing.ShotMs == 0 {
		c.Pacing.ShotMs = int(game.ShotDelay / time.Millisecond)
	}

	if c.Lobby == nil {
		c.Lobby = &LobbySettings{}
	}
	if c.Lobby.MaxPlayers == 0 {
		c.Lobby.MaxPlayers = game.MaxMeleePlayers
	}
	if c.Lobby.CodeLength == 0 {
		c.Lobby.CodeLength = gameid.DefaultLength
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	if c.Pacing.ItemMs < 0 || c.Pacing.ShotMs < 0 {
		return fmt.Errorf("pacing delays must not be negative")
	}
	if c.Lobby.MaxPlayers < game.MinMeleePlayers || c.Lobby.MaxPlayers > game.MaxMeleePlayers {
		return fmt.Errorf("lobby max players must be between %d and %d", game.MinMeleePlayers, game.MaxMeleePlayers)
	}
	if c.Lobby.CodeLength < 4 || c.Lobby.CodeLength > 12 {
		return fmt.Errorf("lobby code length must be between 4 and 12")
	}
	return nil
}

// Address returns the full listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// LogLevel returns the parsed log level, defaulting to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ItemDelay is the pause before an item or restraint event.
func (c *Config) ItemDelay() time.Duration {
	return time.Duration(c.Pacing.ItemMs) * time.Millisecond
}

// ShotDelay is the pause before a shot outcome.
func (c *Config) ShotDelay() time.Duration {
	return time.Duration(c.Pacing.ShotMs) * time.Millisecond
}

// PacingEnabled reports whether events are delivered with pauses.
func (c *Config) PacingEnabled() bool {
	return c.Pacing.Enabled != nil && *c.Pacing.Enabled
}
