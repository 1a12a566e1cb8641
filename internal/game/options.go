package game

import (
	"io"

	"github.com/charmbracelet/log"
)

// SessionOption configures a Session during creation.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	id         string
	logger     *log.Logger
	chamber    *Chamber
	items      map[string][]Item
	dealerName string
}

// WithID sets the session id used in logs and views.
func WithID(id string) SessionOption {
	return func(c *sessionConfig) {
		c.id = id
	}
}

// WithLogger sets the logger. Default discards all output.
func WithLogger(logger *log.Logger) SessionOption {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithChamber loads a specific chamber for round 1 instead of generating one.
// Later rounds are always generated.
func WithChamber(chamber *Chamber) SessionOption {
	return func(c *sessionConfig) {
		c.chamber = chamber
	}
}

// WithItems replaces the initial draw for one participant. Use DealerID to
// script the dealer's inventory.
func WithItems(participantID string, items ...Item) SessionOption {
	return func(c *sessionConfig) {
		if c.items == nil {
			c.items = make(map[string][]Item)
		}
		c.items[participantID] = items
	}
}

// WithDealerName sets the dealer's display name in duel mode.
func WithDealerName(name string) SessionOption {
	return func(c *sessionConfig) {
		c.dealerName = name
	}
}

func newSessionConfig(opts []SessionOption) *sessionConfig {
	cfg := &sessionConfig{
		dealerName: "Dealer",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	return cfg
}
