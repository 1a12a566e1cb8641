package server

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/lox/roulette/internal/game"
)

// PacingConfig sets the pauses inserted before events reach players.
type PacingConfig struct {
	Enabled   bool
	ItemDelay time.Duration
	ShotDelay time.Duration
}

// Pacer spaces out event delivery so that shots and item effects land one
// at a time. The engine only tags each event with a delay class; the pacer
// turns that into wall-clock time.
type Pacer struct {
	clock quartz.Clock
	cfg   PacingConfig
}

// NewPacer creates a pacer on clock. A nil clock uses the real one.
func NewPacer(clock quartz.Clock, cfg PacingConfig) *Pacer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Pacer{clock: clock, cfg: cfg}
}

// DelayFor maps an event's delay class onto the configured pause.
func (p *Pacer) DelayFor(e game.Event) time.Duration {
	if !p.cfg.Enabled {
		return 0
	}
	switch e.Delay {
	case 0:
		return 0
	case game.ItemDelay:
		return p.cfg.ItemDelay
	case game.ShotDelay:
		return p.cfg.ShotDelay
	default:
		return e.Delay
	}
}

// Wait blocks for the event's pause or until ctx is done.
func (p *Pacer) Wait(ctx context.Context, e game.Event) error {
	d := p.DelayFor(e)
	if d <= 0 {
		return nil
	}

	fired := make(chan struct{})
	timer := p.clock.AfterFunc(d, func() {
		close(fired)
	}, "pacer")
	defer timer.Stop()

	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
