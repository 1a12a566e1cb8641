package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/protocol"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/simulator"
	"github.com/lox/roulette/internal/statistics"
)

// BotConfig configures a network autopilot.
type BotConfig struct {
	Strategy string
	Games    int
	Seed     int64
}

// PlayDuels plays cfg.Games duels against the dealer over an already
// welcomed connection and returns the aggregated results.
func PlayDuels(ctx context.Context, c *Client, cfg BotConfig) (*statistics.Statistics, error) {
	self := c.ParticipantID()
	if self == "" {
		return nil, errors.New("hello must be sent before playing")
	}
	if _, err := simulator.NewAutopilot(cfg.Strategy, self, nil); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for i := 0; i < cfg.Games; i++ {
		pilot, _ := simulator.NewAutopilot(cfg.Strategy, self, randutil.New(randutil.Derive(cfg.Seed, i)))
		result, err := playDuel(ctx, c, self, pilot)
		if err != nil {
			return stats, fmt.Errorf("duel %d: %w", i+1, err)
		}
		stats.Add(result)
		c.logger.Info("Duel finished", "duel", i+1, "outcome", result.Outcome, "rounds", result.Rounds)
	}
	return stats, nil
}

func playDuel(ctx context.Context, c *Client, self string, pilot simulator.Autopilot) (statistics.DuelResult, error) {
	result := statistics.DuelResult{ItemsUsed: make(map[game.Item]int)}
	if err := c.Send(protocol.TypePlayDealer, nil); err != nil {
		return result, err
	}

	lives := 0
	for {
		msg, err := c.Next(ctx)
		if err != nil {
			return result, err
		}

		switch msg.Type {
		case protocol.TypeError:
			return result, ServerError(msg)

		case protocol.TypeState:
			var state protocol.State
			if err := msg.Decode(&state); err != nil {
				return result, err
			}
			if me, ok := state.View.Participant(self); ok {
				lives = me.Lives
			}
			if state.View.Active && state.View.Turn == self {
				action := pilot.Next(state.View)
				err := c.Send(protocol.TypeAction, protocol.Action{
					Kind:   action.Kind,
					Item:   action.Item,
					Target: action.Target,
				})
				if err != nil {
					return result, err
				}
			}

		case protocol.TypeEvent:
			var e protocol.Event
			if err := msg.Decode(&e); err != nil {
				return result, err
			}
			pilot.Observe([]game.Event{e.Event})

			switch e.Type {
			case game.EventShot:
				result.Shots++
				if e.Actor == e.Target {
					result.SelfShots++
				}
			case game.EventItemUsed, game.EventItemNoop:
				result.ItemsUsed[e.Item]++
			case game.EventDamage:
				if e.Target == self {
					lives = e.Lives
				}
			case game.EventTurn:
				if e.Actor == self {
					if err := c.Send(protocol.TypeGetState, nil); err != nil {
						return result, err
					}
				}
			case game.EventGameOver:
				result.Rounds = e.Round
				switch {
				case e.Winner == self:
					result.Outcome = statistics.Win
					result.LivesLeft = lives
				case e.Winner == "":
					result.Outcome = statistics.MutualLoss
				default:
					result.Outcome = statistics.Loss
				}
				return result, nil
			}
		}
	}
}
