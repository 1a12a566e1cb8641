package simulator

import (
	"github.com/lox/roulette/internal/fileutil"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/statistics"
)

// Report is the machine-readable summary written by `simulate --out`.
type Report struct {
	Strategy     string         `json:"strategy"`
	Seed         int64          `json:"seed"`
	Games        int            `json:"games"`
	Wins         int            `json:"wins"`
	Losses       int            `json:"losses"`
	MutualLosses int            `json:"mutualLosses"`
	WinRate      float64        `json:"winRate"`
	WinRateLow   float64        `json:"winRateLow"`
	WinRateHigh  float64        `json:"winRateHigh"`
	MeanRounds   float64        `json:"meanRounds"`
	MaxRounds    int            `json:"maxRounds"`
	Shots        int            `json:"shots"`
	SelfShots    int            `json:"selfShots"`
	ItemsUsed    map[string]int `json:"itemsUsed"`
}

// NewReport summarises stats for strategy and seed.
func NewReport(stats *statistics.Statistics, strategy string, seed int64) Report {
	low, high := stats.WinRateInterval95()
	r := Report{
		Strategy:     strategy,
		Seed:         seed,
		Games:        stats.Games,
		Wins:         stats.Wins,
		Losses:       stats.Losses,
		MutualLosses: stats.MutualLosses,
		WinRate:      stats.WinRate(),
		WinRateLow:   low,
		WinRateHigh:  high,
		MeanRounds:   stats.Mean(),
		MaxRounds:    stats.MaxRounds,
		Shots:        stats.Shots,
		SelfShots:    stats.SelfShots,
		ItemsUsed:    make(map[string]int),
	}
	for _, item := range game.Catalog {
		if n := stats.ItemsUsed[item]; n > 0 {
			r.ItemsUsed[item.String()] = n
		}
	}
	return r
}

// WriteReport writes r to path as JSON.
func WriteReport(path string, r Report) error {
	return fileutil.WriteJSON(path, r)
}
