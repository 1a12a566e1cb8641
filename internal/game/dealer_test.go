package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedCoin(v float64) func() float64 {
	return func() float64 { return v }
}

func TestDecideLadder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   DealerInput
		want Decision
	}{
		{
			name: "handcuffs when live favoured",
			in:   DealerInput{Live: 3, Blank: 1, Inventory: []Item{Handcuffs, Beer}, Lives: 5},
			want: Decision{Item: Handcuffs},
		},
		{
			name: "handcuffs need more than two shells",
			in:   DealerInput{Live: 2, Blank: 0, Inventory: []Item{Handcuffs, Beer}, Lives: 5},
			want: Decision{Item: Beer},
		},
		{
			name: "magnifier sees blank and shoots self",
			in:   DealerInput{Live: 1, Blank: 1, Inventory: []Item{Magnifier}, Front: Blank, Lives: 5},
			want: Decision{Item: Magnifier, Target: TargetKindSelf},
		},
		{
			name: "magnifier sees live and shoots opponent",
			in:   DealerInput{Live: 1, Blank: 1, Inventory: []Item{Magnifier}, Front: Live, Lives: 5},
			want: Decision{Item: Magnifier, Target: TargetOpponent},
		},
		{
			name: "knife at moderate odds",
			in:   DealerInput{Live: 2, Blank: 3, Inventory: []Item{Knife}, Lives: 5},
			want: Decision{Item: Knife, Target: TargetOpponent},
		},
		{
			name: "cigarettes when low",
			in:   DealerInput{Live: 1, Blank: 4, Inventory: []Item{Cigarettes}, Lives: 2},
			want: Decision{Item: Cigarettes},
		},
		{
			name: "cigarettes held back when healthy",
			in:   DealerInput{Live: 1, Blank: 4, Inventory: []Item{Cigarettes}, Lives: 3},
			want: Decision{Target: TargetKindSelf},
		},
		{
			name: "adrenaline when live favoured",
			in:   DealerInput{Live: 2, Blank: 1, Inventory: []Item{Adrenaline}, Lives: 5},
			want: Decision{Item: Adrenaline},
		},
		{
			name: "phone with more than two shells",
			in:   DealerInput{Live: 1, Blank: 4, Inventory: []Item{Phone}, Lives: 5},
			want: Decision{Item: Phone},
		},
		{
			name: "inverter when live favoured",
			in:   DealerInput{Live: 2, Blank: 0, Inventory: []Item{Inverter}, Lives: 5},
			want: Decision{Item: Inverter},
		},
		{
			name: "no live shells means self",
			in:   DealerInput{Live: 0, Blank: 3, Lives: 5},
			want: Decision{Target: TargetKindSelf},
		},
		{
			name: "no blanks means opponent",
			in:   DealerInput{Live: 2, Blank: 0, Lives: 5},
			want: Decision{Target: TargetOpponent},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A coin of 0.99 sends every probabilistic fallback to self.
			got, ok := Decide(tt.in, fixedCoin(0.99))
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideUndecidable(t *testing.T) {
	t.Parallel()

	_, ok := Decide(DealerInput{Live: 0, Blank: 0, Inventory: []Item{Beer}}, fixedCoin(0))
	assert.False(t, ok, "empty chamber has no decision")

	_, ok = Decide(DealerInput{Live: 3, Blank: 1, Inventory: []Item{Knife}, OpponentRestrained: true}, fixedCoin(0))
	assert.False(t, ok, "restrained opponent has no decision")
}

func TestDecideIsPure(t *testing.T) {
	t.Parallel()

	in := DealerInput{Live: 2, Blank: 2, Inventory: []Item{Cigarettes}, Lives: 5}
	for _, coin := range []float64{0, 0.25, 0.49, 0.5, 0.75, 0.99} {
		a, _ := Decide(in, fixedCoin(coin))
		b, _ := Decide(in, fixedCoin(coin))
		assert.Equal(t, a, b, "coin %.2f", coin)
	}

	calls := 0
	counting := func() float64 { calls++; return 0 }
	Decide(DealerInput{Live: 3, Blank: 1, Inventory: []Item{Handcuffs}}, counting)
	assert.Zero(t, calls, "item branches never flip the coin")
}

func TestFallbackTarget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TargetKindSelf, FallbackTarget(0, 4, fixedCoin(0)))
	assert.Equal(t, TargetOpponent, FallbackTarget(4, 0, fixedCoin(0.99)))
	// p = 0.25
	assert.Equal(t, TargetOpponent, FallbackTarget(1, 3, fixedCoin(0.2)))
	assert.Equal(t, TargetKindSelf, FallbackTarget(1, 3, fixedCoin(0.3)))
}
