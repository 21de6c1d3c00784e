package forager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectEligible_DropsBottomVolumeThenRanksByRange(t *testing.T) {
	filters := []SymbolFilter{
		{Symbol: "AAA", VolumeEMA: 1, LogRangeEMA: 0.10},
		{Symbol: "BBB", VolumeEMA: 10, LogRangeEMA: 0.05},
		{Symbol: "CCC", VolumeEMA: 20, LogRangeEMA: 0.20},
		{Symbol: "DDD", VolumeEMA: 30, LogRangeEMA: 0.01},
	}
	e := SelectEligible(filters, nil, 2, 0.25, 100)

	assert.NotContains(t, e.Symbols, "AAA") // lowest volume, dropped
	assert.Equal(t, []string{"CCC", "BBB"}, e.Symbols)
	assert.Equal(t, 2, e.EffectiveNPositions)
	assert.Equal(t, 50.0, e.WEL)
}

func TestSelectEligible_HeldSymbolStaysEvenIfNotTopRanked(t *testing.T) {
	filters := []SymbolFilter{
		{Symbol: "AAA", VolumeEMA: 10, LogRangeEMA: 0.30},
		{Symbol: "BBB", VolumeEMA: 10, LogRangeEMA: 0.20},
		{Symbol: "CCC", VolumeEMA: 10, LogRangeEMA: 0.01},
	}
	held := map[string]bool{"CCC": true}
	e := SelectEligible(filters, held, 2, 0, 90)

	assert.ElementsMatch(t, []string{"AAA", "BBB", "CCC"}, e.Symbols)
	assert.Equal(t, 3, e.EffectiveNPositions)
	assert.InDelta(t, 30.0, e.WEL, 1e-9)
	assert.True(t, e.IsEligible("CCC"))
	assert.False(t, e.IsEligible("ZZZ"))
}

func TestSelectEligible_EmptySetFloorsEffectiveNAtOne(t *testing.T) {
	e := SelectEligible(nil, nil, 5, 0.1, 100)
	assert.Empty(t, e.Symbols)
	assert.Equal(t, 1, e.EffectiveNPositions)
	assert.Equal(t, 100.0, e.WEL)
}

// TestSelectEligible_WELRedistributesAsEligibleSetShrinksAndGrows is the S6
// seed scenario: WEL must track 1/effective_n_positions exactly as the
// eligible set's size changes minute to minute, with no hysteresis beyond
// the sticky-held-symbol rule already covered above.
func TestSelectEligible_WELRedistributesAsEligibleSetShrinksAndGrows(t *testing.T) {
	filters := []SymbolFilter{
		{Symbol: "AAA", VolumeEMA: 10, LogRangeEMA: 0.30},
		{Symbol: "BBB", VolumeEMA: 10, LogRangeEMA: 0.20},
		{Symbol: "CCC", VolumeEMA: 10, LogRangeEMA: 0.10},
		{Symbol: "DDD", VolumeEMA: 10, LogRangeEMA: 0.05},
	}

	wide := SelectEligible(filters, nil, 4, 0, 80)
	assert.Equal(t, 4, wide.EffectiveNPositions)
	assert.InDelta(t, 20.0, wide.WEL, 1e-9)

	narrow := SelectEligible(filters, nil, 1, 0, 80)
	assert.Equal(t, 1, narrow.EffectiveNPositions)
	assert.InDelta(t, 80.0, narrow.WEL, 1e-9)

	backToWide := SelectEligible(filters, nil, 4, 0, 80)
	assert.Equal(t, wide.WEL, backToWide.WEL) // no hysteresis across the shrink-then-grow cycle
}
