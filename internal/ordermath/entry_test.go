package ordermath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// S1: Initial entry pricing.
func TestInitialEntry_S1(t *testing.T) {
	priceStep := 0.01
	qtyStep := 0.001
	bid := 101.0
	lowerBand := 100.0
	emaDist := -0.01
	balance := 1000.0
	wel := 2.0 // TWEL=2.0, n_positions=1 => WEL == TWEL
	qtyPct := 0.15

	price := InitialEntryPriceLong(bid, lowerBand, emaDist, priceStep)
	assert.InDelta(t, RoundDown(101, priceStep), price, 1e-9)

	qty := InitialEntryQty(balance, wel, qtyPct, price, qtyStep, 0, 0)
	expectedQty := RoundQty(balance*wel*qtyPct/price, qtyStep)
	assert.InDelta(t, expectedQty, qty, 1e-9)
}

// S2: Grid spacing with exposure weight.
func TestGridSpacing_S2(t *testing.T) {
	we := 0.5 * 1.0 // WE = 0.5*WEL, WEL normalized to 1 here
	wel := 1.0
	mult := GridSpacingMult(we, wel, 0, 1.0, 0)
	assert.InDelta(t, 1.5, mult, 1e-9)

	pprice := 100.0
	spacingPct := 0.02
	price := GridReentryPriceLong(1e9, pprice, spacingPct, mult, 0.01)
	assert.InDelta(t, RoundDown(97, 0.01), price, 1e-9)
}

// S4: Trailing entry with th>0, rt>0.
func TestTrailingEntry_S4(t *testing.T) {
	pprice := 100.0
	th, rt := 0.02, 0.01
	trailing := TrailingExtrema{MinSinceOpen: 97, MaxSinceMin: 98.5}
	triggered, price, isMarket := TrailingEntryTriggerLong(99, pprice, th, rt, trailing, 0.01)
	assert.True(t, triggered)
	assert.False(t, isMarket)
	assert.InDelta(t, 99.0, price, 1e-9)
}

func TestTrailingEntry_S4_NoTriggerBeforeRetracement(t *testing.T) {
	pprice := 100.0
	th, rt := 0.02, 0.01
	// min_since_open dropped below threshold but no retracement yet.
	trailing := TrailingExtrema{MinSinceOpen: 97, MaxSinceMin: 97.5}
	triggered, _, _ := TrailingEntryTriggerLong(99, pprice, th, rt, trailing, 0.01)
	assert.False(t, triggered)
}

func TestBlending_GridOnly(t *testing.T) {
	assert.Equal(t, BlendGrid, ActiveBlendMode(0, 0.9))
}

func TestBlending_TrailingOnly(t *testing.T) {
	assert.Equal(t, BlendTrailing, ActiveBlendMode(1, 0.01))
	assert.Equal(t, BlendTrailing, ActiveBlendMode(-1, 0.01))
}

func TestBlending_TrailingFirstThenGrid(t *testing.T) {
	assert.Equal(t, BlendTrailing, ActiveBlendMode(0.5, 0.2))
	assert.Equal(t, BlendGrid, ActiveBlendMode(0.5, 0.6))
}

func TestBlending_GridFirstThenTrailing(t *testing.T) {
	assert.Equal(t, BlendGrid, ActiveBlendMode(-0.5, 0.2))
	assert.Equal(t, BlendTrailing, ActiveBlendMode(-0.5, 0.6))
}

func TestCropToExposureLimit(t *testing.T) {
	q, cropped := CropToExposureLimit(10, 1, 100, 100, 1, 1.0, 1000)
	// currentNotional=100, maxNotional=1000, remaining=900, maxQty=9
	assert.True(t, cropped)
	assert.InDelta(t, 9, q, 1e-9)
}

func TestCropToExposureLimit_NoCropNeeded(t *testing.T) {
	q, cropped := CropToExposureLimit(1, 1, 100, 100, 1, 10.0, 1000)
	assert.False(t, cropped)
	assert.InDelta(t, 1, q, 1e-9)
}
