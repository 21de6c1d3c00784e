package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantgrid/gridtrail-engine/pkg/config"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

func testConfig() *config.Config {
	side := config.SideConfig{
		EMASpan0: 5, EMASpan1: 10, EMAWarmupRatio: 0,
		EntryInitialQtyPct: 0.1, EntryInitialEMADist: 0.005, EntryMinQty: 0.001,
		EntryGridSpacingPct: 0.03, EntryGridSpacingWeWeight: 0.5, EntryGridDoubleDownFactor: 1.5,
		CloseGridMarkupStart: 0.01, CloseGridMarkupEnd: 0.02, CloseGridQtyPct: 1.0,
		FilterVolumeDropPct: 0, FilterVolumeSpanMin: 10, FilterLogRangeSpanMin: 10, GridSpacingHourlySpan: 24,
		NPositions: 1, TotalWalletExposureLimit: 1.0, EnforceExposureLimit: true,
		ForcedMode: config.ModeNormal,
	}
	return &config.Config{
		Long: side, Short: side,
		StartingBalance: 1000, FeeMultiplier: 1.0,
	}
}

func testMarkets() map[string]types.Market {
	return map[string]types.Market{
		"AAAUSDT": {Symbol: "AAAUSDT", PriceStep: 0.01, QtyStep: 0.001, MinQty: 0.001, MinCost: 5, CMult: 1},
	}
}

func TestDriver_StepMinute_RunsWithoutError(t *testing.T) {
	d := NewDriver(testMarkets(), testConfig(), nil, "test-run")

	price := 100.0
	for i := 0; i < 20; i++ {
		price -= 0.5
		c := types.Candle{Symbol: "AAAUSDT", TsMinute: int64(i + 1), Open: price + 0.5, High: price + 0.6, Low: price - 0.1, Close: price}
		err := d.StepMinute(map[string]types.Candle{"AAAUSDT": c})
		assert.Nil(t, err)
	}

	assert.Len(t, d.Observations, 20)
	assert.GreaterOrEqual(t, d.Wallet.Balance, types.MinBalance)
}

func TestDriver_StepMinute_InvariantSizeZeroIffPriceZero(t *testing.T) {
	d := NewDriver(testMarkets(), testConfig(), nil, "test-run-2")

	price := 100.0
	for i := 0; i < 10; i++ {
		price -= 0.3
		c := types.Candle{Symbol: "AAAUSDT", TsMinute: int64(i + 1), Open: price + 0.3, High: price + 0.4, Low: price - 0.1, Close: price}
		_ = d.StepMinute(map[string]types.Candle{"AAAUSDT": c})
	}

	st := d.Arena.Get("AAAUSDT")
	if st.Long.Size == 0 {
		assert.Equal(t, 0.0, st.Long.Price)
	} else {
		assert.NotEqual(t, 0.0, st.Long.Price)
	}
}

func TestDriver_StepMinute_RejectsMalformedCandle(t *testing.T) {
	d := NewDriver(testMarkets(), testConfig(), nil, "test-run-3")
	bad := types.Candle{Symbol: "AAAUSDT", TsMinute: 1, Open: 100, High: 90, Low: 110, Close: 95}

	err := d.StepMinute(map[string]types.Candle{"AAAUSDT": bad})

	assert.NotNil(t, err)
	assert.True(t, d.Halted)
}

func TestDriver_StepMinute_UnknownSymbolIsFatal(t *testing.T) {
	d := NewDriver(testMarkets(), testConfig(), nil, "test-run-4")
	c := types.Candle{Symbol: "ZZZUSDT", TsMinute: 1, Open: 100, High: 101, Low: 99, Close: 100}

	err := d.StepMinute(map[string]types.Candle{"ZZZUSDT": c})

	assert.NotNil(t, err)
}
