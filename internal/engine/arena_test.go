package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

func TestNewArena_BuildsOneStatePerMarketInStableOrder(t *testing.T) {
	markets := map[string]types.Market{
		"BBBUSDT": {Symbol: "BBBUSDT", PriceStep: 0.01, QtyStep: 0.001, CMult: 1},
		"AAAUSDT": {Symbol: "AAAUSDT", PriceStep: 0.01, QtyStep: 0.001, CMult: 1},
	}
	a := NewArena(markets, testConfig())

	assert.Equal(t, []string{"AAAUSDT", "BBBUSDT"}, a.Symbols())
	assert.NotNil(t, a.Get("AAAUSDT"))
	assert.Nil(t, a.Get("ZZZUSDT"))
}

func TestSymbolState_PositionAndEMATrackerBySide(t *testing.T) {
	markets := map[string]types.Market{"AAAUSDT": {Symbol: "AAAUSDT", PriceStep: 0.01, QtyStep: 0.001, CMult: 1}}
	a := NewArena(markets, testConfig())
	st := a.Get("AAAUSDT")

	st.Position(types.Long).Size = 5
	assert.Equal(t, 5.0, st.Long.Size)
	assert.Same(t, st.LongEMA, st.EMATracker(types.Long))
	assert.Same(t, st.ShortEMA, st.EMATracker(types.Short))
}
