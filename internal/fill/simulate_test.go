package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

func market() types.Market {
	return types.Market{Symbol: "AAAUSDT", PriceStep: 0.01, QtyStep: 0.001, MinQty: 0.001, MinCost: 5, CMult: 1}
}

func TestApply_EntryFillsWithinRangeAndMergesPosition(t *testing.T) {
	c := types.Candle{Symbol: "AAAUSDT", TsMinute: 1, Open: 100, High: 101, Low: 99, Close: 100.5}
	orders := []types.Order{
		{Symbol: "AAAUSDT", Side: types.Long, Kind: types.EntryInitialNormalLong, Price: 99.5, Qty: 1},
	}
	positions := map[types.Side]*types.Position{}
	wallet := &types.Wallet{Balance: 1000}

	events := Apply(c, orders, positions, market(), wallet, 0.0006, 100, 0)

	assert.Len(t, events, 1)
	assert.Equal(t, 99.5, positions[types.Long].Price)
	assert.Equal(t, 1.0, positions[types.Long].Size)
	assert.Less(t, wallet.Balance, 1000.0) // fee deducted
}

func TestApply_OrderOutsideRangeDoesNotFill(t *testing.T) {
	c := types.Candle{Symbol: "AAAUSDT", TsMinute: 1, Open: 100, High: 101, Low: 99, Close: 100.5}
	orders := []types.Order{
		{Symbol: "AAAUSDT", Side: types.Long, Kind: types.EntryGridNormalLong, Price: 90, Qty: 1},
	}
	positions := map[types.Side]*types.Position{}
	wallet := &types.Wallet{Balance: 1000}

	events := Apply(c, orders, positions, market(), wallet, 0.0006, 100, 0)

	assert.Empty(t, events)
	assert.Equal(t, 1000.0, wallet.Balance)
}

func TestApply_MarketOrderAlwaysFillsAtOpen(t *testing.T) {
	c := types.Candle{Symbol: "AAAUSDT", TsMinute: 1, Open: 100, High: 105, Low: 95, Close: 102}
	positions := map[types.Side]*types.Position{
		types.Long: {Size: 2, Price: 90},
	}
	orders := []types.Order{
		{Symbol: "AAAUSDT", Side: types.Long, Kind: types.CloseAutoReduceLong, Price: 200, Qty: 1},
	}
	wallet := &types.Wallet{Balance: 1000}

	events := Apply(c, orders, positions, market(), wallet, 0.0006, 100, 0)

	assert.Len(t, events, 1)
	assert.Equal(t, 100.0, events[0].Price) // executed at open, not the stale limit price
}

func TestApply_PriorityOrdersAutoReduceBeforeUnstuckBeforeCloseBeforeEntry(t *testing.T) {
	c := types.Candle{Symbol: "AAAUSDT", TsMinute: 1, Open: 100, High: 110, Low: 90, Close: 100}
	positions := map[types.Side]*types.Position{
		types.Long: {Size: 10, Price: 95},
	}
	orders := []types.Order{
		{Symbol: "AAAUSDT", Side: types.Long, Kind: types.EntryGridNormalLong, Price: 95, Qty: 1},
		{Symbol: "AAAUSDT", Side: types.Long, Kind: types.CloseGridNormalLong, Price: 105, Qty: 1},
		{Symbol: "AAAUSDT", Side: types.Long, Kind: types.CloseUnstuckLong, Price: 102, Qty: 1},
		{Symbol: "AAAUSDT", Side: types.Long, Kind: types.CloseAutoReduceLong, Price: 999, Qty: 1},
	}
	wallet := &types.Wallet{Balance: 1000}

	events := Apply(c, orders, positions, market(), wallet, 0.0006, 100, 0)

	assert.Len(t, events, 4)
	assert.Equal(t, types.CloseAutoReduceLong, events[0].Kind)
	assert.Equal(t, types.CloseUnstuckLong, events[1].Kind)
	assert.Equal(t, types.CloseGridNormalLong, events[2].Kind)
	assert.Equal(t, types.EntryGridNormalLong, events[3].Kind)
}

func TestApply_CloseRealizesPnLAndClearsPositionWhenFullyClosed(t *testing.T) {
	c := types.Candle{Symbol: "AAAUSDT", TsMinute: 1, Open: 100, High: 110, Low: 99, Close: 105}
	positions := map[types.Side]*types.Position{
		types.Long: {Size: 1, Price: 90},
	}
	orders := []types.Order{
		{Symbol: "AAAUSDT", Side: types.Long, Kind: types.CloseGridNormalLong, Price: 105, Qty: 1},
	}
	wallet := &types.Wallet{Balance: 1000}

	events := Apply(c, orders, positions, market(), wallet, 0.0006, 100, 0)

	assert.Len(t, events, 1)
	assert.InDelta(t, 15.0, events[0].RealizedPnL, 1e-9)
	assert.Equal(t, 0.0, positions[types.Long].Size)
	assert.Equal(t, 0.0, positions[types.Long].Price)
}
