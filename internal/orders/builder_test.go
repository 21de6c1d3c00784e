package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantgrid/gridtrail-engine/pkg/config"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

func baseInput() Input {
	return Input{
		Symbol: "AAAUSDT",
		Side:   types.Long,
		Cfg: config.SideConfig{
			EntryInitialQtyPct:     0.01,
			EntryInitialEMADist:    0.002,
			EntryGridSpacingPct:    0.03,
			EntryGridDoubleDownFactor: 1.5,
			CloseGridMarkupStart:   0.01,
			CloseGridMarkupEnd:     0.02,
			CloseGridQtyPct:        1.0,
			ForcedMode:             config.ModeNormal,
			EnforceExposureLimit:   true,
		},
		Market:    types.Market{Symbol: "AAAUSDT", PriceStep: 0.01, QtyStep: 0.001, MinQty: 0.001, MinCost: 5, CMult: 1},
		Balance:   1000,
		WEL:       1.0,
		UpperBand: 105,
		LowerBand: 95,
		Bid:       100,
		Ask:       100.1,
		Eligible:  true,
	}
}

func TestBuild_NoOpenPositionProducesInitialEntryOnly(t *testing.T) {
	in := baseInput()
	res := Build(in)

	assert.NotNil(t, res.Entry)
	assert.Equal(t, types.EntryInitialNormalLong, res.Entry.Kind)
	assert.Empty(t, res.Closes)
}

func TestBuild_OpenPositionProducesGridEntryAndSingleCloseOrder(t *testing.T) {
	in := baseInput()
	in.Position = types.Position{Size: 1, Price: 95}

	res := Build(in)

	assert.NotNil(t, res.Entry)
	assert.Contains(t, []types.OrderKind{types.EntryGridNormalLong, types.EntryGridCroppedLong, types.EntryGridInflatedLong}, res.Entry.Kind)
	assert.Len(t, res.Closes, 1)
	assert.Equal(t, types.CloseGridPartialLong, res.Closes[0].Kind)
}

func TestBuild_ManualModeProducesNothing(t *testing.T) {
	in := baseInput()
	in.Position = types.Position{Size: 1, Price: 95}
	in.Cfg.ForcedMode = config.ModeManual

	res := Build(in)

	assert.Nil(t, res.Entry)
	assert.Empty(t, res.Closes)
}

func TestBuild_PanicModeClosesEntirePositionAtMarket(t *testing.T) {
	in := baseInput()
	in.Position = types.Position{Size: 2, Price: 95}
	in.Cfg.ForcedMode = config.ModePanic

	res := Build(in)

	assert.Nil(t, res.Entry)
	assert.Len(t, res.Closes, 1)
	assert.Equal(t, types.ClosePanicLong, res.Closes[0].Kind)
	assert.Equal(t, 2.0, res.Closes[0].Qty)
}

func TestBuild_GracefulStopSuppressesEntryButKeepsCloses(t *testing.T) {
	in := baseInput()
	in.Position = types.Position{Size: 1, Price: 95}
	in.Cfg.ForcedMode = config.ModeGracefulStop

	res := Build(in)

	assert.Nil(t, res.Entry)
	assert.Len(t, res.Closes, 1)
}

func TestBuild_IneligibleSymbolSuppressesEntryOnOpenPosition(t *testing.T) {
	in := baseInput()
	in.Position = types.Position{Size: 1, Price: 95}
	in.Eligible = false

	res := Build(in)

	assert.Nil(t, res.Entry)
	assert.Len(t, res.Closes, 1) // still manages the existing position's close
}

func TestBuild_UnstuckSelectedAddsUnstuckCloseOrder(t *testing.T) {
	in := baseInput()
	in.Position = types.Position{Size: 1, Price: 95}
	in.UnstuckSelected = true
	in.UnstuckAllowance = 100

	res := Build(in)

	found := false
	for _, c := range res.Closes {
		if c.Kind == types.CloseUnstuckLong {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuild_AutoReduceFiresWhenOverExposureLimit(t *testing.T) {
	in := baseInput()
	in.Position = types.Position{Size: 100, Price: 95} // deeply over WEL
	in.WEL = 0.01

	res := Build(in)

	found := false
	for _, c := range res.Closes {
		if c.Kind == types.CloseAutoReduceLong {
			found = true
		}
	}
	assert.True(t, found)
}
