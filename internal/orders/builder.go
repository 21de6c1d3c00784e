// Package orders builds the per-(symbol, side) order set each minute,
// spec.md §2 component 6: one next entry order plus the active close-order
// set, selecting between the grid and trailing mechanisms per the
// blending ratio and folding in auto-reduce, unstuck, and forced-mode
// overrides.
package orders

import (
	"github.com/quantgrid/gridtrail-engine/internal/ordermath"
	"github.com/quantgrid/gridtrail-engine/pkg/config"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

// Input is everything the builder needs for one (symbol, side, minute).
type Input struct {
	Symbol string
	Side   types.Side
	Cfg    config.SideConfig
	Market types.Market

	Position types.Position
	Balance  float64
	WEL      float64

	UpperBand   float64
	LowerBand   float64
	LogRangeEMA float64

	Bid, Ask float64

	// Eligible is false when the forager dropped this symbol from the
	// active set this minute: no new entries, existing position still
	// manages its closes (spec.md §4.3).
	Eligible bool

	// UnstuckSelected is true when the portfolio-wide unstuck scheduler
	// (internal/unstuck) picked this (symbol, side) as the one position
	// to force-close this minute (spec.md §4.2: "only one unstuck order
	// fires per minute").
	UnstuckSelected  bool
	UnstuckAllowance float64
}

// Result is the order set for one (symbol, side, minute): at most one
// entry order, plus zero or more close orders (grid ladder, trailing,
// auto-reduce, unstuck).
type Result struct {
	Entry  *types.Order
	Closes []types.Order
}

// Build assembles the next order set for one position, following spec.md
// §4.2 end to end: forced-mode override first, then auto-reduce, unstuck,
// close (grid/trailing blend), and entry (grid/trailing blend).
func Build(in Input) Result {
	long := in.Side == types.Long

	switch in.Cfg.ForcedMode {
	case config.ModeManual:
		return Result{}
	case config.ModePanic:
		return Result{Closes: panicClose(in, long)}
	}

	we := ordermath.WalletExposure(in.Position.Size, in.Position.Price, in.Market.CMult, in.Balance)

	var closes []types.Order
	if in.Position.IsOpen() {
		closes = buildCloses(in, we, long)
	}

	var entry *types.Order
	if in.Eligible && in.Cfg.ForcedMode == config.ModeNormal {
		entry = buildEntry(in, we, long)
	}

	return Result{Entry: entry, Closes: closes}
}

func panicClose(in Input, long bool) []types.Order {
	if !in.Position.IsOpen() {
		return nil
	}
	kind := types.ClosePanicLong
	if !long {
		kind = types.ClosePanicShort
	}
	price := in.Bid
	if !long {
		price = in.Ask
	}
	return []types.Order{{
		Symbol: in.Symbol, Side: in.Side, Kind: kind,
		Price: price, Qty: in.Position.Size,
	}}
}

func buildCloses(in Input, we float64, long bool) []types.Order {
	var out []types.Order
	cfg := in.Cfg
	pos := in.Position

	if reduceQty := ordermath.AutoReduceQty(pos.Size, we, in.WEL, cfg.EnforceExposureLimit); reduceQty > 0 {
		kind := types.CloseAutoReduceLong
		price := in.Bid
		if !long {
			kind = types.CloseAutoReduceShort
			price = in.Ask
		}
		out = append(out, types.Order{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: price, Qty: ordermath.RoundQty(reduceQty, in.Market.QtyStep)})
	}

	if in.UnstuckSelected {
		out = append(out, buildUnstuckClose(in, long))
	}

	if cfg.ForcedMode == config.ModeGracefulStop || cfg.ForcedMode == config.ModeTakeProfit || cfg.ForcedMode == config.ModeNormal {
		out = append(out, buildCloseGridOrTrailing(in, we, long)...)
	}

	return out
}

func buildUnstuckClose(in Input, long bool) types.Order {
	cfg := in.Cfg
	pos := in.Position
	fullPsize := ordermath.FullPsize(in.Balance, in.WEL, pos.Price, in.Market.CMult)

	kind := types.CloseUnstuckLong
	var price float64
	if long {
		price = ordermath.UnstuckClosePriceLong(in.UpperBand, cfg.UnstuckEMADist, in.Market.PriceStep)
	} else {
		kind = types.CloseUnstuckShort
		price = ordermath.UnstuckClosePriceShort(in.LowerBand, cfg.UnstuckEMADist, in.Market.PriceStep)
	}
	qty := ordermath.UnstuckCloseQty(fullPsize, cfg.UnstuckClosePct, in.Market.QtyStep, price, pos.Price, in.Market.CMult, in.UnstuckAllowance, long)
	return types.Order{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: price, Qty: qty}
}

func buildCloseGridOrTrailing(in Input, we float64, long bool) []types.Order {
	cfg := in.Cfg
	pos := in.Position
	mode := ordermath.ActiveBlendMode(cfg.CloseTrailingGridRatio, weOverWEL(we, in.WEL))

	if mode == ordermath.BlendTrailing {
		extrema := ordermath.TrailingExtrema{
			MaxSinceOpen: pos.Trailing.MaxSinceOpen, MinSinceOpen: pos.Trailing.MinSinceOpen,
			MaxSinceMin: pos.Trailing.MaxSinceMin, MinSinceMax: pos.Trailing.MinSinceMax,
		}
		var triggered, isMarket bool
		var price float64
		if long {
			triggered, price, isMarket = ordermath.TrailingCloseTriggerLong(in.Ask, pos.Price, cfg.CloseTrailingThresholdPct, cfg.CloseTrailingRetracementPct, extrema, in.Market.PriceStep)
		} else {
			triggered, price, isMarket = ordermath.TrailingCloseTriggerShort(in.Bid, pos.Price, cfg.CloseTrailingThresholdPct, cfg.CloseTrailingRetracementPct, extrema, in.Market.PriceStep)
		}
		if !triggered {
			return nil
		}
		kind := types.CloseTrailingNormalLong
		if !long {
			kind = types.CloseTrailingNormalShort
		}
		return []types.Order{{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: price, Qty: pos.Size, Market: isMarket}}
	}

	fullPsize := ordermath.FullPsize(in.Balance, in.WEL, pos.Price, in.Market.CMult)
	leftover := ordermath.Leftover(pos.Size, fullPsize)

	if cfg.CloseGridQtyPct >= 1 {
		levels := ordermath.GridCloseLevels(pos.Price, cfg.CloseGridMarkupStart, cfg.CloseGridMarkupEnd, 1, in.Market.PriceStep, long)
		kind := types.CloseGridPartialLong
		if !long {
			kind = types.CloseGridPartialShort
		}
		return []types.Order{{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: levels[0], Qty: pos.Size}}
	}

	n := ordermath.GridCloseLevelCount(cfg.CloseGridQtyPct)
	levels := ordermath.GridCloseLevels(pos.Price, cfg.CloseGridMarkupStart, cfg.CloseGridMarkupEnd, n, in.Market.PriceStep, long)
	idx := ordermath.ActiveGridCloseLevel(we, in.WEL, n)
	if idx >= len(levels) {
		idx = len(levels) - 1
	}
	qty := ordermath.GridCloseQty(pos.Size, fullPsize, leftover, cfg.CloseGridQtyPct, in.Market.QtyStep, in.Market.MinQty)
	kind := types.CloseGridNormalLong
	if !long {
		kind = types.CloseGridNormalShort
	}
	return []types.Order{{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: levels[idx], Qty: qty}}
}

func buildEntry(in Input, we float64, long bool) *types.Order {
	cfg := in.Cfg
	mode := ordermath.ActiveBlendMode(cfg.EntryTrailingGridRatio, weOverWEL(we, in.WEL))

	// buildInitialEntry covers both "no position" and the spec's tiny
	// residual case (size < 0.8*q with a position already open); it
	// returns nil itself once the position has grown past that floor.
	if entry := buildInitialEntry(in, long); entry != nil {
		return entry
	}

	if mode == ordermath.BlendTrailing {
		return buildTrailingEntry(in, long)
	}
	return buildGridEntry(in, we, long)
}

func buildInitialEntry(in Input, long bool) *types.Order {
	cfg := in.Cfg
	var price float64
	if long {
		price = ordermath.InitialEntryPriceLong(in.Bid, in.LowerBand, cfg.EntryInitialEMADist, in.Market.PriceStep)
	} else {
		price = ordermath.InitialEntryPriceShort(in.Ask, in.UpperBand, cfg.EntryInitialEMADist, in.Market.PriceStep)
	}
	qty := ordermath.InitialEntryQty(in.Balance, in.WEL, cfg.EntryInitialQtyPct, price, in.Market.QtyStep, cfg.EntryMinQty, in.Market.MinCost)
	if !ordermath.ShouldPlaceInitial(in.Position.Size, qty) {
		return nil
	}
	normalKind, partialKind := types.EntryInitialNormalLong, types.EntryInitialPartialLong
	if !long {
		normalKind, partialKind = types.EntryInitialNormalShort, types.EntryInitialPartialShort
	}
	kind := normalKind
	if in.Position.Size > 0 {
		kind = partialKind
	}
	return &types.Order{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: price, Qty: qty}
}

func buildGridEntry(in Input, we float64, long bool) *types.Order {
	cfg := in.Cfg
	pos := in.Position

	hourlyLogRange := in.LogRangeEMA
	mult := ordermath.GridSpacingMult(we, in.WEL, hourlyLogRange, cfg.EntryGridSpacingWeWeight, cfg.EntryGridSpacingLogWeight)

	var price float64
	if long {
		price = ordermath.GridReentryPriceLong(in.Bid, pos.Price, cfg.EntryGridSpacingPct, mult, in.Market.PriceStep)
	} else {
		price = ordermath.GridReentryPriceShort(in.Ask, pos.Price, cfg.EntryGridSpacingPct, mult, in.Market.PriceStep)
	}

	qty := ordermath.GridReentryQty(pos.Size, cfg.EntryGridDoubleDownFactor, in.Balance, in.WEL, cfg.EntryInitialQtyPct, price, in.Market.QtyStep, cfg.EntryMinQty, in.Market.MinCost)

	kind := types.EntryGridNormalLong
	if !long {
		kind = types.EntryGridNormalShort
	}

	croppedQty, cropped := ordermath.CropToExposureLimit(qty, pos.Size, pos.Price, price, in.Market.CMult, in.WEL, in.Balance)
	if cropped {
		qty = ordermath.RoundQty(croppedQty, in.Market.QtyStep)
		kind = types.EntryGridCroppedLong
		if !long {
			kind = types.EntryGridCroppedShort
		}
		if qty <= 0 {
			return nil
		}
		return &types.Order{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: price, Qty: qty}
	}

	bidOrAsk := in.Bid
	if !long {
		bidOrAsk = in.Ask
	}
	inflatedQty, inflated := ordermath.InflateIfNextStepSmall(
		qty, pos.Size, pos.Price, price,
		cfg.EntryGridDoubleDownFactor, in.Balance, in.WEL, cfg.EntryInitialQtyPct, in.Market.CMult,
		cfg.EntryGridSpacingPct, mult, in.Market.PriceStep, bidOrAsk, long,
	)
	if inflated {
		qty = ordermath.RoundQty(inflatedQty, in.Market.QtyStep)
		kind = types.EntryGridInflatedLong
		if !long {
			kind = types.EntryGridInflatedShort
		}
	}

	if qty <= 0 {
		return nil
	}
	return &types.Order{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: price, Qty: qty}
}

func buildTrailingEntry(in Input, long bool) *types.Order {
	cfg := in.Cfg
	pos := in.Position
	extrema := ordermath.TrailingExtrema{
		MaxSinceOpen: pos.Trailing.MaxSinceOpen, MinSinceOpen: pos.Trailing.MinSinceOpen,
		MaxSinceMin: pos.Trailing.MaxSinceMin, MinSinceMax: pos.Trailing.MinSinceMax,
	}

	var triggered, isMarket bool
	var price float64
	if long {
		triggered, price, isMarket = ordermath.TrailingEntryTriggerLong(in.Bid, pos.Price, cfg.EntryTrailingThresholdPct, cfg.EntryTrailingRetracementPct, extrema, in.Market.PriceStep)
	} else {
		triggered, price, isMarket = ordermath.TrailingEntryTriggerShort(in.Ask, pos.Price, cfg.EntryTrailingThresholdPct, cfg.EntryTrailingRetracementPct, extrema, in.Market.PriceStep)
	}
	if !triggered {
		return nil
	}

	qty := ordermath.GridReentryQty(pos.Size, cfg.EntryTrailingDoubleDownFactor, in.Balance, in.WEL, cfg.EntryInitialQtyPct, price, in.Market.QtyStep, cfg.EntryMinQty, in.Market.MinCost)
	if qty <= 0 {
		return nil
	}
	kind := types.EntryTrailingNormalLong
	if !long {
		kind = types.EntryTrailingNormalShort
	}
	return &types.Order{Symbol: in.Symbol, Side: in.Side, Kind: kind, Price: price, Qty: qty, Market: isMarket}
}

func weOverWEL(we, wel float64) float64 {
	if wel <= 0 {
		return 0
	}
	return we / wel
}
