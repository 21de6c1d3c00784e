package ordermath

import "math"

// InitialEntryPriceLong is spec.md §4.2 "Initial entry (long)":
// p = min(bid, round_dn(lower_band*(1-entry_initial_ema_dist), price_step)).
func InitialEntryPriceLong(bid, lowerBand, emaDist, priceStep float64) float64 {
	return math.Min(bid, RoundDown(lowerBand*(1-emaDist), priceStep))
}

// InitialEntryPriceShort mirrors the long rule: upper band, ask, round up,
// and the sign of emaDist swapped per spec.md §4.2 "Shorts".
func InitialEntryPriceShort(ask, upperBand, emaDist, priceStep float64) float64 {
	return math.Max(ask, RoundUp(upperBand*(1+emaDist), priceStep))
}

// InitialEntryQty is spec.md §4.2: q = max(min_entry_qty,
// round(balance*WEL*entry_initial_qty_pct/p, qty_step)).
func InitialEntryQty(balance, wel, qtyPct, price, qtyStep, minQty, minCost float64) float64 {
	if price <= 0 {
		return 0
	}
	q := RoundQty(balance*wel*qtyPct/price, qtyStep)
	floor := MinEntryQty(price, minQty, minCost)
	return math.Max(q, floor)
}

// ShouldPlaceInitial is spec.md §4.2: "Placed if size < 0.8 * q".
func ShouldPlaceInitial(size, q float64) bool {
	return size < 0.8*q
}

// GridSpacingMult is spec.md §4.2 "Grid re-entry":
// mult = max(0, 1 + (WE/WEL)*weWeight + log_range*logWeight).
func GridSpacingMult(we, wel, logRange, weWeight, logWeight float64) float64 {
	ratio := 0.0
	if wel > 0 {
		ratio = we / wel
	}
	mult := 1 + ratio*weWeight + logRange*logWeight
	if mult < 0 {
		return 0
	}
	return mult
}

// GridReentryPriceLong: reentry_price = min(bid, round_dn(pprice*(1 -
// spacingPct*mult), price_step)).
func GridReentryPriceLong(bid, pprice, spacingPct, mult, priceStep float64) float64 {
	return math.Min(bid, RoundDown(pprice*(1-spacingPct*mult), priceStep))
}

// GridReentryPriceShort mirrors the long rule.
func GridReentryPriceShort(ask, pprice, spacingPct, mult, priceStep float64) float64 {
	return math.Max(ask, RoundUp(pprice*(1+spacingPct*mult), priceStep))
}

// GridReentryQty is spec.md §4.2: reentry_qty = max(min_entry_qty,
// round(max(size*ddf, balance*WEL*entry_initial_qty_pct/reentry_price),
// qty_step)).
func GridReentryQty(size, ddf, balance, wel, qtyPct, reentryPrice, qtyStep, minQty, minCost float64) float64 {
	if reentryPrice <= 0 {
		return 0
	}
	raw := math.Max(size*ddf, balance*wel*qtyPct/reentryPrice)
	q := RoundQty(raw, qtyStep)
	floor := MinEntryQty(reentryPrice, minQty, minCost)
	return math.Max(q, floor)
}

// CropToExposureLimit implements "Cropping": if size*pprice*cMult +
// q*reentryPrice*cMult would exceed WEL*balance, reduce q to exactly reach
// WEL. Returns the (possibly unchanged) qty and whether cropping applied.
func CropToExposureLimit(q, size, pprice, reentryPrice, cMult, wel, balance float64) (float64, bool) {
	if reentryPrice <= 0 || cMult <= 0 {
		return q, false
	}
	currentNotional := size * pprice * cMult
	maxNotional := wel * balance
	remaining := maxNotional - currentNotional
	if remaining < 0 {
		remaining = 0
	}
	maxQty := remaining / (reentryPrice * cMult)
	if q > maxQty {
		return maxQty, true
	}
	return q, false
}

// InflateIfNextStepSmall implements "Inflation": simulate merging this
// reentry into the position, then compute what the *next* grid step's qty
// would be at the resulting average price. If that next-step qty would be
// smaller than 0.25*ddf*(current size), expand this reentry to consume the
// remaining exposure budget instead, per spec.md §4.2 "Inflation".
func InflateIfNextStepSmall(
	q, size, pprice, reentryPrice float64,
	ddf, balance, wel, qtyPct, cMult, spacingPct, spacingMult, priceStep, bidOrAsk float64,
	isLong bool,
) (float64, bool) {
	newSize, newPrice := MergePosition(size, pprice, q, reentryPrice, 0)
	if newSize <= 0 {
		return q, false
	}
	var nextPrice float64
	if isLong {
		nextPrice = GridReentryPriceLong(bidOrAsk, newPrice, spacingPct, spacingMult, priceStep)
	} else {
		nextPrice = GridReentryPriceShort(bidOrAsk, newPrice, spacingPct, spacingMult, priceStep)
	}
	nextQty := 0.0
	if nextPrice > 0 {
		nextQty = math.Max(newSize*ddf, balance*wel*qtyPct/nextPrice)
	}
	threshold := 0.25 * ddf * size
	if nextQty >= threshold {
		return q, false
	}
	// Expand this reentry to consume the remaining exposure budget.
	currentNotional := size * pprice * cMult
	maxNotional := wel * balance
	remaining := maxNotional - currentNotional
	if remaining <= 0 || reentryPrice <= 0 || cMult <= 0 {
		return q, false
	}
	inflatedQty := remaining / (reentryPrice * cMult)
	if inflatedQty > q {
		return inflatedQty, true
	}
	return q, false
}

// TrailingEntryTriggerLong evaluates the three-case table of spec.md §4.2
// "Trailing entry (long)" and returns (triggered, price, isMarket).
// th = entry_trailing_threshold_pct, rt = entry_trailing_retracement_pct.
func TrailingEntryTriggerLong(bid, pprice, th, rt float64, trailing TrailingExtrema, priceStep float64) (bool, float64, bool) {
	switch {
	case th <= 0 && rt > 0:
		if trailing.MaxSinceMin > trailing.MinSinceOpen*(1+rt) {
			return true, bid, true
		}
		return false, 0, false
	case th > 0 && rt <= 0:
		return true, math.Min(bid, RoundDown(pprice*(1-th), priceStep)), false
	case th > 0 && rt > 0:
		if trailing.MinSinceOpen < pprice*(1-th) && trailing.MaxSinceMin > trailing.MinSinceOpen*(1+rt) {
			return true, math.Min(bid, RoundDown(pprice*(1-th+rt), priceStep)), false
		}
		return false, 0, false
	default:
		// both <= 0: degenerate case, spec.md §7 "treated as immediate
		// market entry/close — the limit order is placed at current bid".
		return true, bid, true
	}
}

// TrailingEntryTriggerShort mirrors the long rule with upper extrema.
func TrailingEntryTriggerShort(ask, pprice, th, rt float64, trailing TrailingExtrema, priceStep float64) (bool, float64, bool) {
	switch {
	case th <= 0 && rt > 0:
		if trailing.MinSinceMax < trailing.MaxSinceOpen*(1-rt) {
			return true, ask, true
		}
		return false, 0, false
	case th > 0 && rt <= 0:
		return true, math.Max(ask, RoundUp(pprice*(1+th), priceStep)), false
	case th > 0 && rt > 0:
		if trailing.MaxSinceOpen > pprice*(1+th) && trailing.MinSinceMax < trailing.MaxSinceOpen*(1-rt) {
			return true, math.Max(ask, RoundUp(pprice*(1+th-rt), priceStep)), false
		}
		return false, 0, false
	default:
		return true, ask, true
	}
}

// TrailingExtrema is the subset of types.TrailingState the pure order-math
// layer needs, passed by value so this package stays free of the types
// import cycle concern and easy to unit test with literals.
type TrailingExtrema struct {
	MaxSinceOpen float64
	MinSinceOpen float64
	MaxSinceMin  float64
	MinSinceMax  float64
}

// BlendMode reports which mechanism is active for entries (or, with the
// close-side ratio, for closes) given the blending ratio r and the current
// WE/WEL fraction, per spec.md §4.2 "Blending":
//   r == 0: grid only. |r| == 1: trailing only.
//   r > 0: trailing first until WE/WEL >= r, then grid.
//   r < 0: grid first until WE/WEL >= 1+r, then trailing.
type BlendMode int

const (
	BlendGrid BlendMode = iota
	BlendTrailing
)

func ActiveBlendMode(r, weOverWel float64) BlendMode {
	switch {
	case r == 0:
		return BlendGrid
	case r == 1 || r == -1:
		return BlendTrailing
	case r > 0:
		if weOverWel >= r {
			return BlendGrid
		}
		return BlendTrailing
	default: // r < 0
		if weOverWel >= 1+r {
			return BlendTrailing
		}
		return BlendGrid
	}
}
