package ordermath

import "math"

// GridCloseLevels computes the linearly-spaced TP price ladder of spec.md
// §4.2 "Grid close (long)": from pprice*(1+markupStart) to
// pprice*(1+markupEnd), n levels, in that order. If markupStart >
// markupEnd, stepping from start to end already yields the levels in
// reverse (higher-profit first), matching "order levels in reverse" for
// that case. n must be >= 1.
func GridCloseLevels(pprice, markupStart, markupEnd float64, n int, priceStep float64, long bool) []float64 {
	if n <= 1 {
		return []float64{roundForClose(pprice*(1+signedMarkup(markupStart, long)), priceStep, long)}
	}
	levels := make([]float64, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		markup := markupStart + (markupEnd-markupStart)*frac
		levels[i] = roundForClose(pprice*(1+signedMarkup(markup, long)), priceStep, long)
	}
	return levels
}

// signedMarkup flips the sign of the markup for shorts, whose TP levels
// sit below pprice (spec.md §4.2 "Shorts").
func signedMarkup(markup float64, long bool) float64 {
	if long {
		return markup
	}
	return -markup
}

// roundForClose rounds a close price toward the exchange-favorable side:
// round_up for long closes, round_dn for short closes (spec.md §4.2).
func roundForClose(price, step float64, long bool) float64 {
	if long {
		return RoundUp(price, step)
	}
	return RoundDown(price, step)
}

// GridCloseLevelCount derives a ladder length from the configured qty
// fraction: fewer, larger orders when close_grid_qty_pct is large, a
// single order once it reaches 1.
func GridCloseLevelCount(closeGridQtyPct float64) int {
	if closeGridQtyPct <= 0 {
		return 1
	}
	n := int(1.0/closeGridQtyPct + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

// ActiveGridCloseLevel indexes the TP ladder by WE/WEL, per spec.md §4.2:
// "the active level is indexed by WE/WEL".
func ActiveGridCloseLevel(we, wel float64, n int) int {
	if wel <= 0 || n <= 0 {
		return 0
	}
	idx := int(math.Floor((we / wel) * float64(n)))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// GridCloseQty is spec.md §4.2: qty per level = min(size, max(min_qty,
// round_up(full_psize*close_grid_qty_pct + leftover, qty_step))). If
// closeGridQtyPct >= 1 the caller should use a single order (GridCloseLevels
// with n=1 covers that shape already).
func GridCloseQty(size, fullPsize, leftover, closeGridQtyPct, qtyStep, minQty float64) float64 {
	raw := RoundUp(fullPsize*closeGridQtyPct+leftover, qtyStep)
	if raw < minQty {
		raw = minQty
	}
	return math.Min(size, raw)
}

// AutoReduceQty is spec.md §4.2 "Auto-reduce": when enforceExposureLimit
// and WE > WEL*1.01, the excess size to close at market before any
// grid/trailing close. Returns 0 (no auto-reduce) when WE is within bounds.
func AutoReduceQty(size, we, wel float64, enforceExposureLimit bool) float64 {
	if !enforceExposureLimit || wel <= 0 || we <= wel*1.01 {
		return 0
	}
	excessFraction := (we - wel) / we
	return size * excessFraction
}

// TrailingCloseTriggerLong mirrors TrailingEntryTriggerLong in the
// profitable direction: min_since_max / max_since_open replace their
// entry-side counterparts (spec.md §4.2 "Trailing close (long)").
func TrailingCloseTriggerLong(ask, pprice, th, rt float64, trailing TrailingExtrema, priceStep float64) (bool, float64, bool) {
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

// TrailingCloseTriggerShort mirrors the long rule.
func TrailingCloseTriggerShort(bid, pprice, th, rt float64, trailing TrailingExtrema, priceStep float64) (bool, float64, bool) {
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
		return true, bid, true
	}
}
