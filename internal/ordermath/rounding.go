// Package ordermath implements the pure price/qty/PnL functions of
// spec.md §4.2: rounding, wallet exposure, initial/grid/trailing entry and
// close pricing and sizing, unstuck pricing and sizing. Every function here
// is a pure function of its arguments — no package-level mutable state —
// per design notes: "global singletons become a single WalletState owned
// by the driver and borrowed read-only by pure order-math helpers."
package ordermath

import "math"

// RoundStep rounds x to the nearest multiple of step. step <= 0 is treated
// as "no rounding" (returns x unchanged) since a handful of degenerate
// test fixtures pass a zero step for fields they don't care about.
func RoundStep(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Round(x/step) * step
}

// RoundDown rounds x down (toward zero) to a multiple of step. Used for
// long-entry/short-close bid-side prices (spec.md §4.2: "round_dn (toward
// zero for bids/long entries, toward the higher close price for short
// closes)").
func RoundDown(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Floor(x/step) * step
}

// RoundUp rounds x up to a multiple of step. Used for long-close/
// short-entry ask-side prices.
func RoundUp(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Ceil(x/step) * step
}

// RoundQty rounds a quantity to the nearest multiple of qtyStep.
func RoundQty(qty, qtyStep float64) float64 {
	return RoundStep(qty, qtyStep)
}

// MinEntryQty is the floor of spec.md §4.2: "qty >= max(min_qty,
// min_cost/price)".
func MinEntryQty(price, minQty, minCost float64) float64 {
	floor := minQty
	if price > 0 {
		if v := minCost / price; v > floor {
			floor = v
		}
	}
	return floor
}

// MeetsMinCost reports whether qty*price clears the exchange's minimum
// notional. Orders that fail this are dropped silently per spec.md §7
// ("a generated order with qty*price < min_cost is dropped silently").
func MeetsMinCost(qty, price, minCost float64) bool {
	return qty*price >= minCost
}
