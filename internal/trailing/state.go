// Package trailing updates the per-position TrailingState extrema from
// each minute's candle, per spec.md §5 step 4: "Recompute trailing extrema
// from candle's high/low (order: price touches high then low, or low then
// high, chosen deterministically by candle direction close >= open)".
package trailing

import "github.com/quantgrid/gridtrail-engine/pkg/types"

// Update folds one candle into ts, seeding on the first call after a
// position change (ts.Seed is a no-op once already seeded) and then
// visiting high/low in the order the candle's direction implies: a candle
// with close >= open touches its low then its high, otherwise its high
// then its low.
func Update(ts *types.TrailingState, open, high, low, close float64) {
	ts.Seed(open)

	if close >= open {
		touch(ts, low)
		touch(ts, high)
	} else {
		touch(ts, high)
		touch(ts, low)
	}
}

// touch folds one price into the four extrema. MaxSinceMin is the running
// max since MinSinceOpen was last lowered (it resets whenever a new low is
// set); MinSinceMax mirrors that for the high side. Together they give the
// "retracement since the tracked extreme" the trailing triggers read.
func touch(ts *types.TrailingState, price float64) {
	if price < ts.MinSinceOpen {
		ts.MinSinceOpen = price
		ts.MaxSinceMin = price
	} else if price > ts.MaxSinceMin {
		ts.MaxSinceMin = price
	}

	if price > ts.MaxSinceOpen {
		ts.MaxSinceOpen = price
		ts.MinSinceMax = price
	} else if price < ts.MinSinceMax {
		ts.MinSinceMax = price
	}
}
