package types

import "time"

// Position is the per (symbol, side) holding. Size is always stored as a
// non-negative magnitude; Side carries the sign convention described in
// spec.md §3. Invariant: Size == 0 iff Price == 0 (spec.md §8 invariant 2),
// kept by fill.Apply, which zeroes Price whenever a close empties Size; the
// driver does not re-check it.
type Position struct {
	Size    float64 // qty_step multiple once rounded for order generation
	Price   float64 // average entry price, full precision
	SinceTs int64   // minute index the position was opened at

	// Trailing is reset whenever Size changes (entry or partial close),
	// per design notes: "trailing state's implicit reset on position
	// change is handled by making TrailingState a field of Position".
	Trailing TrailingState
}

// IsOpen reports whether the position currently holds any size.
func (p Position) IsOpen() bool {
	return p.Size > 0
}

// TrailingState tracks the min/max extrema used by trailing entries and
// closes (spec.md §3 "TrailingState"). MaxSinceMin/MinSinceMax track the
// extreme reached since the opposite extreme was last set, the "retracement"
// leg of the trailing trigger.
type TrailingState struct {
	MaxSinceOpen float64
	MinSinceOpen float64
	MaxSinceMin  float64
	MinSinceMax  float64
	seeded       bool
}

// Reset clears trailing extrema, called whenever the owning position's size
// changes (entry fill or partial close fill) and on full close.
func (t *TrailingState) Reset() {
	*t = TrailingState{}
}

// Seed initializes the extrema on the first candle observed after a
// position change. The open-question in spec.md §9 ("seeded from open, or
// from min(open,close)/max(open,close)") is resolved here: we seed from the
// candle's open, the simplest convention and the one that treats the seed
// candle symmetrically with every later candle (which updates from
// high/low, never from close).
func (t *TrailingState) Seed(open float64) {
	if t.seeded {
		return
	}
	t.MaxSinceOpen = open
	t.MinSinceOpen = open
	t.MaxSinceMin = open
	t.MinSinceMax = open
	t.seeded = true
}

// PositionSnapshot is an immutable point-in-time copy of a position plus its
// derived wallet exposure, used for minute observations and reporting.
type PositionSnapshot struct {
	Symbol string
	Side   Side
	Size   float64
	Price  float64
	WE     float64
	Ts     time.Time
}
