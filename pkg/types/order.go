package types

// OrderKind enumerates the 24 order kinds the builder can emit: six entry
// shapes and six close shapes, each duplicated for long and short
// (spec.md §3 "Order"). Kinds are not persistent objects — orders are
// regenerated fresh every minute (§3 "Lifecycle").
type OrderKind int

const (
	EntryInitialNormalLong OrderKind = iota
	EntryInitialPartialLong
	EntryGridNormalLong
	EntryGridCroppedLong
	EntryGridInflatedLong
	EntryTrailingNormalLong

	CloseGridNormalLong
	CloseGridPartialLong // close_grid_qty_pct >= 1: single order at markup_start
	CloseTrailingNormalLong
	CloseAutoReduceLong
	CloseUnstuckLong
	ClosePanicLong

	EntryInitialNormalShort
	EntryInitialPartialShort
	EntryGridNormalShort
	EntryGridCroppedShort
	EntryGridInflatedShort
	EntryTrailingNormalShort

	CloseGridNormalShort
	CloseGridPartialShort
	CloseTrailingNormalShort
	CloseAutoReduceShort
	CloseUnstuckShort
	ClosePanicShort
)

func (k OrderKind) String() string {
	names := [...]string{
		"entry_initial_normal_long", "entry_initial_partial_long",
		"entry_grid_normal_long", "entry_grid_cropped_long", "entry_grid_inflated_long",
		"entry_trailing_normal_long",
		"close_grid_normal_long", "close_grid_partial_long", "close_trailing_normal_long",
		"close_auto_reduce_long", "close_unstuck_long", "close_panic_long",
		"entry_initial_normal_short", "entry_initial_partial_short",
		"entry_grid_normal_short", "entry_grid_cropped_short", "entry_grid_inflated_short",
		"entry_trailing_normal_short",
		"close_grid_normal_short", "close_grid_partial_short", "close_trailing_normal_short",
		"close_auto_reduce_short", "close_unstuck_short", "close_panic_short",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "unknown"
	}
	return names[k]
}

// IsEntry reports whether the kind adds to a position rather than reducing it.
func (k OrderKind) IsEntry() bool {
	return k <= EntryTrailingNormalLong || (k >= EntryInitialNormalShort && k <= EntryTrailingNormalShort)
}

// IsMarket reports whether the order executes at the candle's open rather
// than resting at a limit price (spec.md §4.4: "executed at p (limit) or at
// open if kind is market"). Auto-reduce and the forced panic-mode close are
// market orders; everything else, unstuck closes included, rests.
func (k OrderKind) IsMarket() bool {
	switch k {
	case CloseAutoReduceLong, CloseAutoReduceShort, ClosePanicLong, ClosePanicShort:
		return true
	}
	return false
}

// Side returns the position side this kind belongs to.
func (k OrderKind) Side() Side {
	if k < EntryInitialNormalShort {
		return Long
	}
	return Short
}

// Order is the tuple (symbol, side, kind, price, qty) produced fresh each
// minute by the order-set builder (spec.md §3 "Order"). Market carries the
// trailing trigger's own market-vs-limit verdict (spec.md §7 "trailing
// degenerate case") for kinds IsMarket does not already cover unconditionally.
type Order struct {
	Symbol string
	Side   Side
	Kind   OrderKind
	Price  float64
	Qty    float64
	Market bool
}

// FillsAtOpen reports whether this order executes at the candle's open
// rather than resting at Price: either its kind is unconditionally a
// market order, or the trailing trigger that produced it fired the
// threshold<=0,retracement<=0 degenerate (immediate market) case.
func (o Order) FillsAtOpen() bool {
	return o.Kind.IsMarket() || o.Market
}

// Notional returns qty * price, used for min-cost checks and exposure math.
func (o Order) Notional() float64 {
	return o.Price * o.Qty
}
