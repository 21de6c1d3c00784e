// Package fill simulates order execution against one candle, per spec.md
// §4.4: orders are matched against the candle's [low, high] range (or
// executed at open for market orders), applied atomically in the order
// auto-reduce -> unstuck -> other closes (closest-to-mark first) ->
// entries (closest-to-mark first).
package fill

import (
	"sort"

	"github.com/quantgrid/gridtrail-engine/internal/ordermath"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

// Event is one executed fill, emitted for logging, metrics, and reporting.
type Event struct {
	Symbol      string
	Side        types.Side
	Kind        types.OrderKind
	Price       float64
	Qty         float64
	Notional    float64
	Fee         float64
	RealizedPnL float64
	TsMinute    int64
}

// priority orders the four execution stages spec.md §4.4 requires. Lower
// fires first.
func priority(k types.OrderKind) int {
	switch k {
	case types.CloseAutoReduceLong, types.CloseAutoReduceShort:
		return 0
	case types.CloseUnstuckLong, types.CloseUnstuckShort:
		return 1
	}
	if !k.IsEntry() {
		return 2
	}
	return 3
}

// fillable reports whether order o executes against candle c, and at what
// price: market orders execute at open unconditionally; limit orders
// execute at their own price only if the candle's range touched it.
func fillable(o types.Order, c types.Candle) (execPrice float64, ok bool) {
	if o.FillsAtOpen() {
		return c.Open, true
	}
	if o.Price >= c.Low && o.Price <= c.High {
		return o.Price, true
	}
	return 0, false
}

// Apply matches orders against candle c and mutates positions (keyed by
// side) and wallet in place, returning one Event per executed fill in
// execution order. mark is the reference price ("closest to mark" tie
// break among same-priority orders); btcClose is the BTC close price for
// the minute, used only when wallet.BTCCollateralEnabled (0 otherwise).
func Apply(c types.Candle, orders []types.Order, positions map[types.Side]*types.Position, market types.Market, wallet *types.Wallet, feeRate, mark, btcClose float64) []Event {
	ordered := make([]types.Order, len(orders))
	copy(ordered, orders)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := priority(ordered[i].Kind), priority(ordered[j].Kind)
		if pi != pj {
			return pi < pj
		}
		return distance(ordered[i].Price, mark) < distance(ordered[j].Price, mark)
	})

	var events []Event
	for _, o := range ordered {
		execPrice, ok := fillable(o, c)
		if !ok || o.Qty <= 0 {
			continue
		}
		pos := positions[o.Side]
		if pos == nil {
			pos = &types.Position{}
			positions[o.Side] = pos
		}

		fee := execPrice * o.Qty * feeRate

		if o.Kind.IsEntry() {
			newSize, newPrice := ordermath.MergePosition(pos.Size, pos.Price, o.Qty, execPrice, market.QtyStep)
			pos.Size = newSize
			pos.Price = newPrice
			pos.Trailing.Reset()
			if pos.SinceTs == 0 {
				pos.SinceTs = c.TsMinute
			}
			wallet.ApplyRealizedPnL(0, fee)
			events = append(events, Event{
				Symbol: o.Symbol, Side: o.Side, Kind: o.Kind,
				Price: execPrice, Qty: o.Qty, Notional: execPrice * o.Qty,
				Fee: fee, RealizedPnL: 0, TsMinute: c.TsMinute,
			})
			continue
		}

		qty := o.Qty
		if qty > pos.Size {
			qty = pos.Size
		}
		var pnl float64
		if o.Side == types.Long {
			pnl = ordermath.RealizedPnLLong(qty, market.CMult, execPrice, pos.Price)
		} else {
			pnl = ordermath.RealizedPnLShort(qty, market.CMult, execPrice, pos.Price)
		}

		pos.Size = ordermath.RoundQty(pos.Size-qty, market.QtyStep)
		pos.Trailing.Reset()
		if pos.Size <= 0 {
			pos.Size = 0
			pos.Price = 0
			pos.SinceTs = 0
		}

		wallet.ApplyRealizedPnL(pnl, fee)
		wallet.ApplyBTCCollateral(pnl, btcClose)

		events = append(events, Event{
			Symbol: o.Symbol, Side: o.Side, Kind: o.Kind,
			Price: execPrice, Qty: qty, Notional: execPrice * qty,
			Fee: fee, RealizedPnL: pnl, TsMinute: c.TsMinute,
		})
	}
	return events
}

func distance(price, mark float64) float64 {
	d := price - mark
	if d < 0 {
		return -d
	}
	return d
}
