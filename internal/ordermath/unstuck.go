package ordermath

import "math"

// UnstuckAllowance is spec.md §4.2 "Unstuck close":
//   balance_peak = balance + (pnl_cumsum_max - pnl_cumsum_running)
//   drop = balance/balance_peak - 1
//   allowance = max(0, balance_peak*(unstuck_loss_allowance_pct*TWEL + drop))
func UnstuckAllowance(balance, peakBalance, unstuckLossAllowancePct, twel float64) float64 {
	if peakBalance <= 0 {
		return 0
	}
	drop := balance/peakBalance - 1
	allowance := peakBalance * (unstuckLossAllowancePct*twel + drop)
	if allowance < 0 {
		return 0
	}
	return allowance
}

// IsStuck is spec.md §4.2: "WE/WEL > unstuck_threshold and no profitable TP
// is currently reachable (the active grid-close level is above current
// mark)". activeLevelPrice is the price of the currently-indexed grid
// close level; reachable means the mark has already crossed it.
func IsStuck(we, wel, unstuckThreshold, activeLevelPrice, mark float64, long bool) bool {
	if wel <= 0 || we/wel <= unstuckThreshold {
		return false
	}
	if long {
		return mark < activeLevelPrice
	}
	return mark > activeLevelPrice
}

// UnstuckClosePriceLong is spec.md §4.2: round_up(upper_band*(1+
// unstuck_ema_dist), price_step).
func UnstuckClosePriceLong(upperBand, unstuckEMADist, priceStep float64) float64 {
	return RoundUp(upperBand*(1+unstuckEMADist), priceStep)
}

// UnstuckClosePriceShort mirrors the long rule with the lower band and a
// sign-flipped distance.
func UnstuckClosePriceShort(lowerBand, unstuckEMADist, priceStep float64) float64 {
	return RoundDown(lowerBand*(1-unstuckEMADist), priceStep)
}

// UnstuckCloseQty is spec.md §4.2: round_up(full_psize*unstuck_close_pct,
// qty_step), reduced further so the realized loss at closePrice does not
// exceed the remaining allowance.
func UnstuckCloseQty(fullPsize, unstuckClosePct, qtyStep, closePrice, pprice, cMult, allowance float64, long bool) float64 {
	qty := RoundUp(fullPsize*unstuckClosePct, qtyStep)
	var lossPerUnit float64
	if long {
		lossPerUnit = cMult * (pprice - closePrice)
	} else {
		lossPerUnit = cMult * (closePrice - pprice)
	}
	if lossPerUnit <= 0 {
		// This close is not actually a loss at this price; allowance
		// doesn't constrain it.
		return qty
	}
	maxQtyByAllowance := allowance / lossPerUnit
	return math.Min(qty, maxQtyByAllowance)
}

// UnstuckGap is the |current_price - pprice|/pprice metric spec.md §4.2
// uses to choose among stuck positions across symbols and sides: "select
// the one with the smallest gap".
func UnstuckGap(currentPrice, pprice float64) float64 {
	if pprice <= 0 {
		return math.Inf(1)
	}
	return math.Abs(currentPrice-pprice) / pprice
}
