package types

// MinBalance is the floor applied to balance to avoid division by zero
// (spec.md §6 "Numeric conventions").
const MinBalance = 1e-12

// Wallet is the global, single-owner balance/PnL state (spec.md §3 "Wallet
// state"). Per design notes, it is the one mutable singleton in the engine,
// owned by the driver and borrowed read-only by the pure order-math helpers.
type Wallet struct {
	Balance            float64
	PnlCumsumRunning   float64 // cumulative realized PnL since start
	PnlCumsumMax       float64 // running max of PnlCumsumRunning
	FeesPaidTotal      float64

	// BTC collateral mode (spec.md §6, SPEC_FULL §12): optional, zero
	// value when disabled. Realized profit accrues as BTC at the fill
	// minute's BTC close; realized loss accrues as USD debt.
	BTCCollateralEnabled bool
	BTCCollateral        float64
	USDDebt              float64
}

// PeakBalance derives the peak balance from the running PnL cumsum and its
// max, per spec.md §3: "peak_balance derived as balance + (pnl_cumsum_max -
// pnl_cumsum_running)".
func (w Wallet) PeakBalance() float64 {
	return w.Balance + (w.PnlCumsumMax - w.PnlCumsumRunning)
}

// ApplyRealizedPnL books a fill's realized PnL and fee, updates the running
// cumsum and its max, and floors the balance at MinBalance.
func (w *Wallet) ApplyRealizedPnL(pnl, fee float64) {
	w.Balance += pnl - fee
	if w.Balance < MinBalance {
		w.Balance = MinBalance
	}
	w.PnlCumsumRunning += pnl
	w.FeesPaidTotal += fee
	if w.PnlCumsumRunning > w.PnlCumsumMax {
		w.PnlCumsumMax = w.PnlCumsumRunning
	}
}

// ApplyBTCCollateral converts a realized-profit fill to BTC at btcClose, or
// books a realized-loss fill as USD debt, when BTC collateral mode is on.
func (w *Wallet) ApplyBTCCollateral(pnl, btcClose float64) {
	if !w.BTCCollateralEnabled || btcClose <= 0 {
		return
	}
	if pnl > 0 {
		w.BTCCollateral += pnl / btcClose
	} else if pnl < 0 {
		w.USDDebt += -pnl
	}
}

// Equity is balance plus the sum of unrealized PnL across all open
// positions; the caller supplies that sum since the wallet does not own
// position state (spec.md §3 "equity = balance + Σ unrealized_pnl").
func (w Wallet) Equity(sumUnrealizedPnL float64) float64 {
	return w.Balance + sumUnrealizedPnL
}

// EquityBTC is the BTC-denominated equity when collateral mode is enabled:
// BTC collateral minus the USD debt converted at the current BTC price.
func (w Wallet) EquityBTC(btcClose float64) float64 {
	if btcClose <= 0 {
		return 0
	}
	return w.BTCCollateral - w.USDDebt/btcClose
}
