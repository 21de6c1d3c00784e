package engine

import (
	engineerrors "github.com/quantgrid/gridtrail-engine/internal/errors"
	"github.com/quantgrid/gridtrail-engine/internal/fill"
	"github.com/quantgrid/gridtrail-engine/internal/forager"
	"github.com/quantgrid/gridtrail-engine/internal/logger"
	"github.com/quantgrid/gridtrail-engine/internal/monitoring"
	"github.com/quantgrid/gridtrail-engine/internal/ordermath"
	"github.com/quantgrid/gridtrail-engine/internal/orders"
	"github.com/quantgrid/gridtrail-engine/internal/trailing"
	"github.com/quantgrid/gridtrail-engine/internal/unstuck"
	"github.com/quantgrid/gridtrail-engine/pkg/config"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

// Observation is one minute's recorded snapshot (spec.md §6 "Minute
// observations"), appended to an ever-growing, never-truncated buffer
// per spec.md §5's resource discipline.
type Observation struct {
	TsMinute  int64
	Balance   float64
	Equity    float64
	EquityBTC float64 // 0 unless Config.UseBTCCollateral is set
	Positions []types.PositionSnapshot
}

// Driver owns the one mutable WalletState of a run and ties every
// package into the 8-step per-minute loop of spec.md §5.
type Driver struct {
	Arena     *Arena
	Cfg       *config.Config
	Markets   map[string]types.Market
	Wallet    types.Wallet
	Collector *monitoring.Collector
	Logger    *logger.Logger

	minuteIdx    int
	lastTsMinute map[string]int64

	Fills        []fill.Event
	Observations []Observation

	Halted     bool
	HaltReason *engineerrors.EngineError
}

// NewDriver constructs a Driver over the given market map and config,
// with its own instance-scoped metrics collector labeled by runID.
func NewDriver(markets map[string]types.Market, cfg *config.Config, log *logger.Logger, runID string) *Driver {
	return &Driver{
		Arena:        NewArena(markets, cfg),
		Cfg:          cfg,
		Markets:      markets,
		Wallet:       types.Wallet{Balance: cfg.StartingBalance, BTCCollateralEnabled: cfg.UseBTCCollateral},
		Collector:    monitoring.NewCollector(runID),
		Logger:       log,
		lastTsMinute: make(map[string]int64),
	}
}

// StepMinute ingests one minute's grouped candles (spec.md §6: "candles
// for the same minute are grouped and delivered together") and runs the
// full 8-step loop. It returns a fatal *EngineError if the run must
// halt, or nil if the minute committed cleanly (including the non-fatal
// bankruptcy case, reflected via d.Halted).
func (d *Driver) StepMinute(candles map[string]types.Candle) *engineerrors.EngineError {
	if d.Halted {
		return d.HaltReason
	}

	// Step 1: ingest candle, advance clock.
	if err := d.ingest(candles); err != nil {
		d.Halted = true
		d.HaltReason = err
		return err
	}
	d.minuteIdx++

	// Step 2: update per-symbol EMAs, filter EMAs, grid-spacing hourly EMA.
	for symbol, c := range candles {
		st := d.Arena.Get(symbol)
		if st == nil {
			err := engineerrors.New(engineerrors.CategoryMarket, "engine", "ingest", "no market rules for symbol").At(symbol, c.TsMinute)
			d.Halted = true
			d.HaltReason = err
			return err
		}
		st.LongEMA.Update(c.Close)
		st.ShortEMA.Update(c.Close)
		st.Filter.UpdateMinute(c.QuoteVolume, c.High, c.Low, c.LogRange())
	}

	// Step 3: recompute eligibility and WEL, one computation per side.
	longElig := d.computeEligibility(candles, types.Long)
	shortElig := d.computeEligibility(candles, types.Short)

	// Step 4: recompute trailing extrema for every open position touched
	// by this minute's candles.
	for symbol, c := range candles {
		st := d.Arena.Get(symbol)
		if st.Long.IsOpen() {
			trailing.Update(&st.Long.Trailing, c.Open, c.High, c.Low, c.Close)
		}
		if st.Short.IsOpen() {
			trailing.Update(&st.Short.Trailing, c.Open, c.High, c.Low, c.Close)
		}
	}

	// Select this minute's single unstuck close across the whole portfolio.
	longUnstuck := d.selectUnstuck(candles, types.Long, longElig)
	shortUnstuck := d.selectUnstuck(candles, types.Short, shortElig)

	// Step 5: generate the per-symbol order set.
	var allOrders []types.Order
	for symbol, c := range candles {
		st := d.Arena.Get(symbol)
		allOrders = append(allOrders, d.buildSideOrders(symbol, c, types.Long, st, longElig, longUnstuck)...)
		allOrders = append(allOrders, d.buildSideOrders(symbol, c, types.Short, st, shortElig, shortUnstuck)...)
	}

	// Step 6: run the fill simulator per symbol (auto-reduce -> unstuck ->
	// closes -> entries), grouping this minute's orders by symbol since
	// fills for one symbol never interact with another's candle. Applied
	// in the arena's fixed sort order, not map iteration order, so that
	// replaying the same candle stream always appends fills in the same
	// cross-symbol order (spec.md §8 property 6).
	bySymbol := make(map[string][]types.Order)
	for _, o := range allOrders {
		bySymbol[o.Symbol] = append(bySymbol[o.Symbol], o)
	}
	btcClose := d.btcClose(candles)
	for _, symbol := range d.Arena.Symbols() {
		orderList := bySymbol[symbol]
		if len(orderList) == 0 {
			continue
		}
		c := candles[symbol]
		st := d.Arena.Get(symbol)
		positions := map[types.Side]*types.Position{types.Long: &st.Long, types.Short: &st.Short}
		events := fill.Apply(c, orderList, positions, st.Market, &d.Wallet, d.Cfg.FeeMultiplier, c.Close, btcClose)
		for _, ev := range events {
			d.Fills = append(d.Fills, ev)
			d.Collector.RecordFill(ev.Symbol, string(ev.Side), ev.Kind.String(), ev.Notional)
			if d.Logger != nil {
				d.Logger.Fill("%s/%s %s price=%.8f qty=%.8f fee=%.8f pnl=%.8f ts=%d", ev.Symbol, ev.Side, ev.Kind, ev.Price, ev.Qty, ev.Fee, ev.RealizedPnL, ev.TsMinute)
			}
		}
	}

	// Step 7: update balance, PnL cumsum, peak, equity (already folded
	// into d.Wallet by fill.Apply); compute equity now for the bankruptcy
	// check and this minute's observation.
	equity := d.computeEquity(candles)
	d.Collector.SetBalances(equity, d.Wallet.Balance)

	anyTs := firstTsMinute(candles)
	if equity <= d.Cfg.LiquidationBuffer {
		d.Halted = true
		d.Collector.RecordBankruptcy()
		if d.Logger != nil {
			d.Logger.Bankruptcy("", anyTs, equity)
		}
	}

	// Step 8: append observation to time-series buffers.
	d.Observations = append(d.Observations, Observation{
		TsMinute:  anyTs,
		Balance:   d.Wallet.Balance,
		Equity:    equity,
		EquityBTC: d.Wallet.EquityBTC(btcClose),
		Positions: d.snapshotPositions(anyTs),
	})

	return nil
}

func (d *Driver) ingest(candles map[string]types.Candle) *engineerrors.EngineError {
	for symbol, c := range candles {
		if err := c.Validate(); err != nil {
			return engineerrors.Wrap(err, engineerrors.CategoryCandle, "engine", "ingest").At(symbol, c.TsMinute)
		}
		if last, ok := d.lastTsMinute[symbol]; ok && c.TsMinute <= last {
			return engineerrors.New(engineerrors.CategoryCandle, "engine", "ingest", "timestamp not strictly monotonic").At(symbol, c.TsMinute)
		}
		d.lastTsMinute[symbol] = c.TsMinute
	}
	return nil
}

func (d *Driver) computeEligibility(candles map[string]types.Candle, side types.Side) forager.Eligibility {
	var filters []forager.SymbolFilter
	held := make(map[string]bool)
	for _, symbol := range d.Arena.Symbols() {
		st := d.Arena.Get(symbol)
		if _, traded := candles[symbol]; traded {
			filters = append(filters, forager.SymbolFilter{
				Symbol: symbol, VolumeEMA: st.Filter.VolumeEMA(), LogRangeEMA: st.Filter.LogRangeEMA(),
			})
		}
		if st.Position(side).IsOpen() {
			held[symbol] = true
		}
	}
	sideCfg := d.Cfg.Long
	if side == types.Short {
		sideCfg = d.Cfg.Short
	}
	return forager.SelectEligible(filters, held, sideCfg.NPositions, sideCfg.FilterVolumeDropPct, sideCfg.TotalWalletExposureLimit)
}

func (d *Driver) selectUnstuck(candles map[string]types.Candle, side types.Side, elig forager.Eligibility) unstuck.Selection {
	peak := d.Wallet.PeakBalance()
	long := side == types.Long
	var candidates []unstuck.Candidate
	for _, symbol := range d.Arena.Symbols() {
		c, traded := candles[symbol]
		if !traded {
			continue
		}
		st := d.Arena.Get(symbol)
		pos := st.Position(side)
		if !pos.IsOpen() {
			continue
		}
		sideCfg := d.Cfg.ResolveSide(symbol, side)
		we := ordermath.WalletExposure(pos.Size, pos.Price, st.Market.CMult, d.Wallet.Balance)
		n := ordermath.GridCloseLevelCount(sideCfg.CloseGridQtyPct)
		levels := ordermath.GridCloseLevels(pos.Price, sideCfg.CloseGridMarkupStart, sideCfg.CloseGridMarkupEnd, n, st.Market.PriceStep, long)
		idx := ordermath.ActiveGridCloseLevel(we, elig.WEL, n)
		if idx >= len(levels) {
			idx = len(levels) - 1
		}
		candidates = append(candidates, unstuck.Candidate{
			Symbol: symbol, Side: side, WE: we, WEL: elig.WEL,
			UnstuckThreshold: sideCfg.UnstuckThreshold, ActiveLevelPrice: levels[idx],
			Mark: c.Close, PPrice: pos.Price, Long: long,
		})
	}
	sel := unstuck.Select(candidates)
	if sel.Found && d.Collector != nil {
		d.Collector.RecordUnstuckFire(sel.Candidate.Symbol, string(side))
	}
	return sel
}

func (d *Driver) buildSideOrders(symbol string, c types.Candle, side types.Side, st *SymbolState, elig forager.Eligibility, unstuckSel unstuck.Selection) []types.Order {
	sideCfg := d.Cfg.ResolveSide(symbol, side)
	pos := *st.Position(side)
	upper, lower := st.EMATracker(side).Bands()
	if !st.EMATracker(side).WarmedUp(d.minuteIdx) {
		upper, lower = c.Close, c.Close
	}

	allowance := ordermath.UnstuckAllowance(d.Wallet.Balance, d.Wallet.PeakBalance(), sideCfg.UnstuckLossAllowancePct, sideCfg.TotalWalletExposureLimit)
	selected := unstuckSel.Found && unstuckSel.Candidate.Symbol == symbol && unstuckSel.Candidate.Side == side

	in := orders.Input{
		Symbol: symbol, Side: side, Cfg: sideCfg, Market: st.Market,
		Position: pos, Balance: d.Wallet.Balance, WEL: elig.WEL,
		UpperBand: upper, LowerBand: lower, LogRangeEMA: st.Filter.HourlyLogRange(),
		Bid: c.Close, Ask: c.Close,
		Eligible:         elig.IsEligible(symbol),
		UnstuckSelected:  selected,
		UnstuckAllowance: allowance,
	}
	res := orders.Build(in)

	var out []types.Order
	if res.Entry != nil && ordermath.MeetsMinCost(res.Entry.Qty, res.Entry.Price, st.Market.MinCost) {
		out = append(out, *res.Entry)
	} else if res.Entry != nil {
		d.Collector.RecordMinCostSkip(symbol, string(side))
		if d.Logger != nil {
			d.Logger.Skip("entry for %s/%s dropped: below min_cost", symbol, side)
		}
	}
	for _, o := range res.Closes {
		if o.Qty <= 0 {
			continue
		}
		if !ordermath.MeetsMinCost(o.Qty, o.Price, st.Market.MinCost) {
			d.Collector.RecordMinCostSkip(symbol, string(side))
			continue
		}
		out = append(out, o)
	}
	return out
}

// computeEquity sums unrealized PnL across open positions using the same
// qty*c_mult*(mark-pprice) formula as realized PnL, with the candle close
// as mark and size as qty, then adds it to balance.
func (d *Driver) computeEquity(candles map[string]types.Candle) float64 {
	var sumUnrealized float64
	for symbol, c := range candles {
		st := d.Arena.Get(symbol)
		if st.Long.IsOpen() {
			sumUnrealized += ordermath.RealizedPnLLong(st.Long.Size, st.Market.CMult, c.Close, st.Long.Price)
		}
		if st.Short.IsOpen() {
			sumUnrealized += ordermath.RealizedPnLShort(st.Short.Size, st.Market.CMult, c.Close, st.Short.Price)
		}
	}
	return d.Wallet.Equity(sumUnrealized)
}

func (d *Driver) snapshotPositions(ts int64) []types.PositionSnapshot {
	var out []types.PositionSnapshot
	for _, symbol := range d.Arena.Symbols() {
		st := d.Arena.Get(symbol)
		if st.Long.IsOpen() {
			we := ordermath.WalletExposure(st.Long.Size, st.Long.Price, st.Market.CMult, d.Wallet.Balance)
			out = append(out, types.PositionSnapshot{Symbol: symbol, Side: types.Long, Size: st.Long.Size, Price: st.Long.Price, WE: we})
		}
		if st.Short.IsOpen() {
			we := ordermath.WalletExposure(st.Short.Size, st.Short.Price, st.Market.CMult, d.Wallet.Balance)
			out = append(out, types.PositionSnapshot{Symbol: symbol, Side: types.Short, Size: st.Short.Size, Price: st.Short.Price, WE: we})
		}
	}
	return out
}

// btcClose resolves this minute's BTC close for collateral conversion
// (spec.md §6 "BTC collateral mode"). Returns 0 (a no-op for
// Wallet.ApplyBTCCollateral) when collateral mode is off or the
// configured BTC symbol did not trade this minute.
func (d *Driver) btcClose(candles map[string]types.Candle) float64 {
	if !d.Cfg.UseBTCCollateral || d.Cfg.BTCSymbol == "" {
		return 0
	}
	return candles[d.Cfg.BTCSymbol].Close
}

func firstTsMinute(candles map[string]types.Candle) int64 {
	for _, c := range candles {
		return c.TsMinute
	}
	return 0
}
