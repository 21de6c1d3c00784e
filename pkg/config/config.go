// Package config defines the engine's frozen, in-memory Config record
// (spec.md §3 "Config"). There is no file/env loader here — that is the
// explicitly out-of-scope "configuration-file parser" of spec.md §1; the
// embedding caller builds and validates a Config programmatically, the way
// the teacher's pkg/config structs are built and then validated before a
// GridEngine/DCA engine is constructed from them.
package config

import "github.com/quantgrid/gridtrail-engine/pkg/types"

// ForcedMode overrides the normal entry/grid/trailing state machine for a
// side (spec.md §6 "live.forced_mode_{long,short}").
type ForcedMode string

const (
	ModeNormal        ForcedMode = "n"
	ModeManual        ForcedMode = "m"  // skipped entirely
	ModeGracefulStop  ForcedMode = "gs" // closes only
	ModeTakeProfit    ForcedMode = "t"  // closes only
	ModePanic         ForcedMode = "p"  // immediate market close of entire position
)

// SideConfig carries every per-side (long/short) tunable of spec.md §3,
// grouped by the component design sections of spec.md §4 they feed.
type SideConfig struct {
	// EMA Tracker (§4.1). span2 = sqrt(span0*span1) is derived, not stored.
	EMASpan0       float64
	EMASpan1       float64
	EMAWarmupRatio float64 // fraction of max(span0,span1) to treat as warm

	// Initial entry (§4.2).
	EntryInitialQtyPct  float64
	EntryInitialEMADist float64
	EntryMinQty         float64 // strategy-level floor, independent of Market.MinQty

	// Grid re-entry (§4.2).
	EntryGridSpacingPct       float64
	EntryGridSpacingWeWeight  float64
	EntryGridSpacingLogWeight float64
	EntryGridDoubleDownFactor float64

	// Trailing entry (§4.2).
	EntryTrailingThresholdPct   float64
	EntryTrailingRetracementPct float64
	EntryTrailingDoubleDownFactor float64

	// Entry blending (§4.2 "Blending"). r==0 grid only, |r|==1 trailing
	// only, r>0 trailing-then-grid, r<0 grid-then-trailing.
	EntryTrailingGridRatio float64

	// Grid close (§4.2 "Grid close").
	CloseGridMarkupStart float64
	CloseGridMarkupEnd   float64
	CloseGridQtyPct      float64

	// Trailing close (§4.2 "Trailing close").
	CloseTrailingThresholdPct   float64
	CloseTrailingRetracementPct float64

	// Close blending, same semantics as entry blending (§4.2 "Close blending").
	CloseTrailingGridRatio float64

	// Unstuck (§4.2 "Unstuck close").
	UnstuckThreshold       float64
	UnstuckEMADist         float64
	UnstuckClosePct        float64
	UnstuckLossAllowancePct float64

	// Forager filters (§4.3).
	FilterVolumeDropPct   float64
	FilterVolumeSpanMin   float64 // minute EMA span for quote-volume ranking
	FilterLogRangeSpanMin float64 // minute EMA span for log-range ranking
	GridSpacingHourlySpan float64 // hourly EMA span for grid-spacing modulation

	NPositions               int
	TotalWalletExposureLimit float64
	EnforceExposureLimit     bool

	ForcedMode ForcedMode
}

// Config is the complete frozen record for one backtest run (spec.md §3,
// §6 "Config"). Long and Short run independently; CoinOverrides holds a
// partial per-symbol delta that ResolveSide merges on each call (the
// merged result is not cached).
type Config struct {
	Long  SideConfig
	Short SideConfig

	StartingBalance  float64
	FeeMultiplier    float64 // stress-test knob, §4.4
	UseBTCCollateral bool
	BTCSymbol        string  // candle symbol whose close feeds BTC collateral conversion when UseBTCCollateral is set
	LiquidationBuffer float64 // optional early-trigger buffer above zero equity, §4.5

	CoinOverrides map[string]CoinOverride
}

// CoinOverride is a partial per-symbol delta merged into Config for that
// symbol by ResolveSide (spec.md §6 "Coin overrides"). Nil pointer fields
// are left at the base Config's value.
type CoinOverride struct {
	Long  *PartialSideConfig
	Short *PartialSideConfig
}

// PartialSideConfig mirrors SideConfig with every field a pointer so only
// the fields actually present in an override are applied.
type PartialSideConfig struct {
	EMASpan0, EMASpan1, EMAWarmupRatio *float64

	EntryInitialQtyPct, EntryInitialEMADist, EntryMinQty *float64

	EntryGridSpacingPct, EntryGridSpacingWeWeight,
	EntryGridSpacingLogWeight, EntryGridDoubleDownFactor *float64

	EntryTrailingThresholdPct, EntryTrailingRetracementPct,
	EntryTrailingDoubleDownFactor *float64

	EntryTrailingGridRatio *float64

	CloseGridMarkupStart, CloseGridMarkupEnd, CloseGridQtyPct *float64

	CloseTrailingThresholdPct, CloseTrailingRetracementPct *float64

	CloseTrailingGridRatio *float64

	UnstuckThreshold, UnstuckEMADist, UnstuckClosePct, UnstuckLossAllowancePct *float64

	FilterVolumeDropPct, FilterVolumeSpanMin, FilterLogRangeSpanMin,
	GridSpacingHourlySpan *float64

	NPositions               *int
	TotalWalletExposureLimit *float64
	EnforceExposureLimit     *bool
	ForcedMode               *ForcedMode
}

// Apply merges non-nil fields of p onto a copy of base and returns it,
// following the teacher's params-map override-merge idiom
// (pkg/config manager's param extraction) generalized to a typed struct.
func (p *PartialSideConfig) Apply(base SideConfig) SideConfig {
	if p == nil {
		return base
	}
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.EMASpan0, p.EMASpan0)
	set(&base.EMASpan1, p.EMASpan1)
	set(&base.EMAWarmupRatio, p.EMAWarmupRatio)
	set(&base.EntryInitialQtyPct, p.EntryInitialQtyPct)
	set(&base.EntryInitialEMADist, p.EntryInitialEMADist)
	set(&base.EntryMinQty, p.EntryMinQty)
	set(&base.EntryGridSpacingPct, p.EntryGridSpacingPct)
	set(&base.EntryGridSpacingWeWeight, p.EntryGridSpacingWeWeight)
	set(&base.EntryGridSpacingLogWeight, p.EntryGridSpacingLogWeight)
	set(&base.EntryGridDoubleDownFactor, p.EntryGridDoubleDownFactor)
	set(&base.EntryTrailingThresholdPct, p.EntryTrailingThresholdPct)
	set(&base.EntryTrailingRetracementPct, p.EntryTrailingRetracementPct)
	set(&base.EntryTrailingDoubleDownFactor, p.EntryTrailingDoubleDownFactor)
	set(&base.EntryTrailingGridRatio, p.EntryTrailingGridRatio)
	set(&base.CloseGridMarkupStart, p.CloseGridMarkupStart)
	set(&base.CloseGridMarkupEnd, p.CloseGridMarkupEnd)
	set(&base.CloseGridQtyPct, p.CloseGridQtyPct)
	set(&base.CloseTrailingThresholdPct, p.CloseTrailingThresholdPct)
	set(&base.CloseTrailingRetracementPct, p.CloseTrailingRetracementPct)
	set(&base.CloseTrailingGridRatio, p.CloseTrailingGridRatio)
	set(&base.UnstuckThreshold, p.UnstuckThreshold)
	set(&base.UnstuckEMADist, p.UnstuckEMADist)
	set(&base.UnstuckClosePct, p.UnstuckClosePct)
	set(&base.UnstuckLossAllowancePct, p.UnstuckLossAllowancePct)
	set(&base.FilterVolumeDropPct, p.FilterVolumeDropPct)
	set(&base.FilterVolumeSpanMin, p.FilterVolumeSpanMin)
	set(&base.FilterLogRangeSpanMin, p.FilterLogRangeSpanMin)
	set(&base.GridSpacingHourlySpan, p.GridSpacingHourlySpan)
	if p.NPositions != nil {
		base.NPositions = *p.NPositions
	}
	set(&base.TotalWalletExposureLimit, p.TotalWalletExposureLimit)
	if p.EnforceExposureLimit != nil {
		base.EnforceExposureLimit = *p.EnforceExposureLimit
	}
	if p.ForcedMode != nil {
		base.ForcedMode = *p.ForcedMode
	}
	return base
}

// ResolveSide returns the effective SideConfig for a symbol, applying any
// CoinOverride on top of the side's base config.
func (c *Config) ResolveSide(symbol string, side types.Side) SideConfig {
	base := c.Long
	if side == types.Short {
		base = c.Short
	}
	override, ok := c.CoinOverrides[symbol]
	if !ok {
		return base
	}
	if side == types.Long {
		return override.Long.Apply(base)
	}
	return override.Short.Apply(base)
}
