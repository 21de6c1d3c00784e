package config

import (
	"fmt"

	engerrors "github.com/quantgrid/gridtrail-engine/internal/errors"
)

// Validator performs the Config-invalid checks of spec.md §7 ("out-of-range
// parameter, inconsistent ranges ... n_positions < 0"), grounded on the
// teacher's pkg/config.DCAValidator range-check idiom.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// Validate checks both sides and the backtest-level fields, returning the
// first violation found as a *errors.EngineError (category Config, fatal
// at init per §7).
func (v *Validator) Validate(cfg *Config) error {
	if cfg.StartingBalance <= 0 {
		return configErr("starting balance must be positive, got %.8f", cfg.StartingBalance)
	}
	if cfg.FeeMultiplier < 0 {
		return configErr("fee multiplier must be non-negative, got %.4f", cfg.FeeMultiplier)
	}
	if err := v.validateSide("long", cfg.Long); err != nil {
		return err
	}
	if err := v.validateSide("short", cfg.Short); err != nil {
		return err
	}
	return nil
}

func (v *Validator) validateSide(label string, s SideConfig) error {
	if s.NPositions < 0 {
		return configErr("%s: n_positions must be >= 0, got %d", label, s.NPositions)
	}
	if s.TotalWalletExposureLimit < 0 {
		return configErr("%s: total_wallet_exposure_limit must be >= 0, got %.4f", label, s.TotalWalletExposureLimit)
	}
	if s.EMASpan0 <= 0 || s.EMASpan1 <= 0 {
		return configErr("%s: EMA spans must be positive, got %.4f/%.4f", label, s.EMASpan0, s.EMASpan1)
	}
	if s.EntryGridDoubleDownFactor <= 0 {
		return configErr("%s: entry_grid_double_down_factor must be positive, got %.4f", label, s.EntryGridDoubleDownFactor)
	}
	if s.EntryTrailingGridRatio < -1 || s.EntryTrailingGridRatio > 1 {
		return configErr("%s: entry_trailing_grid_ratio must be within [-1, 1], got %.4f", label, s.EntryTrailingGridRatio)
	}
	if s.CloseTrailingGridRatio < -1 || s.CloseTrailingGridRatio > 1 {
		return configErr("%s: close_trailing_grid_ratio must be within [-1, 1], got %.4f", label, s.CloseTrailingGridRatio)
	}
	if s.CloseGridMarkupStart == 0 && s.CloseGridMarkupEnd == 0 {
		return configErr("%s: markup_start and markup_end cannot both be zero", label)
	}
	if s.CloseGridQtyPct < 0 {
		return configErr("%s: close_grid_qty_pct must be >= 0, got %.4f", label, s.CloseGridQtyPct)
	}
	if s.FilterVolumeDropPct < 0 || s.FilterVolumeDropPct >= 1 {
		return configErr("%s: filter_volume_drop_pct must be within [0, 1), got %.4f", label, s.FilterVolumeDropPct)
	}
	return nil
}

func configErr(format string, args ...interface{}) error {
	return engerrors.New(engerrors.CategoryConfig, "config", "validate", fmt.Sprintf(format, args...))
}
