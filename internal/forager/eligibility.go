// Package forager implements the eligibility & dynamic-exposure selection
// of spec.md §4.3: per-minute re-selection of the active symbol set by
// volume and volatility ranking, sticky for currently-held symbols, with
// wallet-exposure-limit redistribution as the eligible set's size changes.
package forager

import "sort"

// SymbolFilter is the per-symbol ranking input for one side.
type SymbolFilter struct {
	Symbol      string
	VolumeEMA   float64
	LogRangeEMA float64
}

// Eligibility is the result of SelectEligible: the ordered set of eligible
// symbols and the resulting effective_n_positions / WEL.
type Eligibility struct {
	Symbols             []string
	EffectiveNPositions int
	WEL                 float64
}

// SelectEligible implements spec.md §4.3 steps 1-5:
//  1. drop the bottom volumeDropPct by volume EMA
//  2. rank survivors by log-range EMA descending
//  3. eligible = top nPositions ∪ currently-held symbols
//  4. effective_n_positions = max(1, |eligible|)
//  5. WEL = TWEL / effective_n_positions
func SelectEligible(filters []SymbolFilter, held map[string]bool, nPositions int, volumeDropPct, twel float64) Eligibility {
	survivors := dropBottomByVolume(filters, volumeDropPct)

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].LogRangeEMA > survivors[j].LogRangeEMA
	})

	top := nPositions
	if top > len(survivors) {
		top = len(survivors)
	}
	if top < 0 {
		top = 0
	}

	selected := make(map[string]bool, top+len(held))
	ordered := make([]string, 0, top+len(held))
	for _, f := range survivors[:top] {
		if !selected[f.Symbol] {
			selected[f.Symbol] = true
			ordered = append(ordered, f.Symbol)
		}
	}
	for sym, isHeld := range held {
		if isHeld && !selected[sym] {
			selected[sym] = true
			ordered = append(ordered, sym)
		}
	}

	effectiveN := len(ordered)
	if effectiveN < 1 {
		effectiveN = 1
	}

	return Eligibility{
		Symbols:             ordered,
		EffectiveNPositions: effectiveN,
		WEL:                 twel / float64(effectiveN),
	}
}

func dropBottomByVolume(filters []SymbolFilter, dropPct float64) []SymbolFilter {
	if dropPct <= 0 || len(filters) == 0 {
		cpy := make([]SymbolFilter, len(filters))
		copy(cpy, filters)
		return cpy
	}
	sorted := make([]SymbolFilter, len(filters))
	copy(sorted, filters)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VolumeEMA < sorted[j].VolumeEMA
	})
	cut := int(float64(len(sorted)) * dropPct)
	if cut >= len(sorted) {
		cut = len(sorted) - 1
	}
	if cut < 0 {
		cut = 0
	}
	return sorted[cut:]
}

// IsEligible reports whether symbol is in the eligible set computed by
// SelectEligible, for the "symbols not in the eligible set: no new
// entries; existing positions continue to close only" rule.
func (e Eligibility) IsEligible(symbol string) bool {
	for _, s := range e.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
