// Package engine drives the per-minute simulation loop of spec.md §5,
// wiring together the ema, filter, forager, ordermath, orders, fill, and
// unstuck packages. Grounded on the teacher's BacktestEngine (internal
// mutable run state updated in a single Run loop, generalized from one
// position per symbol to one per (symbol, side) and from a single
// strategy call to the multi-stage pipeline spec.md §5 requires.
package engine

import (
	"sort"

	"github.com/quantgrid/gridtrail-engine/internal/ema"
	"github.com/quantgrid/gridtrail-engine/internal/filter"
	"github.com/quantgrid/gridtrail-engine/pkg/config"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

// SymbolState is the fixed-size per-symbol record the arena indexes by
// symbol, holding both sides' positions, EMA trackers, and filter state.
// Indexing by symbol keeps the minute loop's per-symbol work allocation
// free after warm-up: the arena is built once from the market map and
// never grows.
type SymbolState struct {
	Symbol string
	Market types.Market

	LongEMA  *ema.Tracker
	ShortEMA *ema.Tracker
	Filter   *filter.State

	Long  types.Position
	Short types.Position
}

// Arena holds one SymbolState per traded symbol, with symbols in sorted
// (lexicographic) order (so iteration order, and therefore any
// deterministic tie-break across symbols, is reproducible run to run).
type Arena struct {
	order []string
	states map[string]*SymbolState
}

// NewArena builds an Arena from the market map and per-side config. EMA
// and filter spans are read from each symbol's resolved side config, so
// CoinOverrides apply per symbol; the filter spans come from the long
// side's config.
func NewArena(markets map[string]types.Market, cfg *config.Config) *Arena {
	order := make([]string, 0, len(markets))
	for symbol := range markets {
		order = append(order, symbol)
	}
	sort.Strings(order)

	a := &Arena{order: order, states: make(map[string]*SymbolState, len(markets))}
	for _, symbol := range order {
		longCfg := cfg.ResolveSide(symbol, types.Long)
		shortCfg := cfg.ResolveSide(symbol, types.Short)
		a.states[symbol] = &SymbolState{
			Symbol:   symbol,
			Market:   markets[symbol],
			LongEMA:  ema.NewTracker(longCfg.EMASpan0, longCfg.EMASpan1, longCfg.EMAWarmupRatio),
			ShortEMA: ema.NewTracker(shortCfg.EMASpan0, shortCfg.EMASpan1, shortCfg.EMAWarmupRatio),
			Filter:   filter.NewState(longCfg.FilterVolumeSpanMin, longCfg.FilterLogRangeSpanMin, longCfg.GridSpacingHourlySpan),
		}
	}
	return a
}

// Symbols returns the arena's symbols in stable order.
func (a *Arena) Symbols() []string { return a.order }

// Get returns the SymbolState for symbol, or nil if it is not in the
// market map.
func (a *Arena) Get(symbol string) *SymbolState { return a.states[symbol] }

// Position returns the position for (symbol, side); callers mutate it
// in place through the returned pointer.
func (s *SymbolState) Position(side types.Side) *types.Position {
	if side == types.Long {
		return &s.Long
	}
	return &s.Short
}

// EMATracker returns the EMA tracker for side.
func (s *SymbolState) EMATracker(side types.Side) *ema.Tracker {
	if side == types.Long {
		return s.LongEMA
	}
	return s.ShortEMA
}
