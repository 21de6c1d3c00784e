// Package unstuck selects, at most once per minute across the whole
// portfolio, the single stuck position to force-close, per spec.md §4.2:
// "at most one unstuck close fires per minute; among eligible stuck
// positions, prefer the smallest gap".
package unstuck

import (
	"github.com/quantgrid/gridtrail-engine/internal/ordermath"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

// Candidate is one (symbol, side) position considered for an unstuck close
// this minute.
type Candidate struct {
	Symbol           string
	Side             types.Side
	WE               float64
	WEL              float64
	UnstuckThreshold float64
	ActiveLevelPrice float64
	Mark             float64
	PPrice           float64
	Long             bool
}

// Selection is the winning candidate for this minute, or the zero value
// with Found=false if nothing is stuck.
type Selection struct {
	Candidate Candidate
	Gap       float64
	Found     bool
}

// Select scans candidates, keeps only the ones IsStuck reports true for,
// and returns the one with the smallest UnstuckGap. Ties keep the first
// candidate encountered, so callers should order candidates deterministically
// (e.g. by symbol name) before calling Select.
func Select(candidates []Candidate) Selection {
	var best Selection
	for _, c := range candidates {
		if !ordermath.IsStuck(c.WE, c.WEL, c.UnstuckThreshold, c.ActiveLevelPrice, c.Mark, c.Long) {
			continue
		}
		gap := ordermath.UnstuckGap(c.Mark, c.PPrice)
		if !best.Found || gap < best.Gap {
			best = Selection{Candidate: c, Gap: gap, Found: true}
		}
	}
	return best
}
