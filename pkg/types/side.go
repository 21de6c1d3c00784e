package types

// Side is the position side a symbol's config/state is tracked under. The
// engine runs long and short independently per symbol, mirror-symmetric in
// every order-math rule (spec.md §4.2 "Shorts").
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Opposite returns the other side, used by rules phrased as "swap upper/
// lower band" style mirroring.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}

func (s Side) Sign() float64 {
	if s == Long {
		return 1
	}
	return -1
}
