package ordermath

// WalletExposure is WE = size * price * c_mult / balance (spec.md §4.2,
// GLOSSARY). balance is assumed already floored at types.MinBalance by the
// caller.
func WalletExposure(size, price, cMult, balance float64) float64 {
	if balance <= 0 {
		return 0
	}
	return size * price * cMult / balance
}

// ExposureLimit is WEL = TWEL / effective_n_positions (GLOSSARY "WEL").
func ExposureLimit(twel float64, effectiveNPositions int) float64 {
	if effectiveNPositions <= 0 {
		return twel
	}
	return twel / float64(effectiveNPositions)
}

// FullPsize is "the position size at exactly WEL": balance * WEL /
// (pprice * c_mult) (GLOSSARY "Full psize").
func FullPsize(balance, wel, pprice, cMult float64) float64 {
	if pprice <= 0 || cMult <= 0 {
		return 0
	}
	return balance * wel / (pprice * cMult)
}

// Leftover is "any excess of position above full_psize" (GLOSSARY).
func Leftover(size, fullPsize float64) float64 {
	if size > fullPsize {
		return size - fullPsize
	}
	return 0
}
