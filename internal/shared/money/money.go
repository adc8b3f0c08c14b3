// Package money holds the single rounding rule applied across payroll,
// advance recovery and sursalaire crediting: round half up to the unit
// currency (FCFA), so every derived sum can be recomputed independently and
// compared for equality.
package money

// RoundHalfUpDiv divides n by d, rounding half up. d must be positive;
// n is expected non-negative (amounts, never signed deltas).
func RoundHalfUpDiv(n, d int64) int64 {
	if d <= 0 {
		return 0
	}
	return (n + d/2) / d
}

// Percent applies pct% to amount with round-half-up.
func Percent(amount, pct int64) int64 {
	return RoundHalfUpDiv(amount*pct, 100)
}

// Permille applies pm‰ to amount with round-half-up. Used for rates with one
// decimal of precision, like the 16.2% CNPS employer charge (162‰).
func Permille(amount, pm int64) int64 {
	return RoundHalfUpDiv(amount*pm, 1000)
}
