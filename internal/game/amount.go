package game

import "math/bits"

// addAmount returns a+b or ErrAmountOverflow if the sum does not fit in 64 bits.
func addAmount(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

// mulDiv computes floor(a*b/d) with a 128-bit intermediate product.
// The quotient must fit in 64 bits, which holds whenever a <= d.
func mulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrNoContribution
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrAmountOverflow
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}
