package bits

import (
	"math"
	stdbits "math/bits"
)

// CeilPowOf2 returns the smallest exponent e such that 1<<e >= x,
// i.e. ceil(log2(x)).
func CeilPowOf2(x uint64) uint8 {
	if x <= 1 {
		return 0
	}
	return uint8(64 - stdbits.LeadingZeros64(x-1))
}

// RoundupPowOf2 rounds x up to the nearest power of two.
func RoundupPowOf2(x uint64) uint64 {
	return uint64(1) << CeilPowOf2(x)
}

func RoundupPowOf2ByCeil(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return uint64(1) << uint64(math.Ceil(math.Log2(float64(x))))
}

func RoundupPowOf2ByLoop(x uint64) uint64 {
	result := uint64(1)
	for result < x {
		result <<= 1
	}
	return result
}
