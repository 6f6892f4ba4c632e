package rhbloom

import "math"

// minBits is the smallest allowed bit array size. Eight bits keeps the
// array at least one byte long even for degenerate capacities.
const minBits = 8

// OptimalParams calculates the bloom stage parameters for a filter sized
// for n keys at false positive rate p. It returns the total number of
// bits m, rounded up to a power of two, and the number of bit probes per
// key k.
//
// Because rounding m up to a power of two changes the effective
// bits-per-key density, k is recomputed against the rounded m rather
// than taken from the closed-form estimate. Using the unrounded k with
// the rounded m would skew the false positive rate above the target.
func OptimalParams(n uint64, p float64) (m uint64, k int) {
	if n == 0 {
		n = 1
	}

	// Closed-form bloom sizing: m = n*ln(p)/ln(1/2^ln2) bits total,
	// k = (m/n)*ln(2) probes per key.
	mraw := float64(n) * math.Log(p) / math.Log(1/math.Pow(2, math.Ln2))
	kraw := math.Round(mraw / float64(n) * math.Ln2)

	m = minBits
	for float64(m) < mraw {
		m *= 2
	}

	k = int(math.Round(mraw / float64(m) * kraw))
	if k < 1 {
		k = 1
	}
	return m, k
}

// EstimateFalsePositiveRate estimates the false positive rate of a bloom
// stage with m bits and k probes per key after n keys have been added.
// Formula: (1 - e^(-kn/m))^k
func EstimateFalsePositiveRate(m uint64, k int, n uint64) float64 {
	if m == 0 || n == 0 {
		return 0
	}
	kf := float64(k)
	return math.Pow(1-math.Exp(-kf*float64(n)/float64(m)), kf)
}
