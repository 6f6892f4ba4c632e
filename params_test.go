package rhbloom

import (
	"math"
	"testing"
)

func TestOptimalParams(t *testing.T) {
	tests := []struct {
		n     uint64
		p     float64
		wantM uint64
		wantK int
	}{
		{10000, 0.01, 131072, 5},
		{1000, 0.05, 8192, 3},
		{1000000, 0.01, 16777216, 4},
		{0, 0.01, 16, 4},
	}
	for _, tt := range tests {
		m, k := OptimalParams(tt.n, tt.p)
		if m != tt.wantM || k != tt.wantK {
			t.Errorf("OptimalParams(%d, %g) = (%d, %d), want (%d, %d)",
				tt.n, tt.p, m, k, tt.wantM, tt.wantK)
		}
	}
}

func TestOptimalParamsInvariants(t *testing.T) {
	for _, n := range []uint64{0, 1, 10, 1000, 123456, 10000000} {
		for p := 0.001; p < 1; p *= 3 {
			m, k := OptimalParams(n, p)
			if m&(m-1) != 0 {
				t.Errorf("OptimalParams(%d, %g): m=%d is not a power of two", n, p, m)
			}
			if m < minBits {
				t.Errorf("OptimalParams(%d, %g): m=%d below minimum", n, p, m)
			}
			if k < 1 {
				t.Errorf("OptimalParams(%d, %g): k=%d", n, p, k)
			}

			// Pure function: same inputs, same outputs.
			m2, k2 := OptimalParams(n, p)
			if m != m2 || k != k2 {
				t.Errorf("OptimalParams(%d, %g) is not deterministic", n, p)
			}
		}
	}
}

func TestOptimalParamsMonotonicSize(t *testing.T) {
	prev := uint64(0)
	for _, n := range []uint64{100, 1000, 10000, 100000, 1000000} {
		m, _ := OptimalParams(n, 0.01)
		if m < prev {
			t.Errorf("m shrank from %d to %d at n=%d", prev, m, n)
		}
		prev = m
	}
}

func TestEstimateFalsePositiveRate(t *testing.T) {
	if rate := EstimateFalsePositiveRate(0, 5, 100); rate != 0 {
		t.Errorf("expected 0 for empty array, got %g", rate)
	}
	if rate := EstimateFalsePositiveRate(1024, 5, 0); rate != 0 {
		t.Errorf("expected 0 for no keys, got %g", rate)
	}

	// At the designed load the estimate should sit at or below the
	// target rate, since m was rounded up.
	m, k := OptimalParams(10000, 0.01)
	rate := EstimateFalsePositiveRate(m, k, 10000)
	if rate <= 0 || rate > 0.01 {
		t.Errorf("estimated rate %g out of range (0, 0.01]", rate)
	}

	// Overfilling raises the rate.
	over := EstimateFalsePositiveRate(m, k, 100000)
	if over <= rate {
		t.Errorf("rate did not grow with load: %g vs %g", over, rate)
	}

	// And the formula itself, spot checked.
	want := math.Pow(1-math.Exp(-5.0*10000/131072), 5)
	if got := EstimateFalsePositiveRate(131072, 5, 10000); math.Abs(got-want) > 1e-12 {
		t.Errorf("EstimateFalsePositiveRate(131072, 5, 10000) = %g, want %g", got, want)
	}
}
