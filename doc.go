// Package rhbloom provides a robin hood bloom filter: an append-only
// set-membership filter over 64-bit keys that starts as an exact hash
// table and degrades into a bloom filter once exact storage stops being
// worth the memory.
//
// A Filter answers "have I seen this key before?" with zero false
// negatives and a bounded false positive rate, while using less memory
// than an exact set at large sizes and less memory than a worst-case
// sized bloom filter at small sizes.
//
// # Architecture
//
// The filter has two stages and switches between them exactly once:
//
// Exact stage: keys are stored in a robin hood open-addressing table
// capped at 50% load. Each 64-bit bucket word packs a 56-bit key with an
// 8-bit displacement counter, and robin hood displacement keeps probe
// chains short and lookups early-exiting. Membership answers in this
// stage are exact.
//
// Approximate stage: a fixed bloom bit array whose size and probe count
// are derived at construction from the expected key count and target
// false positive rate. When the exact table's next doubling would use at
// least as much memory as the bit array, every stored key is migrated
// into bloom form and the table is released for good. The switch point
// is computed lazily and exactly, so small filters never pay the bit
// array's fixed cost.
//
// Every caller key is passed through the mix13 avalanche function before
// touching either stage, so sequential or low-entropy keys behave like
// random ones.
//
// # Choosing Parameters
//
// Create a filter with the expected number of keys and the desired false
// positive rate:
//
//	// Filter for 1 million keys with a 1% false positive rate
//	f, _ := rhbloom.New(1_000_000, 0.01)
//	f.Add(key)
//	if f.Test(key) {
//		// probably seen before
//	}
//
// [OptimalParams] exposes the sizing math directly.
//
// # Memory Usage
//
// While exact, memory is the bucket table: 8 bytes per bucket at no more
// than 50% load. Once upgraded, memory is the fixed bit array:
//
//	memory_bits ≈ -n * ln(p) / (ln(2))²
//
// rounded up to a power of two. [Filter.MemSize] reports the live
// footprint and [Filter.Upgraded] reports the current stage.
//
// # Thread Safety
//
// Filter is NOT thread-safe. All operations are synchronous and
// non-blocking; callers needing concurrent access must wrap the whole
// filter in their own exclusion, such as a sync.RWMutex.
//
// # Limitations
//
// Keys cannot be deleted or enumerated, and an upgraded filter never
// reverts to exact. [Filter.Reset] empties the filter but keeps its
// stage. The 8-bit displacement counter has no overflow guard; see the
// [Filter] documentation before exposing the filter to untrusted keys.
//
// # References
//
//   - Original C implementation: https://github.com/tidwall/rhbloom
//   - mix13: https://zimbry.blogspot.com/2011/09/better-bit-mixing-improving-on.html
//   - Robin hood hashing: https://cs.uwaterloo.ca/research/tr/1986/CS-86-14.pdf
package rhbloom
