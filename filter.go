package rhbloom

import (
	"errors"
	"unsafe"
)

const (
	// keyBits is the number of key bits stored in a bucket word. The
	// top eight bits of the word hold the displacement counter.
	keyBits = 56

	// keyMask extracts the 56-bit key from a bucket word.
	keyMask = uint64(1)<<keyBits - 1

	// initialBuckets is the table size used by the first grow.
	initialBuckets = 16
)

// ErrInvalidRate is returned by New when the false positive rate is not
// in the exclusive range (0, 1).
var ErrInvalidRate = errors.New("rhbloom: false positive rate must be in (0, 1)")

// Filter is a non-thread-safe set-membership filter over 64-bit keys
// that starts exact and degrades into a bloom filter.
//
// While small, keys are stored exactly in a robin hood open-addressing
// table so membership answers have no false positives. Once the next
// table doubling would cost at least as much memory as the bloom bit
// array sized at construction, the table is migrated into the bit array
// and the filter permanently becomes approximate. Answers never have
// false negatives in either stage.
//
// Each bucket word packs a 56-bit key with an 8-bit displacement in the
// top byte; displacement zero marks an empty slot. The displacement
// counter has no overflow guard: an adversarial key set could in theory
// push a probe chain past 255 steps, though the 50% load cap keeps
// chains far shorter in practice. Do not feed the filter untrusted keys
// without an upstream keyed hash.
type Filter struct {
	m     uint64 // bloom stage size in bits, power of two
	k     int    // bit probes per key
	count int    // keys in the table; meaningless once upgraded

	// Exactly one of buckets/bits is non-nil at any time. Once bits is
	// allocated the table is released for good.
	rawTable []byte   // backing allocation for buckets, kept for Free
	buckets  []uint64 // exact stage: packed key+displacement words
	bits     []byte   // approximate stage: bloom bit array

	alloc Allocator
}

// New creates a filter sized for n keys at false positive rate p. The
// filter starts in the exact stage with no storage allocated; storage
// grows on demand as keys are added. n may be zero, which yields a
// minimal filter. Returns ErrInvalidRate if p is outside (0, 1).
func New(n uint64, p float64, opts ...Option) (*Filter, error) {
	if p <= 0 || p >= 1 {
		return nil, ErrInvalidRate
	}
	f := &Filter{alloc: heapAllocator{}}
	for _, opt := range opts {
		opt(f)
	}
	f.m, f.k = OptimalParams(n, p)
	return f, nil
}

// Add adds a key to the filter. It returns false only if an allocation
// failed during a grow or upgrade, in which case the filter is left in
// its prior state and the key is not added.
func (f *Filter) Add(key uint64) bool {
	key = mix13(key)
	for f.bits == nil {
		if f.count == len(f.buckets)>>1 {
			if !f.grow() {
				return false
			}
			continue
		}
		f.insertKey(key)
		return true
	}
	f.setBits(key)
	return true
}

// Test reports whether a key is probably in the filter. A false result
// is always exact. A true result is exact in the exact stage and has a
// bounded false positive probability once upgraded.
func (f *Filter) Test(key uint64) bool {
	key = mix13(key)
	if f.bits != nil {
		return f.testBits(key)
	}
	if f.buckets == nil {
		return false
	}
	key &= keyMask
	dib := uint64(1)
	mask := uint64(len(f.buckets) - 1)
	i := key & mask
	for {
		e := f.buckets[i]
		if e>>keyBits < dib {
			// No key that probed this far could be stored past a
			// slot holding a smaller displacement.
			return false
		}
		if e&keyMask == key {
			return true
		}
		dib++
		i = (i + 1) & mask
	}
}

// AddBytes adds an arbitrary byte key, reduced to 64 bits with xxh3.
func (f *Filter) AddBytes(data []byte) bool {
	return f.Add(hashBytes(data))
}

// AddString adds a string key without allocating.
func (f *Filter) AddString(s string) bool {
	return f.Add(hashString(s))
}

// TestBytes reports whether a byte key is probably in the filter.
func (f *Filter) TestBytes(data []byte) bool {
	return f.Test(hashBytes(data))
}

// TestString reports whether a string key is probably in the filter.
func (f *Filter) TestString(s string) bool {
	return f.Test(hashString(s))
}

// Reset zeroes the active storage, emptying the filter. It does not
// change stages: an upgraded filter stays upgraded.
func (f *Filter) Reset() {
	if f.bits != nil {
		clear(f.bits)
		return
	}
	clear(f.buckets)
	f.count = 0
}

// Upgraded reports whether the filter has migrated to the approximate
// bloom stage. The transition is one-way.
func (f *Filter) Upgraded() bool {
	return f.bits != nil
}

// Cap returns the bloom stage capacity in bits.
func (f *Filter) Cap() uint64 {
	return f.m
}

// K returns the number of bit probes per key in the bloom stage.
func (f *Filter) K() int {
	return f.k
}

// MemSize returns the memory footprint in bytes: the filter struct plus
// whichever storage is currently active.
func (f *Filter) MemSize() int {
	size := int(unsafe.Sizeof(*f))
	if f.bits != nil {
		return size + len(f.bits)
	}
	return size + len(f.rawTable)
}

// Close returns the filter's storage to its allocator. The filter must
// not be used afterward. Close is only required when using a custom
// allocator; heap-backed filters can simply be dropped.
func (f *Filter) Close() {
	if f.bits != nil {
		f.alloc.Free(f.bits)
		f.bits = nil
	}
	if f.rawTable != nil {
		f.alloc.Free(f.rawTable)
		f.rawTable = nil
		f.buckets = nil
	}
	f.count = 0
}

// grow runs the grow-or-upgrade decision when the table hits its 50%
// load cap. The next table doubling is compared against the bloom bit
// array's fixed cost: if the doubled table would use at least as much
// memory, every stored key is migrated into the bit array and the
// filter switches stages for good; otherwise the table doubles and
// every key is re-inserted, since robin hood placement is positional
// and cannot be block-copied across table sizes.
//
// New storage is allocated before old storage is released, so a failed
// allocation leaves the filter untouched.
func (f *Filter) grow() bool {
	oldRaw, old := f.rawTable, f.buckets
	nbuckets := initialBuckets
	if len(old) > 0 {
		nbuckets = len(old) * 2
	}
	if uint64(nbuckets)*8 >= f.m>>3 {
		bits, err := f.alloc.Alloc(int(f.m >> 3))
		if err != nil {
			return false
		}
		f.bits = bits
		f.rawTable, f.buckets = nil, nil
		f.count = 0
		for _, e := range old {
			if e>>keyBits != 0 {
				f.setBits(e)
			}
		}
	} else {
		raw, buckets, err := allocWords(f.alloc, nbuckets)
		if err != nil {
			return false
		}
		f.rawTable, f.buckets = raw, buckets
		f.count = 0
		for _, e := range old {
			if e>>keyBits != 0 {
				f.insertKey(e)
			}
		}
	}
	if oldRaw != nil {
		f.alloc.Free(oldRaw)
	}
	return true
}

// insertKey places a mixed key into the table using robin hood
// displacement: whichever of two colliding entries has probed farther
// from its ideal bucket keeps the slot. Inserting a key that is already
// present is a no-op. The caller guarantees a free slot exists.
func (f *Filter) insertKey(key uint64) {
	key &= keyMask
	dib := uint64(1)
	mask := uint64(len(f.buckets) - 1)
	i := key & mask
	for {
		e := f.buckets[i]
		if e>>keyBits == 0 {
			f.buckets[i] = key | dib<<keyBits
			f.count++
			return
		}
		if e&keyMask == key {
			return
		}
		if e>>keyBits < dib {
			f.buckets[i] = key | dib<<keyBits
			key = e & keyMask
			dib = e >> keyBits
		}
		dib++
		i = (i + 1) & mask
	}
}

// setBits sets the k bloom bits for a mixed key. The first probe comes
// from the key's low bits; each subsequent probe re-mixes the running
// value with a single avalanche round and re-masks.
func (f *Filter) setBits(key uint64) {
	key &= keyMask
	j := key & (f.m - 1)
	for i := 0; i < f.k; i++ {
		f.bits[j>>3] |= 1 << (j & 7)
		key = remix(key)
		j = key & (f.m - 1)
	}
}

// testBits checks the k bloom bits for a mixed key, returning false as
// soon as any probe finds an unset bit.
func (f *Filter) testBits(key uint64) bool {
	key &= keyMask
	j := key & (f.m - 1)
	for i := 0; i < f.k; i++ {
		if f.bits[j>>3]>>(j&7)&1 == 0 {
			return false
		}
		key = remix(key)
		j = key & (f.m - 1)
	}
	return true
}
