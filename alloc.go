package rhbloom

import "unsafe"

// Allocator supplies the backing storage for a filter. Every allocation
// made over the life of a filter goes through the same allocator, and
// [Filter.Close] returns storage through Free. Implementations must
// return zeroed memory from Alloc.
//
// The default allocator is the Go heap, for which Free is a no-op. Plug
// in a custom allocator to back filters with pools or arenas.
type Allocator interface {
	// Alloc returns a zeroed buffer of the given size, or an error if
	// the allocation cannot be satisfied.
	Alloc(size int) ([]byte, error)

	// Free releases a buffer previously returned by Alloc.
	Free(buf []byte)
}

// heapAllocator is the default Allocator backed by the Go heap.
type heapAllocator struct{}

func (heapAllocator) Alloc(size int) ([]byte, error) { return make([]byte, size), nil }
func (heapAllocator) Free(buf []byte)                {}

// Option configures a filter at construction.
type Option func(*Filter)

// WithAllocator sets the allocation strategy used for the filter's
// backing storage.
func WithAllocator(a Allocator) Option {
	return func(f *Filter) {
		f.alloc = a
	}
}

// allocWords allocates n uint64s through the allocator and returns both
// the raw byte buffer, which must be kept alive and eventually freed,
// and an 8-byte aligned word view into it.
func allocWords(a Allocator, n int) (raw []byte, words []uint64, err error) {
	// Over-allocate so the word view can be aligned regardless of what
	// the allocator returns.
	raw, err = a.Alloc(n*8 + 7)
	if err != nil {
		return nil, nil, err
	}
	addr := uintptr(unsafe.Pointer(&raw[0]))
	offset := int((8 - addr%8) % 8)
	words = unsafe.Slice((*uint64)(unsafe.Pointer(&raw[offset])), n)
	return raw, words, nil
}
