package rhbloom

import "github.com/zeebo/xxh3"

// Odd 64-bit constants from the mix13 finalizer.
// https://zimbry.blogspot.com/2011/09/better-bit-mixing-improving-on.html
const (
	mixC1 = 0xbf58476d1ce4e5b9
	mixC2 = 0x94d049bb133111eb
)

// mix13 is the avalanche mixer applied to every caller key before it
// touches either stage. It decorrelates sequential or low-entropy keys
// from bucket and bit selection, which both the robin hood displacement
// bound and the bloom probe independence depend on.
func mix13(key uint64) uint64 {
	key ^= key >> 30
	key *= mixC1
	key ^= key >> 27
	key *= mixC2
	key ^= key >> 31
	return key
}

// remix is a single multiply-xor round of the mixer, used to derive each
// successive bloom probe position from the previous one. The trailing
// xor-shift folds the high bits back down since probe positions are taken
// from the low bits by masking.
func remix(x uint64) uint64 {
	x *= mixC2
	x ^= x >> 31
	return x
}

// hashBytes reduces an arbitrary byte key to a 64-bit key using xxh3.
func hashBytes(data []byte) uint64 {
	return xxh3.Hash(data)
}

// hashString reduces a string key to a 64-bit key using xxh3 without
// allocating.
func hashString(s string) uint64 {
	return xxh3.HashString(s)
}
