// Package bitmap implements the dense /24 pre-filter used by the scoring
// engine: one bit per possible /24 network (2^24 bits, 2 MiB), telling
// readers whether a block may hold non-zero scores.
//
// The filter is mutated with atomic word operations only, so it is safe
// for any mixture of concurrent readers and writers. A set bit is a hint
// (the block may be empty); a clear bit is a guarantee (no non-zero score
// exists under that /24).
package bitmap

import "sync/atomic"

const (
	// NumPrefixes is the number of /24 networks tracked, one bit each.
	NumPrefixes = 1 << 24

	// Bytes is the backing size of the filter.
	Bytes = NumPrefixes / 8

	numWords = NumPrefixes / 32
)

// Filter is the 2 MiB dense bit array, indexed by /24 prefix.
type Filter struct {
	words []uint32
}

// New allocates a zeroed filter and requests huge-page backing for it on
// platforms that support the hint.
func New() *Filter {
	f := &Filter{words: make([]uint32, numWords)}
	adviseHugePages(f.words)
	return f
}

// Test reports whether the bit for prefix24 is set.
func (f *Filter) Test(prefix24 uint32) bool {
	word := atomic.LoadUint32(&f.words[prefix24>>5])
	return word&(1<<(prefix24&31)) != 0
}

// Set sets the bit for prefix24.
func (f *Filter) Set(prefix24 uint32) {
	atomicOr32(&f.words[prefix24>>5], 1<<(prefix24&31))
}

// Clear clears the bit for prefix24.
func (f *Filter) Clear(prefix24 uint32) {
	atomicAnd32(&f.words[prefix24>>5], ^uint32(1<<(prefix24&31)))
}

// atomicOr32 and atomicAnd32 back-port sync/atomic's OrUint32/AndUint32
// (added in Go 1.23) via a CAS loop for toolchains older than that.
func atomicOr32(addr *uint32, mask uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if atomic.CompareAndSwapUint32(addr, old, old|mask) {
			return
		}
	}
}

func atomicAnd32(addr *uint32, mask uint32) {
	for {
		old := atomic.LoadUint32(addr)
		if atomic.CompareAndSwapUint32(addr, old, old&mask) {
			return
		}
	}
}
