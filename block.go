package ipscore

import (
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/ipscore/ipaddr"
)

const (
	prefix16Count  = 1 << 16
	blocksPer16    = 256
	scoresPerBlock = 256
	allocStripes   = 256
)

// cidrBlock holds the scores for one /24 network: 256 host slots, a write
// lock, and the count of non-zero slots. Score cells live in atomic.Int32
// cells (Go has no 16-bit atomics); values never leave the int16 range.
//
// The leading pad keeps the lock and active count on their own cache line,
// with the score array starting on the next one. Blocks are allocated once
// and never moved or shrunk.
type cidrBlock struct {
	mu     blockLock
	active atomic.Uint32
	_      [44]byte
	scores [scoresPerBlock]atomic.Int32
}

// blockRow is the /16-level array of /24 block pointers.
type blockRow [blocksPer16]atomic.Pointer[cidrBlock]

var (
	blockBytes = uint64(unsafe.Sizeof(cidrBlock{}))
	rowBytes   = uint64(unsafe.Sizeof(blockRow{}))
)

// lookupBlock returns the block for ip, or nil. It takes no locks: the
// bitmap rejects most misses, then two acquire loads walk the directory.
func (s *Store) lookupBlock(ip uint32) *cidrBlock {
	if !s.filter.Test(ipaddr.Prefix24(ip)) {
		return nil
	}
	row := s.rows[ipaddr.Prefix16(ip)].Load()
	if row == nil {
		return nil
	}
	return row[ipaddr.BlockIndex(ip)].Load()
}

// getOrAllocBlock returns the block for ip, allocating the directory row
// and the block if needed. Allocation serializes on the stripe lock for
// the /16 prefix; the double-check after acquiring it eliminates redundant
// allocation. Published pointers are never rolled back.
func (s *Store) getOrAllocBlock(ip uint32) *cidrBlock {
	prefix16 := ipaddr.Prefix16(ip)
	blockIdx := ipaddr.BlockIndex(ip)
	prefix24 := ipaddr.Prefix24(ip)

	// Fast path: block already published. Re-arm the bitmap bit in case a
	// sweep cleared it while the block sat empty; test first so the common
	// case stays a read.
	if row := s.rows[prefix16].Load(); row != nil {
		if block := row[blockIdx].Load(); block != nil {
			if !s.filter.Test(prefix24) {
				s.filter.Set(prefix24)
			}
			return block
		}
	}

	lock := s.allocLocks[prefix16%allocStripes]
	lock.Lock()
	defer lock.Unlock()

	row := s.rows[prefix16].Load()
	if row == nil {
		row = new(blockRow)
		s.memoryUsed.Add(rowBytes)
		s.rows[prefix16].Store(row)
	}

	block := row[blockIdx].Load()
	if block == nil {
		block = &cidrBlock{mu: s.newLock()}
		s.blockCount.Add(1)
		s.memoryUsed.Add(blockBytes)
		row[blockIdx].Store(block)
		s.filter.Set(prefix24)
	}

	return block
}

// adjustCounts maintains the block's active count and the store total when
// a slot crosses zero in either direction. Caller holds the block lock.
func (s *Store) adjustCounts(block *cidrBlock, old, updated int16) {
	switch {
	case old == 0 && updated != 0:
		block.active.Add(1)
		s.scoreCount.Add(1)
	case old != 0 && updated == 0:
		block.active.Add(^uint32(0))
		s.scoreCount.Add(^uint64(0))
	}
}
