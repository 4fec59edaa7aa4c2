package ipscore

import (
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/ipscore/bitmap"
	"github.com/hupe1980/ipscore/ipaddr"
)

// ScoreMin and ScoreMax bound every stored score. Arithmetic saturates at
// these limits instead of wrapping.
const (
	ScoreMin = -32767
	ScoreMax = 32767
)

// Version is the semantic version of the engine.
const Version = "1.0.0"

// Store is a concurrent in-memory score store for IPv4 addresses.
//
// Internally it keeps a dense /24 bitmap pre-filter, a lazily allocated
// two-level block directory and a striped pool of allocation locks. Reads
// are lock-free; writes take a single per-block lock. The zero value is
// not usable; create stores with New. All methods are safe on a nil
// receiver: reads and counters report an empty store, and methods with
// an error result return ErrNilStore.
type Store struct {
	filter     *bitmap.Filter
	rows       [prefix16Count]atomic.Pointer[blockRow]
	allocLocks [allocStripes]blockLock

	// Advisory aggregates, updated with relaxed atomics.
	scoreCount atomic.Uint64
	blockCount atomic.Uint64
	memoryUsed atomic.Uint64

	newLock func() blockLock
	logger  *Logger
	metrics MetricsCollector
}

// New creates an empty store.
func New(optFns ...Option) (*Store, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{
		filter:  bitmap.New(),
		newLock: newSpinLock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if opts.AdaptiveLocks {
		s.newLock = newAdaptiveLock
	}
	if s.logger == nil {
		s.logger = NoopLogger()
	}
	if s.metrics == nil {
		s.metrics = NoopMetricsCollector{}
	}

	for i := range s.allocLocks {
		s.allocLocks[i] = s.newLock()
	}

	s.memoryUsed.Store(uint64(unsafe.Sizeof(*s)) + bitmap.Bytes)

	s.logger.Debug("store created",
		"adaptive_locks", opts.AdaptiveLocks,
		"base_bytes", s.memoryUsed.Load(),
	)

	return s, nil
}

// Close releases the store. It is safe to call on a nil store; using the
// store after Close is not supported.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.logger.Debug("store closed",
		"scores", s.scoreCount.Load(),
		"blocks", s.blockCount.Load(),
	)
	return nil
}

// Clear zeroes every score, resets every active count and clears every
// bitmap bit. Blocks and directory rows stay allocated for reuse.
func (s *Store) Clear() error {
	if s == nil {
		return ErrNilStore
	}

	for p16 := 0; p16 < prefix16Count; p16++ {
		row := s.rows[p16].Load()
		if row == nil {
			continue
		}
		for b := 0; b < blocksPer16; b++ {
			block := row[b].Load()
			if block == nil {
				continue
			}

			block.mu.Lock()
			for h := 0; h < scoresPerBlock; h++ {
				block.scores[h].Store(0)
			}
			block.active.Store(0)
			block.mu.Unlock()

			s.filter.Clear(uint32(p16)<<8 | uint32(b))
		}
	}

	s.scoreCount.Store(0)
	return nil
}

// Count returns the number of non-zero scores in the store.
func (s *Store) Count() uint64 {
	if s == nil {
		return 0
	}
	return s.scoreCount.Load()
}

// BlockCount returns the number of allocated /24 blocks.
func (s *Store) BlockCount() uint64 {
	if s == nil {
		return 0
	}
	return s.blockCount.Load()
}

// MemoryUsage returns the bytes accounted to the store: its base
// structures plus every allocated directory row and block.
func (s *Store) MemoryUsage() uint64 {
	if s == nil {
		return 0
	}
	return s.memoryUsed.Load()
}

// reconstructIP is a convenience for walk loops over the directory.
func reconstructIP(prefix16, blockIdx, hostIdx int) uint32 {
	return ipaddr.FromParts(uint16(prefix16), uint8(blockIdx), uint8(hostIdx))
}
