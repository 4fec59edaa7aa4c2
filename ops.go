package ipscore

import (
	"time"

	"github.com/hupe1980/ipscore/ipaddr"
)

// satAdd adds two scores with saturation at the score limits.
func satAdd(a, b int16) int16 {
	sum := int32(a) + int32(b)
	if sum > ScoreMax {
		return ScoreMax
	}
	if sum < ScoreMin {
		return ScoreMin
	}
	return int16(sum)
}

// Get returns the score for ip, or 0 if none is stored. Zero is both the
// neutral and the absent state; use GetEx to tell them apart.
func (s *Store) Get(ip uint32) int16 {
	if s == nil {
		return 0
	}
	block := s.lookupBlock(ip)
	if block == nil {
		return 0
	}
	return int16(block.scores[ipaddr.HostIndex(ip)].Load())
}

// GetEx returns the score for ip and whether one is present. A stored
// zero reports ok == false, consistent with zero being the absent state.
func (s *Store) GetEx(ip uint32) (score int16, ok bool) {
	if s == nil {
		return 0, false
	}
	block := s.lookupBlock(ip)
	if block == nil {
		return 0, false
	}
	score = int16(block.scores[ipaddr.HostIndex(ip)].Load())
	if score == 0 {
		return 0, false
	}
	return score, true
}

// Set stores score for ip and returns the previous score. Storing zero is
// equivalent to Delete. A zero return means the previous score was zero or
// the entry was absent.
func (s *Store) Set(ip uint32, score int16) int16 {
	if s == nil {
		return 0
	}
	block := s.getOrAllocBlock(ip)
	host := ipaddr.HostIndex(ip)

	block.mu.Lock()
	old := int16(block.scores[host].Load())
	block.scores[host].Store(int32(score))
	s.adjustCounts(block, old, score)
	block.mu.Unlock()

	return old
}

// Incr adds delta to the score for ip with saturation and returns the new
// score. A zero delta is a plain read.
func (s *Store) Incr(ip uint32, delta int16) int16 {
	if s == nil {
		return 0
	}
	if delta == 0 {
		return s.Get(ip)
	}

	block := s.getOrAllocBlock(ip)
	host := ipaddr.HostIndex(ip)

	block.mu.Lock()
	old := int16(block.scores[host].Load())
	updated := satAdd(old, delta)
	block.scores[host].Store(int32(updated))
	s.adjustCounts(block, old, updated)
	block.mu.Unlock()

	return updated
}

// Decr subtracts delta from the score for ip with saturation and returns
// the new score. A delta of -32768 cannot be negated in 16 bits and is
// treated as the maximum decrement.
func (s *Store) Decr(ip uint32, delta int16) int16 {
	if delta == -32768 {
		return s.Incr(ip, ScoreMax)
	}
	return s.Incr(ip, -delta)
}

// Delete removes the score for ip. Deleting an absent entry succeeds. The
// block keeps its bitmap bit until the next decay sweep, load or clear.
func (s *Store) Delete(ip uint32) error {
	if s == nil {
		return ErrNilStore
	}

	block := s.lookupBlock(ip)
	if block == nil {
		return nil
	}
	host := ipaddr.HostIndex(ip)

	block.mu.Lock()
	if old := int16(block.scores[host].Load()); old != 0 {
		block.scores[host].Store(0)
		block.active.Add(^uint32(0))
		s.scoreCount.Add(^uint64(0))
	}
	block.mu.Unlock()

	return nil
}

// IncrBatch applies one increment per (ip, delta) pair and returns the
// number applied. When the slices differ in length only the first
// min(len(ips), len(deltas)) pairs are applied. The batch is not atomic across keys; observers may see partial
// progress.
func (s *Store) IncrBatch(ips []uint32, deltas []int16) int {
	if s == nil || len(ips) == 0 || len(deltas) == 0 {
		return 0
	}
	n := len(ips)
	if len(deltas) < n {
		n = len(deltas)
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		s.Incr(ips[i], deltas[i])
	}
	s.metrics.RecordBatchIncr(n, time.Since(start))

	return n
}

// GetString is Get for a dotted-decimal address. An unparseable address
// returns 0.
func (s *Store) GetString(ip string) int16 {
	u, ok := ipaddr.Parse(ip)
	if !ok {
		return 0
	}
	return s.Get(u)
}

// SetString is Set for a dotted-decimal address. The zero return of an
// unparseable address is indistinguishable from a previous score of zero;
// validate addresses up front when that matters.
func (s *Store) SetString(ip string, score int16) int16 {
	u, ok := ipaddr.Parse(ip)
	if !ok {
		return 0
	}
	return s.Set(u, score)
}

// IncrString is Incr for a dotted-decimal address. An unparseable address
// returns 0.
func (s *Store) IncrString(ip string, delta int16) int16 {
	u, ok := ipaddr.Parse(ip)
	if !ok {
		return 0
	}
	return s.Incr(u, delta)
}

// DecrString is Decr for a dotted-decimal address. An unparseable address
// returns 0.
func (s *Store) DecrString(ip string, delta int16) int16 {
	if delta == -32768 {
		return s.IncrString(ip, ScoreMax)
	}
	return s.IncrString(ip, -delta)
}

// DeleteString is Delete for a dotted-decimal address.
func (s *Store) DeleteString(ip string) error {
	if s == nil {
		return ErrNilStore
	}
	u, ok := ipaddr.Parse(ip)
	if !ok {
		return ErrInvalidArgument
	}
	return s.Delete(u)
}
