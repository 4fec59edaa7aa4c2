package ipscore

// ForEach invokes fn for every non-zero score, in lexicographic order by
// (/16, /24, host). fn returning false stops the traversal. The return
// value is the number of callbacks invoked, including a stopping one.
//
// Iteration takes no write locks; it reads each slot with a single atomic
// load, so a concurrent writer's update is observed entirely or not at
// all. fn must not call back into the store: iteration may hold internal
// resources that make reentry deadlock-prone.
func (s *Store) ForEach(fn func(ip uint32, score int16) bool) uint64 {
	if s == nil || fn == nil {
		return 0
	}

	var count uint64
	for p16 := 0; p16 < prefix16Count; p16++ {
		row := s.rows[p16].Load()
		if row == nil {
			continue
		}
		for b := 0; b < blocksPer16; b++ {
			if !s.filter.Test(uint32(p16)<<8 | uint32(b)) {
				continue
			}
			block := row[b].Load()
			if block == nil {
				continue
			}
			if block.active.Load() == 0 {
				continue
			}

			for h := 0; h < scoresPerBlock; h++ {
				score := int16(block.scores[h].Load())
				if score == 0 {
					continue
				}
				count++
				if !fn(reconstructIP(p16, b, h), score) {
					return count
				}
			}
		}
	}

	return count
}
