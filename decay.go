package ipscore

import "time"

// Decay ages every score: each non-zero slot is multiplied by factor
// (truncating toward zero) and zeroed when its magnitude lands at or below
// deadzone. Emptied blocks have their bitmap bit cleared, restoring the
// fast-negative path for their /24. The return value counts every slot
// that changed, with decay-then-zero counted once.
//
// A factor outside [0, 1] is rejected with no effect. A negative deadzone
// uses its magnitude. The sweep holds one block lock at a time; readers
// race freely and see pre- or post-decay values per key.
func (s *Store) Decay(factor float64, deadzone int16) uint64 {
	if s == nil {
		return 0
	}
	if factor < 0.0 || factor > 1.0 {
		return 0
	}
	if deadzone == -32768 {
		// 32768 does not fit in int16; ScoreMax zeroes every score alike.
		deadzone = ScoreMax
	} else if deadzone < 0 {
		deadzone = -deadzone
	}

	start := time.Now()
	var modified uint64

	for p16 := 0; p16 < prefix16Count; p16++ {
		row := s.rows[p16].Load()
		if row == nil {
			continue
		}
		for b := 0; b < blocksPer16; b++ {
			prefix24 := uint32(p16)<<8 | uint32(b)
			if !s.filter.Test(prefix24) {
				continue
			}
			block := row[b].Load()
			if block == nil {
				continue
			}
			if block.active.Load() == 0 {
				s.filter.Clear(prefix24)
				continue
			}

			block.mu.Lock()
			for h := 0; h < scoresPerBlock; h++ {
				old := int16(block.scores[h].Load())
				if old == 0 {
					continue
				}

				updated := int16(float64(old) * factor)
				if updated >= -deadzone && updated <= deadzone {
					updated = 0
				}
				if updated == old {
					continue
				}

				block.scores[h].Store(int32(updated))
				modified++
				if updated == 0 {
					block.active.Add(^uint32(0))
					s.scoreCount.Add(^uint64(0))
				}
			}
			if block.active.Load() == 0 {
				s.filter.Clear(prefix24)
			}
			block.mu.Unlock()
		}
	}

	elapsed := time.Since(start)
	s.metrics.RecordDecay(modified, elapsed)
	s.logger.Debug("decay sweep complete",
		"factor", factor,
		"deadzone", deadzone,
		"modified", modified,
		"elapsed", elapsed,
	)

	return modified
}
