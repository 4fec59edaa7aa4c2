package ipscore

import (
	"errors"
	"io"
	"time"

	"github.com/hupe1980/ipscore/archive"
)

// Save writes every non-zero score to an archive at path, using a sibling
// temporary file and an atomic rename so a crash leaves either the old
// archive or the new one, never a torn file.
//
// The snapshot takes no block locks; entries are read with single atomic
// loads, so a save concurrent with writers captures each key's value at
// some point during the walk.
func (s *Store) Save(path string) error {
	if s == nil {
		return ErrNilStore
	}

	start := time.Now()
	var entries uint64

	err := archive.Save(path, func(w *archive.Writer) error {
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
				if block.active.Load() == 0 {
					continue
				}
				for h := 0; h < scoresPerBlock; h++ {
					score := int16(block.scores[h].Load())
					if score == 0 {
						continue
					}
					if err := w.Append(reconstructIP(p16, b, h), score); err != nil {
						return err
					}
				}
			}
		}
		entries = w.Count()
		return nil
	})
	if err != nil {
		err = translateArchiveError(err)
	}

	elapsed := time.Since(start)
	s.metrics.RecordSave(entries, elapsed, err)
	if err != nil {
		s.logger.WithPath(path).Error("archive save failed", "error", err)
		return err
	}
	s.logger.WithPath(path).Info("archive saved",
		"entries", entries,
		"elapsed", elapsed,
	)
	return nil
}

// Load replaces the store's contents with the archive at path. The header
// is validated first; a corrupt header leaves the store untouched. Once
// entries start applying, a short or truncated file surfaces as an I/O
// failure and leaves the store cleared.
func (s *Store) Load(path string) error {
	if s == nil {
		return ErrNilStore
	}

	start := time.Now()
	var entries uint64

	err := archive.Load(path, func(r *archive.Reader) error {
		if err := s.Clear(); err != nil {
			return err
		}
		for {
			ip, score, err := r.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				_ = s.Clear()
				return err
			}
			if score == 0 {
				continue
			}
			s.Set(ip, score)
			entries++
		}
	})
	if err != nil {
		err = translateArchiveError(err)
	}

	elapsed := time.Since(start)
	s.metrics.RecordLoad(entries, elapsed, err)
	if err != nil {
		s.logger.WithPath(path).Error("archive load failed", "error", err)
		return err
	}
	s.logger.WithPath(path).Info("archive loaded",
		"entries", entries,
		"elapsed", elapsed,
	)
	return nil
}
