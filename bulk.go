package ipscore

import (
	"fmt"

	"github.com/hupe1980/ipscore/bulkload"
)

// BulkLoadFile ingests a CSV score feed from path. See package bulkload
// for the accepted grammar; ".gz", ".zst" and ".lz4" files are
// decompressed while streaming. Per-line parse failures are tallied in
// the result, not fatal.
func (s *Store) BulkLoadFile(path string) (bulkload.Result, error) {
	if s == nil {
		return bulkload.Result{}, ErrNilStore
	}
	return s.runBulkLoad(func(l *bulkload.Loader) (bulkload.Result, error) {
		return l.LoadFile(path)
	})
}

// BulkLoadBuffer ingests a CSV score feed from an in-memory buffer with
// the same per-line semantics as BulkLoadFile.
func (s *Store) BulkLoadBuffer(data []byte) (bulkload.Result, error) {
	if s == nil {
		return bulkload.Result{}, ErrNilStore
	}
	return s.runBulkLoad(func(l *bulkload.Loader) (bulkload.Result, error) {
		return l.LoadBuffer(data)
	})
}

func (s *Store) runBulkLoad(load func(l *bulkload.Loader) (bulkload.Result, error)) (bulkload.Result, error) {
	loader := bulkload.New(s, func(o *bulkload.Options) {
		o.Logger = s.logger.Logger
	})

	res, err := load(loader)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrIO, err)
	}
	s.metrics.RecordBulkLoad(res.LinesProcessed, res.Elapsed, err)
	return res, err
}
