package ipscore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics
// from the coarse maintenance operations. Implement this interface to
// integrate with monitoring systems like Prometheus.
//
// Per-key reads and writes are deliberately not instrumented; at hundreds
// of millions of operations per second even an atomic counter per call
// would dominate the profile.
type MetricsCollector interface {
	// RecordBatchIncr is called after each batch increment.
	// count is the number of entries applied, duration the total time.
	RecordBatchIncr(count int, duration time.Duration)

	// RecordBulkLoad is called after each bulk load attempt.
	// lines is the number of lines processed; err is nil on success.
	RecordBulkLoad(lines uint64, duration time.Duration, err error)

	// RecordDecay is called after each decay sweep.
	// modified is the number of scores changed or zeroed.
	RecordDecay(modified uint64, duration time.Duration)

	// RecordSave is called after each archive save attempt.
	// entries is the number of entries written; err is nil on success.
	RecordSave(entries uint64, duration time.Duration, err error)

	// RecordLoad is called after each archive load attempt.
	// entries is the number of entries applied; err is nil on success.
	RecordLoad(entries uint64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBatchIncr(int, time.Duration)            {}
func (NoopMetricsCollector) RecordBulkLoad(uint64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordDecay(uint64, time.Duration)             {}
func (NoopMetricsCollector) RecordSave(uint64, time.Duration, error)       {}
func (NoopMetricsCollector) RecordLoad(uint64, time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BatchIncrCount     atomic.Int64
	BatchIncrEntries   atomic.Int64
	BulkLoadCount      atomic.Int64
	BulkLoadErrors     atomic.Int64
	BulkLoadLines      atomic.Int64
	DecayCount         atomic.Int64
	DecayModified      atomic.Int64
	SaveCount          atomic.Int64
	SaveErrors         atomic.Int64
	SaveEntries        atomic.Int64
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
	LoadEntries        atomic.Int64
}

func (c *BasicMetricsCollector) RecordBatchIncr(count int, _ time.Duration) {
	c.BatchIncrCount.Add(1)
	c.BatchIncrEntries.Add(int64(count))
}

func (c *BasicMetricsCollector) RecordBulkLoad(lines uint64, _ time.Duration, err error) {
	c.BulkLoadCount.Add(1)
	c.BulkLoadLines.Add(int64(lines))
	if err != nil {
		c.BulkLoadErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordDecay(modified uint64, _ time.Duration) {
	c.DecayCount.Add(1)
	c.DecayModified.Add(int64(modified))
}

func (c *BasicMetricsCollector) RecordSave(entries uint64, _ time.Duration, err error) {
	c.SaveCount.Add(1)
	c.SaveEntries.Add(int64(entries))
	if err != nil {
		c.SaveErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordLoad(entries uint64, _ time.Duration, err error) {
	c.LoadCount.Add(1)
	c.LoadEntries.Add(int64(entries))
	if err != nil {
		c.LoadErrors.Add(1)
	}
}
