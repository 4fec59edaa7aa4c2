// Package ipscore provides a high-performance embedded scoring engine for
// IPv4 addresses.
//
// The store maps 32-bit IPv4 keys to bounded signed 16-bit scores and is
// built for event-stream workloads: hundreds of millions of reads per
// second against a sparse key population where most lookups miss. A dense
// 2 MiB bitmap rejects misses at /24 granularity before any pointer chase;
// hits walk a two-level directory (/16 row, /24 block) of atomically
// published pointers, so reads never take a lock.
//
// # Quick Start
//
//	store, _ := ipscore.New()
//	defer store.Close()
//
//	store.SetString("192.168.1.100", 50)
//	store.IncrString("192.168.1.100", 10)   // 60
//	score := store.GetString("192.168.1.100")
//
// # Maintenance
//
// Scores accumulated from event streams are aged with a periodic decay
// sweep and persisted with an atomic snapshot:
//
//	store.Decay(0.9, 5)          // multiply by 0.9, drop |score| <= 5
//	store.Save("scores.archive") // temp file + atomic rename
//	store.Load("scores.archive") // replaces current contents
//
// Bulk ingestion from threat-intel CSV feeds (optionally gzip/zstd/lz4
// compressed) goes through BulkLoadFile and BulkLoadBuffer.
//
// # Semantics
//
// Zero is the neutral state: storing zero is a delete, and the scalar
// getters return zero for both "absent" and "stored zero". Callers that
// must distinguish the two use GetEx. All arithmetic saturates at ±32767
// instead of wrapping.
//
// A store is safe for any mixture of concurrent callers. Writes to one
// address are totally ordered; no ordering is promised across addresses.
package ipscore
