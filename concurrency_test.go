package ipscore_test

import (
	"sync"
	"testing"

	"github.com/hupe1980/ipscore"
)

func TestConcurrentIncrSameKey(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	const (
		workers = 8
		perWorker = 1000
		ip = uint32(0xC0A80101)
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				store.Incr(ip, 1)
			}
		}()
	}
	wg.Wait()

	if got := store.Get(ip); got != workers*perWorker {
		t.Fatalf("final score is %d, want %d", got, workers*perWorker)
	}
	if got := store.Count(); got != 1 {
		t.Fatalf("Count returned %d, want 1", got)
	}
}

func TestConcurrentIncrSaturates(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	const (
		workers = 4
		perWorker = 10000
		ip = uint32(0x0A000001)
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				store.Incr(ip, 1)
			}
		}()
	}
	wg.Wait()

	// 40000 increments of 1 saturate at the score ceiling.
	if got := store.Get(ip); got != ipscore.ScoreMax {
		t.Fatalf("final score is %d, want %d", got, ipscore.ScoreMax)
	}
}

func TestConcurrentAllocationDistinctBlocks(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	// Every worker hammers a different /24 inside the same /16, racing on
	// the same stripe lock and the same directory row.
	const workers = 16

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			base := uint32(0x0A000000) | uint32(w)<<8
			for h := 0; h < 256; h++ {
				store.Set(base|uint32(h), int16(w+1))
			}
		}(w)
	}
	wg.Wait()

	if got := store.Count(); got != workers*256 {
		t.Fatalf("Count returned %d, want %d", got, workers*256)
	}
	if got := store.BlockCount(); got != workers {
		t.Fatalf("BlockCount returned %d, want %d", got, workers)
	}
	for w := 0; w < workers; w++ {
		base := uint32(0x0A000000) | uint32(w)<<8
		if got := store.Get(base | 0x7F); got != int16(w+1) {
			t.Fatalf("worker %d block holds %d", w, got)
		}
	}
}

func TestConcurrentMixedOperations(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	// Writers churn a small key space.
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				ip := uint32(0xC0A80000) | uint32(i%1024)
				store.Incr(ip, int16(w+1))
				if i%7 == 0 {
					store.Delete(ip)
				}
			}
		}(w)
	}

	// Readers and a decay sweeper race the writers.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			store.Get(uint32(0xC0A80000) | uint32(i%1024))
			if i%100 == 0 {
				store.Decay(0.9, 1)
			}
		}
	}()

	for i := 0; i < 50000; i++ {
		store.Get(uint32(0xC0A80000) | uint32(i%1024))
	}
	close(stop)
	wg.Wait()

	// Quiesced: the aggregate count must agree with a full traversal.
	var traversed uint64
	store.ForEach(func(uint32, int16) bool {
		traversed++
		return true
	})
	if got := store.Count(); got != traversed {
		t.Fatalf("Count %d disagrees with traversal %d", got, traversed)
	}
}
