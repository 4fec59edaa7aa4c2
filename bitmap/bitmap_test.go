package bitmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTestClear(t *testing.T) {
	f := New()

	prefixes := []uint32{0, 1, 31, 32, 33, 255, 256, 0xC0A801, NumPrefixes - 1}
	for _, p := range prefixes {
		assert.False(t, f.Test(p), "prefix %#x should start clear", p)
	}
	for _, p := range prefixes {
		f.Set(p)
	}
	for _, p := range prefixes {
		assert.True(t, f.Test(p), "prefix %#x should be set", p)
	}
	for _, p := range prefixes {
		f.Clear(p)
		assert.False(t, f.Test(p), "prefix %#x should be clear again", p)
	}
}

func TestBitsAreIndependent(t *testing.T) {
	f := New()

	// Neighbors within one 32-bit word must not disturb each other.
	f.Set(64)
	f.Set(65)
	f.Clear(64)

	assert.False(t, f.Test(64))
	assert.True(t, f.Test(65))
	assert.False(t, f.Test(66))
}

func TestConcurrentSet(t *testing.T) {
	f := New()

	const perWorker = 1024
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				f.Set(uint32(w*perWorker + i))
			}
		}(w)
	}
	wg.Wait()

	for p := uint32(0); p < 8*perWorker; p++ {
		assert.True(t, f.Test(p), "prefix %d", p)
	}
}
