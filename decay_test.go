package ipscore_test

import (
	"testing"

	"github.com/hupe1980/ipscore"
)

func TestDecayWithDeadzone(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	store.Set(0x0A000001, 100)
	store.Set(0x0A000002, 50)
	store.Set(0x0A000003, 10)
	store.Set(0x0A000004, 5)

	if got := store.Decay(0.5, 10); got != 4 {
		t.Fatalf("Decay returned %d modified, want 4", got)
	}

	checks := []struct {
		ip   uint32
		want int16
	}{
		{0x0A000001, 50},
		{0x0A000002, 25},
		{0x0A000003, 0},
		{0x0A000004, 0},
	}
	for _, c := range checks {
		if got := store.Get(c.ip); got != c.want {
			t.Fatalf("Get(%#x) after decay returned %d, want %d", c.ip, got, c.want)
		}
	}
	if got := store.Count(); got != 2 {
		t.Fatalf("Count after decay returned %d, want 2", got)
	}
}

func TestDecayRejectsBadFactor(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	store.Set(0x01020304, 100)

	for _, factor := range []float64{-0.1, 1.5, 2.0} {
		if got := store.Decay(factor, 0); got != 0 {
			t.Fatalf("Decay(%v) returned %d, want 0", factor, got)
		}
		if got := store.Get(0x01020304); got != 100 {
			t.Fatalf("Decay(%v) changed score to %d", factor, got)
		}
	}
}

func TestDecayIdentityFactor(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	store.Set(0x01020304, 100)
	store.Set(0x01020305, -200)

	if got := store.Decay(1.0, 0); got != 0 {
		t.Fatalf("Decay(1.0, 0) returned %d modified, want 0", got)
	}
	if got := store.Get(0x01020304); got != 100 {
		t.Fatalf("score changed to %d", got)
	}
}

func TestDecayZeroFactor(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	store.Set(0x01020304, 100)
	store.Set(0x0A000001, -200)
	store.Set(0xC0A80101, 300)

	before := store.Count()
	if got := store.Decay(0.0, 0); got != before {
		t.Fatalf("Decay(0.0, 0) returned %d modified, want %d", got, before)
	}
	if got := store.Count(); got != 0 {
		t.Fatalf("Count after zero decay returned %d, want 0", got)
	}
}

func TestDecayNegativeScores(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	store.Set(0x01020304, -100)
	store.Set(0x01020305, -8)

	if got := store.Decay(0.5, 10); got != 2 {
		t.Fatalf("Decay returned %d modified, want 2", got)
	}
	if got := store.Get(0x01020304); got != -50 {
		t.Fatalf("Get returned %d, want -50", got)
	}
	// -8 * 0.5 truncates to -4, inside the deadzone.
	if got := store.Get(0x01020305); got != 0 {
		t.Fatalf("Get returned %d, want 0", got)
	}
}

func TestDecayNegativeDeadzone(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	store.Set(0x01020304, 10)

	// A negative deadzone behaves as its magnitude.
	if got := store.Decay(0.5, -10); got != 1 {
		t.Fatalf("Decay returned %d modified, want 1", got)
	}
	if got := store.Get(0x01020304); got != 0 {
		t.Fatalf("Get returned %d, want 0", got)
	}
}

func TestDecayTruncatesTowardZero(t *testing.T) {
	store, _ := ipscore.New()
	defer store.Close()

	store.Set(0x01020304, 5)
	store.Set(0x01020305, -5)

	if got := store.Decay(0.5, 0); got != 2 {
		t.Fatalf("Decay returned %d modified, want 2", got)
	}
	if got := store.Get(0x01020304); got != 2 {
		t.Fatalf("5 * 0.5 should truncate to 2, got %d", got)
	}
	if got := store.Get(0x01020305); got != -2 {
		t.Fatalf("-5 * 0.5 should truncate to -2, got %d", got)
	}
}
