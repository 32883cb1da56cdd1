package provider

import (
	"testing"
	"time"
)

func TestRateLimiterNoHistoryNeverBlocks(t *testing.T) {
	rl := NewRateLimiter(60, 3)

	start := time.Now()
	rl.Acquire()
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Acquire() with empty history took %v, want immediate return", elapsed)
	}
}

func TestRateLimiterPerSecondSpacing(t *testing.T) {
	rl := NewRateLimiter(60, 3)

	// Four recorded calls at a 3/s cap cannot complete in under a second.
	start := time.Now()
	for i := 0; i < 4; i++ {
		rl.Acquire()
		rl.Record()
	}
	elapsed := time.Since(start)

	if elapsed < time.Second {
		t.Errorf("4 calls at 3/s completed in %v, want >= 1s", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("4 calls at 3/s took %v, want roughly 1s", elapsed)
	}
}

func TestRateLimiterPerMinuteWait(t *testing.T) {
	rl := NewRateLimiter(3, 100)

	var slept time.Duration
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	rl.now = func() time.Time { return now }
	rl.sleep = func(d time.Duration) {
		slept += d
		now = now.Add(d)
	}

	for i := 0; i < 3; i++ {
		rl.Acquire()
		rl.Record()
		now = now.Add(time.Second)
	}

	// Window is full: the 4th acquire must wait out the oldest timestamp.
	// Compute the expectation before Acquire: the fake sleep advances now.
	want := time.Minute - now.Sub(base) + waitBuffer
	slept = 0
	rl.Acquire()

	if slept != want {
		t.Errorf("Acquire() slept %v, want %v", slept, want)
	}
	if len(rl.requests) != 0 {
		t.Errorf("history length after full-window wait = %d, want 0 (window reset)", len(rl.requests))
	}
}

func TestRateLimiterPrunesOldRequests(t *testing.T) {
	rl := NewRateLimiter(2, 100)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.sleep = func(d time.Duration) { t.Fatalf("unexpected sleep of %v", d) }

	rl.Acquire()
	rl.Record()
	now = now.Add(time.Second) // advance past the per-second interval
	rl.Acquire()
	rl.Record()

	// Both timestamps age out of the window; the next acquire is free.
	now = now.Add(61 * time.Second)
	rl.Acquire()

	if len(rl.requests) != 0 {
		t.Errorf("history length after prune = %d, want 0", len(rl.requests))
	}
}

func TestRateLimiterUnrecord(t *testing.T) {
	rl := NewRateLimiter(2, 100)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.sleep = func(d time.Duration) { t.Fatalf("unexpected sleep of %v", d) }

	rl.Acquire()
	rl.Record()
	now = now.Add(time.Second) // advance past the per-second interval
	rl.Acquire()
	rl.Record()
	rl.Unrecord()

	// The un-recorded attempt freed a slot, so the window is not full.
	now = now.Add(2 * time.Second)
	rl.Acquire()

	if got := len(rl.requests); got != 1 {
		t.Errorf("history length after Unrecord = %d, want 1", got)
	}
}

func TestRateLimiterUnrecordEmptyHistory(t *testing.T) {
	rl := NewRateLimiter(2, 2)
	rl.Unrecord() // must not panic
}
