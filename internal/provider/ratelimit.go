package provider

import (
	"sync"
	"time"
)

// waitBuffer is added on top of the computed per-minute wait so the oldest
// request has actually aged out of the window when we resume.
const waitBuffer = 100 * time.Millisecond

// RateLimiter is a sliding window rate limiter enforcing both a per-window
// (normally per-minute) cap and a per-second cap on outbound API calls.
//
// Acquire only blocks; it never records. The caller records its own timestamp
// with Record after Acquire returns, and may Unrecord it again if the provider
// rejected the attempt (HTTP 429), so a rejected call does not count against
// the window.
type RateLimiter struct {
	mu        sync.Mutex
	requests  []time.Time
	perWindow int
	perSecond int
	window    time.Duration

	// Overridable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewRateLimiter creates a limiter allowing perWindow calls per rolling minute
// and perSecond calls per second.
func NewRateLimiter(perWindow, perSecond int) *RateLimiter {
	return &RateLimiter{
		perWindow: perWindow,
		perSecond: perSecond,
		window:    time.Minute,
		requests:  make([]time.Time, 0, perWindow),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Acquire blocks until one more call can be issued within the configured
// limits. It never fails; a full window is waited out, a too-recent call is
// spaced to the per-second interval. A limiter with no recorded calls returns
// immediately.
func (r *RateLimiter) Acquire() {
	r.mu.Lock()

	now := r.now()
	r.prune(now)

	if len(r.requests) >= r.perWindow {
		// Wait until the oldest request leaves the window, then reset it.
		wait := r.window - now.Sub(r.requests[0]) + waitBuffer
		r.mu.Unlock()
		r.sleep(wait)
		r.mu.Lock()
		r.requests = r.requests[:0]
		r.mu.Unlock()
		return
	}

	interval := time.Second / time.Duration(r.perSecond)
	var wait time.Duration
	for _, t := range r.requests {
		if since := now.Sub(t); since < interval && interval-since > wait {
			wait = interval - since
		}
	}
	r.mu.Unlock()
	if wait > 0 {
		r.sleep(wait)
	}
}

// Record adds the current time to the call history. Call it once per issued
// request, after Acquire returns.
func (r *RateLimiter) Record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, r.now())
}

// Unrecord removes the most recent timestamp, un-counting a request the
// provider rejected.
func (r *RateLimiter) Unrecord() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) > 0 {
		r.requests = r.requests[:len(r.requests)-1]
	}
}

// prune drops timestamps older than the window. Caller holds the lock.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	kept := r.requests[:0]
	for _, t := range r.requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.requests = kept
}
