package validation

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket per key. Each key may spend up to burst
// tokens, refilled evenly over window.
type RateLimiter struct {
	burst  float64
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing burst attempts per key per window.
func NewRateLimiter(burst int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(burst, window, time.Now)
	rl.cleanupTick = time.NewTicker(window)
	go rl.cleanup()
	return rl
}

func newRateLimiter(burst int, window time.Duration, now func() time.Time) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		burst:   float64(burst),
		window:  window,
		now:     now,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
}

// Allow spends one token for key and reports whether one was available.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst, lastSeen: now}
		rl.buckets[key] = b
	} else if elapsed := now.Sub(b.lastSeen); elapsed > 0 {
		b.tokens += rl.burst * float64(elapsed) / float64(rl.window)
		if b.tokens > rl.burst {
			b.tokens = rl.burst
		}
		b.lastSeen = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Len returns the number of keys being tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) cleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.forgetIdle()
		case <-rl.done:
			return
		}
	}
}

// forgetIdle drops keys whose bucket has been full for a whole window.
func (rl *RateLimiter) forgetIdle() {
	cutoff := rl.now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		if rl.cleanupTick != nil {
			rl.cleanupTick.Stop()
		}
	})
}
