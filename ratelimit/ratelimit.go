// Package ratelimit provides token bucket rate limiting, globally or per key.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket creates a new token bucket limiter
// capacity: maximum number of tokens
// refillRate: tokens added per second
func NewTokenBucket(capacity float64, refillRate float64) *TokenBucket {
	return newTokenBucket(capacity, refillRate, time.Now)
}

func newTokenBucket(capacity, refillRate float64, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// Allow checks if a request is allowed without blocking
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.now())
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// full reports whether the bucket has refilled completely, meaning it
// carries no state worth keeping.
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	return tb.tokens >= tb.capacity
}

// Keyed keeps one token bucket per key, typically a client IP.
// Buckets that have refilled completely are dropped on a periodic sweep, so
// memory stays bounded by the number of recently active keys.
type Keyed struct {
	mu         sync.Mutex
	buckets    map[string]*TokenBucket
	capacity   float64
	refillRate float64
	sweepEvery time.Duration
	lastSweep  time.Time
	now        func() time.Time
}

// NewKeyed creates a per-key limiter allowing burst requests at once and
// rate requests per second after that.
func NewKeyed(burst int, rate float64) *Keyed {
	return newKeyed(burst, rate, time.Now)
}

func newKeyed(burst int, rate float64, now func() time.Time) *Keyed {
	return &Keyed{
		buckets:    make(map[string]*TokenBucket),
		capacity:   float64(burst),
		refillRate: rate,
		sweepEvery: time.Minute,
		lastSweep:  now(),
		now:        now,
	}
}

// Allow reports whether a request for key may proceed.
func (k *Keyed) Allow(key string) bool {
	return k.bucket(key).Allow()
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *Keyed) bucket(key string) *TokenBucket {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= k.sweepEvery {
		for key, b := range k.buckets {
			if b.full(now) {
				delete(k.buckets, key)
			}
		}
		k.lastSweep = now
	}

	b, ok := k.buckets[key]
	if !ok {
		b = newTokenBucket(k.capacity, k.refillRate, k.now)
		k.buckets[key] = b
	}
	return b
}
