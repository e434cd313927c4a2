// Package ratelimit provides a token bucket rate limiter for portal API calls.
//
// The portal server throttles per user session. One client instance keeps a
// single bucket for all hierarchy endpoints; exceeding the server budget
// blocks access for an extended period, so the client targets a fraction of
// the documented limit instead of the limit itself.
package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"
)

// Portal API budget. The documented per-user limit is 10800 requests/hour
// (3 req/sec); targeting 80% leaves headroom for other portal surfaces the
// user may have open (browser tabs share the same budget server-side).
const (
	portalRatePerSec    = 2.4
	portalBurstCapacity = 60
)

// RateLimiter implements a token bucket rate limiter.
// It allows bursts up to the bucket capacity, then refills at a fixed rate.
type RateLimiter struct {
	tokens       float64
	maxTokens    float64
	refillRate   float64 // tokens added per second
	lastRefill   time.Time
	lastWarnTime time.Time
	mu           sync.Mutex
}

// NewRateLimiter creates a new rate limiter.
//
// Parameters:
//   - tokensPerSecond: refill rate
//   - burstSize: maximum tokens that can accumulate
func NewRateLimiter(tokensPerSecond float64, burstSize float64) *RateLimiter {
	return &RateLimiter{
		tokens:     burstSize, // start with a full bucket
		maxTokens:  burstSize,
		refillRate: tokensPerSecond,
		lastRefill: time.Now(),
	}
}

// NewPortalRateLimiter creates the limiter shared by all hierarchy endpoints.
func NewPortalRateLimiter() *RateLimiter {
	return NewRateLimiter(portalRatePerSec, portalBurstCapacity)
}

// Wait blocks until a token is available or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	startTime := time.Now()

	if rl.tryAcquire() {
		return nil
	}

	// Warn the user once in a while if the wait will be noticeable.
	waitTime := rl.timeUntilNextToken()
	if waitTime > 2*time.Second {
		rl.mu.Lock()
		if time.Since(rl.lastWarnTime) > 10*time.Second {
			log.Printf("rate limited: waiting ~%.1fs for API capacity", waitTime.Seconds())
			rl.lastWarnTime = time.Now()
		}
		rl.mu.Unlock()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if rl.tryAcquire() {
			if actual := time.Since(startTime); actual > 5*time.Second {
				log.Printf("rate limit wait completed after %.1fs", actual.Seconds())
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.timeUntilNextToken()):
		}
	}
}

// tryAcquire attempts to acquire one token without blocking.
func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}
	return false
}

// timeUntilNextToken reports how long until at least one token is available.
func (rl *RateLimiter) timeUntilNextToken() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	tokensNeeded := 1.0 - rl.tokens
	if tokensNeeded <= 0 {
		return 0
	}
	return time.Duration(tokensNeeded / rl.refillRate * float64(time.Second))
}

// GetCurrentTokens returns the current token count (for tests).
func (rl *RateLimiter) GetCurrentTokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	tokens := rl.tokens + now.Sub(rl.lastRefill).Seconds()*rl.refillRate
	if tokens > rl.maxTokens {
		tokens = rl.maxTokens
	}
	return tokens
}
