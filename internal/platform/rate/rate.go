// Package rate provides per-key token bucket limiters so each analyzer can be
// throttled independently. Buckets are golang.org/x/time/rate limiters.
package rate

import (
	"context"
	"sync"

	xrate "golang.org/x/time/rate"
)

// Set holds one limiter per key (analyzer name).
// Keys configured with a non-positive rate are never throttled.
type Set struct {
	mu       sync.Mutex
	limiters map[string]*xrate.Limiter
}

// NewSet creates an empty limiter set.
func NewSet() *Set {
	return &Set{
		limiters: make(map[string]*xrate.Limiter),
	}
}

// Configure sets the rate (operations per second) and burst for key.
// A rate <= 0 removes any limit for key.
//
// Example:
//
//	limits := rate.NewSet()
//	limits.Configure("factcheck", 2, 1) // 2 req/s, burst of 1
func (s *Set) Configure(key string, perSecond float64, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if perSecond <= 0 {
		delete(s.limiters, key)
		return
	}
	if burst <= 0 {
		burst = 1
	}

	if existing, ok := s.limiters[key]; ok {
		existing.SetLimit(xrate.Limit(perSecond))
		existing.SetBurst(burst)
		return
	}
	s.limiters[key] = xrate.NewLimiter(xrate.Limit(perSecond), burst)
}

// Wait blocks until key may proceed or ctx is done.
// Unknown keys proceed immediately.
func (s *Set) Wait(ctx context.Context, key string) error {
	limiter := s.get(key)
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// Allow reports whether key may proceed immediately, consuming a token if so.
func (s *Set) Allow(key string) bool {
	limiter := s.get(key)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

// Limit returns the configured rate for key (0 = unlimited).
func (s *Set) Limit(key string) float64 {
	limiter := s.get(key)
	if limiter == nil {
		return 0
	}
	return float64(limiter.Limit())
}

func (s *Set) get(key string) *xrate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limiters[key]
}
