package ratelimiter

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RatePolicy defines the rate limit configuration for a namespace: at most
// MaxAttempts in a burst, refilled evenly over Window.
type RatePolicy struct {
	MaxAttempts int
	Window      time.Duration
}

func (p RatePolicy) limit() rate.Limit {
	if p.MaxAttempts <= 0 || p.Window <= 0 {
		return 0
	}
	return rate.Every(p.Window / time.Duration(p.MaxAttempts))
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	window   time.Duration
}

// RateLimiter provides keyed token-bucket rate limiting with namespace support.
//
// Example usage:
//
//	rl := ratelimiter.NewRateLimiter()
//	rl.SetPolicy("mls", 30, time.Minute)
//
//	if !rl.Allow("mls", userID) {
//	    return http.StatusTooManyRequests
//	}
type RateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*entry     // "namespace:key" -> bucket
	policies    map[string]RatePolicy // namespace -> policy
	stopCleanup chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

// NewRateLimiter creates a new rate limiter and starts a background
// goroutine that drops idle buckets.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		entries:     make(map[string]*entry),
		policies:    make(map[string]RatePolicy),
		stopCleanup: make(chan struct{}),
		now:         time.Now,
	}

	go rl.cleanupLoop()

	return rl
}

// SetPolicy configures the rate limit policy for a namespace. Existing
// buckets in the namespace are reset.
func (rl *RateLimiter) SetPolicy(namespace string, maxAttempts int, window time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.policies[namespace] = RatePolicy{
		MaxAttempts: maxAttempts,
		Window:      window,
	}
	prefix := namespace + ":"
	for k := range rl.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(rl.entries, k)
		}
	}
}

// Allow reports whether one more attempt for namespace and key is allowed,
// consuming a token if so. Namespaces without a policy are denied.
func (rl *RateLimiter) Allow(namespace, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e := rl.entryLocked(namespace, key)
	if e == nil {
		return false
	}
	now := rl.now()
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Reset clears the bucket for namespace and key
func (rl *RateLimiter) Reset(namespace, key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.entries, namespace+":"+key)
}

// GetRemainingWindow returns the number of seconds until the next attempt
// would be allowed, for a Retry-After header. Zero means allowed now.
func (rl *RateLimiter) GetRemainingWindow(namespace, key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[namespace+":"+key]
	if !ok {
		return 0
	}
	limit := e.limiter.Limit()
	if limit <= 0 {
		return 0
	}
	tokens := e.limiter.TokensAt(rl.now())
	if tokens >= 1 {
		return 0
	}
	return int(math.Ceil((1 - tokens) / float64(limit)))
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *RateLimiter) entryLocked(namespace, key string) *entry {
	policy, exists := rl.policies[namespace]
	if !exists {
		return nil
	}
	compositeKey := namespace + ":" + key
	e, ok := rl.entries[compositeKey]
	if !ok {
		e = &entry{
			limiter: rate.NewLimiter(policy.limit(), policy.MaxAttempts),
			window:  policy.Window,
		}
		rl.entries[compositeKey] = e
	}
	return e
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup drops buckets idle for longer than their window; such a bucket
// would be full again anyway.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for k, e := range rl.entries {
		if now.Sub(e.lastSeen) > e.window {
			delete(rl.entries, k)
		}
	}
}
