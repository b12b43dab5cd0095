package ratelimiter

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter()
	rl.now = clock.Now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter()
	require.NotNil(t, rl)
	assert.NotNil(t, rl.entries)
	assert.NotNil(t, rl.policies)
	assert.NotNil(t, rl.stopCleanup)

	rl.Stop()
}

func TestRateLimiter_SetPolicy(t *testing.T) {
	rl, _ := newTestLimiter(t)

	rl.SetPolicy("mls", 5, time.Minute)

	rl.mu.Lock()
	policy, exists := rl.policies["mls"]
	rl.mu.Unlock()

	assert.True(t, exists)
	assert.Equal(t, 5, policy.MaxAttempts)
	assert.Equal(t, time.Minute, policy.Window)
}

func TestRateLimiter_Allow_BasicLimiting(t *testing.T) {
	rl, _ := newTestLimiter(t)
	rl.SetPolicy("mls", 3, time.Minute)

	assert.True(t, rl.Allow("mls", "user-1"))
	assert.True(t, rl.Allow("mls", "user-1"))
	assert.True(t, rl.Allow("mls", "user-1"))
	assert.False(t, rl.Allow("mls", "user-1"), "fourth attempt in a burst should be denied")
}

func TestRateLimiter_Allow_MissingPolicy(t *testing.T) {
	rl, _ := newTestLimiter(t)

	assert.False(t, rl.Allow("unknown", "user-1"))
}

func TestRateLimiter_Allow_Refill(t *testing.T) {
	rl, clock := newTestLimiter(t)
	rl.SetPolicy("mls", 3, 3*time.Second)

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("mls", "user-1"))
	}
	assert.False(t, rl.Allow("mls", "user-1"))

	// one token per second
	clock.Advance(time.Second)
	assert.True(t, rl.Allow("mls", "user-1"))
	assert.False(t, rl.Allow("mls", "user-1"))

	clock.Advance(3 * time.Second)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("mls", "user-1"))
	}
}

func TestRateLimiter_Allow_DifferentKeys(t *testing.T) {
	rl, _ := newTestLimiter(t)
	rl.SetPolicy("mls", 1, time.Minute)

	assert.True(t, rl.Allow("mls", "user-1"))
	assert.False(t, rl.Allow("mls", "user-1"))
	assert.True(t, rl.Allow("mls", "user-2"))
}

func TestRateLimiter_NamespaceIndependence(t *testing.T) {
	rl, _ := newTestLimiter(t)
	rl.SetPolicy("mls", 1, time.Minute)
	rl.SetPolicy("signin", 2, time.Minute)

	assert.True(t, rl.Allow("mls", "k"))
	assert.False(t, rl.Allow("mls", "k"))

	assert.True(t, rl.Allow("signin", "k"))
	assert.True(t, rl.Allow("signin", "k"))
	assert.False(t, rl.Allow("signin", "k"))
}

func TestRateLimiter_SetPolicyResetsNamespace(t *testing.T) {
	rl, _ := newTestLimiter(t)
	rl.SetPolicy("mls", 1, time.Minute)
	rl.SetPolicy("other", 1, time.Minute)

	assert.True(t, rl.Allow("mls", "k"))
	assert.True(t, rl.Allow("other", "k"))

	rl.SetPolicy("mls", 2, time.Minute)
	assert.True(t, rl.Allow("mls", "k"))
	assert.False(t, rl.Allow("other", "k"))
}

func TestRateLimiter_Reset(t *testing.T) {
	rl, _ := newTestLimiter(t)
	rl.SetPolicy("mls", 1, time.Minute)

	assert.True(t, rl.Allow("mls", "k"))
	assert.False(t, rl.Allow("mls", "k"))

	rl.Reset("mls", "k")
	assert.True(t, rl.Allow("mls", "k"))
}

func TestRateLimiter_GetRemainingWindow(t *testing.T) {
	rl, clock := newTestLimiter(t)
	rl.SetPolicy("mls", 2, 20*time.Second)

	assert.Equal(t, 0, rl.GetRemainingWindow("mls", "k"), "no attempts yet")

	rl.Allow("mls", "k")
	assert.Equal(t, 0, rl.GetRemainingWindow("mls", "k"), "one token left")

	rl.Allow("mls", "k")
	assert.Equal(t, 10, rl.GetRemainingWindow("mls", "k"))

	clock.Advance(5 * time.Second)
	assert.Equal(t, 5, rl.GetRemainingWindow("mls", "k"))

	assert.Equal(t, 0, rl.GetRemainingWindow("nopolicy", "k"))
}

func TestRateLimiter_ZeroAttempts(t *testing.T) {
	rl, _ := newTestLimiter(t)
	rl.SetPolicy("closed", 0, time.Minute)

	assert.False(t, rl.Allow("closed", "k"))
	assert.Equal(t, 0, rl.GetRemainingWindow("closed", "k"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl, clock := newTestLimiter(t)
	rl.SetPolicy("mls", 5, time.Minute)

	rl.Allow("mls", "idle")
	clock.Advance(30 * time.Second)
	rl.Allow("mls", "active")

	clock.Advance(45 * time.Second)
	rl.cleanup()

	rl.mu.Lock()
	_, idle := rl.entries["mls:idle"]
	_, active := rl.entries["mls:active"]
	rl.mu.Unlock()

	assert.False(t, idle)
	assert.True(t, active)
}

func TestRateLimiter_Stop(t *testing.T) {
	rl := NewRateLimiter()
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl, _ := newTestLimiter(t)
	rl.SetPolicy("mls", 10, time.Hour)

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("mls", "shared") {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), atomic.LoadInt32(&allowed))
}

func TestRateLimiter_ConcurrentDifferentKeys(t *testing.T) {
	rl, _ := newTestLimiter(t)
	rl.SetPolicy("mls", 2, time.Hour)

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func(user int) {
				defer wg.Done()
				if rl.Allow("mls", fmt.Sprintf("user-%d", user)) {
					atomic.AddInt32(&allowed, 1)
				}
			}(i)
		}
	}
	wg.Wait()

	assert.Equal(t, int32(20), atomic.LoadInt32(&allowed))
}
