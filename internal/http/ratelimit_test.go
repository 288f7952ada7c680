package http

import (
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, perMinute int) *rateLimiter {
	t.Helper()
	rl := newRateLimiter(perMinute)
	t.Cleanup(rl.stop)
	return rl
}

func TestRateLimiter_EnforcesLimit(t *testing.T) {
	rl := newTestLimiter(t, 3)
	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d blocked, want allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request over the limit was allowed")
	}
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	rl := newTestLimiter(t, 1)
	if !rl.allow("10.0.0.1") {
		t.Fatal("first request from 10.0.0.1 blocked")
	}
	if rl.allow("10.0.0.1") {
		t.Error("second request from 10.0.0.1 allowed")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("request from a different IP was blocked")
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := newTestLimiter(t, 1)
	if !rl.allow("10.0.0.1") {
		t.Fatal("first request blocked")
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("second request in the same window allowed")
	}

	// Age the window past its duration and the counter starts over.
	rl.mu.Lock()
	rl.visitors["10.0.0.1"].windowStart = time.Now().Add(-rateLimitWindow - time.Second)
	rl.mu.Unlock()

	if !rl.allow("10.0.0.1") {
		t.Error("request after window expiry was blocked")
	}
}

func TestRateLimiter_DefaultLimit(t *testing.T) {
	for _, perMinute := range []int{0, -5} {
		rl := newTestLimiter(t, perMinute)
		if rl.limit != defaultRateLimit {
			t.Errorf("newRateLimiter(%d) limit = %d, want %d", perMinute, rl.limit, defaultRateLimit)
		}
	}
}

func TestRateLimiter_DropsStaleVisitors(t *testing.T) {
	rl := newTestLimiter(t, 5)
	rl.allow("10.0.0.1")
	rl.allow("10.0.0.2")

	rl.mu.Lock()
	rl.visitors["10.0.0.1"].windowStart = time.Now().Add(-visitorStaleAfter - time.Minute)
	rl.mu.Unlock()

	rl.dropStaleVisitors()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("stale visitor was kept")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("fresh visitor was dropped")
	}
}
