package auth

import (
	"sync"
	"testing"
	"time"
)

// fixedClock gives tests deterministic control over the limiter's time.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(clock *fixedClock) *FailureLimiter {
	fl := NewFailureLimiter(DefaultFailureLimiterConfig())
	fl.now = clock.Now
	return fl
}

func TestFailureLimiter_ExponentialBackoff(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)
	const ip = "203.0.113.5"

	// The Nth consecutive failure delays by min(0.5 * 2^N, 60) seconds.
	wantDelays := []time.Duration{
		1 * time.Second,  // N=1
		2 * time.Second,  // N=2
		4 * time.Second,  // N=3
		8 * time.Second,  // N=4
		16 * time.Second, // N=5
		32 * time.Second, // N=6
		60 * time.Second, // N=7, capped (64 > 60)
		60 * time.Second, // N=8, still capped
	}

	for i, want := range wantDelays {
		fl.RecordFailure(ip)
		throttled, remaining := fl.CheckThrottled(ip)
		if !throttled {
			t.Fatalf("failure #%d: expected throttled", i+1)
		}
		if remaining != want {
			t.Errorf("failure #%d: remaining = %v, want %v", i+1, remaining, want)
		}
	}
}

func TestFailureLimiter_ThrottleExpires(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)
	const ip = "203.0.113.5"

	fl.RecordFailure(ip) // 1s backoff

	if throttled, _ := fl.CheckThrottled(ip); !throttled {
		t.Fatal("expected throttled immediately after failure")
	}

	clock.Advance(1100 * time.Millisecond)

	if throttled, _ := fl.CheckThrottled(ip); throttled {
		t.Fatal("expected throttle to expire after backoff window")
	}
	// The record survives expiry; the next failure keeps escalating.
	if got := fl.FailureCount(ip); got != 1 {
		t.Errorf("FailureCount = %d, want 1", got)
	}
}

func TestFailureLimiter_CheckDoesNotMutate(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)
	const ip = "203.0.113.5"

	fl.RecordFailure(ip)
	_, first := fl.CheckThrottled(ip)
	for i := 0; i < 10; i++ {
		fl.CheckThrottled(ip)
	}
	_, last := fl.CheckThrottled(ip)

	if first != last {
		t.Errorf("CheckThrottled mutated state: %v != %v", first, last)
	}
	if got := fl.FailureCount(ip); got != 1 {
		t.Errorf("FailureCount = %d, want 1", got)
	}
}

func TestFailureLimiter_ResetSuccess(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)
	const ip = "203.0.113.5"

	for i := 0; i < 4; i++ {
		fl.RecordFailure(ip)
	}
	fl.ResetSuccess(ip)

	if throttled, _ := fl.CheckThrottled(ip); throttled {
		t.Fatal("expected no throttle after reset")
	}
	if got := fl.FailureCount(ip); got != 0 {
		t.Fatalf("FailureCount = %d, want 0 after reset", got)
	}

	// The next failure after a reset starts over at the N=1 delay.
	fl.RecordFailure(ip)
	if _, remaining := fl.CheckThrottled(ip); remaining != time.Second {
		t.Errorf("post-reset backoff = %v, want 1s", remaining)
	}

	// Resetting an unknown client is a no-op.
	fl.ResetSuccess("198.51.100.99")
}

func TestFailureLimiter_NextAllowedMonotonic(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)
	const ip = "203.0.113.5"

	var prev time.Time
	for i := 0; i < 10; i++ {
		fl.RecordFailure(ip)
		fl.mu.Lock()
		next := fl.records[ip].nextAllowed
		fl.mu.Unlock()
		if next.Before(prev) {
			t.Fatalf("nextAllowed went backwards on failure #%d: %v < %v", i+1, next, prev)
		}
		prev = next
	}
}

func TestFailureLimiter_IndependentClients(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)

	fl.RecordFailure("203.0.113.5")
	fl.RecordFailure("203.0.113.5")
	fl.RecordFailure("198.51.100.7")

	if got := fl.FailureCount("203.0.113.5"); got != 2 {
		t.Errorf("first client FailureCount = %d, want 2", got)
	}
	if got := fl.FailureCount("198.51.100.7"); got != 1 {
		t.Errorf("second client FailureCount = %d, want 1", got)
	}
	if got := fl.FailureCount("192.0.2.1"); got != 0 {
		t.Errorf("unknown client FailureCount = %d, want 0", got)
	}
}

// N concurrent failures for the same IP must produce a final count of
// exactly N: RecordFailure is fully serialized by the limiter's lock.
func TestFailureLimiter_ConcurrentRecordFailure(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)
	const ip = "203.0.113.5"
	const n = 200

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			fl.RecordFailure(ip)
		}()
	}
	wg.Wait()

	if got := fl.FailureCount(ip); got != n {
		t.Errorf("FailureCount = %d, want %d", got, n)
	}
}

// Mixed concurrent traffic must never corrupt the record map; this mostly
// exists to fail under the race detector.
func TestFailureLimiter_ConcurrentMixedOperations(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)
	ips := []string{"203.0.113.5", "198.51.100.7", "192.0.2.1"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, ip := range ips {
			wg.Add(3)
			go func(ip string) {
				defer wg.Done()
				fl.RecordFailure(ip)
			}(ip)
			go func(ip string) {
				defer wg.Done()
				fl.CheckThrottled(ip)
			}(ip)
			go func(ip string) {
				defer wg.Done()
				fl.ResetSuccess(ip)
			}(ip)
		}
	}
	wg.Wait()
}

func TestFailureLimiter_Sweep(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)

	fl.RecordFailure("203.0.113.5") // nextAllowed = now + 1s
	clock.Advance(30 * time.Second)
	fl.RecordFailure("198.51.100.7") // nextAllowed = now + 1s

	// First record's window expired 29s ago, inside the 10m grace: kept.
	if evicted := fl.Sweep(); evicted != 0 {
		t.Fatalf("Sweep() evicted %d records, want 0", evicted)
	}

	clock.Advance(11 * time.Minute)

	// Both windows are now past the grace period.
	if evicted := fl.Sweep(); evicted != 2 {
		t.Fatalf("Sweep() evicted %d records, want 2", evicted)
	}
	if got := fl.FailureCount("203.0.113.5"); got != 0 {
		t.Errorf("swept record still present, count = %d", got)
	}
}

func TestFailureLimiter_SweepKeepsActiveThrottles(t *testing.T) {
	clock := newFixedClock()
	fl := newTestLimiter(clock)
	const ip = "203.0.113.5"

	for i := 0; i < 7; i++ { // escalate to the 60s cap
		fl.RecordFailure(ip)
	}

	if evicted := fl.Sweep(); evicted != 0 {
		t.Fatalf("Sweep() evicted an actively throttled record")
	}
	if throttled, _ := fl.CheckThrottled(ip); !throttled {
		t.Fatal("record lost its throttle state")
	}
}

func TestFailureLimiter_DefaultsApplied(t *testing.T) {
	fl := NewFailureLimiter(FailureLimiterConfig{})
	def := DefaultFailureLimiterConfig()

	if fl.config.BackoffBase != def.BackoffBase {
		t.Errorf("BackoffBase = %v, want %v", fl.config.BackoffBase, def.BackoffBase)
	}
	if fl.config.BackoffCap != def.BackoffCap {
		t.Errorf("BackoffCap = %v, want %v", fl.config.BackoffCap, def.BackoffCap)
	}
	if fl.config.SweepInterval != def.SweepInterval {
		t.Errorf("SweepInterval = %v, want %v", fl.config.SweepInterval, def.SweepInterval)
	}
	if fl.config.SweepGrace != def.SweepGrace {
		t.Errorf("SweepGrace = %v, want %v", fl.config.SweepGrace, def.SweepGrace)
	}
}
