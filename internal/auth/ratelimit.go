package auth

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Commvault/commvault-mcp-server/pkg/logging"
)

// attemptRecord tracks consecutive authentication failures for one client.
// A record only exists for clients that have failed at least once; success
// deletes it entirely.
type attemptRecord struct {
	failureCount uint
	nextAllowed  time.Time
}

// FailureLimiterConfig holds the tunables of the failure limiter.
type FailureLimiterConfig struct {
	// BackoffBase is the base of the exponential delay: the Nth consecutive
	// failure yields min(BackoffBase * 2^N, BackoffCap).
	// Default: 500ms (so the first failure costs 1s).
	BackoffBase time.Duration

	// BackoffCap bounds the delay. Default: 60s.
	BackoffCap time.Duration

	// SweepInterval is how often the background sweeper runs.
	// Default: 5 minutes.
	SweepInterval time.Duration

	// SweepGrace is how long after a record's backoff expiry it is kept
	// before the sweeper evicts it. Keeping it a while preserves the
	// escalating counter for a client that keeps guessing slowly.
	// Default: 10 minutes.
	SweepGrace time.Duration
}

// DefaultFailureLimiterConfig returns the default limiter configuration.
func DefaultFailureLimiterConfig() FailureLimiterConfig {
	return FailureLimiterConfig{
		BackoffBase:   500 * time.Millisecond,
		BackoffCap:    60 * time.Second,
		SweepInterval: 5 * time.Minute,
		SweepGrace:    10 * time.Minute,
	}
}

// FailureLimiter applies per-client exponential backoff to failed
// authentication attempts. It is the only component of the gate with mutable
// shared state; a single mutex serializes CheckThrottled, RecordFailure and
// ResetSuccess so no interleaving can corrupt a record.
//
// State lives in memory only. A process restart clears all throttling, which
// is an accepted trade-off for a gate with no persistence requirements.
type FailureLimiter struct {
	mu      sync.Mutex
	config  FailureLimiterConfig
	records map[string]attemptRecord

	// now is injected for tests; time.Now in production.
	now func() time.Time
}

// NewFailureLimiter creates a limiter with the given configuration, filling
// in defaults for zero values.
func NewFailureLimiter(config FailureLimiterConfig) *FailureLimiter {
	def := DefaultFailureLimiterConfig()
	if config.BackoffBase <= 0 {
		config.BackoffBase = def.BackoffBase
	}
	if config.BackoffCap <= 0 {
		config.BackoffCap = def.BackoffCap
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = def.SweepInterval
	}
	if config.SweepGrace <= 0 {
		config.SweepGrace = def.SweepGrace
	}

	return &FailureLimiter{
		config:  config,
		records: make(map[string]attemptRecord),
		now:     time.Now,
	}
}

// CheckThrottled reports whether the client is still inside its backoff
// window, and if so how long until the next attempt is allowed. It never
// mutates state.
func (fl *FailureLimiter) CheckThrottled(clientIP string) (bool, time.Duration) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	record, ok := fl.records[clientIP]
	if !ok {
		return false, 0
	}
	remaining := record.nextAllowed.Sub(fl.now())
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// RecordFailure registers a failed authentication attempt for the client and
// advances its backoff window: the Nth consecutive failure delays the next
// attempt by min(BackoffBase * 2^N, BackoffCap).
func (fl *FailureLimiter) RecordFailure(clientIP string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	record := fl.records[clientIP]
	record.failureCount++

	delay := fl.backoffDelay(record.failureCount)
	record.nextAllowed = fl.now().Add(delay)
	fl.records[clientIP] = record

	logging.Info("AuthGate", "Failed authentication attempt #%d from %s. Next attempt allowed after %.1fs",
		record.failureCount, clientIP, delay.Seconds())
}

// ResetSuccess removes any failure record for the client. A client with no
// record is untouched.
func (fl *FailureLimiter) ResetSuccess(clientIP string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if _, ok := fl.records[clientIP]; ok {
		delete(fl.records, clientIP)
		logging.Debug("AuthGate", "Reset failed attempt counter for %s after successful authentication", clientIP)
	}
}

// FailureCount returns the current consecutive failure count for the client;
// zero if it has no record.
func (fl *FailureLimiter) FailureCount(clientIP string) uint {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.records[clientIP].failureCount
}

// backoffDelay computes the capped exponential delay for the Nth failure.
func (fl *FailureLimiter) backoffDelay(failureCount uint) time.Duration {
	delay := time.Duration(float64(fl.config.BackoffBase) * math.Pow(2, float64(failureCount)))
	if delay <= 0 || delay > fl.config.BackoffCap {
		return fl.config.BackoffCap
	}
	return delay
}

// Sweep evicts records whose backoff window expired more than SweepGrace
// ago. Without eviction the record map grows without bound under spoofed
// source traffic; this is the hardening that keeps memory flat during a
// sustained random-source attack. Returns the number of evicted records.
func (fl *FailureLimiter) Sweep() int {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	cutoff := fl.now().Add(-fl.config.SweepGrace)
	evicted := 0
	for ip, record := range fl.records {
		if record.nextAllowed.Before(cutoff) {
			delete(fl.records, ip)
			evicted++
		}
	}
	if evicted > 0 {
		logging.Debug("AuthGate", "Swept %d stale rate-limit record(s)", evicted)
	}
	return evicted
}

// StartSweeping runs Sweep every SweepInterval until ctx is cancelled. It
// blocks and is meant to be run on its own goroutine owned by the server
// lifecycle.
func (fl *FailureLimiter) StartSweeping(ctx context.Context) {
	ticker := time.NewTicker(fl.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fl.Sweep()
		}
	}
}
