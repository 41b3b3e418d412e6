package jobs

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// ThrottleCleanupInterval is how often idle limiters are swept
	ThrottleCleanupInterval = 5 * time.Minute
	// ThrottleTTL is how long an idle limiter is kept
	ThrottleTTL = 10 * time.Minute
)

// KeyedThrottle caps throughput per key (per user for recurring jobs).
// Each key gets its own token bucket refilled at perMinute tokens per minute.
type KeyedThrottle struct {
	limiters map[string]*throttleEntry
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedThrottle creates a throttle allowing perMinute events per key per minute
func NewKeyedThrottle(perMinute int) *KeyedThrottle {
	return newKeyedThrottle(perMinute, time.Now)
}

func newKeyedThrottle(perMinute int, now func() time.Time) *KeyedThrottle {
	if perMinute < 1 {
		perMinute = 1
	}
	t := &KeyedThrottle{
		limiters: make(map[string]*throttleEntry),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      now,
		stopCh:   make(chan struct{}),
	}
	go t.cleanup()
	return t
}

// Reserve takes a token for key if one is available and returns 0. Otherwise
// it takes nothing and returns how long to wait before trying again.
func (t *KeyedThrottle) Reserve(key string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	entry, ok := t.limiters[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[key] = entry
	}
	entry.lastSeen = now

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return time.Minute
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return delay
	}
	return 0
}

func (t *KeyedThrottle) cleanup() {
	ticker := time.NewTicker(ThrottleCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.mu.Lock()
			now := t.now()
			for key, entry := range t.limiters {
				if now.Sub(entry.lastSeen) > ThrottleTTL {
					delete(t.limiters, key)
					log.Debug().Str("throttle_key", key).Msg("Cleaned up idle throttle")
				}
			}
			t.mu.Unlock()
		case <-t.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (t *KeyedThrottle) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}
