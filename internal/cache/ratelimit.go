package cache

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter on top of a Store: at most limit
// events per key inside any window. Used to throttle group-session join
// attempts per device.
type RateLimiter struct {
	mu     sync.Mutex
	store  *Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing limit events per window.
func NewRateLimiter(store *Store, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the
// limit. Rejected attempts are not recorded, so a throttled client does not
// push its own window further out.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	var recent []time.Time
	if v, ok := rl.store.Get(key); ok {
		if stamps, ok := v.([]time.Time); ok {
			for _, t := range stamps {
				if t.After(cutoff) {
					recent = append(recent, t)
				}
			}
		}
	}

	if len(recent) >= rl.limit {
		rl.store.Set(key, recent, rl.window)
		return false
	}

	recent = append(recent, now)
	rl.store.Set(key, recent, rl.window)
	return true
}
